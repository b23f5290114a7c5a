package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/ellipsis/binding"
	"github.com/ByLCY/ellipsis/dsl"
)

// BuildOptions 配置排版阶段所需的依赖与默认值。
type BuildOptions struct {
	Typesetter Typesetter
	// Defaults 为视图默认配置，nil 时使用 DefaultOptions()。
	Defaults *Options
	// Page 在文档没有 page 段落时使用。
	Page PageOptions
	// ExpandAll 让所有视图以展开状态排版。
	ExpandAll bool
	// OnMeasured 在每个视图每次测量完成后调用。
	OnMeasured func(name string, v *View)
}

// PageOptions 页面尺寸、边距与视图间距，单位由排版后端决定。
// Height 为 0 表示不分页。
type PageOptions struct {
	Width  float64
	Height float64
	Margin Margin
	Gap    float64
}

// pageSizesMM 常用纸张尺寸（竖版，mm）。
var pageSizesMM = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"A6":     {105, 148},
	"LETTER": {215.9, 279.4},
	"LEGAL":  {215.9, 355.6},
}

// PageSize 按名称（不区分大小写）返回竖版纸张宽高。
func PageSize(name string) (width, height Length, ok bool) {
	dims, ok := pageSizesMM[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return Length{}, Length{}, false
	}
	return MM(dims[0]), MM(dims[1]), true
}

// Build 根据文档 AST 创建视图、完成测量并按页面排布。
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	defaults := DefaultOptions()
	if opts.Defaults != nil {
		defaults = *opts.Defaults
	}
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("默认视图配置无效: %w", err)
	}

	b := &builder{
		ts:       opts.Typesetter,
		data:     data,
		defaults: defaults,
		styles:   map[string]*dsl.Block{},
	}

	pageOpts := opts.Page
	var views []*dsl.ViewSection
	var meta DocumentMeta
	for _, entry := range doc.Entries {
		switch {
		case entry.Meta != nil:
			meta = collectMeta(entry.Meta.Block)
		case entry.Page != nil:
			p, err := b.resolvePage(entry.Page, pageOpts)
			if err != nil {
				return nil, err
			}
			pageOpts = p
		case entry.Style != nil:
			if _, dup := b.styles[entry.Style.Name]; dup {
				return nil, fmt.Errorf("样式 %s 重复定义", entry.Style.Name)
			}
			b.styles[entry.Style.Name] = entry.Style.Block
		case entry.View != nil:
			views = append(views, entry.View)
		}
	}
	if pageOpts.Width <= 0 {
		return nil, fmt.Errorf("页面宽度必须大于 0")
	}

	collector := newPageCollector(pageOpts)
	for _, section := range views {
		v, width, err := b.buildView(section, collector.contentWidth())
		if err != nil {
			return nil, err
		}
		if opts.ExpandAll {
			v.Expand()
		}
		var notify func(*View)
		if opts.OnMeasured != nil {
			name := section.Name
			notify = func(v *View) { opts.OnMeasured(name, v) }
		}
		if err := collector.place(section.Name, v, width, notify); err != nil {
			return nil, fmt.Errorf("视图 %s 排版失败: %w", section.Name, err)
		}
	}

	return &Result{Pages: collector.pages(), Meta: meta}, nil
}

type builder struct {
	ts       Typesetter
	data     any
	defaults Options
	styles   map[string]*dsl.Block
}

// viewProps 合并样式链与视图自身属性，后者优先。
func (b *builder) viewProps(name string, block *dsl.Block) (map[string]*dsl.Value, error) {
	props := map[string]*dsl.Value{}
	own := map[string]*dsl.Value{}
	for _, p := range block.Properties() {
		own[p.Key] = p.Value
	}
	if style, ok := own["style"]; ok {
		if err := b.applyStyle(style.Scalar(), props, map[string]bool{}); err != nil {
			return nil, fmt.Errorf("视图 %s: %w", name, err)
		}
	}
	for k, v := range own {
		props[k] = v
	}
	delete(props, "style")
	return props, nil
}

func (b *builder) applyStyle(name string, props map[string]*dsl.Value, visiting map[string]bool) error {
	block, ok := b.styles[name]
	if !ok {
		return fmt.Errorf("样式 %s 未定义", name)
	}
	if visiting[name] {
		return fmt.Errorf("样式 %s 存在循环继承", name)
	}
	visiting[name] = true
	for _, p := range block.Properties() {
		if p.Key == "extends" {
			if err := b.applyStyle(p.Value.Scalar(), props, visiting); err != nil {
				return err
			}
		}
	}
	for _, p := range block.Properties() {
		if p.Key != "extends" {
			props[p.Key] = p.Value
		}
	}
	return nil
}

// buildView 创建并配置视图，返回其可用宽度。
func (b *builder) buildView(section *dsl.ViewSection, maxWidth float64) (*View, float64, error) {
	props, err := b.viewProps(section.Name, section.Block)
	if err != nil {
		return nil, 0, err
	}

	opts := b.defaults
	width := maxWidth
	expanded := false
	for key, val := range props {
		raw := strings.TrimSpace(val.Scalar())
		switch key {
		case "font":
			opts.Style.Font = raw
		case "size":
			l, err := ParseLength(raw)
			if err != nil {
				return nil, 0, fmt.Errorf("视图 %s 的 size: %w", section.Name, err)
			}
			opts.Style.Size = l
		case "color":
			c, err := ParseColor(raw)
			if err != nil {
				return nil, 0, fmt.Errorf("视图 %s 的 color: %w", section.Name, err)
			}
			opts.Style.Color = c
		case "max-lines":
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, 0, fmt.Errorf("视图 %s 的 max-lines 不是整数: %w", section.Name, err)
			}
			opts.MaxLines = n
		case "line-spacing":
			l, err := ParseLength(raw)
			if err != nil {
				return nil, 0, fmt.Errorf("视图 %s 的 line-spacing: %w", section.Name, err)
			}
			opts.LineSpacing = b.ts.ResolveLength(l)
		case "ellipsis":
			opts.Ellipsis = val.Scalar()
		case "padding":
			p, err := b.resolveBox(val.List())
			if err != nil {
				return nil, 0, fmt.Errorf("视图 %s 的 padding: %w", section.Name, err)
			}
			opts.Padding = p
		case "width":
			l, err := ParseLength(raw)
			if err != nil {
				return nil, 0, fmt.Errorf("视图 %s 的 width: %w", section.Name, err)
			}
			if w := b.ts.ResolveLength(l); w > 0 && w < maxWidth {
				width = w
			}
		case "expanded":
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, 0, fmt.Errorf("视图 %s 的 expanded: %w", section.Name, err)
			}
			expanded = v
		default:
			return nil, 0, fmt.Errorf("视图 %s: 未知属性 %s", section.Name, key)
		}
	}

	paint, err := b.ts.NewPaint(opts.Style)
	if err != nil {
		return nil, 0, fmt.Errorf("视图 %s 创建字体度量失败: %w", section.Name, err)
	}
	v, err := NewView(paint, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("视图 %s: %w", section.Name, err)
	}
	v.SetText(binding.Interpolate(section.Block.Text(), b.data))
	if expanded {
		v.Expand()
	}
	return v, width, nil
}

func (b *builder) resolvePage(section *dsl.PageSection, base PageOptions) (PageOptions, error) {
	out := base
	if section.Size != "" {
		w, h, ok := PageSize(section.Size)
		if !ok {
			return out, fmt.Errorf("未知纸张尺寸 %s", section.Size)
		}
		out.Width = b.ts.ResolveLength(w)
		out.Height = b.ts.ResolveLength(h)
	}
	landscape := false
	for _, p := range section.Block.Properties() {
		raw := strings.TrimSpace(p.Value.Scalar())
		switch p.Key {
		case "width", "height", "gap":
			l, err := ParseLength(raw)
			if err != nil {
				return out, fmt.Errorf("page %s: %w", p.Key, err)
			}
			v := b.ts.ResolveLength(l)
			switch p.Key {
			case "width":
				out.Width = v
			case "height":
				out.Height = v
			default:
				out.Gap = v
			}
		case "margin":
			m, err := b.resolveBox(p.Value.List())
			if err != nil {
				return out, fmt.Errorf("page margin: %w", err)
			}
			out.Margin = m
		case "orientation":
			landscape = strings.EqualFold(raw, "landscape")
		default:
			return out, fmt.Errorf("page: 未知属性 %s", p.Key)
		}
	}
	if landscape && out.Height > 0 && out.Width < out.Height {
		out.Width, out.Height = out.Height, out.Width
	}
	return out, nil
}

func (b *builder) resolveBox(values []string) (Padding, error) { return ResolveBox(b.ts, values) }

// ResolveBox 把 1-4 个长度按 CSS 语义（上 右 下 左）展开为四边。
func ResolveBox(ts Typesetter, values []string) (Padding, error) {
	nums := make([]float64, 0, len(values))
	for _, raw := range values {
		l, err := ParseLength(raw)
		if err != nil {
			return Padding{}, err
		}
		nums = append(nums, ts.ResolveLength(l))
	}
	switch len(nums) {
	case 1:
		return Padding{Top: nums[0], Right: nums[0], Bottom: nums[0], Left: nums[0]}, nil
	case 2:
		return Padding{Top: nums[0], Right: nums[1], Bottom: nums[0], Left: nums[1]}, nil
	case 3:
		return Padding{Top: nums[0], Right: nums[1], Bottom: nums[2], Left: nums[1]}, nil
	case 4:
		return Padding{Top: nums[0], Right: nums[1], Bottom: nums[2], Left: nums[3]}, nil
	default:
		return Padding{}, fmt.Errorf("需要 1-4 个长度，实际 %d 个", len(nums))
	}
}

func collectMeta(block *dsl.Block) DocumentMeta {
	var meta DocumentMeta
	for _, p := range block.Properties() {
		switch p.Key {
		case "title":
			meta.Title = p.Value.Scalar()
		case "author":
			meta.Author = p.Value.Scalar()
		case "subject":
			meta.Subject = p.Value.Scalar()
		case "creator":
			meta.Creator = p.Value.Scalar()
		case "keywords":
			meta.Keywords = p.Value.List()
		}
	}
	return meta
}

// ParseColor 解析 #rgb 或 #rrggbb。
func ParseColor(value string) (Color, error) {
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	if len(v) != 6 {
		return Color{}, fmt.Errorf("颜色 %q 格式错误", value)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色 %q 格式错误: %w", value, err)
	}
	return Color{R: int(n >> 16 & 0xff), G: int(n >> 8 & 0xff), B: int(n & 0xff)}, nil
}
