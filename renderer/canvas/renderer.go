package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/ellipsis/fonts"
	"github.com/ByLCY/ellipsis/layout"
	"github.com/ByLCY/ellipsis/renderer"
)

// Renderer draws layout results via github.com/tdewolff/canvas.
// Lengths are millimetres; font sizes are handed to canvas in points.
type Renderer struct {
	baseDir string
	logger  *slog.Logger

	// injected resources
	fontBlobs map[string][]byte // by unique name

	fontMu         sync.Mutex
	fontFamilies   map[string]*canvas.FontFamily
	fallbackFamily *canvas.FontFamily
}

var (
	_ renderer.Backend  = (*Renderer)(nil)
	_ layout.TextPaint  = (*facePaint)(nil)
	_ layout.DrawSink   = (*blockSink)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // injected fonts, referenced by name
	Logger  *slog.Logger
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		logger:       opts.Logger,
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*canvas.FontFamily{},
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(res.Path) // a missing file falls back when the font is used
			if len(data) > 0 {
				r.fontBlobs[name] = data
			}
		}
	}
	return r
}

// NewPaint 实现 layout.Typesetter：按样式创建字体面，宽度与度量均为 mm。
func (r *Renderer) NewPaint(style layout.TextStyle) (layout.TextPaint, error) {
	face, err := r.fontFace(style)
	if err != nil {
		return nil, err
	}
	return newFacePaint(face), nil
}

// ResolveLength 把长度换算为 mm。
func (r *Renderer) ResolveLength(l layout.Length) float64 { return l.ToMM() }

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	first := result.Pages[0]
	writer := pdf.New(&buf, first.Width, pageHeight(first), nil)
	r.applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		height := pageHeight(page)
		if i > 0 {
			writer.NewPage(page.Width, height)
		}
		c := canvas.New(page.Width, height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawPage(ctx, page); err != nil {
			return nil, fmt.Errorf("第 %d 页: %w", i+1, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// pageHeight 对不限高的页面取内容底部加下边距。
func pageHeight(page layout.Page) float64 {
	if page.Height > 0 {
		return page.Height
	}
	bottom := page.Margin.Top
	for _, b := range page.Blocks {
		bottom = math.Max(bottom, b.Y+b.Height)
	}
	return math.Max(bottom+page.Margin.Bottom, 1)
}

func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page) error {
	for _, b := range page.Blocks {
		if b.View == nil {
			continue
		}
		face, err := r.fontFace(b.View.Options().Style)
		if err != nil {
			return fmt.Errorf("视图 %s: %w", b.Name, err)
		}
		sink := &blockSink{ctx: ctx, face: face, x: b.X, y: b.Y}
		if err := b.View.Draw(sink, b.Width, b.Height); err != nil {
			return fmt.Errorf("视图 %s: %w", b.Name, err)
		}
	}
	return nil
}

// blockSink 把视图内坐标平移到页面坐标后绘制。
type blockSink struct {
	ctx  *canvas.Context
	face *canvas.FontFace
	x, y float64
}

func (s *blockSink) DrawText(text string, x, y float64) {
	// y 已是基线位置
	s.ctx.DrawText(s.x+x, s.y+y, canvas.NewTextLine(s.face, text, canvas.Left))
}

// facePaint 用 canvas 字体面实现 layout.TextPaint。
type facePaint struct {
	face    *canvas.FontFace
	metrics canvas.FontMetrics
	fit     layout.FitFunc
}

func newFacePaint(face *canvas.FontFace) *facePaint {
	return &facePaint{
		face:    face,
		metrics: face.Metrics(),
		// 字距调整使逐字累加不精确，因此按前缀实测宽度查找。
		fit: layout.FitByMeasure(face.TextWidth),
	}
}

func (p *facePaint) MeasureText(s string) float64 { return p.face.TextWidth(s) }
func (p *facePaint) Ascent() float64            { return math.Abs(p.metrics.Ascent) }
func (p *facePaint) Descent() float64           { return math.Abs(p.metrics.Descent) }

func (p *facePaint) BreakText(text []rune, start, end int, maxWidth float64) int {
	return p.fit(text, start, end, maxWidth)
}

func (r *Renderer) fontFace(style layout.TextStyle) (*canvas.FontFace, error) {
	size := style.Size.ToPT()
	if size <= 0 {
		return nil, fmt.Errorf("字号必须为正数: %s", style.Size)
	}
	family, err := r.ensureFontFamily(style.Font)
	if err != nil {
		return nil, err
	}
	return family.Face(size, colorFromLayout(style.Color), canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(name string) (*canvas.FontFamily, error) {
	if name == "" {
		name = fonts.Default
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.fontFamilies[name]; ok {
		return family, nil
	}

	family := canvas.NewFontFamily(name)
	data, err := r.loadFontBytes(name)
	if err == nil {
		err = family.LoadFont(data, 0, canvas.FontRegular)
	}
	if err != nil {
		fallback, fbErr := r.fallback()
		if fbErr != nil {
			return nil, err
		}
		r.logger.Warn("字体加载失败，使用内置字体", "font", name, "fallback", fonts.Default, "err", err)
		r.fontFamilies[name] = fallback
		return fallback, nil
	}
	r.fontFamilies[name] = family
	return family, nil
}

// loadFontBytes 依次查找注入的字体、内置字体和字体文件路径。
func (r *Renderer) loadFontBytes(name string) ([]byte, error) {
	if blob, ok := r.fontBlobs[name]; ok {
		return blob, nil
	}
	if fonts.IsBuiltin(name) {
		return fonts.Load(name)
	}
	if strings.HasPrefix(name, "builtin:") || strings.HasPrefix(name, "built-in:") {
		return nil, fmt.Errorf("找不到内置字体资源 %s", name)
	}
	path := name
	if r.baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用内置字体）", name)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	return os.ReadFile(path)
}

// fallback 需在持有 fontMu 时调用。
func (r *Renderer) fallback() (*canvas.FontFamily, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, nil
	}
	data, err := fonts.Load(fonts.Default)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("ellipsis-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	r.fallbackFamily = family
	return family, nil
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
