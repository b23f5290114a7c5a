package layout

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ByLCY/ellipsis/dsl"
)

// buildDoc 是测试辅助：用给定文本构建排版结果。字符宽度等于字号数值。
func buildDoc(t *testing.T, src string, data any, opts BuildOptions) (*Result, *stubTypesetter) {
	t.Helper()
	doc, err := dsl.ParseString(src)
	require.NoError(t, err, "解析失败")
	ts := &stubTypesetter{}
	opts.Typesetter = ts
	if opts.Page.Width == 0 {
		opts.Page = PageOptions{Width: 120}
	}
	res, err := Build(doc, data, opts)
	require.NoError(t, err, "排版失败")
	return res, ts
}

func TestBuildAppliesStyleChain(t *testing.T) {
	src := `doc T v1 {
  style Base { size: 10; color: #112233; line-spacing: 2 }
  style Clamp { extends: Base; max-lines: 2; ellipsis: "~" }
  view Intro { style: Clamp; size: 5; "${who|nobody} wrote a very long introduction that overflows" }
}`
	res, ts := buildDoc(t, src, map[string]any{"who": "Ann"}, BuildOptions{})

	require.Len(t, res.Pages, 1)
	require.Len(t, res.Pages[0].Blocks, 1)
	b := res.Pages[0].Blocks[0]
	require.Equal(t, "Intro", b.Name)

	opts := b.View.Options()
	require.Equal(t, 2, opts.MaxLines)
	require.Equal(t, "~", opts.Ellipsis)
	require.Equal(t, 2.0, opts.LineSpacing)
	require.Equal(t, Color{R: 0x11, G: 0x22, B: 0x33}, opts.Style.Color)
	require.Equal(t, 5.0, opts.Style.Size.Value, "view property overrides style")
	require.Len(t, ts.styles, 1)

	require.True(t, strings.HasPrefix(b.View.Text(), "Ann wrote"))
	require.True(t, b.State.Ellipsized)
	require.Equal(t, 2, b.State.DrawLineCount)
	require.Equal(t, 2*10.0+2, b.Height)
}

func TestBuildStacksViewsAndBreaksPages(t *testing.T) {
	src := `doc T v1 {
  page { width: 120; height: 60; margin: [5, 10]; gap: 4 }
  view A { max-lines: 2; "` + strings.Repeat("a", 60) + `" }
  view B { max-lines: 1; "b" }
  view C { max-lines: 3; "` + strings.Repeat("c", 60) + `" }
}`
	res, _ := buildDoc(t, src, nil, BuildOptions{})

	require.Len(t, res.Pages, 2)
	first := res.Pages[0]
	require.Equal(t, Margin{Top: 5, Right: 10, Bottom: 5, Left: 10}, first.Margin)
	require.Len(t, first.Blocks, 2)
	require.Equal(t, 5.0, first.Blocks[0].Y)
	require.Equal(t, 10.0, first.Blocks[0].X)
	require.Equal(t, 100.0, first.Blocks[0].Width)
	require.Equal(t, 20.0, first.Blocks[0].Height)
	require.Equal(t, 29.0, first.Blocks[1].Y, "block below previous plus gap")

	second := res.Pages[1]
	require.Len(t, second.Blocks, 1)
	require.Equal(t, "C", second.Blocks[0].Name)
	require.Equal(t, 5.0, second.Blocks[0].Y)
	require.Equal(t, 30.0, second.Blocks[0].Height)
}

func TestBuildClampsViewTallerThanPage(t *testing.T) {
	src := `doc T v1 {
  page { width: 100; height: 30 }
  view Big { expanded: true; "` + strings.Repeat("x", 100) + `" }
}`
	res, _ := buildDoc(t, src, nil, BuildOptions{})
	require.Len(t, res.Pages, 1)
	b := res.Pages[0].Blocks[0]
	require.Equal(t, 30.0, b.Height)
	require.Equal(t, 13, b.State.DrawLineCount)

	// 截断发生在画布底部，不补省略号。
	require.False(t, b.State.Ellipsized)
	sink := &captureSink{}
	require.NoError(t, b.View.Draw(sink, b.Width, b.Height))
	require.Len(t, sink.calls, 3)
	for _, c := range sink.calls {
		require.Equal(t, strings.Repeat("x", 8), c.text)
		require.LessOrEqual(t, c.y, b.Height)
	}
}

func TestBuildExpandAllAndNotification(t *testing.T) {
	src := `doc T v1 {
  view A { max-lines: 1; "` + strings.Repeat("a", 40) + `" }
  view B { "b" }
}`
	seen := map[string]bool{}
	res, _ := buildDoc(t, src, nil, BuildOptions{
		ExpandAll: true,
		OnMeasured: func(name string, v *View) {
			seen[name] = v.IsExpanded()
		},
	})
	require.Equal(t, map[string]bool{"A": true, "B": true}, seen)
	require.Equal(t, 4, res.Pages[0].Blocks[0].State.DrawLineCount)
}

func TestBuildDefaults(t *testing.T) {
	defaults := DefaultOptions()
	defaults.MaxLines = 1
	defaults.Ellipsis = "+"
	res, _ := buildDoc(t, `doc T v1 { view A { "`+strings.Repeat("z", 30)+`" } }`, nil, BuildOptions{Defaults: &defaults})
	b := res.Pages[0].Blocks[0]
	require.Equal(t, 1, b.State.DrawLineCount)
	lines, err := b.View.DrawnLines(b.Width)
	require.NoError(t, err)
	require.Equal(t, []string{"zzzzzzzzz+"}, lines)
}

func TestBuildErrors(t *testing.T) {
	cases := map[string]string{
		"unknown style":    `doc T v1 { view A { style: Nope; "x" } }`,
		"style cycle":      `doc T v1 { style A { extends: B } style B { extends: A } view V { style: A; "x" } }`,
		"duplicate style":  `doc T v1 { style A { size: 1 } style A { size: 2 } }`,
		"unknown property": `doc T v1 { view A { colour: #fff; "x" } }`,
		"bad color":        `doc T v1 { view A { color: "red"; "x" } }`,
		"bad max-lines":    `doc T v1 { view A { max-lines: 1.5; "x" } }`,
		"bad page size":    `doc T v1 { page B9 { } }`,
		"bad margin":       `doc T v1 { page { margin: [1, 2, 3, 4, 5] } }`,
		"nan padding":      `doc T v1 { view A { padding: NaN; "x" } }`,
		"inf size":         `doc T v1 { view A { size: Inf; "x" } }`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := dsl.ParseString(src)
			require.NoError(t, err)
			_, err = Build(doc, nil, BuildOptions{Typesetter: &stubTypesetter{}, Page: PageOptions{Width: 100}})
			require.Error(t, err)
		})
	}

	_, err := Build(nil, nil, BuildOptions{})
	require.Error(t, err)
	doc, _ := dsl.ParseString(`doc T v1 { }`)
	_, err = Build(doc, nil, BuildOptions{})
	require.Error(t, err, "missing typesetter")
}

func TestBuildNamedPageSize(t *testing.T) {
	res, _ := buildDoc(t, `doc T v1 { page A4 { orientation: landscape } view A { "a" } }`, nil, BuildOptions{})
	require.Equal(t, 297.0, res.Pages[0].Width)
	require.Equal(t, 210.0, res.Pages[0].Height)
}

func TestBuildMeta(t *testing.T) {
	res, _ := buildDoc(t, `doc T v1 { meta { title: "Hi"; author: "Me"; keywords: ["a", "b"] } }`, nil, BuildOptions{})
	require.Equal(t, DocumentMeta{Title: "Hi", Author: "Me", Keywords: []string{"a", "b"}}, res.Meta)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#abc")
	require.NoError(t, err)
	require.Equal(t, Color{R: 0xaa, G: 0xbb, B: 0xcc}, c)
	_, err = ParseColor("#abcd")
	require.Error(t, err)
}

func TestWriteDebugJSON(t *testing.T) {
	src := `doc T v1 { view A { max-lines: 1; "` + strings.Repeat("q", 30) + `" } }`
	res, _ := buildDoc(t, src, nil, BuildOptions{})

	path := filepath.Join(t.TempDir(), "debug.json")
	require.NoError(t, WriteDebugJSON(res, path))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded struct {
		Pages []struct {
			Blocks []struct {
				Name  string   `json:"name"`
				Drawn []string `json:"drawn"`
				State Snapshot `json:"state"`
			} `json:"blocks"`
		} `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	blk := decoded.Pages[0].Blocks[0]
	require.Equal(t, "A", blk.Name)
	require.Equal(t, []string{"qqqqqqq..."}, blk.Drawn)
	require.True(t, blk.State.Ellipsized)
	require.Len(t, blk.State.Segments, 3)
}
