// Package term lays text out in terminal cells and prints it as (optionally
// coloured) plain text.
package term

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ByLCY/ellipsis/layout"
	"github.com/ByLCY/ellipsis/renderer"
)

// cellPt is the nominal width of one cell: half the em of a 12pt monospace font.
const cellPt = 6.0

// Options configures the terminal renderer.
type Options struct {
	// NoColor renders plain text even when views carry a colour.
	NoColor bool
}

// Renderer measures in cells and renders pages as text.
type Renderer struct {
	opts Options
}

var _ renderer.Backend = (*Renderer)(nil)

func NewRenderer(opts Options) *Renderer { return &Renderer{opts: opts} }

// NewPaint ignores font and size: every view is measured in cells.
func (r *Renderer) NewPaint(layout.TextStyle) (layout.TextPaint, error) { return cellPaint{}, nil }

// ResolveLength treats unit-less values as cells and converts physical units
// through cellPt.
func (r *Renderer) ResolveLength(l layout.Length) float64 {
	if l.Unit == layout.UnitNone {
		return math.Round(l.Value)
	}
	return math.Round(l.ToPT() / cellPt)
}

// Render draws every page onto a Screen and joins the pages with a rule.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("render: nil result")
	}
	pages := make([]string, 0, len(result.Pages))
	width := 0
	for i, page := range result.Pages {
		screen, err := r.RenderPage(page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		width = max(width, screen.Width())
		pages = append(pages, screen.String(!r.opts.NoColor))
	}
	rule := strings.Repeat("─", max(width, 1))
	if !r.opts.NoColor {
		rule = lipgloss.NewStyle().Faint(true).Render(rule)
	}
	out := strings.Join(pages, "\n"+rule+"\n")
	if out != "" {
		out += "\n"
	}
	return []byte(out), nil
}

// RenderPage draws one page and returns its screen.
func (r *Renderer) RenderPage(page layout.Page) (*Screen, error) {
	screen := NewScreen(int(page.Width))
	rows := page.Height
	for _, b := range page.Blocks {
		rows = math.Max(rows, b.Y+b.Height+page.Margin.Bottom)
	}
	screen.Grow(int(math.Ceil(rows)))

	for _, b := range page.Blocks {
		if b.View == nil {
			continue
		}
		sink := &screenSink{screen: screen, x: b.X, y: b.Y, fg: foreground(b.View.Options().Style.Color)}
		if err := b.View.Draw(sink, b.Width, b.Height); err != nil {
			return nil, fmt.Errorf("view %s: %w", b.Name, err)
		}
	}
	return screen, nil
}

// screenSink translates block-local baselines into screen rows.
type screenSink struct {
	screen *Screen
	x, y   float64
	fg     string
}

func (s *screenSink) DrawText(text string, x, y float64) {
	// ascent is one cell, so the baseline sits one row below the line top
	row := int(math.Round(s.y+y)) - 1
	col := int(math.Round(s.x + x))
	s.screen.Put(col, row, text, s.fg)
}

// foreground maps a view colour to a lipgloss hex colour; black means default.
func foreground(c layout.Color) string {
	if c == (layout.Color{}) {
		return ""
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
