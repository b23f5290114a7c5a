package layout

import (
	"fmt"
	"math"
)

// View lays out a text block limited to a maximum number of lines and, when
// the text overflows, ends the last visible line with an ellipsis. It can be
// expanded to show the whole text and collapsed again.
//
// A View follows a two-phase protocol: Measure must run before Draw, and the
// state settled by Measure (segments, draw line count, expanded flag, metrics)
// is what Draw consumes. A View is not safe for concurrent use.
type View struct {
	paint TextPaint
	opts  Options

	text  []rune
	lines []LineSegment
	// lines are cached per (text, content width); SetText resets broken.
	brokenWidth float64
	broken      bool

	expanded      bool
	drawLineCount int
	metrics       Metrics
	size          Size
	measured      bool

	onMeasureDone func(*View)
}

// NewView validates opts and returns a collapsed, empty view.
func NewView(paint TextPaint, opts Options) (*View, error) {
	if paint == nil {
		return nil, ErrNilPaint
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &View{paint: paint, opts: opts}, nil
}

// SetText replaces the content. Cached segments are dropped and the view
// returns to the collapsed state.
func (v *View) SetText(text string) {
	v.text = []rune(text)
	v.lines = nil
	v.broken = false
	v.expanded = false
	v.drawLineCount = 0
	v.invalidate()
}

// Text returns the current content.
func (v *View) Text() string { return string(v.text) }

// Options returns the configuration the view was built with.
func (v *View) Options() Options { return v.opts }

// SetOnMeasureDone arms a one-shot notification fired at the end of the next
// Measure. The slot is cleared before the callback runs, so the callback may
// arm it again for the following pass.
func (v *View) SetOnMeasureDone(fn func(*View)) { v.onMeasureDone = fn }

// IsExpanded reports whether the whole text is shown.
func (v *View) IsExpanded() bool { return v.expanded }

// Expand shows the whole text on the next measure/draw cycle.
func (v *View) Expand() {
	v.expanded = true
	v.invalidate()
}

// Collapse limits the text to MaxLines on the next measure/draw cycle. When the
// text fits anyway the next Measure promotes the view back to expanded.
func (v *View) Collapse() {
	v.expanded = false
	v.invalidate()
}

// Toggle flips between expanded and collapsed.
func (v *View) Toggle() {
	if v.expanded {
		v.Collapse()
	} else {
		v.Expand()
	}
}

func (v *View) invalidate() { v.measured = false }

// Measured reports whether the view holds a measurement that Draw may use.
func (v *View) Measured() bool { return v.measured }

// Lines returns a copy of the broken segments.
func (v *View) Lines() []LineSegment {
	out := make([]LineSegment, len(v.lines))
	copy(out, v.lines)
	return out
}

// LineCount is the number of segments of the whole text.
func (v *View) LineCount() int { return len(v.lines) }

// DrawLineCount is the number of segments drawn in the current state.
func (v *View) DrawLineCount() int { return v.drawLineCount }

// Ellipsized reports whether the last drawn line is truncated.
func (v *View) Ellipsized() bool {
	return !v.expanded && len(v.lines) > v.drawLineCount
}

// Metrics returns the snapshot taken by the last Measure.
func (v *View) Metrics() Metrics { return v.metrics }

// Size returns the dimensions computed by the last Measure.
func (v *View) Size() Size { return v.size }

// Segment returns the text of a segment.
func (v *View) Segment(s LineSegment) string { return string(v.text[s.Start:s.End]) }

// Measure computes the view dimensions for the given constraints and settles
// the state Draw relies on.
func (v *View) Measure(width, height MeasureSpec) (Size, error) {
	if err := width.validate(); err != nil {
		return Size{}, err
	}
	if err := height.validate(); err != nil {
		return Size{}, err
	}
	w, err := v.measureWidth(width)
	if err != nil {
		return Size{}, err
	}
	v.size = Size{Width: w, Height: v.measureHeight(height)}
	v.measured = true

	if fn := v.onMeasureDone; fn != nil {
		v.onMeasureDone = nil
		fn(v)
	}
	return v.size, nil
}

func (v *View) measureWidth(spec MeasureSpec) (float64, error) {
	switch spec.Mode {
	case Exactly:
		if _, err := v.breakWidth(spec.Size); err != nil {
			return 0, err
		}
		return spec.Size, nil
	case AtMost:
		used, err := v.breakWidth(spec.Size)
		if err != nil {
			return 0, err
		}
		return math.Min(used, spec.Size), nil
	default:
		// one segment for the whole text, newlines included
		return v.breakWidth(Unbounded)
	}
}

// breakWidth breaks the text for the offered width (padding included) and
// returns the width the content uses.
func (v *View) breakWidth(available float64) (float64, error) {
	pad := v.opts.Padding.Left + v.opts.Padding.Right
	maxWidth := Unbounded
	if available != Unbounded {
		// 内容宽度不足以容纳内边距时按 0 处理，由断行保证前进。
		maxWidth = math.Max(available-pad, 0)
	}

	if !v.broken || v.brokenWidth != maxWidth {
		lines, err := BreakLines(v.text, maxWidth, v.paint.BreakText)
		if err != nil {
			return 0, err
		}
		v.lines = lines
		v.brokenWidth = maxWidth
		v.broken = true
	}

	var used float64
	switch len(v.lines) {
	case 0:
		used = 0
	case 1:
		used = v.paint.MeasureText(v.Segment(v.lines[0]))
	default:
		used = maxWidth
	}
	return used + pad, nil
}

func (v *View) measureHeight(spec MeasureSpec) float64 {
	v.metrics = Metrics{
		Ascent:      math.Abs(v.paint.Ascent()),
		Descent:     v.paint.Descent(),
		LineSpacing: v.opts.LineSpacing,
	}

	total := len(v.lines)
	switch {
	case v.expanded:
		v.drawLineCount = total
	case total > v.opts.MaxLines:
		v.drawLineCount = v.opts.MaxLines
	default:
		// 内容没有超出最大行数时无需折叠。
		v.drawLineCount = total
		v.expanded = true
	}

	if spec.Mode == Exactly {
		return spec.Size
	}
	result := v.contentHeight(v.drawLineCount) + v.opts.Padding.Top + v.opts.Padding.Bottom
	if spec.Mode == AtMost {
		result = math.Min(result, spec.Size)
	}
	return result
}

func (v *View) contentHeight(n int) float64 {
	lineHeight := v.metrics.LineHeight()
	if n <= 0 {
		return lineHeight
	}
	return float64(n)*lineHeight + float64(n-1)*v.metrics.LineSpacing
}

// Draw emits the visible lines to sink. canvasWidth and canvasHeight are the
// drawing area of the view, padding included. Lines whose baseline would fall
// below canvasHeight are not drawn.
func (v *View) Draw(sink DrawSink, canvasWidth, canvasHeight float64) error {
	if !v.measured {
		return ErrNotMeasured
	}
	if canvasWidth < 0 || canvasHeight < 0 {
		return fmt.Errorf("%w: canvas %gx%g", ErrNegativeSize, canvasWidth, canvasHeight)
	}

	pad := v.opts.Padding
	renderWidth := canvasWidth - pad.Left - pad.Right
	x := pad.Left
	y := pad.Top + v.metrics.Ascent
	step := v.metrics.LineHeight() + v.metrics.LineSpacing
	truncate := v.Ellipsized()

	buf := make([]rune, 0, 64)
	for i := 0; i < v.drawLineCount; i++ {
		seg := v.lines[i]
		buf = append(buf, v.text[seg.Start:seg.End]...)

		line := string(buf)
		if truncate && i == v.drawLineCount-1 {
			line = v.fitEllipsis(buf, renderWidth)
		}
		if line != "" {
			sink.DrawText(line, x, y)
		}

		y += step
		if y > canvasHeight {
			break
		}
		buf = buf[:0]
	}
	return nil
}

// fitEllipsis drops trailing characters until text plus ellipsis fits
// renderWidth. If even the bare ellipsis is too wide it is shortened the same
// way; an empty string means nothing fits.
func (v *View) fitEllipsis(buf []rune, renderWidth float64) string {
	ellipsis := []rune(v.opts.Ellipsis)
	ellipsisWidth := v.paint.MeasureText(v.opts.Ellipsis)

	n := len(buf)
	lineWidth := v.paint.MeasureText(string(buf[:n]))
	for n > 0 && lineWidth+ellipsisWidth > renderWidth {
		n--
		lineWidth = v.paint.MeasureText(string(buf[:n]))
	}
	if n > 0 || ellipsisWidth <= renderWidth {
		return string(buf[:n]) + string(ellipsis)
	}

	m := len(ellipsis)
	for m > 0 && v.paint.MeasureText(string(ellipsis[:m])) > renderWidth {
		m--
	}
	return string(ellipsis[:m])
}

// Snapshot captures the measured state for debugging output.
func (v *View) Snapshot() Snapshot {
	return Snapshot{
		Text:          string(v.text),
		Segments:      v.Lines(),
		MaxLines:      v.opts.MaxLines,
		DrawLineCount: v.drawLineCount,
		Expanded:      v.expanded,
		Ellipsized:    v.Ellipsized(),
		Metrics:       v.metrics,
		Size:          v.size,
	}
}

// DrawnLines returns the strings Draw would emit for an unbounded canvas
// height at the given width.
func (v *View) DrawnLines(canvasWidth float64) ([]string, error) {
	rec := &recordingSink{}
	if err := v.Draw(rec, canvasWidth, math.MaxFloat64); err != nil {
		return nil, err
	}
	return rec.lines, nil
}

type recordingSink struct{ lines []string }

func (r *recordingSink) DrawText(s string, _, _ float64) { r.lines = append(r.lines, s) }
