package layout

import (
	"fmt"
	"math"
)

// TextPaint 由排版后端提供的文本度量能力。同一次布局周期内必须是稳定的：
// 相同输入得到相同输出。
type TextPaint interface {
	// MeasureText 返回字符串的绘制宽度。
	MeasureText(s string) float64
	// Ascent 返回上升部高度（正值）。
	Ascent() float64
	// Descent 返回下降部高度（正值）。
	Descent() float64
	// BreakText 返回 text[start:end] 中从 start 开始、宽度不超过 maxWidth 的字符数。
	BreakText(text []rune, start, end int, maxWidth float64) int
}

// DrawSink 接收绘制指令，y 为基线位置。
type DrawSink interface {
	DrawText(s string, x, y float64)
}

// Typesetter 根据文本样式创建度量对象，由渲染后端实现。
type Typesetter interface {
	NewPaint(style TextStyle) (TextPaint, error)
	// ResolveLength 把带单位的长度换算为后端的原生单位。
	ResolveLength(l Length) float64
}

// TextStyle 描述字体、字号与颜色，交给 Typesetter 解释。
type TextStyle struct {
	Font  string `json:"font"`
	Size  Length `json:"size"`
	Color Color  `json:"color"`
}

// Options 在构造视图时读取一次。
type Options struct {
	MaxLines    int       `json:"maxLines"`
	LineSpacing float64   `json:"lineSpacing"`
	Ellipsis    string    `json:"ellipsis"`
	Padding     Padding   `json:"padding"`
	Style       TextStyle `json:"style"`
}

const (
	DefaultMaxLines = 5
	DefaultEllipsis = "..."
)

// DefaultOptions 返回默认配置：最多 5 行、无行间距、黑色 12pt 文本、"..." 省略号。
func DefaultOptions() Options {
	return Options{
		MaxLines: DefaultMaxLines,
		Ellipsis: DefaultEllipsis,
		Style: TextStyle{
			Size: Pt(12),
		},
	}
}

// Validate rejects malformed configuration instead of clamping it.
func (o Options) Validate() error {
	if o.MaxLines < 0 {
		return fmt.Errorf("%w: max lines %d < 0", ErrInvalidOptions, o.MaxLines)
	}
	if !nonNegative(o.LineSpacing) {
		return fmt.Errorf("%w: line spacing %g", ErrInvalidOptions, o.LineSpacing)
	}
	p := o.Padding
	if !nonNegative(p.Top) || !nonNegative(p.Right) || !nonNegative(p.Bottom) || !nonNegative(p.Left) {
		return fmt.Errorf("%w: padding %+v", ErrInvalidOptions, p)
	}
	if !nonNegative(o.Style.Size.Value) {
		return fmt.Errorf("%w: text size %s", ErrInvalidOptions, o.Style.Size)
	}
	return nil
}

// nonNegative reports whether v is a finite value >= 0.
func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

// MeasureMode mirrors the three kinds of constraint a host layout pass offers.
type MeasureMode int

const (
	Unspecified MeasureMode = iota
	Exactly
	AtMost
)

func (m MeasureMode) String() string {
	switch m {
	case Exactly:
		return "exactly"
	case AtMost:
		return "at-most"
	default:
		return "unspecified"
	}
}

// MeasureSpec is one dimension of a layout constraint.
type MeasureSpec struct {
	Mode MeasureMode
	Size float64
}

func ExactlySpec(size float64) MeasureSpec { return MeasureSpec{Mode: Exactly, Size: size} }

func AtMostSpec(size float64) MeasureSpec { return MeasureSpec{Mode: AtMost, Size: size} }

func UnspecifiedSpec() MeasureSpec { return MeasureSpec{Mode: Unspecified} }

func (s MeasureSpec) validate() error {
	if s.Mode != Unspecified && (s.Size < 0 || math.IsNaN(s.Size)) {
		return fmt.Errorf("%w: %s %g", ErrNegativeSize, s.Mode, s.Size)
	}
	return nil
}
