package layout

import "math"

// monoPaint 每个字符宽度相同，便于手算期望值。
type monoPaint struct {
	advance float64
	ascent  float64
	descent float64
	// measureCalls 统计 MeasureText 调用次数。
	measureCalls int
}

func newMonoPaint() *monoPaint { return &monoPaint{advance: 10, ascent: 8, descent: 2} }

func (p *monoPaint) MeasureText(s string) float64 {
	p.measureCalls++
	return float64(len([]rune(s))) * p.advance
}

func (p *monoPaint) Ascent() float64  { return p.ascent }
func (p *monoPaint) Descent() float64 { return p.descent }

func (p *monoPaint) BreakText(text []rune, start, end int, maxWidth float64) int {
	n := int(math.Floor(maxWidth / p.advance))
	if n > end-start {
		n = end - start
	}
	return n
}

// varPaint 字符宽度随码点变化，用于性质测试。
type varPaint struct{}

func runeWidth(r rune) float64 { return float64(4 + int(r)%4*2) }

func (varPaint) MeasureText(s string) float64 {
	w := 0.0
	for _, r := range s {
		w += runeWidth(r)
	}
	return w
}

func (varPaint) Ascent() float64  { return -7 }
func (varPaint) Descent() float64 { return 3 }

func (varPaint) BreakText(text []rune, start, end int, maxWidth float64) int {
	w := 0.0
	for i := start; i < end; i++ {
		w += runeWidth(text[i])
		if w > maxWidth {
			return i - start
		}
	}
	return end - start
}

// stubTypesetter 以字号（pt 数值）作为字符宽度，长度直接取数值。
type stubTypesetter struct {
	styles []TextStyle
}

func (s *stubTypesetter) NewPaint(style TextStyle) (TextPaint, error) {
	s.styles = append(s.styles, style)
	return &monoPaint{advance: style.Size.ToPT(), ascent: 8, descent: 2}, nil
}

func (s *stubTypesetter) ResolveLength(l Length) float64 { return l.Value }
