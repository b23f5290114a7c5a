package term

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/ByLCY/ellipsis/layout"
)

// cellPaint measures text in terminal cells. A line is exactly one cell tall.
type cellPaint struct{}

var _ layout.TextPaint = cellPaint{}

// MeasureText returns the display width of s, one grapheme cluster at a time.
func (cellPaint) MeasureText(s string) float64 { return float64(StringWidth(s)) }

func (cellPaint) Ascent() float64  { return 1 }
func (cellPaint) Descent() float64 { return 0 }

// BreakText counts whole grapheme clusters so it agrees with MeasureText.
func (cellPaint) BreakText(text []rune, start, end int, maxWidth float64) int {
	s := string(text[start:end])
	w, n := 0, 0
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		w += clusterWidth(cluster)
		if float64(w) > maxWidth {
			return n
		}
		n += utf8.RuneCountInString(cluster)
	}
	return n
}

// StringWidth is the number of cells s occupies.
func StringWidth(s string) int {
	if isPlainASCII(s) {
		return len(s)
	}
	w := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		w += clusterWidth(cluster)
	}
	return w
}

// clusterWidth is the width of a grapheme cluster: that of its first rune.
func clusterWidth(cluster string) int {
	if cluster == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(cluster)
	return runewidth.RuneWidth(r)
}

func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if b := s[i]; b < 0x20 || b > 0x7E {
			return false
		}
	}
	return true
}
