package layout

import (
	"fmt"
	"sort"
)

// Unbounded is the available width meaning "no width constraint": the whole
// text becomes a single segment.
const Unbounded = -1.0

const newline = '\n'

// FitFunc reports how many characters of text[start:end], counted from start,
// fit into maxWidth. Counting is per character, not per word.
type FitFunc func(text []rune, start, end int, maxWidth float64) int

// BreakLines partitions text into width-bounded segments. Newlines are hard
// breaks and are never part of a segment; a newline directly following
// another break yields no segment of its own.
func BreakLines(text []rune, availableWidth float64, fit FitFunc) ([]LineSegment, error) {
	if availableWidth == Unbounded {
		if len(text) == 0 {
			return nil, nil
		}
		return []LineSegment{{Start: 0, End: len(text)}}, nil
	}
	if availableWidth < 0 {
		return nil, fmt.Errorf("%w: %g", ErrNegativeWidth, availableWidth)
	}
	if fit == nil {
		return nil, fmt.Errorf("%w: fit function", ErrNilPaint)
	}

	lines := make([]LineSegment, 0, 8)
	index := 0
	for index < len(text) {
		boundary := nextNewline(text, index)

		if index < boundary {
			count := fit(text, index, boundary, availableWidth)
			if count > boundary-index {
				count = boundary - index
			}
			// 宽度过小时至少前进一个字符，避免死循环。
			if count <= 0 {
				count = 1
			}
			lines = append(lines, LineSegment{Start: index, End: index + count})
			index += count
		}

		if index == boundary && boundary < len(text) {
			index++
		}
	}
	return lines, nil
}

func nextNewline(text []rune, from int) int {
	for i := from; i < len(text); i++ {
		if text[i] == newline {
			return i
		}
	}
	return len(text)
}

// FitByMeasure builds a FitFunc from a width measurement. Prefix widths are
// assumed to be monotonic, so the longest fitting prefix is found by binary
// search rather than by summing per-character advances, which would ignore
// kerning.
func FitByMeasure(measure func(string) float64) FitFunc {
	return func(text []rune, start, end int, maxWidth float64) int {
		if start >= end {
			return 0
		}
		n := end - start
		// sort.Search finds the first prefix length that no longer fits.
		over := sort.Search(n, func(i int) bool {
			return measure(string(text[start:start+i+1])) > maxWidth
		})
		return over
	}
}
