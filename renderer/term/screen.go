package term

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/rivo/uniseg"
)

type cell struct {
	text string
	fg   string
	// cont marks the trailing half of a wide character.
	cont bool
}

// Screen is a grid of terminal cells that grows downwards as text is written.
type Screen struct {
	width int
	rows  [][]cell
}

// NewScreen returns an empty screen width cells wide.
func NewScreen(width int) *Screen {
	if width < 0 {
		width = 0
	}
	return &Screen{width: width}
}

// Width reports the screen width in cells.
func (s *Screen) Width() int { return s.width }

// Height reports the number of rows touched so far.
func (s *Screen) Height() int { return len(s.rows) }

// Grow makes sure the screen has at least n rows.
func (s *Screen) Grow(n int) {
	for len(s.rows) < n {
		s.rows = append(s.rows, make([]cell, s.width))
	}
}

// Put writes text starting at (col, row). fg is a lipgloss colour, empty for
// the terminal default. Characters that would cross the right edge are dropped.
func (s *Screen) Put(col, row int, text, fg string) {
	if row < 0 || col < 0 {
		return
	}
	s.Grow(row + 1)
	line := s.rows[row]
	last := -1
	state := -1
	for len(text) > 0 {
		var cluster string
		cluster, text, _, state = uniseg.FirstGraphemeClusterInString(text, state)
		w := clusterWidth(cluster)
		if w == 0 {
			// zero-width clusters join the previous cell
			if last >= 0 {
				line[last].text += cluster
			}
			continue
		}
		if col+w > s.width {
			return
		}
		line[col] = cell{text: cluster, fg: fg}
		for i := 1; i < w; i++ {
			line[col+i] = cell{cont: true, fg: fg}
		}
		last = col
		col += w
	}
}

// Lines returns the screen rows without colour, trailing blanks trimmed.
func (s *Screen) Lines() []string {
	out := make([]string, len(s.rows))
	for i := range s.rows {
		out[i] = s.renderRow(i, false)
	}
	return out
}

// String renders every row, applying foreground colours when colored is set.
func (s *Screen) String(colored bool) string {
	var b strings.Builder
	for i := range s.rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(s.renderRow(i, colored))
	}
	return b.String()
}

func (s *Screen) renderRow(i int, colored bool) string {
	line := s.rows[i]
	end := len(line)
	for end > 0 && line[end-1].text == "" && !line[end-1].cont {
		end--
	}

	var b, run strings.Builder
	runFg := ""
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if colored && runFg != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(runFg)).Render(run.String()))
		} else {
			b.WriteString(run.String())
		}
		run.Reset()
	}
	for _, c := range line[:end] {
		if c.cont {
			continue
		}
		fg := c.fg
		if c.text == "" {
			fg = ""
		}
		if fg != runFg {
			flush()
			runFg = fg
		}
		if c.text == "" {
			run.WriteByte(' ')
		} else {
			run.WriteString(c.text)
		}
	}
	flush()
	return b.String()
}

// Plain removes ANSI escape sequences from rendered output.
func Plain(s string) string { return ansi.Strip(s) }
