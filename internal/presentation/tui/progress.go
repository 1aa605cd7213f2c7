package tui

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Progress draws a single-line progress bar. On a terminal the line is
// redrawn in place; otherwise only the final state is written.
type Progress struct {
	Width int
	Label string

	out     io.Writer
	profile termenv.Profile
	tty     bool
	last    string
}

// NewProgress creates a bar writing to out. TTY detection only applies when
// out is an *os.File.
func NewProgress(out io.Writer, label string) *Progress {
	p := &Progress{Width: 30, Label: label, out: out, profile: termenv.Ascii}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.tty = true
		p.profile = termenv.NewOutput(f).ColorProfile()
	}
	return p
}

// Render returns the bar for fraction in [0, 1] and the current value.
func (p *Progress) Render(fraction, value float64) string {
	if math.IsNaN(fraction) {
		fraction = 0
	}
	fraction = math.Max(0, math.Min(1, fraction))
	filled := int(math.Round(fraction * float64(p.Width)))

	bar := p.profile.String(strings.Repeat("█", filled)).Foreground(p.profile.Color("#a78bfa")).String() +
		strings.Repeat("░", p.Width-filled)
	return fmt.Sprintf("%s [%s] %3.0f%% %8.2f", p.Label, bar, fraction*100, value)
}

// Update redraws the bar in place when attached to a terminal.
func (p *Progress) Update(fraction, value float64) {
	p.last = p.Render(fraction, value)
	if p.tty {
		fmt.Fprint(p.out, "\r"+p.last)
	}
}

// Done writes the last state followed by a newline.
func (p *Progress) Done() {
	if p.tty {
		fmt.Fprintln(p.out)
		return
	}
	if p.last != "" {
		fmt.Fprintln(p.out, p.last)
	}
}
