package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// Entry is one line of a node listing.
type Entry struct {
	Ref    string
	Name   string
	Type   string
	Depth  int
	Hidden bool
}

// PrintNodes writes one indented line per entry. Colors are only used when w
// is a color-capable terminal.
func PrintNodes(w io.Writer, entries []Entry) {
	out := termenv.NewOutput(w)
	for _, e := range entries {
		ref := out.String(e.Ref).Bold()
		typ := out.String(e.Type).Foreground(out.Color("#818cf8"))
		line := fmt.Sprintf("%s%s %s", strings.Repeat("  ", e.Depth), ref, typ)
		if e.Name != "" {
			line += " " + fmt.Sprintf("%q", e.Name)
		}
		if e.Hidden {
			line += " " + out.String("(hidden)").Faint().String()
		}
		fmt.Fprintln(w, line)
	}
}
