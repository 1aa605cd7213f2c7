package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the scripter banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`                 _       _            `, "#818cf8"},
		{`  ___  ___ _ __ (_)_ __ | |_ ___ _ __ `, "#a78bfa"},
		{` / __|/ __| '__|| | '_ \| __/ _ \ '__|`, "#c084fc"},
		{` \__ \ (__| |   | | |_) | ||  __/ |   `, "#e879f9"},
		{` |___/\___|_|   |_| .__/ \__\___|_|   `, "#f472b6"},
		{`                  |_|                 `, "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
