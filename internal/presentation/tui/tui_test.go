package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress_Render(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, "tween")
	p.Width = 10

	assert.Equal(t, "tween [░░░░░░░░░░]   0%     0.00", p.Render(0, 0))
	assert.Equal(t, "tween [█████░░░░░]  50%    50.00", p.Render(0.5, 50))
	assert.Equal(t, "tween [██████████] 100%   100.00", p.Render(1.7, 100))
}

func TestProgress_NonTTYWritesFinalLineOnly(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, "x")
	p.Width = 4
	p.Update(0.25, 1)
	p.Update(1, 4)
	assert.Empty(t, buf.String())

	p.Done()
	assert.Equal(t, "x [████] 100%     4.00\n", buf.String())
}

func TestPrintNodes(t *testing.T) {
	var buf bytes.Buffer
	PrintNodes(&buf, []Entry{
		{Ref: "A", Type: "page"},
		{Ref: "B", Name: "title", Type: "text", Depth: 1, Hidden: true},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "A page", lines[0])
	assert.Equal(t, `  B text "title" (hidden)`, lines[1])
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|___/")
}
