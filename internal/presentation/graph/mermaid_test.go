package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/scripter/internal/presentation/graph"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		nodes    []graph.Node
		overlay  *graph.Overlay
		contains []string
		excludes []string
	}{
		{
			name: "Document And Page Shapes",
			nodes: []graph.Node{
				{Ref: "doc", Type: "document"},
				{Ref: "p1", Parent: "doc", Type: "page"},
				{Ref: "t1", Parent: "p1", Type: "text"},
			},
			contains: []string{
				`doc(("doc"))`,
				`p1[["p1"]]`,
				`t1["t1"]`,
				"doc --> p1",
				"p1 --> t1",
			},
		},
		{
			name: "Hidden Edge",
			nodes: []graph.Node{
				{Ref: "A"},
				{Ref: "B", Parent: "A", Hidden: true},
			},
			contains: []string{"A -.-> B"},
		},
		{
			name: "ID Sanitization And Names",
			nodes: []graph.Node{
				{Ref: "frame/one.2", Name: `say "hi"`},
				{Ref: "hyphen-ated"},
			},
			contains: []string{
				`frame_one_2["frame/one.2 <br/> say 'hi'"]`,
				`hyphen_ated["hyphen-ated"]`,
			},
		},
		{
			name:  "Overlay",
			nodes: []graph.Node{{Ref: "A"}, {Ref: "B", Parent: "A"}},
			overlay: &graph.Overlay{
				Visited: []string{"A", "B", "A"},
				Matched: []string{"B"},
			},
			contains: []string{
				"class A visited;",
				"class B visited;",
				"class B matched;",
			},
		},
		{
			name:     "No Overlay",
			nodes:    []graph.Node{{Ref: "A"}},
			excludes: []string{"classDef"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.nodes, tt.overlay)
			if !strings.HasPrefix(got, "graph TD\n") {
				t.Errorf("GenerateMermaid() missing header:\n%v", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, unwanted)
				}
			}
			if strings.Count(got, "class A visited;") > 1 {
				t.Errorf("visited class duplicated:\n%v", got)
			}
		})
	}
}
