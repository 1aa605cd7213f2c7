package graph

import (
	"fmt"
	"strings"
)

// Node is one host-tree node as drawn in the graph.
type Node struct {
	Ref    string
	Parent string
	Name   string
	Type   string
	Hidden bool
}

// Overlay marks the nodes a traversal reached.
type Overlay struct {
	Visited []string
	Matched []string
}

// GenerateMermaid produces a Mermaid flowchart of a host tree, parents first.
// Shapes follow the node type:
// - document: ((Circle))
// - page: [[Subroutine]]
// - anything else: [Rectangle]
// Hidden nodes are linked with dotted edges. The overlay, if any, styles
// visited and matched nodes.
func GenerateMermaid(nodes []Node, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, n := range nodes {
		safeID := sanitizeMermaidID(n.Ref)

		opener, closer := "[", "]"
		switch n.Type {
		case "document":
			opener, closer = "((", "))"
		case "page":
			opener, closer = "[[", "]]"
		}

		label := n.Ref
		if n.Name != "" && n.Name != n.Ref {
			label = fmt.Sprintf("%s <br/> %s", n.Ref, strings.ReplaceAll(n.Name, "\"", "'"))
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label, closer)

		if n.Parent == "" {
			continue
		}
		arrow := "-->"
		if n.Hidden {
			arrow = "-.->"
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(n.Parent), arrow, safeID)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef matched fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		writeClass(&sb, overlay.Visited, "visited")
		writeClass(&sb, overlay.Matched, "matched")
	}

	return sb.String()
}

func writeClass(sb *strings.Builder, refs []string, class string) {
	seen := make(map[string]bool)
	for _, ref := range refs {
		safeID := sanitizeMermaidID(ref)
		if safeID == "" || seen[safeID] {
			continue
		}
		seen[safeID] = true
		fmt.Fprintf(sb, "    class %s %s;\n", safeID, class)
	}
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
