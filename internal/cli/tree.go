package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/scripter/pkg/adapters/memory"
	"github.com/aretw0/scripter/pkg/domain"
	"github.com/aretw0/scripter/pkg/dsl"
)

// treeFiles are tried, in order, when no tree file is given.
var treeFiles = []string{"scripter.yaml", "scripter.yml", "scripter.json", "tree.yaml", "tree.json"}

// ResolveTree loads the host tree from path. An empty path looks for a
// conventional tree file in dir and falls back to the demo document.
func ResolveTree(path, dir string) (*memory.Tree, error) {
	if path == "" {
		path = discoverTree(dir)
	}
	if path == "" {
		return DemoTree(), nil
	}
	return memory.LoadTree(path)
}

func discoverTree(dir string) string {
	for _, name := range treeFiles {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// DemoTree returns a small landing-page document.
func DemoTree() *memory.Tree {
	b := dsl.New("document").Named("Demo")
	b.Page("home").Named("Home").Add(
		dsl.Text("title", "Welcome"),
		dsl.Frame("hero").Named("Hero").Add(
			dsl.Node("hero-image", "image").Named("Banner"),
			dsl.Text("hero-caption", "Build faster"),
		),
		dsl.Frame("draft").Named("Draft notes").Hidden().Add(
			dsl.Text("draft-text", "todo"),
		),
	)
	b.Page("about").Named("About").Add(
		dsl.Text("about-text", "Who we are"),
	)
	return b.MustBuild()
}

// Filter builds a find predicate over node type and a case-insensitive name
// substring. Empty criteria match everything.
func Filter(tree *memory.Tree, typ, name string) domain.NodePredicate {
	name = strings.ToLower(name)
	return func(n domain.NodeRef) (bool, error) {
		info, err := tree.Info(n)
		if err != nil {
			return false, err
		}
		if typ != "" && info.Type != typ {
			return false, nil
		}
		return name == "" || strings.Contains(strings.ToLower(info.Name), name), nil
	}
}

// Depth returns the number of ancestors of n below the document root.
func Depth(tree *memory.Tree, n domain.NodeRef) int {
	depth := 0
	for {
		parent, err := tree.Parent(n)
		if err != nil || parent == "" || parent == tree.Root() {
			return depth
		}
		depth++
		n = parent
	}
}
