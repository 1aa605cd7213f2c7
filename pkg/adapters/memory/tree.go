package memory

import (
	"fmt"
	"sync"

	"github.com/aretw0/scripter/pkg/domain"
)

// Node types with a meaning to the tree.
const (
	TypeDocument = "document"
	TypePage     = "page"
)

// Node describes one node of a Tree.
type Node struct {
	Ref    domain.NodeRef
	Name   string
	Type   string
	Hidden bool
}

type entry struct {
	Node
	parent   domain.NodeRef
	children []domain.NodeRef
	removed  bool
}

// Tree is a mutable host tree held in memory. It implements ports.TreeQuery
// and ports.Document. Safe for concurrent use.
//
// Removed nodes keep their entry so that stale references stay recognizable:
// they report not live instead of being confused with unknown references.
type Tree struct {
	mu    sync.RWMutex
	root  domain.NodeRef
	page  domain.NodeRef
	nodes map[domain.NodeRef]*entry
}

// NewTree creates a tree holding a single document node.
func NewTree(root domain.NodeRef, name string) *Tree {
	return &Tree{
		root: root,
		nodes: map[domain.NodeRef]*entry{
			root: {Node: Node{Ref: root, Name: name, Type: TypeDocument}},
		},
	}
}

// Root returns the document node.
func (t *Tree) Root() domain.NodeRef {
	return t.root
}

// Add appends n as the last child of parent.
func (t *Tree) Add(parent domain.NodeRef, n Node) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.live(parent)
	if !ok {
		return fmt.Errorf("add %s: parent %s: %w", n.Ref, parent, domain.ErrNodeNotFound)
	}
	if n.Ref == "" {
		return fmt.Errorf("add under %s: node reference is required", parent)
	}
	if _, exists := t.nodes[n.Ref]; exists {
		return fmt.Errorf("add %s: reference already in use", n.Ref)
	}
	t.nodes[n.Ref] = &entry{Node: n, parent: parent}
	p.children = append(p.children, n.Ref)
	return nil
}

// Remove detaches ref and its subtree. References to removed nodes stop
// being live.
func (t *Tree) Remove(ref domain.NodeRef) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.live(ref)
	if !ok {
		return fmt.Errorf("remove %s: %w", ref, domain.ErrNodeNotFound)
	}
	if ref == t.root {
		return fmt.Errorf("remove %s: the document node cannot be removed", ref)
	}
	if p, ok := t.nodes[e.parent]; ok {
		for i, c := range p.children {
			if c == ref {
				p.children = append(p.children[:i:i], p.children[i+1:]...)
				break
			}
		}
	}

	stack := []domain.NodeRef{ref}
	for len(stack) > 0 {
		n := t.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]
		n.removed = true
		stack = append(stack, n.children...)
	}
	if t.page != "" && !t.isLive(t.page) {
		t.page = ""
	}
	return nil
}

// SetHidden changes the visibility of ref.
func (t *Tree) SetHidden(ref domain.NodeRef, hidden bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.live(ref)
	if !ok {
		return fmt.Errorf("set hidden %s: %w", ref, domain.ErrNodeNotFound)
	}
	e.Hidden = hidden
	return nil
}

// Info returns the description of a live node.
func (t *Tree) Info(ref domain.NodeRef) (Node, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.live(ref)
	if !ok {
		return Node{}, fmt.Errorf("info %s: %w", ref, domain.ErrNodeNotFound)
	}
	return e.Node, nil
}

// Parent returns the parent of a live node. The document node has none.
func (t *Tree) Parent(ref domain.NodeRef) (domain.NodeRef, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.live(ref)
	if !ok {
		return "", fmt.Errorf("parent %s: %w", ref, domain.ErrNodeNotFound)
	}
	return e.parent, nil
}

// Len returns the number of live nodes, the document node included.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, e := range t.nodes {
		if !e.removed {
			n++
		}
	}
	return n
}

// Children implements ports.TreeQuery.
func (t *Tree) Children(ref domain.NodeRef) ([]domain.NodeRef, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.live(ref)
	if !ok {
		return nil, fmt.Errorf("children of %s: %w", ref, domain.ErrNodeNotFound)
	}
	out := make([]domain.NodeRef, len(e.children))
	copy(out, e.children)
	return out, nil
}

// IsHidden implements ports.TreeQuery.
func (t *Tree) IsHidden(ref domain.NodeRef) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.live(ref)
	if !ok {
		return false, fmt.Errorf("visibility of %s: %w", ref, domain.ErrNodeNotFound)
	}
	return e.Hidden, nil
}

// IsLive implements ports.TreeQuery.
func (t *Tree) IsLive(ref domain.NodeRef) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.isLive(ref)
}

// SetCurrentPage selects the page returned by CurrentPage.
func (t *Tree) SetCurrentPage(ref domain.NodeRef) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.live(ref)
	if !ok {
		return fmt.Errorf("select page %s: %w", ref, domain.ErrNodeNotFound)
	}
	if e.parent != t.root || e.Type != TypePage {
		return fmt.Errorf("select page %s: not a page of the document", ref)
	}
	t.page = ref
	return nil
}

// CurrentPage implements ports.Document. Without an explicit selection it is
// the first page of the document.
func (t *Tree) CurrentPage() (domain.NodeRef, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.page != "" {
		return t.page, nil
	}
	for _, c := range t.nodes[t.root].children {
		if t.nodes[c].Type == TypePage {
			return c, nil
		}
	}
	return "", fmt.Errorf("current page: document has no pages: %w", domain.ErrNodeNotFound)
}

func (t *Tree) live(ref domain.NodeRef) (*entry, bool) {
	e, ok := t.nodes[ref]
	if !ok || e.removed {
		return nil, false
	}
	return e, true
}

func (t *Tree) isLive(ref domain.NodeRef) bool {
	_, ok := t.live(ref)
	return ok
}
