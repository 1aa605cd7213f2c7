package dsl

import (
	"fmt"

	"github.com/aretw0/scripter/pkg/adapters/memory"
)

// Builder manages the document construction.
type Builder struct {
	id      string
	name    string
	current string
	pages   []*NodeBuilder
}

// New creates a document builder. An empty id defaults to "document".
func New(id string) *Builder {
	return &Builder{id: id}
}

// Named sets the document name.
func (b *Builder) Named(name string) *Builder {
	b.name = name
	return b
}

// Page appends a page to the document.
// If a page with the same id exists, it returns the existing builder.
func (b *Builder) Page(id string) *NodeBuilder {
	for _, p := range b.pages {
		if p.spec.ID == id {
			return p
		}
	}
	p := Node(id, memory.TypePage)
	b.pages = append(b.pages, p)
	return p
}

// Current selects the current page. The first page is used otherwise.
func (b *Builder) Current(id string) *Builder {
	b.current = id
	return b
}

// Spec returns the document in its loadable form.
func (b *Builder) Spec() memory.DocumentSpec {
	spec := memory.DocumentSpec{ID: b.id, Name: b.name, Current: b.current}
	for _, p := range b.pages {
		spec.Pages = append(spec.Pages, p.Spec())
	}
	return spec
}

// Build compiles the document into a memory tree.
func (b *Builder) Build() (*memory.Tree, error) {
	tree, err := memory.Build(b.Spec())
	if err != nil {
		return nil, fmt.Errorf("failed to build tree: %w", err)
	}
	return tree, nil
}

// MustBuild is like Build but panics on error. It is meant for fixtures.
func (b *Builder) MustBuild() *memory.Tree {
	tree, err := b.Build()
	if err != nil {
		panic(err)
	}
	return tree
}
