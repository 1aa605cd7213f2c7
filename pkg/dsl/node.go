package dsl

import "github.com/aretw0/scripter/pkg/adapters/memory"

// NodeBuilder provides a fluent API for configuring a node and its subtree.
type NodeBuilder struct {
	spec     memory.NodeSpec
	children []*NodeBuilder
}

// Node creates a node of any type.
func Node(id, typ string) *NodeBuilder {
	return &NodeBuilder{spec: memory.NodeSpec{ID: id, Type: typ}}
}

// Text creates a text node.
func Text(id, name string) *NodeBuilder {
	return Node(id, "text").Named(name)
}

// Frame creates a frame node, the usual container below a page.
func Frame(id string) *NodeBuilder {
	return Node(id, "frame")
}

// Named sets the node name.
func (n *NodeBuilder) Named(name string) *NodeBuilder {
	n.spec.Name = name
	return n
}

// Hidden marks the node as hidden.
func (n *NodeBuilder) Hidden() *NodeBuilder {
	n.spec.Hidden = true
	return n
}

// Add appends children in order.
func (n *NodeBuilder) Add(children ...*NodeBuilder) *NodeBuilder {
	n.children = append(n.children, children...)
	return n
}

// Spec returns the node and its subtree in loadable form.
func (n *NodeBuilder) Spec() memory.NodeSpec {
	spec := n.spec
	spec.Children = nil
	for _, c := range n.children {
		spec.Children = append(spec.Children, c.Spec())
	}
	return spec
}
