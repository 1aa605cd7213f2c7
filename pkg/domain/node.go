package domain

// NodeRef is an opaque reference into the host document tree.
// The runtime never owns node data; it only passes references back to the
// host and re-validates them before each use.
type NodeRef string

// Roots is the starting point of a traversal.
//
// A single container is not itself passed to the predicate, only its
// descendants are. A list of nodes has every element passed to the predicate
// in addition to their descendants.
type Roots struct {
	nodes  []NodeRef
	single bool
}

// Container returns Roots for a single container node.
func Container(n NodeRef) Roots {
	return Roots{nodes: []NodeRef{n}, single: true}
}

// Nodes returns Roots for an ordered list of nodes.
func Nodes(ns ...NodeRef) Roots {
	cp := make([]NodeRef, len(ns))
	copy(cp, ns)
	return Roots{nodes: cp}
}

// IsContainer reports whether the roots designate a single container.
func (r Roots) IsContainer() bool {
	return r.single
}

// List returns the root nodes in order.
func (r Roots) List() []NodeRef {
	return r.nodes
}

// FindOptions configures a find traversal.
type FindOptions struct {
	// IncludeHidden makes find descend into nodes the host reports as hidden.
	IncludeHidden bool `json:"include_hidden" yaml:"include_hidden"`
}

// NodePredicate is called for each node of a traversal.
//
// For find, true selects the node. For visit, false prunes the node's
// subtree. A returned error stops the traversal and rejects it.
type NodePredicate func(n NodeRef) (bool, error)

// Match adapts a plain boolean function to a NodePredicate.
func Match(fn func(n NodeRef) bool) NodePredicate {
	return func(n NodeRef) (bool, error) {
		return fn(n), nil
	}
}
