package ports

import "github.com/aretw0/scripter/pkg/domain"

// TreeQuery is the read-only view of the host document tree used by the
// traversal engine. The host owns the tree and may mutate it between any two
// calls; implementations must answer for the tree as it is at call time.
type TreeQuery interface {
	// Children returns the node's children in host order.
	// Leaf nodes return an empty slice.
	Children(n domain.NodeRef) ([]domain.NodeRef, error)

	// IsHidden reports whether the node is hidden in the host UI.
	IsHidden(n domain.NodeRef) (bool, error)

	// IsLive reports whether the node still exists and is attached to the tree.
	IsLive(n domain.NodeRef) bool
}

// Document gives access to the page a script runs against.
type Document interface {
	// CurrentPage returns the container node of the current page.
	CurrentPage() (domain.NodeRef, error)
}
