package tests

import (
	"testing"

	"github.com/aretw0/scripter/pkg/domain"
	"github.com/aretw0/scripter/pkg/ports"
)

// TreeFixture describes the tree a TreeQuery implementation was seeded with.
type TreeFixture struct {
	// Children maps every live container to its expected children, in order.
	Children map[domain.NodeRef][]domain.NodeRef
	// Hidden lists live nodes that must report hidden.
	Hidden []domain.NodeRef
	// Detached lists nodes that existed but were removed from the tree.
	Detached []domain.NodeRef
}

// TreeQueryContractTest is a reusable test suite that verifies if an adapter complies with ports.TreeQuery.
func TreeQueryContractTest(t *testing.T, tree ports.TreeQuery, fixture TreeFixture) {
	t.Helper()

	t.Run("Children_Order", func(t *testing.T) {
		for parent, want := range fixture.Children {
			got, err := tree.Children(parent)
			if err != nil {
				t.Fatalf("unexpected error enumerating %s: %v", parent, err)
			}
			if len(got) != len(want) {
				t.Fatalf("children of %s: got %v, want %v", parent, got, want)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("children of %s at %d: got %s, want %s", parent, i, got[i], want[i])
				}
			}
		}
	})

	t.Run("IsLive", func(t *testing.T) {
		for parent, children := range fixture.Children {
			if !tree.IsLive(parent) {
				t.Errorf("expected %s to be live", parent)
			}
			for _, c := range children {
				if !tree.IsLive(c) {
					t.Errorf("expected %s to be live", c)
				}
			}
		}
		for _, n := range fixture.Detached {
			if tree.IsLive(n) {
				t.Errorf("expected detached node %s not to be live", n)
			}
		}
		if tree.IsLive("never-existed") {
			t.Error("expected unknown node not to be live")
		}
	})

	t.Run("IsHidden", func(t *testing.T) {
		hidden := make(map[domain.NodeRef]bool)
		for _, n := range fixture.Hidden {
			hidden[n] = true
			got, err := tree.IsHidden(n)
			if err != nil {
				t.Fatalf("unexpected error for %s: %v", n, err)
			}
			if !got {
				t.Errorf("expected %s to be hidden", n)
			}
		}
		for parent := range fixture.Children {
			if hidden[parent] {
				continue
			}
			got, err := tree.IsHidden(parent)
			if err != nil {
				t.Fatalf("unexpected error for %s: %v", parent, err)
			}
			if got {
				t.Errorf("expected %s to be visible", parent)
			}
		}
	})

	t.Run("Detached_Queries", func(t *testing.T) {
		for _, n := range fixture.Detached {
			// Either answer is acceptable as long as the adapter does not panic.
			_, _ = tree.Children(n)
			_, _ = tree.IsHidden(n)
		}
	})
}
