package runtime_test

import (
	"errors"
	"testing"

	"github.com/aretw0/scripter/internal/runtime"
	"github.com/aretw0/scripter/pkg/adapters/clock"
	"github.com/aretw0/scripter/pkg/domain"
)

// fakeTree is a host tree whose structure tests can change at will.
type fakeTree struct {
	children map[domain.NodeRef][]domain.NodeRef
	hidden   map[domain.NodeRef]bool
	dead     map[domain.NodeRef]bool
	broken   map[domain.NodeRef]bool
}

// newFakeTree builds A → [B, C → [D]].
func newFakeTree() *fakeTree {
	return &fakeTree{
		children: map[domain.NodeRef][]domain.NodeRef{
			"A": {"B", "C"},
			"C": {"D"},
		},
		hidden: map[domain.NodeRef]bool{},
		dead:   map[domain.NodeRef]bool{},
		broken: map[domain.NodeRef]bool{},
	}
}

var errHost = errors.New("host query failed")

func (f *fakeTree) Children(n domain.NodeRef) ([]domain.NodeRef, error) {
	if f.broken[n] {
		return nil, errHost
	}
	return f.children[n], nil
}

func (f *fakeTree) IsHidden(n domain.NodeRef) (bool, error) {
	if f.broken[n] {
		return false, errHost
	}
	return f.hidden[n], nil
}

func (f *fakeTree) IsLive(n domain.NodeRef) bool {
	return !f.dead[n]
}

func newRuntime(t *testing.T, opts ...runtime.Option) (*runtime.Runtime, *clock.Manual) {
	t.Helper()
	m := clock.NewManual()
	return runtime.New(m, opts...), m
}

func recorder(calls *[]domain.NodeRef, match func(domain.NodeRef) bool) domain.NodePredicate {
	return func(n domain.NodeRef) (bool, error) {
		*calls = append(*calls, n)
		return match(n), nil
	}
}
