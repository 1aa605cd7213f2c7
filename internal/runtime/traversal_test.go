package runtime_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/scripter/internal/runtime"
	"github.com/aretw0/scripter/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nodes(t *testing.T, h interface{ Result() (any, error) }) []domain.NodeRef {
	t.Helper()
	v, err := h.Result()
	require.NoError(t, err)
	out, ok := v.([]domain.NodeRef)
	require.True(t, ok, "find should resolve with []domain.NodeRef, got %T", v)
	return out
}

func TestFind_PreOrderFromContainer(t *testing.T) {
	tree := newFakeTree()
	rt, m := newRuntime(t, runtime.WithTree(tree))
	var calls []domain.NodeRef

	tr := rt.Find(domain.Container("A"), recorder(&calls, func(n domain.NodeRef) bool {
		return n == "B" || n == "D"
	}), domain.FindOptions{})
	assert.Empty(t, calls, "find must not call the predicate before its first yield")

	m.Flush()
	assert.Equal(t, []domain.NodeRef{"B", "D"}, nodes(t, tr))
	assert.Equal(t, []domain.NodeRef{"B", "C", "D"}, calls)
	assert.NotContains(t, calls, domain.NodeRef("A"), "a single container root is not matched")
}

func TestFind_ListRootsAreMatched(t *testing.T) {
	tree := newFakeTree()
	rt, m := newRuntime(t, runtime.WithTree(tree))
	var calls []domain.NodeRef

	tr := rt.Find(domain.Nodes("C", "B"), recorder(&calls, func(domain.NodeRef) bool { return true }), domain.FindOptions{})
	m.Flush()

	assert.Equal(t, []domain.NodeRef{"C", "D", "B"}, calls)
	assert.Equal(t, []domain.NodeRef{"C", "D", "B"}, nodes(t, tr))
}

func TestFind_MatchDoesNotPrune(t *testing.T) {
	tree := newFakeTree()
	rt, m := newRuntime(t, runtime.WithTree(tree))

	tr := rt.Find(domain.Nodes("A"), domain.Match(func(domain.NodeRef) bool { return true }), domain.FindOptions{})
	m.Flush()

	assert.Equal(t, []domain.NodeRef{"A", "B", "C", "D"}, nodes(t, tr))
}

func TestVisit_FalsePrunesSubtree(t *testing.T) {
	tree := newFakeTree()
	rt, m := newRuntime(t, runtime.WithTree(tree))
	var calls []domain.NodeRef

	tr := rt.Visit(domain.Nodes("A"), recorder(&calls, func(n domain.NodeRef) bool { return n != "C" }))
	m.Flush()

	assert.Equal(t, []domain.NodeRef{"A", "B", "C"}, calls)
	assert.NotContains(t, calls, domain.NodeRef("D"))
	v, err := tr.Result()
	assert.NoError(t, err)
	assert.Nil(t, v)
}

func TestFind_HiddenNodes(t *testing.T) {
	tree := newFakeTree()
	tree.hidden["C"] = true
	all := func(domain.NodeRef) bool { return true }

	t.Run("skipped by default", func(t *testing.T) {
		rt, m := newRuntime(t, runtime.WithTree(tree))
		var calls []domain.NodeRef
		tr := rt.Find(domain.Container("A"), recorder(&calls, all), domain.FindOptions{})
		m.Flush()
		assert.Equal(t, []domain.NodeRef{"B"}, calls)
		assert.Equal(t, []domain.NodeRef{"B"}, nodes(t, tr))
	})

	t.Run("included on request", func(t *testing.T) {
		rt, m := newRuntime(t, runtime.WithTree(tree))
		var calls []domain.NodeRef
		rt.Find(domain.Container("A"), recorder(&calls, all), domain.FindOptions{IncludeHidden: true})
		m.Flush()
		assert.Equal(t, []domain.NodeRef{"B", "C", "D"}, calls)
	})

	t.Run("visit ignores visibility", func(t *testing.T) {
		rt, m := newRuntime(t, runtime.WithTree(tree))
		var calls []domain.NodeRef
		rt.Visit(domain.Container("A"), recorder(&calls, all))
		m.Flush()
		assert.Equal(t, []domain.NodeRef{"B", "C", "D"}, calls)
	})
}

func TestTraversal_SkipsStaleNodes(t *testing.T) {
	tree := newFakeTree()
	rt, m := newRuntime(t, runtime.WithTree(tree))
	var calls []domain.NodeRef

	tr := rt.Find(domain.Container("A"), func(n domain.NodeRef) (bool, error) {
		calls = append(calls, n)
		if n == "B" {
			// The host removes C (and its subtree) while the script runs.
			tree.dead["C"] = true
			tree.dead["D"] = true
		}
		return true, nil
	}, domain.FindOptions{})
	m.Flush()

	assert.Equal(t, []domain.NodeRef{"B"}, calls)
	assert.Equal(t, []domain.NodeRef{"B"}, nodes(t, tr))
	assert.Equal(t, 1, rt.Stats().StaleSkips)
}

func TestTraversal_DeadContainerRoot(t *testing.T) {
	tree := newFakeTree()
	tree.dead["A"] = true
	rt, m := newRuntime(t, runtime.WithTree(tree))

	tr := rt.Find(domain.Container("A"), domain.Match(func(domain.NodeRef) bool { return true }), domain.FindOptions{})
	m.Flush()

	assert.Empty(t, nodes(t, tr))
}

func TestTraversal_HostErrorsAreRecoverable(t *testing.T) {
	tree := newFakeTree()
	tree.broken["C"] = true
	all := func(domain.NodeRef) bool { return true }

	rt, m := newRuntime(t, runtime.WithTree(tree))
	var findCalls []domain.NodeRef
	f := rt.Find(domain.Container("A"), recorder(&findCalls, all), domain.FindOptions{})
	var visitCalls []domain.NodeRef
	v := rt.Visit(domain.Container("A"), recorder(&visitCalls, all))
	m.Flush()

	assert.Equal(t, []domain.NodeRef{"B"}, findCalls, "a failing visibility query hides the node")
	assert.Equal(t, []domain.NodeRef{"B", "C"}, visitCalls, "a failing child query makes the node a leaf")
	_, err := f.Result()
	assert.NoError(t, err)
	_, err = v.Result()
	assert.NoError(t, err)
}

func TestTraversal_PredicateErrorRejects(t *testing.T) {
	tree := newFakeTree()
	rt, m := newRuntime(t, runtime.WithTree(tree))
	boom := errors.New("boom")
	var calls []domain.NodeRef

	tr := rt.Find(domain.Container("A"), func(n domain.NodeRef) (bool, error) {
		calls = append(calls, n)
		if n == "C" {
			return false, boom
		}
		return true, nil
	}, domain.FindOptions{})
	m.Flush()

	_, err := tr.Result()
	var pe *domain.PredicateError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.NodeRef("C"), pe.Node)
	assert.ErrorIs(t, err, boom, "the script error is forwarded unmodified")
	assert.Equal(t, []domain.NodeRef{"B", "C"}, calls)
}

func TestTraversal_PredicatePanicRejects(t *testing.T) {
	tree := newFakeTree()
	rt, m := newRuntime(t, runtime.WithTree(tree))

	tr := rt.Visit(domain.Container("A"), func(domain.NodeRef) (bool, error) { panic("nope") })
	m.Flush()

	_, err := tr.Result()
	var pe *domain.PredicateError
	require.ErrorAs(t, err, &pe)
	var pan *domain.PanicError
	require.ErrorAs(t, err, &pan)
	assert.Equal(t, "nope", pan.Value)
}

// wideTree builds R → [N1..Nn].
func wideTree(n int) *fakeTree {
	tree := newFakeTree()
	for i := 1; i <= n; i++ {
		tree.children["R"] = append(tree.children["R"], domain.NodeRef(fmt.Sprintf("N%d", i)))
	}
	return tree
}

func TestTraversal_YieldsBetweenBatches(t *testing.T) {
	tree := wideTree(6)
	rt, m := newRuntime(t, runtime.WithTree(tree), runtime.WithYieldEvery(2))
	var events []string

	tr := rt.Find(domain.Container("R"), func(n domain.NodeRef) (bool, error) {
		events = append(events, string(n))
		return true, nil
	}, domain.FindOptions{})
	m.ScheduleAfter(0, func() { events = append(events, "other") })
	m.Flush()

	assert.Equal(t, []string{"N1", "N2", "other", "N3", "N4", "N5", "N6"}, events)
	assert.Len(t, nodes(t, tr), 6)
}

func TestTraversal_YieldingKeepsOrder(t *testing.T) {
	build := func() *fakeTree {
		tree := newFakeTree()
		tree.children["B"] = []domain.NodeRef{"B1", "B2"}
		tree.children["D"] = []domain.NodeRef{"D1"}
		return tree
	}
	all := domain.Match(func(domain.NodeRef) bool { return true })

	rt1, m1 := newRuntime(t, runtime.WithTree(build()), runtime.WithYieldEvery(1))
	slow := rt1.Find(domain.Nodes("A"), all, domain.FindOptions{})
	m1.Flush()

	rt2, m2 := newRuntime(t, runtime.WithTree(build()))
	fast := rt2.Find(domain.Nodes("A"), all, domain.FindOptions{})
	m2.Flush()

	assert.Equal(t, []domain.NodeRef{"A", "B", "B1", "B2", "C", "D", "D1"}, nodes(t, fast))
	assert.Equal(t, nodes(t, fast), nodes(t, slow))
}

func TestTraversal_TripDuringPredicate(t *testing.T) {
	tree := newFakeTree()
	rt, m := newRuntime(t, runtime.WithTree(tree))
	var calls []domain.NodeRef

	tr := rt.Find(domain.Nodes("A"), func(n domain.NodeRef) (bool, error) {
		calls = append(calls, n)
		if n == "C" {
			rt.Controller().Trip()
		}
		return true, nil
	}, domain.FindOptions{})
	m.Flush()

	assert.Equal(t, []domain.NodeRef{"A", "B", "C"}, calls, "no predicate call after the trip is observed")
	assert.Equal(t, []domain.NodeRef{"A", "B"}, nodes(t, tr), "results collected before the trip are kept")
	assert.True(t, tr.Canceled())
}

func TestTraversal_PredicateFailsAfterTrip(t *testing.T) {
	errScript := errors.New("predicate failed")
	tests := []struct {
		name string
		pred func(rt *runtime.Runtime) domain.NodePredicate
	}{
		{
			name: "error",
			pred: func(rt *runtime.Runtime) domain.NodePredicate {
				return func(n domain.NodeRef) (bool, error) {
					if n == "B" {
						rt.Controller().Trip()
						return false, errScript
					}
					return true, nil
				}
			},
		},
		{
			name: "panic",
			pred: func(rt *runtime.Runtime) domain.NodePredicate {
				return func(n domain.NodeRef) (bool, error) {
					if n == "B" {
						rt.Controller().Trip()
						panic(errScript)
					}
					return true, nil
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run("find/"+tt.name, func(t *testing.T) {
			rt, m := newRuntime(t, runtime.WithTree(newFakeTree()))
			tr := rt.Find(domain.Nodes("A"), tt.pred(rt), domain.FindOptions{})
			m.Flush()

			_, err := tr.Result()
			var pe *domain.PredicateError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, domain.NodeRef("B"), pe.Node)
			assert.Equal(t, domain.OutcomeRejected, tr.Outcome())
			if tt.name == "error" {
				assert.ErrorIs(t, err, errScript)
			}
		})
		t.Run("visit/"+tt.name, func(t *testing.T) {
			rt, m := newRuntime(t, runtime.WithTree(newFakeTree()))
			tr := rt.Visit(domain.Nodes("A"), tt.pred(rt))
			m.Flush()

			_, err := tr.Result()
			var pe *domain.PredicateError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, domain.NodeRef("B"), pe.Node)
		})
	}
}

func TestTraversal_CancelFromPredicate(t *testing.T) {
	errScript := errors.New("predicate failed")

	t.Run("then fail", func(t *testing.T) {
		rt, m := newRuntime(t, runtime.WithTree(newFakeTree()))
		var tr *runtime.Traversal
		tr = rt.Find(domain.Nodes("A"), func(n domain.NodeRef) (bool, error) {
			tr.Cancel()
			return false, errScript
		}, domain.FindOptions{})
		m.Flush()

		_, err := tr.Result()
		assert.ErrorIs(t, err, errScript)
	})

	t.Run("then succeed", func(t *testing.T) {
		rt, m := newRuntime(t, runtime.WithTree(newFakeTree()))
		var calls []domain.NodeRef
		var tr *runtime.Traversal
		tr = rt.Find(domain.Nodes("A"), func(n domain.NodeRef) (bool, error) {
			calls = append(calls, n)
			if n == "B" {
				tr.Cancel()
			}
			return true, nil
		}, domain.FindOptions{})
		m.Flush()

		assert.Equal(t, []domain.NodeRef{"A", "B"}, calls)
		assert.Equal(t, []domain.NodeRef{"A"}, nodes(t, tr))
		assert.True(t, tr.Canceled())
	})
}

func TestTraversal_TripWhileParked(t *testing.T) {
	tree := wideTree(6)
	rt, m := newRuntime(t, runtime.WithTree(tree), runtime.WithYieldEvery(2))
	var calls []domain.NodeRef

	tr := rt.Find(domain.Container("R"), recorder(&calls, func(domain.NodeRef) bool { return true }), domain.FindOptions{})
	m.ScheduleAfter(0, func() {
		rt.Controller().Trip()
		assert.Equal(t, domain.StateSettled, tr.State(), "a parked traversal settles from its subscription")
	})
	m.Flush()

	assert.Equal(t, []domain.NodeRef{"N1", "N2"}, calls)
	assert.Equal(t, []domain.NodeRef{"N1", "N2"}, nodes(t, tr))
	assert.Equal(t, 0, m.PendingTimers())
}

func TestTraversal_CreatedAfterTrip(t *testing.T) {
	tree := newFakeTree()
	rt, m := newRuntime(t, runtime.WithTree(tree))
	rt.Controller().Trip()
	var calls []domain.NodeRef

	tr := rt.Find(domain.Container("A"), recorder(&calls, func(domain.NodeRef) bool { return true }), domain.FindOptions{})
	m.Flush()

	assert.Empty(t, calls)
	assert.Empty(t, nodes(t, tr))
	assert.True(t, tr.Canceled())
}

func TestTraversal_ExplicitCancel(t *testing.T) {
	tree := wideTree(4)
	rt, m := newRuntime(t, runtime.WithTree(tree), runtime.WithYieldEvery(1))
	var calls []domain.NodeRef

	tr := rt.Visit(domain.Container("R"), recorder(&calls, func(domain.NodeRef) bool { return true }))
	m.ScheduleAfter(0, tr.Cancel)
	m.Flush()
	tr.Cancel()

	assert.Equal(t, []domain.NodeRef{"N1"}, calls)
	assert.True(t, tr.Canceled())
	assert.False(t, rt.Canceled(), "canceling one traversal does not cancel the run")
}

func TestTraversal_NoTree(t *testing.T) {
	rt, _ := newRuntime(t)
	tr := rt.Find(domain.Container("A"), domain.Match(func(domain.NodeRef) bool { return true }), domain.FindOptions{})

	_, err := tr.Result()
	assert.ErrorIs(t, err, domain.ErrNoTree)
}

func TestTraversal_StatsAndPending(t *testing.T) {
	tree := newFakeTree()
	rt, m := newRuntime(t, runtime.WithTree(tree))

	rt.Visit(domain.Container("A"), domain.Match(func(domain.NodeRef) bool { return true }))
	assert.Len(t, rt.Pending(), 1)
	m.Flush()

	assert.Empty(t, rt.Pending())
	stats := rt.Stats()
	assert.Equal(t, 1, stats.Traversals)
	assert.Equal(t, 3, stats.Visited)
}
