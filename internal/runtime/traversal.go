package runtime

import (
	"sync/atomic"
	"time"

	"github.com/aretw0/scripter/pkg/domain"
	"github.com/aretw0/scripter/pkg/ports"
)

// Traversal is an asynchronous depth-first, pre-order walk of the host tree.
//
// A failing or panicking predicate rejects the traversal with a
// *domain.PredicateError that wraps the script's error together with the
// node it failed on; errors.Is and errors.As see through the wrapper.
//
// The pending part of the walk lives on an explicit stack of node references,
// so a traversal can yield to the scheduler between any two nodes without
// changing the visiting order. References are re-validated against the host
// before use; nodes removed since they were pushed are skipped with their
// subtree.
type Traversal struct {
	*Promise

	rt      *Runtime
	id      uint64
	mode    domain.TraversalMode
	roots   domain.Roots
	pred    domain.NodePredicate
	opts    domain.FindOptions
	state   atomic.Int32
	yield   ports.Cancelable
	sub     SubscriptionID
	created time.Time

	// While the script callback runs, Cancel only records the request so a
	// failing callback still rejects the traversal.
	calling   atomic.Bool
	cancelReq atomic.Bool

	seeded  bool
	stack   []domain.NodeRef
	found   []domain.NodeRef
	visited int
	skipped int
}

// Find collects, in traversal order, every node for which pred returns true.
// Hidden nodes and their subtrees are skipped unless opts.IncludeHidden.
func (rt *Runtime) Find(roots domain.Roots, pred domain.NodePredicate, opts domain.FindOptions) *Traversal {
	return rt.traverse(domain.ModeFind, roots, pred, opts)
}

// Visit calls visitor for every node. Returning false prunes the node's
// subtree. Hidden nodes are visited.
func (rt *Runtime) Visit(roots domain.Roots, visitor domain.NodePredicate) *Traversal {
	return rt.traverse(domain.ModeVisit, roots, visitor, domain.FindOptions{IncludeHidden: true})
}

func (rt *Runtime) traverse(mode domain.TraversalMode, roots domain.Roots, pred domain.NodePredicate, opts domain.FindOptions) *Traversal {
	tr := &Traversal{
		Promise: newPromise(),
		rt:      rt,
		id:      rt.nextID(),
		mode:    mode,
		roots:   roots,
		pred:    pred,
		opts:    opts,
		created: time.Now(),
	}
	tr.state.Store(int32(domain.StateRunning))
	rt.track(tr.id, tr)
	rt.count(func(s *domain.RunStats) { s.Traversals++ })

	if rt.tree == nil {
		tr.finish(domain.ErrNoTree, false)
		return tr
	}

	tr.yield = rt.scheduler.ScheduleAfter(0, tr.step)
	tr.sub = rt.controller.Subscribe(tr.Cancel)
	return tr
}

// ID returns the handle ID, unique within the run.
func (tr *Traversal) ID() uint64 {
	return tr.id
}

// Mode reports whether this is a find or a visit.
func (tr *Traversal) Mode() domain.TraversalMode {
	return tr.mode
}

// State returns the lifecycle state of the traversal.
func (tr *Traversal) State() domain.HandleState {
	return domain.HandleState(tr.state.Load())
}

// Nodes returns the nodes found so far. After settlement of a find it is the
// resolved value.
func (tr *Traversal) Nodes() []domain.NodeRef {
	out := make([]domain.NodeRef, len(tr.found))
	copy(out, tr.found)
	return out
}

// Cancel stops the traversal; a find resolves with the nodes found so far.
// Called from inside the predicate, it takes effect once the predicate
// returned, and an error from that predicate still rejects the traversal.
// It is a no-op once the traversal settled.
func (tr *Traversal) Cancel() {
	if tr.calling.Load() {
		tr.cancelReq.Store(true)
		return
	}
	tr.finish(nil, true)
}

func (tr *Traversal) seed() {
	tr.seeded = true
	list := tr.roots.List()
	if tr.roots.IsContainer() {
		if len(list) == 0 || !tr.live(list[0]) {
			return
		}
		list = tr.children(list[0])
	}
	tr.push(list)
}

// push adds nodes so that the first one is popped first.
func (tr *Traversal) push(nodes []domain.NodeRef) {
	for i := len(nodes) - 1; i >= 0; i-- {
		tr.stack = append(tr.stack, nodes[i])
	}
}

func (tr *Traversal) step() {
	if tr.State() != domain.StateRunning {
		return
	}
	if !tr.seeded {
		tr.seed()
	}

	for budget := tr.rt.yieldEvery; budget > 0; budget-- {
		if tr.cancelReq.Load() || tr.rt.controller.IsTripped() {
			tr.finish(nil, true)
			return
		}
		if tr.State() != domain.StateRunning {
			return
		}
		if len(tr.stack) == 0 {
			break
		}

		n := tr.stack[len(tr.stack)-1]
		tr.stack = tr.stack[:len(tr.stack)-1]

		if !tr.live(n) {
			tr.skipped++
			tr.rt.logger.Debug("stale node skipped", "run_id", tr.rt.runID, "traversal", tr.id, "node", n)
			continue
		}
		if !tr.opts.IncludeHidden && tr.hidden(n) {
			continue
		}

		tr.calling.Store(true)
		ok, err := tr.call(n)
		tr.calling.Store(false)
		if err != nil {
			tr.finish(&domain.PredicateError{Node: n, Err: err}, false)
			return
		}
		tr.visited++
		// Canceled while the predicate ran: its answer is dropped.
		if tr.cancelReq.Load() {
			tr.finish(nil, true)
			return
		}

		if tr.mode == domain.ModeFind {
			if ok {
				tr.found = append(tr.found, n)
			}
		} else if !ok {
			continue
		}
		tr.push(tr.children(n))
	}

	if len(tr.stack) == 0 {
		tr.finish(nil, tr.rt.controller.IsTripped())
		return
	}
	if tr.State() == domain.StateRunning {
		tr.yield = tr.rt.scheduler.ScheduleAfter(0, tr.step)
	}
}

func (tr *Traversal) call(n domain.NodeRef) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, domain.Recovered(r)
		}
	}()
	return tr.pred(n)
}

// Host queries never fail a traversal. A failing or panicking query makes
// the node count as absent.

func (tr *Traversal) live(n domain.NodeRef) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return tr.rt.tree.IsLive(n)
}

func (tr *Traversal) hidden(n domain.NodeRef) (hidden bool) {
	defer func() {
		if r := recover(); r != nil {
			hidden = true
		}
	}()
	h, err := tr.rt.tree.IsHidden(n)
	if err != nil {
		tr.rt.logger.Debug("visibility query failed", "node", n, "err", err)
		return true
	}
	return h
}

func (tr *Traversal) children(n domain.NodeRef) (out []domain.NodeRef) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
		}
	}()
	out, err := tr.rt.tree.Children(n)
	if err != nil {
		tr.rt.logger.Debug("child enumeration failed", "node", n, "err", err)
		return nil
	}
	return out
}

func (tr *Traversal) finish(err error, canceled bool) {
	if !tr.state.CompareAndSwap(int32(domain.StateRunning), int32(domain.StateSettled)) {
		return
	}
	if tr.yield != nil {
		tr.yield.Cancel()
	}
	tr.rt.controller.Unsubscribe(tr.sub)

	switch {
	case err != nil:
		tr.reject(err, canceled)
	case tr.mode == domain.ModeFind:
		tr.resolve(tr.Nodes(), canceled)
	default:
		tr.resolve(nil, canceled)
	}

	tr.rt.untrack(tr.id)
	tr.rt.count(func(s *domain.RunStats) {
		s.Visited += tr.visited
		s.StaleSkips += tr.skipped
		if canceled {
			s.Canceled++
		}
	})
	tr.rt.logger.Debug("traversal settled",
		"run_id", tr.rt.runID,
		"traversal", tr.id,
		"mode", tr.mode,
		"visited", tr.visited,
		"matched", len(tr.found),
		"canceled", canceled,
	)
	if hook := tr.rt.hooks.OnTraversalEnd; hook != nil {
		hook(tr.rt.ctx, &domain.TraversalEvent{
			EventBase: tr.rt.event(domain.EventTraversalEnd),
			HandleID:  tr.id,
			Mode:      tr.mode,
			Outcome:   tr.Outcome(),
			Visited:   tr.visited,
			Matched:   len(tr.found),
			Skipped:   tr.skipped,
			Elapsed:   time.Since(tr.created),
			Err:       err,
		})
	}
}
