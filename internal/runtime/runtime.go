package runtime

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/scripter/pkg/domain"
	"github.com/aretw0/scripter/pkg/ports"
)

// DefaultYieldEvery is the number of nodes a traversal handles between yields.
const DefaultYieldEvery = 256

// Runtime ties the asynchronous primitives of one script run to a single
// cancellation controller and a host scheduler.
type Runtime struct {
	ctx        context.Context
	controller *Controller
	scheduler  ports.Scheduler
	tree       ports.TreeQuery
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	runID      string
	yieldEvery int

	ids atomic.Uint64

	mu        sync.Mutex
	stats     domain.RunStats
	pending   map[uint64]Awaitable
	intervals map[int]*intervalEntry
	nextTimer int
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithController shares an existing cancellation controller.
func WithController(c *Controller) Option {
	return func(rt *Runtime) {
		rt.controller = c
	}
}

// WithTree sets the host tree used by find and visit.
func WithTree(tree ports.TreeQuery) Option {
	return func(rt *Runtime) {
		rt.tree = tree
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(rt *Runtime) {
		rt.hooks = hooks
	}
}

// WithRunID tags events with the ID of the run.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// WithYieldEvery sets how many nodes a traversal handles between yields.
func WithYieldEvery(n int) Option {
	return func(rt *Runtime) {
		if n > 0 {
			rt.yieldEvery = n
		}
	}
}

// WithContext sets the context passed to lifecycle hooks.
func WithContext(ctx context.Context) Option {
	return func(rt *Runtime) {
		rt.ctx = ctx
	}
}

// New creates a runtime on top of the given scheduler.
func New(scheduler ports.Scheduler, opts ...Option) *Runtime {
	rt := &Runtime{
		ctx:        context.Background(),
		scheduler:  scheduler,
		yieldEvery: DefaultYieldEvery,
		pending:    make(map[uint64]Awaitable),
		intervals:  make(map[int]*intervalEntry),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.controller == nil {
		rt.controller = NewController()
	}
	if rt.logger == nil {
		rt.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	rt.controller.Subscribe(rt.onTrip)
	return rt
}

// Controller returns the cancellation controller of the run.
func (rt *Runtime) Controller() *Controller {
	return rt.controller
}

// Canceled reports whether the run was canceled.
func (rt *Runtime) Canceled() bool {
	return rt.controller.IsTripped()
}

// Stats returns a snapshot of the run counters.
func (rt *Runtime) Stats() domain.RunStats {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.stats
}

// Pending returns the handles that have not settled yet.
func (rt *Runtime) Pending() []Awaitable {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	out := make([]Awaitable, 0, len(rt.pending))
	for _, h := range rt.pending {
		out = append(out, h)
	}
	return out
}

// Close clears every timeout and interval still registered.
// Handles keep their state; Close is called once the run is over.
func (rt *Runtime) Close() {
	rt.clearIntervals()
}

func (rt *Runtime) onTrip() {
	rt.logger.Info("run canceled", "run_id", rt.runID)
	rt.clearIntervals()
	if rt.hooks.OnCancel != nil {
		rt.hooks.OnCancel(rt.ctx, &domain.RunEvent{EventBase: rt.event(domain.EventCancel)})
	}
}

func (rt *Runtime) nextID() uint64 {
	return rt.ids.Add(1)
}

func (rt *Runtime) track(id uint64, h Awaitable) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.pending[id] = h
}

func (rt *Runtime) untrack(id uint64) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	delete(rt.pending, id)
}

func (rt *Runtime) count(fn func(s *domain.RunStats)) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	fn(&rt.stats)
}

func (rt *Runtime) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, RunID: rt.runID}
}

// settled records the end of a timer or animation.
func (rt *Runtime) settled(t domain.EventType, id uint64, p *Promise, started time.Time) {
	rt.untrack(id)
	if p.Canceled() {
		rt.count(func(s *domain.RunStats) { s.Canceled++ })
	}
	var hook func(context.Context, *domain.HandleEvent)
	switch t {
	case domain.EventTimerSettle:
		hook = rt.hooks.OnTimerSettle
	case domain.EventAnimationEnd:
		hook = rt.hooks.OnAnimationEnd
	}
	if hook == nil {
		return
	}
	_, err := p.Result()
	hook(rt.ctx, &domain.HandleEvent{
		EventBase: rt.event(t),
		HandleID:  id,
		Outcome:   p.Outcome(),
		Elapsed:   time.Since(started),
		Err:       err,
	})
}
