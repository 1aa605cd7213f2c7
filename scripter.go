package scripter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aretw0/scripter/internal/logging"
	"github.com/aretw0/scripter/internal/runtime"
	"github.com/aretw0/scripter/pkg/domain"
	"github.com/aretw0/scripter/pkg/ports"
)

// Handle types returned by Env. They are settle-once result channels.
type (
	Timer        = runtime.Timer
	Animation    = runtime.Animation
	Traversal    = runtime.Traversal
	Controller   = runtime.Controller
	Awaitable    = runtime.Awaitable
	TimerHandler = runtime.TimerHandler
	FrameFunc    = runtime.FrameFunc
)

// NewController creates a cancellation controller that can be shared between
// an Env and the host that owns the run.
func NewController() *Controller {
	return runtime.NewController()
}

// Env is the script-facing surface of one run.
// All of its methods must be called on the run's logical thread.
type Env struct {
	rt         *runtime.Runtime
	scheduler  ports.Scheduler
	tree       ports.TreeQuery
	document   ports.Document
	suspender  ports.Suspender
	controller *runtime.Controller
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	output     io.Writer
	runID      string
	yieldEvery int
}

// Option defines a functional option for configuring the Env.
type Option func(*Env)

// WithScheduler sets the host scheduler. Required.
func WithScheduler(s ports.Scheduler) Option {
	return func(e *Env) {
		e.scheduler = s
	}
}

// WithTree sets the host tree queried by Find and Visit.
// If the tree also implements ports.Document it backs FindInPage as well.
func WithTree(tree ports.TreeQuery) Option {
	return func(e *Env) {
		e.tree = tree
	}
}

// WithDocument sets the document used by FindInPage.
func WithDocument(doc ports.Document) Option {
	return func(e *Env) {
		e.document = doc
	}
}

// WithSuspender sets how Await releases the logical thread while it blocks.
func WithSuspender(s ports.Suspender) Option {
	return func(e *Env) {
		e.suspender = s
	}
}

// WithController shares a cancellation controller owned by the host.
func WithController(c *Controller) Option {
	return func(e *Env) {
		e.controller = c
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Env) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Env) {
		e.logger = logger
	}
}

// WithOutput sets where Print writes. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(e *Env) {
		e.output = w
	}
}

// WithRunID tags logs and lifecycle events with the run ID.
func WithRunID(id string) Option {
	return func(e *Env) {
		e.runID = id
	}
}

// WithYieldEvery sets how many nodes a traversal handles before yielding.
func WithYieldEvery(n int) Option {
	return func(e *Env) {
		e.yieldEvery = n
	}
}

// New creates a script environment.
func New(opts ...Option) (*Env, error) {
	e := &Env{output: os.Stdout}
	for _, opt := range opts {
		opt(e)
	}
	if e.scheduler == nil {
		return nil, domain.ErrNoScheduler
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.runID != "" {
		e.logger = e.logger.With("run_id", e.runID)
	}
	if e.document == nil {
		if doc, ok := e.tree.(ports.Document); ok {
			e.document = doc
		}
	}
	if e.controller == nil {
		e.controller = runtime.NewController()
	}

	e.rt = runtime.New(e.scheduler,
		runtime.WithController(e.controller),
		runtime.WithTree(e.tree),
		runtime.WithLogger(e.logger),
		runtime.WithHooks(e.hooks),
		runtime.WithRunID(e.runID),
		runtime.WithYieldEvery(e.yieldEvery),
	)
	return e, nil
}

// Timer starts a timer that settles after d. See runtime.TimerHandler for how
// handler settles it; a nil handler resolves on expiry and rejects with
// domain.ErrTimerCancellation on cancellation.
func (e *Env) Timer(d time.Duration, handler TimerHandler) *Timer {
	return e.rt.Timer(d, handler)
}

// Animate calls fn once per frame until it returns domain.ErrStop, fails, or
// the animation is canceled.
func (e *Env) Animate(fn FrameFunc) *Animation {
	return e.rt.Animate(fn)
}

// Find collects the nodes under roots matching pred, in pre-order.
func (e *Env) Find(roots domain.Roots, pred domain.NodePredicate, opts domain.FindOptions) *Traversal {
	return e.rt.Find(roots, pred, opts)
}

// FindInPage runs Find over the current page of the document.
func (e *Env) FindInPage(pred domain.NodePredicate, opts domain.FindOptions) (*Traversal, error) {
	if e.document == nil {
		return nil, domain.ErrNoDocument
	}
	page, err := e.document.CurrentPage()
	if err != nil {
		return nil, fmt.Errorf("current page: %w", err)
	}
	return e.rt.Find(domain.Container(page), pred, opts), nil
}

// Visit walks the nodes under roots; a false return prunes the subtree.
func (e *Env) Visit(roots domain.Roots, visitor domain.NodePredicate) *Traversal {
	return e.rt.Visit(roots, visitor)
}

// SetTimeout runs fn once after d.
func (e *Env) SetTimeout(fn func(), d time.Duration) int {
	return e.rt.SetTimeout(fn, d)
}

// SetInterval runs fn every d.
func (e *Env) SetInterval(fn func(), d time.Duration) int {
	return e.rt.SetInterval(fn, d)
}

// ClearTimeout withdraws a pending timeout.
func (e *Env) ClearTimeout(id int) {
	e.rt.ClearTimeout(id)
}

// ClearInterval withdraws an interval.
func (e *Env) ClearInterval(id int) {
	e.rt.ClearInterval(id)
}

// Canceled reports whether the run was canceled.
func (e *Env) Canceled() bool {
	return e.rt.Canceled()
}

// Cancel cancels the run. Every pending handle settles through its
// cancellation path.
func (e *Env) Cancel() {
	e.controller.Trip()
}

// Controller returns the cancellation controller of the run.
func (e *Env) Controller() *Controller {
	return e.controller
}

// Await blocks the script until h settles and returns its outcome.
// The logical thread is released while waiting, so timers, frames and
// traversal batches keep running.
func (e *Env) Await(h Awaitable) (any, error) {
	select {
	case <-h.Done():
		return h.Result()
	default:
	}
	wait := func() { <-h.Done() }
	if e.suspender != nil {
		e.suspender.Suspend(wait)
	} else {
		wait()
	}
	return h.Result()
}

// Print writes its arguments to the output, space separated, with a newline.
func (e *Env) Print(args ...any) {
	if _, err := fmt.Fprintln(e.output, args...); err != nil {
		e.logger.Warn("print failed", "err", err)
	}
}

// Assert aborts the script with a *domain.AssertionError when cond is false.
func (e *Env) Assert(cond bool, msg ...any) {
	if cond {
		return
	}
	var text string
	if len(msg) > 0 {
		text = strings.TrimSuffix(fmt.Sprintln(msg...), "\n")
	}
	panic(&domain.AssertionError{Message: text})
}

// Pending returns the handles that have not settled yet.
func (e *Env) Pending() []Awaitable {
	return e.rt.Pending()
}

// Stats returns a snapshot of the run counters.
func (e *Env) Stats() domain.RunStats {
	return e.rt.Stats()
}

// Close clears timeouts and intervals left by the script.
func (e *Env) Close() {
	e.rt.Close()
}
