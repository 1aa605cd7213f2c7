package runner

import (
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/scripter/pkg/domain"
	"github.com/aretw0/scripter/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed host can keep a script locked.
const DefaultLockTTL = time.Minute

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithStore configures the RunStore that keeps run history.
func WithStore(store ports.RunStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithLifecycleHooks registers observability hooks for every run.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runner) {
		r.Hooks = hooks
	}
}

// WithTree sets the host tree scripts query. If it also implements
// ports.Document, FindInPage works too.
func WithTree(tree ports.TreeQuery) Option {
	return func(r *Runner) {
		r.Tree = tree
	}
}

// WithDocument sets the document used by FindInPage.
func WithDocument(doc ports.Document) Option {
	return func(r *Runner) {
		r.Document = doc
	}
}

// WithOutput sets where scripts print.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.Output = w
	}
}

// WithLocker makes runs of the same script mutually exclusive.
func WithLocker(locker ports.Locker, ttl time.Duration) Option {
	return func(r *Runner) {
		r.Locker = locker
		if ttl > 0 {
			r.LockTTL = ttl
		}
	}
}

// WithSignals cancels the active runs on SIGINT or SIGTERM.
func WithSignals(enabled bool) Option {
	return func(r *Runner) {
		r.Signals = enabled
	}
}

// WithFPS sets the render tick rate of the animation clock.
func WithFPS(fps int) Option {
	return func(r *Runner) {
		r.FPS = fps
	}
}

// WithYieldEvery sets how many nodes a traversal handles between yields.
func WithYieldEvery(n int) Option {
	return func(r *Runner) {
		r.YieldEvery = n
	}
}

// WithDrainTimeout cancels a run whose script returned but whose handles
// are still pending after d. Zero waits forever.
func WithDrainTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.DrainTimeout = d
	}
}
