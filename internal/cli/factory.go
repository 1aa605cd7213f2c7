package cli

import (
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/scripter/pkg/adapters/memory"
	"github.com/aretw0/scripter/pkg/domain"
	"github.com/aretw0/scripter/pkg/observability"
	"github.com/aretw0/scripter/pkg/ports"
	"github.com/aretw0/scripter/pkg/runner"
)

// RunOptions are the settings shared by the commands that run scripts.
type RunOptions struct {
	Tree   *memory.Tree
	Output io.Writer
	Store  ports.RunStore
	Locker ports.Locker
	Hooks  []domain.LifecycleHooks
	FPS    int
	Debug  bool
}

// NewRunner creates a runner with the CLI conventions: SIGINT and SIGTERM
// cancel the run, and lifecycle events are logged when Debug is set.
func NewRunner(opts RunOptions, logger *slog.Logger) *runner.Runner {
	hooks := opts.Hooks
	if opts.Debug {
		hooks = append(hooks, observability.LogHooks(logger))
	}

	runnerOpts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithSignals(true),
		runner.WithLifecycleHooks(observability.Merge(hooks...)),
		runner.WithDrainTimeout(5 * time.Second),
	}
	if opts.Tree != nil {
		runnerOpts = append(runnerOpts, runner.WithTree(opts.Tree), runner.WithDocument(opts.Tree))
	}
	if opts.Output != nil {
		runnerOpts = append(runnerOpts, runner.WithOutput(opts.Output))
	}
	if opts.Store != nil {
		runnerOpts = append(runnerOpts, runner.WithStore(opts.Store))
	}
	if opts.Locker != nil {
		runnerOpts = append(runnerOpts, runner.WithLocker(opts.Locker, runner.DefaultLockTTL))
	}
	if opts.FPS > 0 {
		runnerOpts = append(runnerOpts, runner.WithFPS(opts.FPS))
	}
	return runner.New(runnerOpts...)
}
