package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/scripter"
	"github.com/aretw0/scripter/internal/logging"
	"github.com/aretw0/scripter/pkg/adapters/clock"
	"github.com/aretw0/scripter/pkg/domain"
	"github.com/aretw0/scripter/pkg/ports"
	"github.com/google/uuid"
)

// Script is the body of a run. It executes on the run's logical thread and
// may block only in env.Await.
type Script func(env *scripter.Env) error

// Runner executes scripts, one logical thread per run.
type Runner struct {
	// Store keeps run history. If nil, runs are not recorded.
	Store ports.RunStore

	// Logger is used for run logging. If nil, a no-op logger is used.
	Logger *slog.Logger

	Hooks    domain.LifecycleHooks
	Tree     ports.TreeQuery
	Document ports.Document
	Output   io.Writer

	// Locker, when set, keeps two runs of the same script from overlapping.
	Locker  ports.Locker
	LockTTL time.Duration

	Signals      bool
	FPS          int
	YieldEvery   int
	DrainTimeout time.Duration

	live *registry
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		Output:  os.Stdout,
		LockTTL: DefaultLockTTL,
		live:    newRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return r
}

// Run executes script under name and returns its record once the script and
// every handle it left pending have settled.
//
// The returned error is non-nil when the run failed (the script returned an
// error, panicked or failed an assertion) or could not start. A canceled run
// is not an error; its record has status domain.RunCanceled.
func (r *Runner) Run(ctx context.Context, name string, script Script) (*domain.RunRecord, error) {
	return r.run(ctx, uuid.NewString(), name, script)
}

// Result is the outcome of a run started with Start.
type Result struct {
	Record *domain.RunRecord
	Err    error
}

// Start runs script in the background and returns the run ID at once.
// The channel receives the result of Run and is then closed.
func (r *Runner) Start(ctx context.Context, name string, script Script) (string, <-chan Result) {
	id := uuid.NewString()
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		rec, err := r.run(ctx, id, name, script)
		ch <- Result{Record: rec, Err: err}
	}()
	return id, ch
}

func (r *Runner) run(ctx context.Context, id, name string, script Script) (*domain.RunRecord, error) {
	rec := domain.NewRunRecord(id, name)
	logger := r.Logger.With("run_id", rec.ID, "script", name)

	if r.Locker != nil {
		unlock, err := r.Locker.Lock(ctx, "script:"+name, r.LockTTL)
		if err != nil {
			return nil, fmt.Errorf("lock script %s: %w", name, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("failed to release script lock", "err", err)
			}
		}()
	}

	loop := clock.NewLoop(clock.WithLoopLogger(logger))
	loopCtx, stopLoop := context.WithCancel(context.WithoutCancel(ctx))
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = loop.Run(loopCtx)
	}()
	defer func() {
		loop.Close()
		<-loopDone
		stopLoop()
	}()

	var schedOpts []clock.RealtimeOption
	if r.FPS > 0 {
		schedOpts = append(schedOpts, clock.WithFPS(r.FPS))
	}
	sched := clock.NewRealtime(loop, schedOpts...)
	defer sched.Stop()

	ctrl := scripter.NewController()
	env, err := scripter.New(
		scripter.WithScheduler(sched),
		scripter.WithSuspender(loop),
		scripter.WithController(ctrl),
		scripter.WithTree(r.Tree),
		scripter.WithDocument(r.Document),
		scripter.WithLogger(r.Logger),
		scripter.WithLifecycleHooks(r.Hooks),
		scripter.WithOutput(r.Output),
		scripter.WithRunID(rec.ID),
		scripter.WithYieldEvery(r.YieldEvery),
	)
	if err != nil {
		return nil, err
	}

	cancel := func() bool {
		return loop.Post(func() { ctrl.Trip() })
	}
	r.live.add(rec.ID, &liveRun{record: *rec, stats: env.Stats, cancel: cancel})
	defer r.live.remove(rec.ID)

	r.save(ctx, logger, rec)
	logger.Info("run started")
	if hook := r.Hooks.OnRunStart; hook != nil {
		hook(ctx, &domain.RunEvent{EventBase: event(domain.EventRunStart, rec.ID), Script: name})
	}

	signals, stopSignals := r.interrupts()
	defer stopSignals()

	finished := make(chan struct{})
	go bridge(ctx, signals, finished, cancel, logger)

	var scriptErr error
	<-loop.Go(func() {
		scriptErr = call(env, script)
		if r.DrainTimeout > 0 && len(env.Pending()) > 0 {
			deadline := sched.ScheduleAfter(r.DrainTimeout, func() {
				logger.Warn("drain timeout, canceling pending handles", "pending", len(env.Pending()))
				ctrl.Trip()
			})
			defer deadline.Cancel()
		}
		drain(env)
		env.Close()
	})
	close(finished)

	rec.EndedAt = time.Now()
	rec.Stats = env.Stats()
	rec.Status, scriptErr = classify(scriptErr, ctrl.IsTripped())
	if scriptErr != nil {
		rec.Error = scriptErr.Error()
	}

	r.save(ctx, logger, rec)
	logger.Info("run finished", "status", rec.Status, "elapsed", rec.EndedAt.Sub(rec.StartedAt))
	if hook := r.Hooks.OnRunEnd; hook != nil {
		hook(ctx, &domain.RunEvent{
			EventBase: event(domain.EventRunEnd, rec.ID),
			Script:    name,
			Status:    rec.Status,
			Elapsed:   rec.EndedAt.Sub(rec.StartedAt),
			Stats:     rec.Stats,
			Err:       scriptErr,
		})
	}
	return rec, scriptErr
}

// Cancel cancels a run in progress.
func (r *Runner) Cancel(runID string) error {
	return r.live.cancel(runID)
}

// Active returns the IDs of the runs in progress.
func (r *Runner) Active() []string {
	return r.live.ids()
}

// Lookup returns a run record, live or stored.
func (r *Runner) Lookup(ctx context.Context, runID string) (*domain.RunRecord, error) {
	if rec, ok := r.live.snapshot(runID); ok {
		return rec, nil
	}
	if r.Store == nil {
		return nil, domain.ErrRunNotFound
	}
	return r.Store.Load(ctx, runID)
}

// Runs returns the live runs followed by the stored history.
func (r *Runner) Runs(ctx context.Context) ([]*domain.RunRecord, error) {
	var out []*domain.RunRecord
	seen := make(map[string]bool)
	for _, id := range r.live.ids() {
		if rec, ok := r.live.snapshot(id); ok {
			out = append(out, rec)
			seen[id] = true
		}
	}
	if r.Store == nil {
		return out, nil
	}

	ids, err := r.Store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		rec, err := r.Store.Load(ctx, id)
		if errors.Is(err, domain.ErrRunNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load run %s: %w", id, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// interrupts subscribes to SIGINT and SIGTERM for the duration of one run.
// The channel is nil when signal handling is disabled.
func (r *Runner) interrupts() (<-chan os.Signal, func()) {
	if !r.Signals {
		return nil, func() {}
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	return ch, func() { signal.Stop(ch) }
}

// bridge posts a trip into the loop when ctx ends or a signal arrives.
func bridge(ctx context.Context, signals <-chan os.Signal, finished <-chan struct{}, cancel func() bool, logger *slog.Logger) {
	select {
	case <-finished:
		return
	case <-ctx.Done():
		logger.Info("context done, canceling run", "err", ctx.Err())
	case sig := <-signals:
		logger.Info("signal received, canceling run", "signal", sig.String())
	}
	cancel()
}

func (r *Runner) save(ctx context.Context, logger *slog.Logger, rec *domain.RunRecord) {
	if r.Store == nil {
		return
	}
	if err := r.Store.Save(context.WithoutCancel(ctx), rec); err != nil {
		logger.Error("failed to save run record", "err", err)
	}
}

// call runs the script, turning a panic into an error.
func call(env *scripter.Env, script Script) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = domain.Recovered(v)
		}
	}()
	return script(env)
}

// drain awaits every pending handle, including those created by callbacks
// while draining.
func drain(env *scripter.Env) {
	for {
		pending := env.Pending()
		if len(pending) == 0 {
			return
		}
		for _, h := range pending {
			_, _ = env.Await(h)
		}
	}
}

// classify derives the final status. Errors that only report the
// cancellation itself do not fail a canceled run.
func classify(err error, canceled bool) (domain.RunStatus, error) {
	switch {
	case err == nil && canceled:
		return domain.RunCanceled, nil
	case err == nil:
		return domain.RunCompleted, nil
	case canceled && (errors.Is(err, domain.ErrTimerCancellation) || errors.Is(err, context.Canceled)):
		return domain.RunCanceled, nil
	default:
		return domain.RunFailed, err
	}
}

func event(t domain.EventType, runID string) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, RunID: runID}
}
