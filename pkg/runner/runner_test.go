package runner_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/scripter"
	"github.com/aretw0/scripter/pkg/adapters/memory"
	"github.com/aretw0/scripter/pkg/domain"
	"github.com/aretw0/scripter/pkg/ports"
	"github.com/aretw0/scripter/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func forever(float64) error { return nil }

func TestRunner_Completed(t *testing.T) {
	var out bytes.Buffer
	store := memory.NewStore()
	r := runner.New(runner.WithStore(store), runner.WithOutput(&out))

	rec, err := r.Run(context.Background(), "hello", func(env *scripter.Env) error {
		v, err := env.Await(env.Timer(10*time.Millisecond, func(canceled bool) (any, error) {
			return "tick", nil
		}))
		if err != nil {
			return err
		}
		env.Print(v)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RunCompleted, rec.Status)
	assert.Equal(t, "tick\n", out.String())
	assert.Equal(t, 1, rec.Stats.Timers)
	assert.False(t, rec.EndedAt.Before(rec.StartedAt))

	stored, err := store.Load(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunCompleted, stored.Status)
	assert.Empty(t, r.Active())
}

func TestRunner_Failures(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name   string
		script runner.Script
		check  func(t *testing.T, err error)
	}{
		{
			name:   "returned error",
			script: func(*scripter.Env) error { return boom },
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, boom) },
		},
		{
			name:   "assertion",
			script: func(env *scripter.Env) error { env.Assert(false, "no nodes"); return nil },
			check: func(t *testing.T, err error) {
				var ae *domain.AssertionError
				require.ErrorAs(t, err, &ae)
				assert.Equal(t, "no nodes", ae.Message)
			},
		},
		{
			name:   "panic",
			script: func(*scripter.Env) error { panic("oops") },
			check: func(t *testing.T, err error) {
				var pe *domain.PanicError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, "oops", pe.Value)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := runner.New(runner.WithOutput(&bytes.Buffer{}))
			rec, err := r.Run(context.Background(), tc.name, tc.script)
			require.Error(t, err)
			tc.check(t, err)
			assert.Equal(t, domain.RunFailed, rec.Status)
			assert.Equal(t, err.Error(), rec.Error)
		})
	}
}

func TestRunner_ContextCancel(t *testing.T) {
	r := runner.New()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	rec, err := r.Run(ctx, "sleepy", func(env *scripter.Env) error {
		_, err := env.Await(env.Timer(time.Hour, nil))
		return err
	})

	require.NoError(t, err, "a canceled run is not a failure")
	assert.Equal(t, domain.RunCanceled, rec.Status)
	assert.Equal(t, 1, rec.Stats.Canceled)
}

func TestRunner_CancelByID(t *testing.T) {
	r := runner.New()
	started := make(chan struct{})

	go func() {
		<-started
		ids := r.Active()
		if assert.Len(t, ids, 1) {
			assert.NoError(t, r.Cancel(ids[0]))
		}
	}()

	rec, err := r.Run(context.Background(), "spinner", func(env *scripter.Env) error {
		a := env.Animate(forever)
		close(started)
		_, err := env.Await(a)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RunCanceled, rec.Status)
	assert.ErrorIs(t, r.Cancel(rec.ID), domain.ErrRunNotFound)
}

func TestRunner_DrainsPendingHandles(t *testing.T) {
	r := runner.New()
	fired := false

	rec, err := r.Run(context.Background(), "fire-and-forget", func(env *scripter.Env) error {
		env.Timer(20*time.Millisecond, func(bool) (any, error) {
			fired = true
			return nil, nil
		})
		return nil
	})

	require.NoError(t, err)
	assert.True(t, fired)
	assert.Equal(t, domain.RunCompleted, rec.Status)
}

func TestRunner_DrainTimeout(t *testing.T) {
	r := runner.New(runner.WithDrainTimeout(30 * time.Millisecond))

	rec, err := r.Run(context.Background(), "leaky", func(env *scripter.Env) error {
		env.Animate(forever)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RunCanceled, rec.Status)
	assert.Equal(t, 1, rec.Stats.Animations)
}

func TestRunner_FindInPage(t *testing.T) {
	tree := memory.NewTree("doc", "")
	require.NoError(t, tree.Add("doc", memory.Node{Ref: "page", Type: memory.TypePage}))
	for _, ref := range []domain.NodeRef{"a", "b", "c"} {
		require.NoError(t, tree.Add("page", memory.Node{Ref: ref, Type: "text"}))
	}
	r := runner.New(runner.WithTree(tree), runner.WithYieldEvery(1))

	var found any
	rec, err := r.Run(context.Background(), "find", func(env *scripter.Env) error {
		f, err := env.FindInPage(domain.Match(func(n domain.NodeRef) bool { return n != "b" }), domain.FindOptions{})
		if err != nil {
			return err
		}
		found, err = env.Await(f)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, []domain.NodeRef{"a", "c"}, found)
	assert.Equal(t, 3, rec.Stats.Visited)
}

func TestRunner_LookupAndRuns(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	r := runner.New(runner.WithStore(store))

	_, err := r.Lookup(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)

	first, err := r.Run(ctx, "quick", func(*scripter.Env) error { return nil })
	require.NoError(t, err)

	liveID := make(chan string, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.Run(ctx, "live", func(env *scripter.Env) error {
			h := env.Timer(time.Hour, nil)
			liveID <- r.Active()[0]
			_, err := env.Await(h)
			return err
		})
	}()

	id := <-liveID
	live, err := r.Lookup(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.RunRunning, live.Status)
	assert.Equal(t, 1, live.Stats.Timers)

	runs, err := r.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, id, runs[0].ID, "live runs come first")
	assert.Equal(t, first.ID, runs[1].ID)

	require.NoError(t, r.Cancel(id))
	<-done
	stored, err := r.Lookup(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.RunCanceled, stored.Status)
}

type fakeLocker struct {
	mu      sync.Mutex
	keys    []string
	unlocks int
	err     error
}

func (l *fakeLocker) Lock(_ context.Context, key string, _ time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.keys = append(l.keys, key)
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.unlocks++
		return nil
	}, nil
}

func TestRunner_Locker(t *testing.T) {
	locker := &fakeLocker{}
	r := runner.New(runner.WithLocker(locker, time.Second))

	_, err := r.Run(context.Background(), "exclusive", func(*scripter.Env) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, []string{"script:exclusive"}, locker.keys)
	assert.Equal(t, 1, locker.unlocks)

	locker.err = errors.New("busy")
	ran := false
	rec, err := r.Run(context.Background(), "exclusive", func(*scripter.Env) error {
		ran = true
		return nil
	})
	assert.Error(t, err)
	assert.Nil(t, rec)
	assert.False(t, ran, "the script must not run without the lock")
}

func TestRunner_Hooks(t *testing.T) {
	var mu sync.Mutex
	var events []string
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, s)
	}
	hooks := domain.LifecycleHooks{
		OnRunStart:    func(_ context.Context, e *domain.RunEvent) { record("start:" + e.Script) },
		OnTimerSettle: func(_ context.Context, e *domain.HandleEvent) { record("timer:" + string(e.Outcome)) },
		OnRunEnd:      func(_ context.Context, e *domain.RunEvent) { record("end:" + string(e.Status)) },
	}
	r := runner.New(runner.WithLifecycleHooks(hooks))

	_, err := r.Run(context.Background(), "hooked", func(env *scripter.Env) error {
		_, err := env.Await(env.Timer(time.Millisecond, nil))
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"start:hooked", "timer:resolved", "end:completed"}, events)
}

func TestRunner_Start(t *testing.T) {
	r := runner.New()

	id, results := r.Start(context.Background(), "background", func(env *scripter.Env) error {
		_, err := env.Await(env.Timer(5*time.Millisecond, nil))
		return err
	})
	res := <-results

	require.NoError(t, res.Err)
	assert.Equal(t, id, res.Record.ID)
	assert.Equal(t, domain.RunCompleted, res.Record.Status)
	_, open := <-results
	assert.False(t, open)
}
