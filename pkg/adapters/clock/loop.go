package clock

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/scripter/pkg/domain"
)

// Loop serializes callbacks and script code on one logical thread.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	baton  chan struct{}
	closed bool
	logger *slog.Logger
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithLoopLogger sets the logger used to report panicking tasks.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// NewLoop creates an idle loop. Call Run to start processing tasks.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		wake:  make(chan struct{}, 1),
		baton: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l
}

// Post queues fn to run on the loop. It is safe to call from any goroutine.
// It returns false if the loop was closed.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Do runs fn on the loop and waits for it to return.
// It must not be called from the loop itself.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return context.Canceled
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes queued tasks until ctx is done or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		for {
			task, ok := l.next()
			if !ok {
				break
			}
			l.acquire()
			l.exec(task)
			l.release()
		}

		l.mu.Lock()
		closed := l.closed
		l.mu.Unlock()
		if closed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Close stops accepting tasks. Tasks already queued still run.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Go runs fn on its own goroutine while holding the logical thread.
// The returned channel is closed when fn returns.
func (l *Loop) Go(fn func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.acquire()
		defer l.release()
		fn()
	}()
	return done
}

// Suspend releases the logical thread while wait blocks.
// Only code running under Go may suspend.
func (l *Loop) Suspend(wait func()) {
	l.release()
	defer l.acquire()
	wait()
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	task := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return task, true
}

func (l *Loop) exec(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop task panicked", "err", domain.Recovered(r))
		}
	}()
	task()
}

func (l *Loop) acquire() {
	l.baton <- struct{}{}
}

func (l *Loop) release() {
	<-l.baton
}
