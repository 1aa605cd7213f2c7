package runtime

import (
	"context"
	"sync"

	"github.com/aretw0/scripter/pkg/domain"
)

// Awaitable is implemented by every asynchronous handle.
type Awaitable interface {
	// Done is closed once the handle settled.
	Done() <-chan struct{}
	// Result returns the settled value or error, or domain.ErrPending.
	Result() (any, error)
}

// Promise is the result channel of a handle. It starts pending and settles
// exactly once; the first call to resolve or reject wins.
type Promise struct {
	mu       sync.Mutex
	done     chan struct{}
	settled  bool
	value    any
	err      error
	canceled bool
}

func newPromise() *Promise {
	return &Promise{done: make(chan struct{})}
}

func (p *Promise) resolve(v any, canceled bool) bool {
	return p.settle(v, nil, canceled)
}

func (p *Promise) reject(err error, canceled bool) bool {
	return p.settle(nil, err, canceled)
}

func (p *Promise) settle(v any, err error, canceled bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.settled {
		return false
	}
	p.settled = true
	p.value = v
	p.err = err
	p.canceled = canceled
	close(p.done)
	return true
}

// Done is closed once the promise settled.
func (p *Promise) Done() <-chan struct{} {
	return p.done
}

// Settled reports whether the promise settled.
func (p *Promise) Settled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settled
}

// Result returns the settled value and error without blocking.
func (p *Promise) Result() (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.settled {
		return nil, domain.ErrPending
	}
	return p.value, p.err
}

// Wait blocks until the promise settles or ctx is done.
// It must not be called from the logical thread; scripts use Env.Await.
func (p *Promise) Wait(ctx context.Context) (any, error) {
	select {
	case <-p.done:
		return p.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Canceled reports whether the promise settled through a cancellation path.
func (p *Promise) Canceled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.canceled
}

// Outcome classifies a settled promise. Pending promises return "".
func (p *Promise) Outcome() domain.Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case !p.settled:
		return ""
	case p.canceled:
		return domain.OutcomeCanceled
	case p.err != nil:
		return domain.OutcomeRejected
	default:
		return domain.OutcomeResolved
	}
}
