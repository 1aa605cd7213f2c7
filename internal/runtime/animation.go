package runtime

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/aretw0/scripter/pkg/domain"
	"github.com/aretw0/scripter/pkg/ports"
)

// FrameFunc is called once per frame with the seconds elapsed since the
// first frame, at millisecond resolution. Returning domain.ErrStop ends the
// animation; any other error rejects it.
type FrameFunc func(t float64) error

// Animation is a repeating, cancellable per-frame unit of work.
type Animation struct {
	*Promise

	rt      *Runtime
	id      uint64
	fn      FrameFunc
	state   atomic.Int32
	frame   ports.Cancelable
	sub     SubscriptionID
	created time.Time

	calling   atomic.Bool
	cancelReq atomic.Bool

	started bool
	start   time.Duration
	last    float64
	frames  int
}

// Animate starts calling fn on every frame until it stops or is canceled.
func (rt *Runtime) Animate(fn FrameFunc) *Animation {
	a := &Animation{
		Promise: newPromise(),
		rt:      rt,
		id:      rt.nextID(),
		fn:      fn,
		created: time.Now(),
	}
	a.state.Store(int32(domain.StateRunning))
	rt.track(a.id, a)
	rt.count(func(s *domain.RunStats) { s.Animations++ })

	a.frame = rt.scheduler.OnNextFrame(a.tick)
	a.sub = rt.controller.Subscribe(a.Cancel)
	return a
}

// ID returns the handle ID, unique within the run.
func (a *Animation) ID() uint64 {
	return a.id
}

// State returns the lifecycle state of the animation.
func (a *Animation) State() domain.HandleState {
	return domain.HandleState(a.state.Load())
}

// Frames returns how many times the frame function was called.
func (a *Animation) Frames() int {
	return a.frames
}

// Cancel stops frame delivery and resolves the animation.
// Called from inside the frame function, it takes effect once that call
// returned; an error from the same call still rejects the animation.
// It is a no-op once the animation settled.
func (a *Animation) Cancel() {
	if a.calling.Load() {
		a.cancelReq.Store(true)
		return
	}
	a.finish(nil, true)
}

func (a *Animation) tick(elapsed time.Duration) {
	if a.State() != domain.StateRunning {
		return
	}
	if !a.started {
		a.started = true
		a.start = elapsed
	}
	t := float64((elapsed - a.start).Round(time.Millisecond).Milliseconds()) / 1000
	if t < a.last {
		t = a.last
	}
	a.last = t
	a.frames++
	a.rt.count(func(s *domain.RunStats) { s.Frames++ })
	if hook := a.rt.hooks.OnAnimationFrame; hook != nil {
		hook(a.rt.ctx, &domain.FrameEvent{
			EventBase: a.rt.event(domain.EventAnimationFrame),
			HandleID:  a.id,
			Time:      t,
		})
	}

	a.calling.Store(true)
	err := a.call(t)
	a.calling.Store(false)
	canceled := a.cancelReq.Load()
	switch {
	case errors.Is(err, domain.ErrStop):
		a.finish(nil, canceled)
	case err != nil:
		a.finish(err, false)
	case canceled:
		a.finish(nil, true)
	case a.State() == domain.StateRunning:
		a.frame = a.rt.scheduler.OnNextFrame(a.tick)
	}
}

func (a *Animation) call(t float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domain.Recovered(r)
		}
	}()
	return a.fn(t)
}

func (a *Animation) finish(err error, canceled bool) {
	if !a.state.CompareAndSwap(int32(domain.StateRunning), int32(domain.StateSettled)) {
		return
	}
	if a.frame != nil {
		a.frame.Cancel()
	}
	a.rt.controller.Unsubscribe(a.sub)

	if err != nil {
		a.reject(err, canceled)
	} else {
		a.resolve(nil, canceled)
	}

	a.rt.logger.Debug("animation settled", "run_id", a.rt.runID, "animation", a.id, "frames", a.frames, "canceled", canceled)
	a.rt.settled(domain.EventAnimationEnd, a.id, a.Promise, a.created)
}
