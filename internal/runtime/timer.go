package runtime

import (
	"sync/atomic"
	"time"

	"github.com/aretw0/scripter/pkg/domain"
	"github.com/aretw0/scripter/pkg/ports"
)

// TimerHandler runs when a timer expires (canceled == false) or is canceled
// (canceled == true). Its return values settle the timer.
type TimerHandler func(canceled bool) (any, error)

// Timer is a single delayed, cancellable unit of work.
type Timer struct {
	*Promise

	rt       *Runtime
	id       uint64
	duration time.Duration
	handler  TimerHandler
	state    atomic.Int32
	delay    ports.Cancelable
	sub      SubscriptionID
	created  time.Time
}

// Timer starts a timer that expires after d. handler may be nil.
func (rt *Runtime) Timer(d time.Duration, handler TimerHandler) *Timer {
	t := &Timer{
		Promise:  newPromise(),
		rt:       rt,
		id:       rt.nextID(),
		duration: d,
		handler:  handler,
		created:  time.Now(),
	}
	t.state.Store(int32(domain.StateScheduled))
	rt.track(t.id, t)
	rt.count(func(s *domain.RunStats) { s.Timers++ })

	t.delay = rt.scheduler.ScheduleAfter(d, t.expire)
	t.sub = rt.controller.Subscribe(t.Cancel)
	return t
}

// ID returns the handle ID, unique within the run.
func (t *Timer) ID() uint64 {
	return t.id
}

// Duration returns the requested delay.
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// State returns the lifecycle state of the timer.
func (t *Timer) State() domain.HandleState {
	return domain.HandleState(t.state.Load())
}

// Cancel settles a scheduled timer through the cancellation path.
// It is a no-op once the timer settled.
func (t *Timer) Cancel() {
	t.settle(true)
}

func (t *Timer) expire() {
	t.settle(false)
}

func (t *Timer) settle(canceled bool) {
	if !t.state.CompareAndSwap(int32(domain.StateScheduled), int32(domain.StateSettled)) {
		return
	}
	if canceled && t.delay != nil {
		t.delay.Cancel()
	}
	t.rt.controller.Unsubscribe(t.sub)

	switch {
	case t.handler != nil:
		v, err := t.call(canceled)
		if err != nil {
			t.reject(err, canceled)
		} else {
			t.resolve(v, canceled)
		}
	case canceled:
		t.reject(domain.ErrTimerCancellation, true)
	default:
		t.resolve(nil, false)
	}

	t.rt.logger.Debug("timer settled", "run_id", t.rt.runID, "timer", t.id, "canceled", canceled)
	t.rt.settled(domain.EventTimerSettle, t.id, t.Promise, t.created)
}

func (t *Timer) call(canceled bool) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, domain.Recovered(r)
		}
	}()
	return t.handler(canceled)
}
