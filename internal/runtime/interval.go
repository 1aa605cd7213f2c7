package runtime

import (
	"time"

	"github.com/aretw0/scripter/pkg/domain"
	"github.com/aretw0/scripter/pkg/ports"
)

// minInterval keeps a zero-delay interval from monopolizing the scheduler.
const minInterval = time.Millisecond

type intervalEntry struct {
	id      int
	fn      func()
	every   time.Duration
	repeat  bool
	pending ports.Cancelable
}

// SetTimeout runs fn once after d and returns an id for ClearTimeout.
// Timeouts registered after the run was canceled never fire.
func (rt *Runtime) SetTimeout(fn func(), d time.Duration) int {
	return rt.addInterval(fn, d, false)
}

// SetInterval runs fn every d until cleared or the run is canceled.
func (rt *Runtime) SetInterval(fn func(), d time.Duration) int {
	if d < minInterval {
		d = minInterval
	}
	return rt.addInterval(fn, d, true)
}

// ClearTimeout withdraws a timeout. Unknown ids are ignored.
func (rt *Runtime) ClearTimeout(id int) {
	rt.clearInterval(id)
}

// ClearInterval withdraws an interval. Unknown ids are ignored.
func (rt *Runtime) ClearInterval(id int) {
	rt.clearInterval(id)
}

func (rt *Runtime) addInterval(fn func(), d time.Duration, repeat bool) int {
	rt.mu.Lock()
	rt.nextTimer++
	e := &intervalEntry{id: rt.nextTimer, fn: fn, every: d, repeat: repeat}
	rt.stats.Intervals++
	if rt.controller.IsTripped() {
		rt.mu.Unlock()
		return e.id
	}
	rt.intervals[e.id] = e
	rt.mu.Unlock()

	rt.arm(e)
	return e.id
}

func (rt *Runtime) arm(e *intervalEntry) {
	p := rt.scheduler.ScheduleAfter(e.every, func() { rt.fire(e) })
	rt.mu.Lock()
	e.pending = p
	rt.mu.Unlock()
}

func (rt *Runtime) fire(e *intervalEntry) {
	rt.mu.Lock()
	if rt.intervals[e.id] != e {
		rt.mu.Unlock()
		return
	}
	if !e.repeat {
		delete(rt.intervals, e.id)
	}
	rt.mu.Unlock()

	rt.invoke(e)

	if !e.repeat {
		return
	}
	rt.mu.Lock()
	live := rt.intervals[e.id] == e
	rt.mu.Unlock()
	if live {
		rt.arm(e)
	}
}

func (rt *Runtime) invoke(e *intervalEntry) {
	defer func() {
		if r := recover(); r != nil {
			rt.logger.Error("timer callback failed", "run_id", rt.runID, "id", e.id, "err", domain.Recovered(r))
		}
	}()
	e.fn()
}

func (rt *Runtime) clearInterval(id int) {
	rt.mu.Lock()
	e, ok := rt.intervals[id]
	var pending ports.Cancelable
	if ok {
		delete(rt.intervals, id)
		pending = e.pending
	}
	rt.mu.Unlock()
	if pending != nil {
		pending.Cancel()
	}
}

func (rt *Runtime) clearIntervals() {
	rt.mu.Lock()
	pending := make([]ports.Cancelable, 0, len(rt.intervals))
	for id, e := range rt.intervals {
		if e.pending != nil {
			pending = append(pending, e.pending)
		}
		delete(rt.intervals, id)
	}
	rt.mu.Unlock()
	for _, p := range pending {
		p.Cancel()
	}
}
