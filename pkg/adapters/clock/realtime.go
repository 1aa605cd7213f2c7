package clock

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/scripter/pkg/ports"
)

// DefaultFPS is the render rate of a Realtime scheduler.
const DefaultFPS = 60

// Realtime is a ports.Scheduler on the wall clock. Every callback is posted
// to the loop, never run on the timer goroutine.
type Realtime struct {
	loop     *Loop
	epoch    time.Time
	interval time.Duration

	mu      sync.Mutex
	frames  []*callback
	ticking bool
	queued  atomic.Bool
	stop    chan struct{}
	stopped bool
}

// RealtimeOption configures a Realtime scheduler.
type RealtimeOption func(*Realtime)

// WithFPS sets the render tick rate.
func WithFPS(fps int) RealtimeOption {
	return func(r *Realtime) {
		if fps > 0 {
			r.interval = time.Second / time.Duration(fps)
		}
	}
}

// NewRealtime creates a scheduler delivering through loop.
func NewRealtime(loop *Loop, opts ...RealtimeOption) *Realtime {
	r := &Realtime{
		loop:     loop,
		epoch:    time.Now(),
		interval: time.Second / DefaultFPS,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type callback struct {
	canceled atomic.Bool
	timer    *time.Timer
	frame    func(time.Duration)
}

func (c *callback) Cancel() {
	c.canceled.Store(true)
	if c.timer != nil {
		c.timer.Stop()
	}
}

// ScheduleAfter runs fn on the loop once d elapsed.
func (r *Realtime) ScheduleAfter(d time.Duration, fn func()) ports.Cancelable {
	c := &callback{}
	c.timer = time.AfterFunc(d, func() {
		r.loop.Post(func() {
			if !c.canceled.Load() {
				fn()
			}
		})
	})
	return c
}

// OnNextFrame runs fn on the loop at the next render tick.
func (r *Realtime) OnNextFrame(fn func(elapsed time.Duration)) ports.Cancelable {
	c := &callback{frame: fn}
	r.mu.Lock()
	r.frames = append(r.frames, c)
	start := !r.ticking && !r.stopped
	r.ticking = r.ticking || start
	r.mu.Unlock()
	if start {
		go r.tick()
	}
	return c
}

// Stop ends frame delivery. Pending delays still fire.
func (r *Realtime) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.stopped {
		r.stopped = true
		close(r.stop)
	}
}

func (r *Realtime) tick() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case now := <-ticker.C:
			r.mu.Lock()
			waiting := len(r.frames) > 0
			r.mu.Unlock()
			// Drop ticks while a delivery is still queued on a busy loop.
			if !waiting || !r.queued.CompareAndSwap(false, true) {
				continue
			}
			elapsed := now.Sub(r.epoch)
			r.loop.Post(func() { r.deliver(elapsed) })
		}
	}
}

func (r *Realtime) deliver(elapsed time.Duration) {
	r.queued.Store(false)
	r.mu.Lock()
	frames := r.frames
	r.frames = nil
	r.mu.Unlock()
	for _, c := range frames {
		if !c.canceled.Load() {
			c.frame(elapsed)
		}
	}
}
