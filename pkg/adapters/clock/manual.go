package clock

import (
	"container/heap"
	"sync"
	"time"

	"github.com/aretw0/scripter/pkg/ports"
)

// Manual is a ports.Scheduler on virtual time. Callbacks run synchronously
// on the goroutine that calls Advance, Flush or Frame, which keeps them on a
// single logical thread by construction.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	seq    uint64
	timers timerQueue
	frames []*manualEntry
}

// NewManual creates a scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

type manualEntry struct {
	at       time.Duration
	seq      uint64
	fn       func()
	frame    func(time.Duration)
	canceled bool
	index    int
	m        *Manual
}

func (e *manualEntry) Cancel() {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	e.canceled = true
}

// ScheduleAfter runs fn once virtual time reaches now+d.
func (m *Manual) ScheduleAfter(d time.Duration, fn func()) ports.Cancelable {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	e := &manualEntry{at: m.now + d, seq: m.seq, fn: fn, m: m}
	heap.Push(&m.timers, e)
	return e
}

// OnNextFrame runs fn on the next call to Frame.
func (m *Manual) OnNextFrame(fn func(elapsed time.Duration)) ports.Cancelable {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	e := &manualEntry{seq: m.seq, frame: fn, m: m}
	m.frames = append(m.frames, e)
	return e
}

// Now returns the current virtual time.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves virtual time forward by d, running every delay that falls
// due on the way in deadline order. Delays scheduled by those callbacks run
// too if they fall inside the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		e := m.popDue(target)
		if e == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = e.at
		m.mu.Unlock()
		e.fn()
	}
}

// Flush runs every delay due at the current virtual time.
func (m *Manual) Flush() {
	m.Advance(0)
}

// Frame advances virtual time by dt and delivers one render tick to every
// frame callback registered before the call.
func (m *Manual) Frame(dt time.Duration) {
	m.Advance(dt)

	m.mu.Lock()
	frames := m.frames
	m.frames = nil
	now := m.now
	m.mu.Unlock()

	for _, e := range frames {
		m.mu.Lock()
		canceled := e.canceled
		m.mu.Unlock()
		if !canceled {
			e.frame(now)
		}
	}
}

// PendingTimers returns the number of delays not yet run or canceled.
func (m *Manual) PendingTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.timers {
		if !e.canceled {
			n++
		}
	}
	return n
}

// PendingFrames returns the number of frame callbacks waiting for a tick.
func (m *Manual) PendingFrames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.frames {
		if !e.canceled {
			n++
		}
	}
	return n
}

func (m *Manual) popDue(target time.Duration) *manualEntry {
	for m.timers.Len() > 0 {
		e := m.timers[0]
		if e.at > target {
			return nil
		}
		heap.Pop(&m.timers)
		if !e.canceled {
			return e
		}
	}
	return nil
}

// timerQueue orders delays by deadline, then by scheduling order.
type timerQueue []*manualEntry

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	e := x.(*manualEntry)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}
