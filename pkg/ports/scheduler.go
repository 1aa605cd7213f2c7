package ports

import "time"

// Cancelable is a pending host callback that can be withdrawn.
// Cancel is idempotent and safe to call after the callback ran.
type Cancelable interface {
	Cancel()
}

// Scheduler is the host scheduling facility.
//
// Implementations must deliver every callback on the single logical thread
// of the run: no two callbacks may run at the same time, and none may run
// while script code holds the thread.
type Scheduler interface {
	// ScheduleAfter runs fn once, no earlier than d from now.
	ScheduleAfter(d time.Duration, fn func()) Cancelable

	// OnNextFrame runs fn once on the next render tick with the time elapsed
	// since the scheduler's epoch.
	OnNextFrame(fn func(elapsed time.Duration)) Cancelable
}

// Suspender releases the logical thread while wait blocks and reacquires it
// afterwards, so that scheduled callbacks can run while a script awaits.
type Suspender interface {
	Suspend(wait func())
}

// SuspenderFunc adapts a function to the Suspender interface.
type SuspenderFunc func(wait func())

// Suspend calls f(wait).
func (f SuspenderFunc) Suspend(wait func()) {
	f(wait)
}
