package domain

// HandleState is the lifecycle of an asynchronous handle.
// A handle leaves its initial state exactly once.
type HandleState int32

const (
	StateScheduled HandleState = iota // Timer waiting for expiry
	StateRunning                      // Animation or traversal in progress
	StateSettled                      // Final; result is available
)

func (s HandleState) String() string {
	switch s {
	case StateScheduled:
		return "scheduled"
	case StateRunning:
		return "running"
	case StateSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// TraversalMode selects the behavior of the traversal engine.
type TraversalMode string

const (
	ModeFind  TraversalMode = "find"
	ModeVisit TraversalMode = "visit"
)

// Outcome is how a handle settled.
type Outcome string

const (
	OutcomeResolved Outcome = "resolved"
	OutcomeRejected Outcome = "rejected"
	OutcomeCanceled Outcome = "canceled"
)
