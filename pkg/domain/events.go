package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStart       EventType = "run_start"
	EventRunEnd         EventType = "run_end"
	EventCancel         EventType = "cancel"
	EventTimerSettle    EventType = "timer_settle"
	EventAnimationFrame EventType = "animation_frame"
	EventAnimationEnd   EventType = "animation_end"
	EventTraversalEnd   EventType = "traversal_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
}

// RunEvent is emitted when a run starts, ends or is canceled.
type RunEvent struct {
	EventBase
	Script  string        `json:"script"`
	Status  RunStatus     `json:"status,omitempty"`
	Elapsed time.Duration `json:"elapsed,omitempty"`
	Stats   RunStats      `json:"stats"`
	Err     error         `json:"-"`
}

// HandleEvent is emitted when a timer, animation or traversal settles.
type HandleEvent struct {
	EventBase
	HandleID uint64        `json:"handle_id"`
	Outcome  Outcome       `json:"outcome"`
	Elapsed  time.Duration `json:"elapsed"`
	Err      error         `json:"-"`
}

// FrameEvent is emitted for every frame delivered to an animation.
type FrameEvent struct {
	EventBase
	HandleID uint64  `json:"handle_id"`
	Time     float64 `json:"time"`
}

// TraversalEvent is emitted when a find or visit settles.
type TraversalEvent struct {
	EventBase
	HandleID uint64        `json:"handle_id"`
	Mode     TraversalMode `json:"mode"`
	Outcome  Outcome       `json:"outcome"`
	Visited  int           `json:"visited"`
	Matched  int           `json:"matched"`
	Skipped  int           `json:"skipped"`
	Elapsed  time.Duration `json:"elapsed"`
	Err      error         `json:"-"`
}

// LifecycleHooks defines callbacks for runtime observability.
// Any hook may be nil.
type LifecycleHooks struct {
	OnRunStart       func(context.Context, *RunEvent)
	OnRunEnd         func(context.Context, *RunEvent)
	OnCancel         func(context.Context, *RunEvent)
	OnTimerSettle    func(context.Context, *HandleEvent)
	OnAnimationFrame func(context.Context, *FrameEvent)
	OnAnimationEnd   func(context.Context, *HandleEvent)
	OnTraversalEnd   func(context.Context, *TraversalEvent)
}
