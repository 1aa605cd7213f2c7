package domain

import "time"

// RunStatus is the lifecycle of a script run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunCanceled  RunStatus = "canceled"
	RunFailed    RunStatus = "failed"
)

// RunStats counts the asynchronous work a run performed.
type RunStats struct {
	Timers     int `json:"timers"`
	Animations int `json:"animations"`
	Frames     int `json:"frames"`
	Traversals int `json:"traversals"`
	Visited    int `json:"visited"`
	StaleSkips int `json:"stale_skips"`
	Intervals  int `json:"intervals"`
	Canceled   int `json:"canceled"`
}

// RunRecord summarizes one script run.
// It is history only and never carries timer or animation state.
type RunRecord struct {
	ID        string    `json:"id"`
	Script    string    `json:"script"`
	Status    RunStatus `json:"status"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at,omitempty"`
	Error     string    `json:"error,omitempty"`
	Stats     RunStats  `json:"stats"`
}

// NewRunRecord creates a record for a run that is starting now.
func NewRunRecord(id, script string) *RunRecord {
	return &RunRecord{
		ID:        id,
		Script:    script,
		Status:    RunRunning,
		StartedAt: time.Now(),
	}
}

// Finished reports whether the run reached a final status.
func (r *RunRecord) Finished() bool {
	return r.Status != RunRunning
}
