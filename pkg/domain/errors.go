package domain

import (
	"errors"
	"fmt"
)

// ErrTimerCancellation rejects a timer without handler that was canceled
// before it expired, either explicitly or by the run being canceled.
var ErrTimerCancellation = errors.New("TimerCancellation: timer canceled")

// ErrStop is the sentinel a frame function returns (or panics with) to end
// an animation. The animation then resolves.
var ErrStop = errors.New("STOP")

// ErrRunNotFound is returned when a run ID cannot be found in the store.
var ErrRunNotFound = errors.New("run not found")

// ErrNoScheduler is returned when an environment is built without a scheduler.
var ErrNoScheduler = errors.New("no scheduler configured")

// ErrNoTree is returned when a traversal is requested without a host tree.
var ErrNoTree = errors.New("no host tree configured")

// ErrNoDocument is returned when the current page is requested without a document.
var ErrNoDocument = errors.New("no document configured")

// ErrNodeNotFound is returned by host trees for references they do not hold.
var ErrNodeNotFound = errors.New("node not found")

// PredicateError rejects a traversal whose predicate or visitor failed.
// It wraps the script's error with the node being tested; Err is that error,
// unmodified, and Unwrap exposes it to errors.Is and errors.As.
type PredicateError struct {
	Node NodeRef
	Err  error
}

func (e *PredicateError) Error() string {
	return fmt.Sprintf("predicate failed at node %q: %v", e.Node, e.Err)
}

func (e *PredicateError) Unwrap() error {
	return e.Err
}

// PanicError carries a value recovered from a panicking script callback.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// AssertionError is raised by Env.Assert when a condition does not hold.
type AssertionError struct {
	Message string
}

func (e *AssertionError) Error() string {
	if e.Message == "" {
		return "assertion failed"
	}
	return "assertion failed: " + e.Message
}

// Recovered converts a value obtained from recover() into an error.
// Errors are returned as-is when they are the stop sentinel or an assertion,
// and the bare string "STOP" maps to ErrStop. Everything else is wrapped in
// a PanicError.
func Recovered(v any) error {
	if s, ok := v.(string); ok && s == ErrStop.Error() {
		return ErrStop
	}
	if err, ok := v.(error); ok {
		var assertErr *AssertionError
		if errors.Is(err, ErrStop) || errors.As(err, &assertErr) {
			return err
		}
	}
	return &PanicError{Value: v}
}

// ErrPending is returned when the result of an unsettled handle is read.
var ErrPending = errors.New("handle not settled")
