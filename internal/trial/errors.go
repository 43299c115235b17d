package trial

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("trial: engine closed")

// PhaseError reports an operation that is not valid in the current phase.
// The engine state is unchanged.
type PhaseError struct {
	Op    string
	Phase Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("trial: %s not allowed in phase %s", e.Op, e.Phase)
}

// InputError reports a malformed response. The engine state is unchanged.
type InputError struct {
	Op     string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("trial: %s: %s", e.Op, e.Reason)
}

// CollaboratorError wraps a recorder failure. The engine has rolled back to
// Phase, the phase the failed call was made from, so the caller can retry.
type CollaboratorError struct {
	Op    string
	Phase Phase
	Err   error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("trial: %s failed (rolled back to %s): %v", e.Op, e.Phase, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }
