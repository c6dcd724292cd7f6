package types

import (
	"errors"
	"fmt"
)

// ValidationError reports structurally invalid patient data reaching the
// storage boundary. Intake re-prompts before storage, so seeing one means
// a caller bypassed the interview.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError reports a record insert/read failure at the storage
// layer. No partial state is visible after it; the conversation continues.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// TransportError reports an A2A send/receive failure. It is surfaced to the
// initiating side as a visible error string and never corrupts the target
// session's state.
type TransportError struct {
	Stage string // "connect", "send", or "receive"
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("a2a transport failure (%s): %v", e.Stage, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError reports whether err is (or wraps) a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
