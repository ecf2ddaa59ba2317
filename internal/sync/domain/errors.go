package domain

import "fmt"

// TransportError reports a failed external calendar call: network,
// auth, quota. It is captured per event in the batch result and never
// aborts the remaining batch. Authentication failures surface here
// too; the caller must re-authenticate and re-invoke the batch.
type TransportError struct {
	Op  string // "create", "update" or "delete"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("calendar %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NewTransportError wraps an external call failure.
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}
