// Package inference - Uniform backend error reporting.
package inference

import "fmt"

// Error is the single error type surfaced by every backend. It names the
// backend and the failed operation so callers never see a backend-specific
// error type, only a uniform wrapper with a cause chain.
type Error struct {
	// Backend is the execution backend that failed (e.g. "cpu", "tensorrt").
	Backend string
	// Op is the operation that failed: "load", "run", "validate" or "close".
	Op string
	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("inference %s on backend %s: %v", e.Op, e.Backend, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(backend, op string, err error) *Error {
	return &Error{Backend: backend, Op: op, Err: err}
}
