package eventctx

import (
	"errors"
	"fmt"
)

// Sentinel errors for context creation and lifecycle.
var (
	// ErrLocationRequired indicates a context was created with an empty location.
	ErrLocationRequired = errors.New("location is required")

	// ErrContextCompleted indicates a child was requested after the parent's
	// completion channel fired.
	ErrContextCompleted = errors.New("context already completed")
)

// ContextError wraps an error with event-context information.
type ContextError struct {
	// ContextID is the identifier of the context involved.
	ContextID string
	// Op is the operation that failed (e.g., "child").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ContextError) Error() string {
	return fmt.Sprintf("context %s: %s: %v", e.ContextID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ContextError) Unwrap() error {
	return e.Err
}

// HandlerError reports that an exception handler itself failed while
// processing an Error call. It is delivered on the deferred channel
// returned by Error, never raised synchronously.
type HandlerError struct {
	// ContextID is the context whose handler failed.
	ContextID string
	// Err is the handler's failure.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("exception handler for context %s failed: %v", e.ContextID, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *HandlerError) Unwrap() error {
	return e.Err
}
