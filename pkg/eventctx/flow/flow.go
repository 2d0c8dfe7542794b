// Package flow drives units of work through event-context scopes.
//
// The Engine is the collaborator the core calls "Flow": it creates
// contexts, executes processors inside them, records trace entries and
// processing time, and concludes each scope with Success or Error.
package flow

import (
	"context"
	"fmt"

	"github.com/randalmurphal/eventctx/pkg/eventctx"
)

// Flow names the construct that processes events for a context.
type Flow interface {
	// Name identifies the flow construct.
	Name() string
}

// namedFlow is a Flow with only a name.
type namedFlow string

// Named creates a Flow identified by name.
func Named(name string) Flow {
	return namedFlow(name)
}

// Name implements Flow.
func (f namedFlow) Name() string {
	return string(f)
}

// Processor performs one unit of work inside an event-context scope.
type Processor struct {
	// Location identifies the component, recorded in the processors trace.
	Location string

	// Apply performs the work. A non-nil error fails the whole scope.
	Apply func(ctx context.Context, ec *eventctx.EventContext) error
}

// ProcessorError wraps an error with the processor's location.
type ProcessorError struct {
	// Location is the component that failed.
	Location string
	// Err is the underlying error from the processor.
	Err error
}

// Error implements the error interface.
func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor %s: %v", e.Location, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ProcessorError) Unwrap() error {
	return e.Err
}
