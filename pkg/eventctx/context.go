package eventctx

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/eventctx/pkg/eventctx/notify"
	"github.com/randalmurphal/eventctx/pkg/eventctx/observability"
)

// EventContext tracks the lifecycle of a unit of work as it fans out
// across nested, possibly asynchronous execution scopes.
//
// A context is created by the inbound connector (root) or by the flow when
// it establishes a nested scope (child, via NewChild). Each context exposes
// three independently timed notification channels:
//
//   - BeforeResponse fires when the context reaches a terminal state,
//     strictly before Response observers see the same outcome.
//   - Response fires with the terminal outcome, independent of descendants.
//   - Completion fires only after the context's own processing AND every
//     descendant's completion, and never carries an error value.
//
// Terminal calls (Success, Error) are first-write-wins: later calls are
// silently ignored. All methods are safe for concurrent use.
type EventContext struct {
	id            string
	correlationID string
	corrFromSrc   bool
	location      string
	flowName      string
	parent        *EventContext
	handler       ExceptionHandler
	logger        *slog.Logger
	createdAt     time.Time
	depth         int

	state atomic.Int32

	// mu guards the completion bookkeeping below. It is never held while
	// invoking observers or the exception handler.
	mu              sync.Mutex
	pending         int
	externalPending bool
	completionFired bool

	beforeResponse *notify.Channel[Result]
	response       *notify.Channel[Result]
	completion     *notify.Channel[struct{}]

	traceEnabled bool
	traceMu      sync.Mutex
	procTrace    []string

	procTime *processingTime
}

// New creates a root event context in the pending state.
//
// location identifies the component that first received the unit of work
// and must be non-empty. The context id and correlation id are generated
// unless supplied via WithID / WithCorrelationID.
func New(location string, opts ...Option) (*EventContext, error) {
	return newContext(nil, location, opts...)
}

func newContext(parent *EventContext, location string, opts ...Option) (*EventContext, error) {
	if location == "" {
		return nil, ErrLocationRequired
	}

	var o options
	if parent != nil {
		// Children inherit the ambient configuration of their parent.
		o.handler = parent.handler
		o.logger = parent.logger
		o.flowName = parent.flowName
		o.traceEnabled = parent.traceEnabled
		o.statsEnabled = parent.procTime != nil
		o.correlationID = parent.correlationID
	}
	for _, opt := range opts {
		opt(&o)
	}

	ec := &EventContext{
		id:             o.id,
		correlationID:  o.correlationID,
		location:       location,
		flowName:       o.flowName,
		parent:         parent,
		handler:        o.handler,
		logger:         o.logger,
		createdAt:      time.Now(),
		pending:        1, // self slot, released by the terminal path
		traceEnabled:   o.traceEnabled,
		beforeResponse: notify.NewChannel[Result](),
		response:       notify.NewChannel[Result](),
		completion:     notify.NewChannel[struct{}](),
	}
	if ec.id == "" {
		ec.id = uuid.New().String()
	}
	if ec.correlationID == "" {
		ec.correlationID = uuid.New().String()
	}
	if parent != nil {
		ec.corrFromSrc = parent.corrFromSrc
		ec.depth = parent.depth + 1
	}
	if o.corrSupplied && o.correlationID != "" {
		ec.corrFromSrc = true
	}
	if o.statsEnabled {
		ec.procTime = &processingTime{}
	}

	if o.external != nil {
		ec.externalPending = true
		go ec.watchExternal(o.external)
	}

	parentID := ""
	if parent != nil {
		parentID = parent.id
	}
	observability.LogContextCreated(ec.logger, ec.id, location, parentID)

	return ec, nil
}

// NewChild creates a child context for a nested execution scope.
//
// The child registers with this context's completion counter at creation
// time; this context's completion will not fire until the child (and its
// own descendants) have completed. Returns ErrContextCompleted if this
// context's completion channel has already fired, since the parent may
// already have been reclaimed.
func (ec *EventContext) NewChild(location string, opts ...Option) (*EventContext, error) {
	if location == "" {
		return nil, ErrLocationRequired
	}
	if err := ec.addChild(); err != nil {
		return nil, &ContextError{ContextID: ec.id, Op: "child", Err: err}
	}

	child, err := newContext(ec, location, opts...)
	if err != nil {
		// Creation cannot fail past the location check, which ran above,
		// but release the registered slot if it ever does.
		ec.childCompleted()
		return nil, err
	}

	// Deregistration happens when the child's whole subtree is done,
	// never earlier.
	child.completion.Subscribe(func(struct{}) {
		ec.childCompleted()
	})

	return child, nil
}

// ID returns the unique id assigned at creation.
func (ec *EventContext) ID() string {
	return ec.id
}

// CorrelationID returns the correlation id, externally supplied or generated.
func (ec *EventContext) CorrelationID() string {
	return ec.correlationID
}

// IsCorrelationIDFromSource reports whether the source system supplied the
// correlation id, as opposed to it being generated.
func (ec *EventContext) IsCorrelationIDFromSource() bool {
	return ec.corrFromSrc
}

// Location identifies the component that first received the unit of work
// for this context.
func (ec *EventContext) Location() string {
	return ec.location
}

// FlowName returns the name of the owning flow construct, if any.
func (ec *EventContext) FlowName() string {
	return ec.flowName
}

// ParentContext returns this context's parent, if it has one.
// The parent holds no reference back to this context.
func (ec *EventContext) ParentContext() (*EventContext, bool) {
	return ec.parent, ec.parent != nil
}

// Depth returns the distance from the root context (root is 0).
func (ec *EventContext) Depth() int {
	return ec.depth
}

// State returns the current lifecycle state.
func (ec *EventContext) State() State {
	return State(ec.state.Load())
}

// IsTerminated reports whether a terminal call has already taken effect.
// Callers that need to detect duplicate Success/Error misuse consult this;
// the duplicate calls themselves are silent no-ops.
func (ec *EventContext) IsTerminated() bool {
	return ec.State().Terminal()
}

// BeforeResponse returns the channel that fires with the terminal outcome
// strictly before Response observers see it.
func (ec *EventContext) BeforeResponse() *notify.Channel[Result] {
	return ec.beforeResponse
}

// Response returns the channel that fires with the terminal outcome.
// Descendants may still be executing when it fires; use Completion to
// observe full-subtree closure.
func (ec *EventContext) Response() *notify.Channel[Result] {
	return ec.response
}

// Completion returns the channel that fires once this context and every
// descendant have completed. It carries no outcome; consult Response or
// State for the business result.
func (ec *EventContext) Completion() *notify.Channel[struct{}] {
	return ec.completion
}

// Success completes the context successfully with no result value.
// A no-op if the context is already terminal.
func (ec *EventContext) Success() {
	ec.SuccessWithResult(nil)
}

// SuccessWithResult completes the context successfully with a result value.
// A no-op if the context is already terminal.
func (ec *EventContext) SuccessWithResult(value any) {
	if !ec.state.CompareAndSwap(int32(StatePending), int32(StateSucceeded)) {
		return
	}
	observability.LogTerminal(ec.logger, ec.id, StateSucceeded.String(), nil)
	ec.deliver(Result{Value: value})
}

// Error completes the context unsuccessfully.
//
// If the context is still pending, the exception handler (when configured)
// is invoked asynchronously; the response channels fire with the failure
// outcome only after the handler's deferred signal resolves. The returned
// channel resolves once handling has finished and carries a *HandlerError
// if the handler itself failed.
//
// Duplicate terminal calls, and Error(nil), are no-ops that return an
// already-resolved channel.
func (ec *EventContext) Error(err error) <-chan error {
	done := make(chan error, 1)
	if err == nil || !ec.state.CompareAndSwap(int32(StatePending), int32(StateFailed)) {
		close(done)
		return done
	}

	observability.LogTerminal(ec.logger, ec.id, StateFailed.String(), err)

	go func() {
		var handlerErr error
		if ec.handler != nil {
			if sig := ec.handler.Handle(err, ec); sig != nil {
				handlerErr = <-sig
			}
		}

		ec.deliver(Result{Err: err})

		if handlerErr != nil {
			hErr := &HandlerError{ContextID: ec.id, Err: handlerErr}
			observability.LogHandlerFailure(ec.logger, ec.id, handlerErr)
			done <- hErr
		}
		close(done)
	}()

	return done
}

// deliver fires the response channels in their guaranteed order and then
// releases the self slot of the completion counter.
func (ec *EventContext) deliver(res Result) {
	ec.beforeResponse.Fire(res)
	ec.response.Fire(res)
	ec.markOwnProcessingDone()
}

// AddTraceEntry appends a visited component location to the processors
// trace. A no-op unless tracing was enabled at creation.
func (ec *EventContext) AddTraceEntry(location string) {
	if !ec.traceEnabled {
		return
	}
	ec.traceMu.Lock()
	ec.procTrace = append(ec.procTrace, location)
	ec.traceMu.Unlock()
}

// ProcessorsTrace returns a copy of the locations visited so far.
// Empty unless tracing was enabled at creation.
func (ec *EventContext) ProcessorsTrace() []string {
	if !ec.traceEnabled {
		return nil
	}
	ec.traceMu.Lock()
	defer ec.traceMu.Unlock()
	out := make([]string, len(ec.procTrace))
	copy(out, ec.procTrace)
	return out
}

// RecordProcessingTime adds an elapsed processing duration.
// A no-op unless processing-time tracking was enabled at creation.
func (ec *EventContext) RecordProcessingTime(d time.Duration) {
	if ec.procTime != nil {
		ec.procTime.add(d)
	}
}

// ProcessingTime returns the accumulated processing time and whether
// tracking is enabled.
func (ec *EventContext) ProcessingTime() (time.Duration, bool) {
	if ec.procTime == nil {
		return 0, false
	}
	return ec.procTime.total(), true
}
