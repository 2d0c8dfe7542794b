package eventctx

import (
	"log/slog"

	"github.com/randalmurphal/eventctx/pkg/eventctx/notify"
)

// Option configures context creation.
type Option func(*options)

type options struct {
	id            string
	correlationID string
	corrSupplied  bool
	handler       ExceptionHandler
	external      *notify.Latch
	flowName      string
	logger        *slog.Logger
	traceEnabled  bool
	statsEnabled  bool
}

// WithID sets an explicit context id instead of an auto-generated one.
// Used when bridging a context across a connector boundary, where the
// sending side has already assigned the id.
func WithID(id string) Option {
	return func(o *options) {
		o.id = id
	}
}

// WithCorrelationID sets the correlation id supplied by the source system.
// Contexts created with a non-empty id through this option report
// IsCorrelationIDFromSource() true, overriding the flag a child would
// otherwise inherit from its parent.
func WithCorrelationID(id string) Option {
	return func(o *options) {
		o.correlationID = id
		o.corrSupplied = true
	}
}

// WithExceptionHandler sets the handler invoked on Error.
// Children inherit the handler unless they set their own.
func WithExceptionHandler(h ExceptionHandler) Option {
	return func(o *options) {
		o.handler = h
	}
}

// WithExternalCompletion gates the context's completion on an external
// latch, typically released by the inbound connector when it has
// acknowledged delivery. Without this option completion depends only on
// the context's own processing and its descendants.
func WithExternalCompletion(latch *notify.Latch) Option {
	return func(o *options) {
		o.external = latch
	}
}

// WithFlowName records the name of the flow construct that processes
// events for this context. Informational only.
func WithFlowName(name string) Option {
	return func(o *options) {
		o.flowName = name
	}
}

// WithLogger sets the logger for lifecycle events.
// Children inherit the parent's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTraceEnabled enables the processors trace for this context and its
// children. Disabled by default; when disabled the trace stays empty with
// no overhead. The flag is explicit configuration, never ambient state.
func WithTraceEnabled(enabled bool) Option {
	return func(o *options) {
		o.traceEnabled = enabled
	}
}

// WithProcessingTime enables processing-time accumulation for this context
// and its children. Disabled by default.
func WithProcessingTime(enabled bool) Option {
	return func(o *options) {
		o.statsEnabled = enabled
	}
}
