package flow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/eventctx/pkg/eventctx"
	"github.com/randalmurphal/eventctx/pkg/eventctx/config"
	"github.com/randalmurphal/eventctx/pkg/eventctx/notify"
	"github.com/randalmurphal/eventctx/pkg/eventctx/observability"
	"github.com/randalmurphal/eventctx/pkg/eventctx/trace"
)

// Engine executes processors inside event-context scopes.
//
// Dispatch creates a root context and runs processors through it; Scope and
// ScopeAsync establish nested child scopes. The engine concludes every
// scope it runs: Success when all processors finish, Error on the first
// failure. Completion of the root still waits for all child scopes,
// however they were created.
type Engine struct {
	flow     Flow
	logger   *slog.Logger
	metrics  observability.MetricsRecorder
	spans    observability.SpanManager
	tracing  bool
	store    trace.Store
	// ownsStore marks a store the engine opened itself from configuration;
	// Close only releases owned stores.
	ownsStore bool
	handler   eventctx.ExceptionHandler
	settings  config.Settings
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger for scope lifecycle events.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics enables or disables OpenTelemetry metrics.
// Disabled by default.
func WithMetrics(enabled bool) EngineOption {
	return func(e *Engine) {
		if enabled {
			e.metrics = observability.NewMetricsRecorder()
		} else {
			e.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables or disables OpenTelemetry spans.
// Disabled by default.
func WithTracing(enabled bool) EngineOption {
	return func(e *Engine) {
		e.tracing = enabled
		if enabled {
			e.spans = observability.NewSpanManager()
		} else {
			e.spans = observability.NoopSpanManager{}
		}
	}
}

// WithTraceStore persists visited locations to a diagnostics store.
// Store failures are logged, never fatal to processing.
func WithTraceStore(store trace.Store) EngineOption {
	return func(e *Engine) {
		e.store = store
	}
}

// WithExceptionHandler sets the handler passed to created contexts.
func WithExceptionHandler(h eventctx.ExceptionHandler) EngineOption {
	return func(e *Engine) {
		e.handler = h
	}
}

// WithSettings applies process-wide context settings (trace, processing
// time) to every context the engine creates.
func WithSettings(s config.Settings) EngineOption {
	return func(e *Engine) {
		e.settings = s
	}
}

// NewEngine creates an engine for the given flow construct.
func NewEngine(flow Flow, opts ...EngineOption) *Engine {
	e := &Engine{
		flow:    flow,
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewEngineFromConfig builds an engine from loaded configuration, typically
// the result of config.FromFile. The settings toggles apply to every
// context the engine creates; a non-empty diagnostics_db opens a SQLite
// trace store that the engine owns and Close releases. Explicit options
// run after the configuration and may override it; an engine given a
// store through WithTraceStore keeps that store.
func NewEngineFromConfig(flow Flow, cfg config.Config, opts ...EngineOption) (*Engine, error) {
	settings := config.SettingsFrom(cfg)
	e := NewEngine(flow, append([]EngineOption{WithSettings(settings)}, opts...)...)

	if e.store == nil && settings.DiagnosticsDB != "" {
		store, err := trace.NewSQLiteStore(settings.DiagnosticsDB)
		if err != nil {
			return nil, fmt.Errorf("open diagnostics store: %w", err)
		}
		e.store = store
		e.ownsStore = true
	}
	return e, nil
}

// TraceStore returns the diagnostics store the engine appends to, or nil
// when none is configured.
func (e *Engine) TraceStore() trace.Store {
	return e.store
}

// Close releases resources the engine opened itself. A store supplied via
// WithTraceStore stays open; its lifecycle belongs to the caller.
func (e *Engine) Close() error {
	if e.ownsStore && e.store != nil {
		return e.store.Close()
	}
	return nil
}

// contextOptions builds creation options from the engine configuration.
func (e *Engine) contextOptions(extra ...eventctx.Option) []eventctx.Option {
	opts := []eventctx.Option{
		eventctx.WithFlowName(e.flow.Name()),
		eventctx.WithTraceEnabled(e.settings.TraceEnabled),
		eventctx.WithProcessingTime(e.settings.ProcessingTimeEnabled),
	}
	if e.logger != nil {
		opts = append(opts, eventctx.WithLogger(e.logger))
	}
	if e.handler != nil {
		opts = append(opts, eventctx.WithExceptionHandler(e.handler))
	}
	return append(opts, extra...)
}

// Dispatch creates a root context at location, runs the processors through
// it, and concludes it. The returned context is terminal when Dispatch
// returns; its completion may still be pending on child scopes or an
// external latch.
func (e *Engine) Dispatch(ctx context.Context, location string, procs ...Processor) (*eventctx.EventContext, error) {
	return e.DispatchWithLatch(ctx, location, nil, procs...)
}

// DispatchWithLatch is Dispatch with an external completion latch supplied
// by the inbound connector. The root's completion will additionally wait
// for the latch to be released.
func (e *Engine) DispatchWithLatch(ctx context.Context, location string, latch *notify.Latch, procs ...Processor) (*eventctx.EventContext, error) {
	opts := e.contextOptions()
	if latch != nil {
		opts = append(opts, eventctx.WithExternalCompletion(latch))
	}

	ec, err := eventctx.New(location, opts...)
	if err != nil {
		return nil, err
	}
	e.instrument(ctx, ec, true)

	spanCtx := ctx
	if e.tracing {
		var span oteltrace.Span
		spanCtx, span = e.spans.StartContextSpan(ctx, location, ec.ID(), ec.CorrelationID())
		ec.Response().Subscribe(func(res eventctx.Result) {
			e.spans.EndSpanWithError(span, res.Err)
		})
	}

	return ec, e.conclude(spanCtx, ec, procs)
}

// Scope runs the processors in a new child scope of parent, synchronously.
// The child is concluded before Scope returns.
func (e *Engine) Scope(ctx context.Context, parent *eventctx.EventContext, location string, procs ...Processor) (*eventctx.EventContext, error) {
	child, err := parent.NewChild(location)
	if err != nil {
		return nil, err
	}
	e.instrument(ctx, child, false)
	return child, e.conclude(ctx, child, procs)
}

// ScopeAsync runs the processors in a new child scope on its own
// goroutine. The parent's completion waits for the child regardless of
// when the parent itself turns terminal.
func (e *Engine) ScopeAsync(ctx context.Context, parent *eventctx.EventContext, location string, procs ...Processor) (*eventctx.EventContext, error) {
	child, err := parent.NewChild(location)
	if err != nil {
		return nil, err
	}
	e.instrument(ctx, child, false)
	go func() {
		_ = e.conclude(ctx, child, procs)
	}()
	return child, nil
}

// conclude runs the processors and turns the scope terminal.
// On failure it drains the deferred signal from Error so handler failures
// are surfaced in the log before returning.
func (e *Engine) conclude(ctx context.Context, ec *eventctx.EventContext, procs []Processor) error {
	runErr := e.run(ctx, ec, procs)
	if runErr != nil {
		<-ec.Error(runErr)
		return runErr
	}
	ec.Success()
	return nil
}

// run executes the processors in order, stopping at the first failure.
func (e *Engine) run(ctx context.Context, ec *eventctx.EventContext, procs []Processor) error {
	for _, p := range procs {
		if err := ctx.Err(); err != nil {
			return err
		}

		observability.LogScopeStart(e.logger, ec.ID(), p.Location)

		procCtx := ctx
		var span oteltrace.Span
		if e.tracing {
			procCtx, span = e.spans.StartScopeSpan(ctx, p.Location)
		}

		ec.AddTraceEntry(p.Location)
		if e.store != nil {
			if err := e.store.Append(ec.ID(), p.Location); err != nil {
				e.logWarn("trace store append failed", ec.ID(), p.Location, err)
			}
		}

		start := time.Now()
		err := p.Apply(procCtx, ec)
		elapsed := time.Since(start)

		ec.RecordProcessingTime(elapsed)
		e.metrics.RecordScopeExecution(procCtx, p.Location, elapsed, err)
		if e.tracing {
			e.spans.EndSpanWithError(span, err)
		}

		if err != nil {
			observability.LogScopeError(e.logger, ec.ID(), p.Location, err)
			return &ProcessorError{Location: p.Location, Err: err}
		}
		observability.LogScopeComplete(e.logger, ec.ID(), p.Location, float64(elapsed.Milliseconds()))
	}
	return nil
}

// instrument wires metrics for a created context.
func (e *Engine) instrument(ctx context.Context, ec *eventctx.EventContext, root bool) {
	e.metrics.RecordContextCreated(ctx, root)

	created := time.Now()
	ec.Response().Subscribe(func(res eventctx.Result) {
		state := eventctx.StateSucceeded
		if res.Failed() {
			state = eventctx.StateFailed
		}
		e.metrics.RecordTerminal(ctx, state.String(), time.Since(created))
	})
	ec.Completion().Subscribe(func(struct{}) {
		e.metrics.RecordCompletion(ctx, time.Since(created), ec.Depth())
	})
}

func (e *Engine) logWarn(msg, contextID, location string, err error) {
	if e.logger == nil {
		return
	}
	e.logger.Warn(msg,
		slog.String("context_id", contextID),
		slog.String("location", location),
		slog.String("error", err.Error()),
	)
}
