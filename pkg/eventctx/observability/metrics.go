package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records event-context metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordContextCreated records creation of a context.
	RecordContextCreated(ctx context.Context, root bool)

	// RecordTerminal records a context reaching a terminal state.
	RecordTerminal(ctx context.Context, state string, duration time.Duration)

	// RecordCompletion records a context's subtree completing.
	RecordCompletion(ctx context.Context, duration time.Duration, depth int)

	// RecordScopeExecution records a processing scope with its duration
	// and error status.
	RecordScopeExecution(ctx context.Context, location string, duration time.Duration, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	contextsCreated   metric.Int64Counter
	terminals         metric.Int64Counter
	responseLatency   metric.Float64Histogram
	completionLatency metric.Float64Histogram
	treeDepth         metric.Int64Histogram
	scopeExecutions   metric.Int64Counter
	scopeLatency      metric.Float64Histogram
	scopeErrors       metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("eventctx")

	contextsCreated, err := meter.Int64Counter("eventctx.contexts.created",
		metric.WithDescription("Number of event contexts created"),
	)
	if err != nil {
		return nil, err
	}

	terminals, err := meter.Int64Counter("eventctx.contexts.terminal",
		metric.WithDescription("Number of contexts reaching a terminal state"),
	)
	if err != nil {
		return nil, err
	}

	responseLatency, err := meter.Float64Histogram("eventctx.response.latency_ms",
		metric.WithDescription("Time from context creation to terminal state in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	completionLatency, err := meter.Float64Histogram("eventctx.completion.latency_ms",
		metric.WithDescription("Time from context creation to subtree completion in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	treeDepth, err := meter.Int64Histogram("eventctx.completion.depth",
		metric.WithDescription("Depth of the completed context in its tree"),
	)
	if err != nil {
		return nil, err
	}

	scopeExecutions, err := meter.Int64Counter("eventctx.scope.executions",
		metric.WithDescription("Number of processing scope executions"),
	)
	if err != nil {
		return nil, err
	}

	scopeLatency, err := meter.Float64Histogram("eventctx.scope.latency_ms",
		metric.WithDescription("Processing scope latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	scopeErrors, err := meter.Int64Counter("eventctx.scope.errors",
		metric.WithDescription("Number of processing scope errors"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		contextsCreated:   contextsCreated,
		terminals:         terminals,
		responseLatency:   responseLatency,
		completionLatency: completionLatency,
		treeDepth:         treeDepth,
		scopeExecutions:   scopeExecutions,
		scopeLatency:      scopeLatency,
		scopeErrors:       scopeErrors,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordContextCreated records creation of a context.
func (m *otelMetrics) RecordContextCreated(ctx context.Context, root bool) {
	m.contextsCreated.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("root", root),
	))
}

// RecordTerminal records a context reaching a terminal state.
func (m *otelMetrics) RecordTerminal(ctx context.Context, state string, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("state", state),
	}
	m.terminals.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.responseLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordCompletion records a context's subtree completing.
func (m *otelMetrics) RecordCompletion(ctx context.Context, duration time.Duration, depth int) {
	m.completionLatency.Record(ctx, float64(duration.Milliseconds()))
	m.treeDepth.Record(ctx, int64(depth))
}

// RecordScopeExecution records a processing scope execution.
func (m *otelMetrics) RecordScopeExecution(ctx context.Context, location string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("location", location),
	}
	m.scopeExecutions.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.scopeLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		m.scopeErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
