package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/randalmurphal/eventctx/pkg/eventctx/observability"
)

// The metrics recorder initializes its instruments once, so the SDK meter
// provider is installed up front and every metric assertion lives in one
// test with subtests.
func TestMetricsRecorder_RecordsThroughSDK(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	recorder := observability.NewMetricsRecorder()
	ctx := context.Background()

	recorder.RecordContextCreated(ctx, true)
	recorder.RecordContextCreated(ctx, false)
	recorder.RecordTerminal(ctx, "succeeded", 25*time.Millisecond)
	recorder.RecordCompletion(ctx, 40*time.Millisecond, 2)
	recorder.RecordScopeExecution(ctx, "transform", 5*time.Millisecond, nil)
	recorder.RecordScopeExecution(ctx, "transform", 5*time.Millisecond, errors.New("boom"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.NotEmpty(t, rm.ScopeMetrics)

	metrics := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			metrics[m.Name] = m
		}
	}

	t.Run("contexts created", func(t *testing.T) {
		m, ok := metrics["eventctx.contexts.created"]
		require.True(t, ok)
		sum, ok := m.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		var total int64
		for _, dp := range sum.DataPoints {
			total += dp.Value
		}
		assert.Equal(t, int64(2), total)
	})

	t.Run("terminals", func(t *testing.T) {
		m, ok := metrics["eventctx.contexts.terminal"]
		require.True(t, ok)
		sum, ok := m.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		require.Len(t, sum.DataPoints, 1)
		assert.Equal(t, int64(1), sum.DataPoints[0].Value)
	})

	t.Run("latency histograms", func(t *testing.T) {
		for _, name := range []string{
			"eventctx.response.latency_ms",
			"eventctx.completion.latency_ms",
			"eventctx.scope.latency_ms",
		} {
			m, ok := metrics[name]
			require.True(t, ok, name)
			hist, ok := m.Data.(metricdata.Histogram[float64])
			require.True(t, ok, name)
			assert.NotEmpty(t, hist.DataPoints, name)
		}
	})

	t.Run("scope errors", func(t *testing.T) {
		m, ok := metrics["eventctx.scope.errors"]
		require.True(t, ok)
		sum, ok := m.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		require.Len(t, sum.DataPoints, 1)
		assert.Equal(t, int64(1), sum.DataPoints[0].Value)
	})
}

func TestSpanManager_RecordsThroughSDK(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	spans := observability.NewSpanManager()

	ctx, ctxSpan := spans.StartContextSpan(context.Background(), "http.listener", "ctx-1", "corr-1")
	scopeCtx, scopeSpan := spans.StartScopeSpan(ctx, "transform")
	spans.AddSpanEvent(scopeCtx, "payload transformed")
	spans.EndSpanWithError(scopeSpan, errors.New("boom"))
	spans.EndSpanWithError(ctxSpan, nil)

	ended := recorder.Ended()
	require.Len(t, ended, 2)

	// Scope span ends first and records the error.
	scope := ended[0]
	assert.Equal(t, "eventctx.scope.transform", scope.Name())
	assert.NotEmpty(t, scope.Events())
	assert.Equal(t, ctxSpan.SpanContext().SpanID(), scope.Parent().SpanID())

	root := ended[1]
	assert.Equal(t, "eventctx.context", root.Name())
}

func TestNoopImplementations(t *testing.T) {
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m := observability.NoopMetrics{}
		m.RecordContextCreated(ctx, true)
		m.RecordTerminal(ctx, "succeeded", time.Second)
		m.RecordCompletion(ctx, time.Second, 1)
		m.RecordScopeExecution(ctx, "loc", time.Second, errors.New("x"))
	})

	assert.NotPanics(t, func() {
		s := observability.NoopSpanManager{}
		sctx, span := s.StartContextSpan(ctx, "loc", "id", "corr")
		assert.Equal(t, ctx, sctx)
		_, scopeSpan := s.StartScopeSpan(ctx, "loc")
		s.AddSpanEvent(ctx, "event")
		s.EndSpanWithError(span, errors.New("x"))
		s.EndSpanWithError(scopeSpan, nil)
	})
}
