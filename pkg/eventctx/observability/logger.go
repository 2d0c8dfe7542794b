// Package observability provides structured logging, metrics, and tracing
// for event-context trees.
//
// Logging uses slog (Go stdlib); metrics and tracing use OpenTelemetry.
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds event-context fields to a logger.
// Returns a new logger with context_id and location fields.
func EnrichLogger(logger *slog.Logger, contextID, location string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("context_id", contextID),
		slog.String("location", location),
	)
}

// LogContextCreated logs creation of a context. parentID is empty for roots.
func LogContextCreated(logger *slog.Logger, contextID, location, parentID string) {
	if logger == nil {
		return
	}
	if parentID == "" {
		logger.Debug("context created",
			slog.String("context_id", contextID),
			slog.String("location", location),
		)
		return
	}
	logger.Debug("child context created",
		slog.String("context_id", contextID),
		slog.String("location", location),
		slog.String("parent_id", parentID),
	)
}

// LogTerminal logs a context reaching a terminal state.
func LogTerminal(logger *slog.Logger, contextID, state string, err error) {
	if logger == nil {
		return
	}
	if err != nil {
		logger.Debug("context terminal",
			slog.String("context_id", contextID),
			slog.String("state", state),
			slog.String("error", err.Error()),
		)
		return
	}
	logger.Debug("context terminal",
		slog.String("context_id", contextID),
		slog.String("state", state),
	)
}

// LogCompletion logs a context's subtree completing.
func LogCompletion(logger *slog.Logger, contextID string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("context completed",
		slog.String("context_id", contextID),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogHandlerFailure logs an exception handler failing (non-fatal for the
// context: the response still fires with the original error).
func LogHandlerFailure(logger *slog.Logger, contextID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("exception handler failed",
		slog.String("context_id", contextID),
		slog.String("error", err.Error()),
	)
}

// LogScopeStart logs a processing scope starting.
func LogScopeStart(logger *slog.Logger, contextID, location string) {
	if logger == nil {
		return
	}
	logger.Debug("scope starting",
		slog.String("context_id", contextID),
		slog.String("location", location),
	)
}

// LogScopeComplete logs a processing scope finishing.
func LogScopeComplete(logger *slog.Logger, contextID, location string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("scope completed",
		slog.String("context_id", contextID),
		slog.String("location", location),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogScopeError logs a processing scope failing.
func LogScopeError(logger *slog.Logger, contextID, location string, err error) {
	if logger == nil {
		return
	}
	logger.Error("scope failed",
		slog.String("context_id", contextID),
		slog.String("location", location),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in
// milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
