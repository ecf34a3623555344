// Package observability provides structured logging, metrics, and tracing for
// the fnevents side-channel: command handling and catalog publishing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
// The event emission path itself is never logged.
package observability

import (
	"context"
	"log/slog"
	"time"

	fnerrors "github.com/randalmurphal/fnevents/pkg/fnevents/errors"
)

// LogCommand logs receipt of a control command.
func LogCommand(logger *slog.Logger, kind, commandID string, warranted bool) {
	if logger == nil {
		return
	}
	logger.Debug("control command received",
		slog.String("command_kind", kind),
		slog.String("command_id", commandID),
		slog.Bool("publish_warranted", warranted),
	)
}

// LogCommandDeferred logs a publish request parked until the source is ready.
func LogCommandDeferred(logger *slog.Logger, kind, commandID string) {
	if logger == nil {
		return
	}
	logger.Debug("catalog publish deferred until ready",
		slog.String("command_kind", kind),
		slog.String("command_id", commandID),
	)
}

// LogCatalogPublished logs a successful catalog publish.
func LogCatalogPublished(logger *slog.Logger, commandID string, sizeBytes int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("catalog published",
		slog.String("command_id", commandID),
		slog.Int("catalog_bytes", sizeBytes),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogCatalogFailed logs a skipped publish. The level follows the error category.
func LogCatalogFailed(ctx context.Context, logger *slog.Logger, commandID string, err error) {
	if logger == nil || err == nil {
		return
	}
	logger.Log(ctx, fnerrors.LogLevel(err), "catalog publish skipped",
		slog.String("command_id", commandID),
		slog.String("category", fnerrors.Categorize(err).String()),
		slog.String("error", err.Error()),
	)
}

// LogDefinitionSkipped logs a definition left out of the catalog.
func LogDefinitionSkipped(ctx context.Context, logger *slog.Logger, name string, err error) {
	if logger == nil {
		return
	}
	attrs := []any{slog.String("function", name)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	logger.Log(ctx, slog.LevelWarn, "function definition skipped", attrs...)
}

// LogDispatchFailed logs a background task that returned an error or panicked.
func LogDispatchFailed(ctx context.Context, logger *slog.Logger, task string, err error) {
	if logger == nil || err == nil {
		return
	}
	logger.Log(ctx, fnerrors.LogLevel(err), "background task failed",
		slog.String("task", task),
		slog.String("error", err.Error()),
	)
}

// LogListenerDropped logs an event dropped because a listener's buffer was full.
func LogListenerDropped(logger *slog.Logger, listenerID uint64, eventName string) {
	if logger == nil {
		return
	}
	logger.Warn("listener buffer full, event dropped",
		slog.Uint64("listener_id", listenerID),
		slog.String("event", eventName),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
