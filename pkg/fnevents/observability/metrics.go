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

// MetricsRecorder records fnevents metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordEmit counts one event forwarded to an active transport.
	RecordEmit(ctx context.Context, eventName string)

	// RecordCommand counts a control command and what it led to.
	RecordCommand(ctx context.Context, kind string, warranted, deferred bool)

	// RecordCatalogPublish records one catalog publish attempt.
	RecordCatalogPublish(ctx context.Context, success bool, duration time.Duration, sizeBytes int64)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	eventsEmitted    metric.Int64Counter
	commandsReceived metric.Int64Counter
	catalogPublishes metric.Int64Counter
	catalogLatency   metric.Float64Histogram
	catalogSize      metric.Int64Histogram
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
	meter := otel.Meter("fnevents")

	eventsEmitted, err := meter.Int64Counter("fnevents.events.emitted",
		metric.WithDescription("Number of events forwarded to an active transport"),
	)
	if err != nil {
		return nil, err
	}

	commandsReceived, err := meter.Int64Counter("fnevents.commands.received",
		metric.WithDescription("Number of control commands received"),
	)
	if err != nil {
		return nil, err
	}

	catalogPublishes, err := meter.Int64Counter("fnevents.catalog.publishes",
		metric.WithDescription("Number of catalog publish attempts"),
	)
	if err != nil {
		return nil, err
	}

	catalogLatency, err := meter.Float64Histogram("fnevents.catalog.latency_ms",
		metric.WithDescription("Catalog generation and publish latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	catalogSize, err := meter.Int64Histogram("fnevents.catalog.size_bytes",
		metric.WithDescription("Published catalog size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		eventsEmitted:    eventsEmitted,
		commandsReceived: commandsReceived,
		catalogPublishes: catalogPublishes,
		catalogLatency:   catalogLatency,
		catalogSize:      catalogSize,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
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

// RecordEmit counts an emitted event.
func (m *otelMetrics) RecordEmit(ctx context.Context, eventName string) {
	m.eventsEmitted.Add(ctx, 1, metric.WithAttributes(attribute.String("event", eventName)))
}

// RecordCommand counts a control command.
func (m *otelMetrics) RecordCommand(ctx context.Context, kind string, warranted, deferred bool) {
	m.commandsReceived.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("warranted", warranted),
		attribute.Bool("deferred", deferred),
	))
}

// RecordCatalogPublish records a publish attempt.
func (m *otelMetrics) RecordCatalogPublish(ctx context.Context, success bool, duration time.Duration, sizeBytes int64) {
	attrs := metric.WithAttributes(attribute.Bool("success", success))
	m.catalogPublishes.Add(ctx, 1, attrs)
	m.catalogLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if success {
		m.catalogSize.Record(ctx, sizeBytes)
	}
}
