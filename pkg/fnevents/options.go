package fnevents

import (
	"log/slog"

	"github.com/randalmurphal/fnevents/pkg/fnevents/config"
	"github.com/randalmurphal/fnevents/pkg/fnevents/dispatch"
	"github.com/randalmurphal/fnevents/pkg/fnevents/observability"
)

// sourceConfig holds Source configuration.
type sourceConfig struct {
	logger        *slog.Logger
	metrics       observability.MetricsRecorder
	spans         observability.SpanManager
	dispatchLimit int
}

// defaultSourceConfig returns the default configuration.
func defaultSourceConfig() sourceConfig {
	return sourceConfig{
		logger:        slog.Default(),
		metrics:       observability.NoopMetrics{},
		spans:         observability.NoopSpanManager{},
		dispatchLimit: dispatch.DefaultLimit,
	}
}

func applyOptions(opts []Option) sourceConfig {
	cfg := defaultSourceConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Option configures a Source.
type Option func(*sourceConfig)

// WithLogger sets the logger for command handling and catalog publishing.
// Emission calls never log. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *sourceConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics.
//
// Example:
//
//	src := fnevents.New(bus, gen, fnevents.WithMetrics(true))
func WithMetrics(enabled bool) Option {
	return func(c *sourceConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithMetricsRecorder sets a custom metrics recorder.
func WithMetricsRecorder(m observability.MetricsRecorder) Option {
	return func(c *sourceConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables an OpenTelemetry span around each catalog publish.
func WithTracing(enabled bool) Option {
	return func(c *sourceConfig) {
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithDispatchLimit caps concurrently running catalog publishes.
// Default: 4
func WithDispatchLimit(n int) Option {
	return func(c *sourceConfig) {
		if n > 0 {
			c.dispatchLimit = n
		}
	}
}

// WithSettings applies configuration settings.
func WithSettings(s config.Settings) Option {
	return WithDispatchLimit(s.DispatchLimit)
}
