package fnevents

import (
	"errors"
	"sync"

	"github.com/randalmurphal/fnevents/pkg/fnevents/catalog"
	"github.com/randalmurphal/fnevents/pkg/fnevents/config"
	"github.com/randalmurphal/fnevents/pkg/fnevents/funcid"
	"github.com/randalmurphal/fnevents/pkg/fnevents/transport"
	"github.com/randalmurphal/fnevents/pkg/fnevents/version"
)

// ErrDefaultInitialized is returned by SetDefaultOptions once Default has
// built the process-wide Source.
var ErrDefaultInitialized = errors.New("fnevents: default source already initialized")

// defaultConfig is what Default builds from.
type defaultConfig struct {
	version version.Provider
	catalog catalog.Options
	bus     transport.BusConfig
	source  []Option
}

// DefaultOption configures the process-wide Source before first use.
type DefaultOption func(*defaultConfig)

// WithDefaultVersion sets the version stamped on published catalogs.
// Default: version.BuildInfo()
func WithDefaultVersion(p version.Provider) DefaultOption {
	return func(c *defaultConfig) {
		if p != nil {
			c.version = p
		}
	}
}

// WithDefaultCatalogOptions sets catalog naming. A nil Logger inherits the
// Source logger.
func WithDefaultCatalogOptions(opts catalog.Options) DefaultOption {
	return func(c *defaultConfig) {
		c.catalog = opts
	}
}

// WithDefaultBusConfig sets the configuration of DefaultBus.
func WithDefaultBusConfig(cfg transport.BusConfig) DefaultOption {
	return func(c *defaultConfig) {
		c.bus = cfg
	}
}

// WithDefaultSourceOptions appends options for the default Source.
func WithDefaultSourceOptions(opts ...Option) DefaultOption {
	return func(c *defaultConfig) {
		c.source = append(c.source, opts...)
	}
}

// WithDefaultSettings applies configuration settings: debug naming, the bus
// buffer size, the dispatch limit, and a product version override.
func WithDefaultSettings(s config.Settings) DefaultOption {
	return func(c *defaultConfig) {
		logger := c.catalog.Logger
		c.catalog = catalog.OptionsFromSettings(s)
		c.catalog.Logger = logger
		c.bus = transport.BusConfigFromSettings(s)
		c.source = append(c.source, WithSettings(s))
		c.version = version.Override(c.version, s.ProductVersion)
	}
}

var (
	defaultMu    sync.Mutex
	defaultBuilt bool
	defaultCfg   = defaultConfig{
		version: version.BuildInfo(),
		bus:     transport.DefaultBusConfig,
	}

	defaultOnce   sync.Once
	defaultBus    *transport.Bus
	defaultSource *Source
)

// SetDefaultOptions configures the process-wide Source. It must be called
// before the first use of Default, DefaultBus or any package-level emitter;
// afterwards it returns ErrDefaultInitialized and changes nothing.
//
// Example:
//
//	func main() {
//		_ = fnevents.SetDefaultOptions(fnevents.WithDefaultVersion(version.Static("1.4.0")))
//		...
//	}
func SetDefaultOptions(opts ...DefaultOption) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultBuilt {
		return ErrDefaultInitialized
	}
	for _, opt := range opts {
		opt(&defaultCfg)
	}
	return nil
}

// Default returns the process-wide Source, creating it on first use.
//
// It emits to DefaultBus and publishes catalogs built from funcid.Default.
// Without SetDefaultOptions the catalog is stamped with version.BuildInfo,
// which has no version under go run or in test binaries; publishes then
// fail with errors.ErrMetadataUnavailable. Commands the bus delivers while
// it is being wired are deferred until construction completes.
func Default() *Source {
	defaultOnce.Do(func() {
		defaultMu.Lock()
		defaultBuilt = true
		cfg := defaultCfg
		defaultMu.Unlock()

		defaultBus, defaultSource = buildDefault(cfg, funcid.Default)
	})
	return defaultSource
}

// buildDefault wires a bus and a Ready Source. The catalog and bus inherit
// the Source logger unless configured with their own.
func buildDefault(cfg defaultConfig, defs funcid.Source) (*transport.Bus, *Source) {
	srcCfg := applyOptions(cfg.source)
	if cfg.catalog.Logger == nil {
		cfg.catalog.Logger = srcCfg.logger
	}
	if cfg.bus.Logger == nil {
		cfg.bus.Logger = srcCfg.logger
	}

	bus := transport.NewBus(cfg.bus)
	gen := catalog.NewGenerator(defs, cfg.version, cfg.catalog)
	src := newSource(bus, gen, srcCfg)
	bus.Attach(src)
	src.MarkReady()
	return bus, src
}

// DefaultBus returns the bus the default Source emits to. Subscribe to it to
// receive events.
func DefaultBus() *transport.Bus {
	Default()
	return defaultBus
}

// IsEnabled reports whether the default Source has a listener.
func IsEnabled() bool { return Default().IsEnabled() }

// Log emits a Log event on the default Source.
func Log(message string, id funcid.FunctionID) { Default().Log(message, id) }

// LogMessage emits a lazily rendered Log event on the default Source.
func LogMessage(message Message, id funcid.FunctionID) { Default().LogMessage(message, id) }

// BlockStart emits a BlockStart event on the default Source.
func BlockStart(message Message, id funcid.FunctionID, blockID int32) {
	Default().BlockStart(message, id, blockID)
}

// BlockStop emits a BlockStop event on the default Source.
func BlockStop(id funcid.FunctionID, tick, blockID int32) { Default().BlockStop(id, tick, blockID) }

// BlockCancel emits a BlockCancel event on the default Source.
func BlockCancel(id funcid.FunctionID, tick, blockID int32) { Default().BlockCancel(id, tick, blockID) }
