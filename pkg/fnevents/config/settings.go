package config

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
)

// Settings is the typed view of an fnevents configuration document.
type Settings struct {
	// Debug prefixes catalog names with DebugMarker.
	Debug bool

	// DebugMarker is the non-release name prefix.
	DebugMarker string

	// DispatchLimit caps concurrently running catalog publishes.
	DispatchLimit int

	// ProductVersion overrides the build version when non-empty.
	ProductVersion string

	// Definitions is a function definition file path (CLI).
	Definitions string

	// LogLevel is debug, info, warn or error.
	LogLevel string

	// BufferSize is the per-listener bus buffer.
	BufferSize int
}

// DefaultSettings provides reasonable defaults.
var DefaultSettings = Settings{
	DebugMarker:   "DEBUG_",
	DispatchLimit: 4,
	LogLevel:      "info",
	BufferSize:    256,
}

// Settings extracts typed settings, falling back to DefaultSettings.
// Keys are read from the top level or from an "fnevents" table.
func (c Config) Settings() Settings {
	src := c
	if c.Has("fnevents") {
		src = c.Sub("fnevents")
	}
	d := DefaultSettings
	s := Settings{
		Debug:          src.Bool("debug", d.Debug),
		DebugMarker:    src.String("debug_marker", d.DebugMarker),
		DispatchLimit:  src.Int("dispatch_limit", d.DispatchLimit),
		ProductVersion: src.String("product_version", d.ProductVersion),
		Definitions:    src.String("definitions", d.Definitions),
		LogLevel:       src.String("log_level", d.LogLevel),
		BufferSize:     src.Int("buffer_size", d.BufferSize),
	}
	if s.DispatchLimit <= 0 {
		s.DispatchLimit = d.DispatchLimit
	}
	if s.BufferSize <= 0 {
		s.BufferSize = d.BufferSize
	}
	return s
}

// LoadSettings reads a config file and returns its Settings.
func LoadSettings(path string) (Settings, error) {
	cfg, err := FromFile(path)
	if err != nil {
		return Settings{}, err
	}
	s := cfg.Settings()
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks values that end up in catalog fields.
func (s Settings) Validate() error {
	if strings.IndexFunc(s.DebugMarker, unicode.IsSpace) >= 0 {
		return fmt.Errorf("invalid debug_marker: %q contains whitespace", s.DebugMarker)
	}
	return nil
}

// SlogLevel parses LogLevel.
func (s Settings) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s.LogLevel)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %q (expected: debug|info|warn|error)", s.LogLevel)
	}
}
