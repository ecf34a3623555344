package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/randalmurphal/fnevents/pkg/fnevents/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessors(t *testing.T) {
	cfg := config.New(map[string]any{
		"name":    "alice",
		"count":   3,
		"big":     int64(7),
		"ratio":   float64(4),
		"frac":    1.5,
		"enabled": true,
		"nested": map[string]any{
			"inner": map[string]any{"deep": "yes"},
		},
	})

	assert.Equal(t, "alice", cfg.String("name", "x"))
	assert.Equal(t, "x", cfg.String("count", "x"))
	assert.Equal(t, 3, cfg.Int("count", 0))
	assert.Equal(t, 7, cfg.Int("big", 0))
	assert.Equal(t, 4, cfg.Int("ratio", 0))
	assert.Equal(t, 9, cfg.Int("frac", 9))
	assert.True(t, cfg.Bool("enabled", false))
	assert.False(t, cfg.Bool("name", false))
	assert.Equal(t, "yes", cfg.String("nested.inner.deep", ""))
	assert.Equal(t, "yes", cfg.Sub("nested").Sub("inner").String("deep", ""))
	assert.True(t, cfg.Has("nested.inner"))
	assert.False(t, cfg.Has("nested.other"))
	assert.False(t, cfg.Has("name.deep"))
	assert.False(t, cfg.Sub("name").Has("deep"))
}

func TestNewNil(t *testing.T) {
	cfg := config.New(nil)
	assert.False(t, cfg.Has("k"))
	assert.Equal(t, "d", cfg.String("k", "d"))
}

func TestSettingsDefaults(t *testing.T) {
	s := config.New(nil).Settings()
	assert.Equal(t, config.DefaultSettings, s)
}

func TestSettingsInvalidNumbersFallBack(t *testing.T) {
	s := config.New(map[string]any{"dispatch_limit": 0, "buffer_size": -1}).Settings()
	assert.Equal(t, 4, s.DispatchLimit)
	assert.Equal(t, 256, s.BufferSize)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSettingsFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml nested", "c.yaml", `
fnevents:
  debug: true
  debug_marker: "D_"
  dispatch_limit: 2
  product_version: "9.0.1"
  definitions: defs.yaml
  log_level: debug
  buffer_size: 64
`},
		{"yaml flat", "c.yml", `
debug: true
debug_marker: "D_"
dispatch_limit: 2
product_version: "9.0.1"
definitions: defs.yaml
log_level: debug
buffer_size: 64
`},
		{"json", "c.json", `{"fnevents":{"debug":true,"debug_marker":"D_","dispatch_limit":2,"product_version":"9.0.1","definitions":"defs.yaml","log_level":"debug","buffer_size":64}}`},
		{"toml", "c.toml", `
[fnevents]
debug = true
debug_marker = "D_"
dispatch_limit = 2
product_version = "9.0.1"
definitions = "defs.yaml"
log_level = "debug"
buffer_size = 64
`},
	}

	want := config.Settings{
		Debug:          true,
		DebugMarker:    "D_",
		DispatchLimit:  2,
		ProductVersion: "9.0.1",
		Definitions:    "defs.yaml",
		LogLevel:       "debug",
		BufferSize:     64,
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := config.LoadSettings(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, want, s)
		})
	}
}

func TestLoadSettingsRejectsWhitespaceMarker(t *testing.T) {
	_, err := config.LoadSettings(writeFile(t, "c.toml", "[fnevents]\ndebug_marker = \"DBG \"\n"))
	assert.ErrorContains(t, err, "invalid debug_marker")

	assert.NoError(t, config.DefaultSettings.Validate())
}

func TestFromFileErrors(t *testing.T) {
	_, err := config.FromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config file")

	_, err = config.FromFile(writeFile(t, "c.ini", "x=1"))
	assert.ErrorContains(t, err, "unsupported config file extension")

	_, err = config.FromFile(writeFile(t, "c.yaml", "a: [1"))
	assert.ErrorContains(t, err, "parse yaml")

	_, err = config.FromFile(writeFile(t, "c.toml", "a = "))
	assert.ErrorContains(t, err, "parse toml")

	_, err = config.LoadSettings(writeFile(t, "c.json", "{"))
	assert.ErrorContains(t, err, "parse json")
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := config.Settings{LogLevel: tt.in}.SlogLevel()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
