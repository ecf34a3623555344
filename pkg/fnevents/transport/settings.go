package transport

import "github.com/randalmurphal/fnevents/pkg/fnevents/config"

// BusConfigFromSettings maps configuration onto a BusConfig.
func BusConfigFromSettings(s config.Settings) BusConfig {
	cfg := DefaultBusConfig
	if s.BufferSize > 0 {
		cfg.BufferSize = s.BufferSize
	}
	return cfg
}
