/*
Package config loads fnevents configuration from YAML, JSON, or TOML.

# Overview

Config wraps a decoded document and provides typed accessors that fall back
to a default on missing keys or type mismatches. Settings is the typed view
the rest of fnevents consumes.

	cfg, err := config.FromFile("fnevents.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	s := cfg.Settings()

# Document Layout

Keys may sit at the top level or under an "fnevents" table:

	fnevents:
	  debug: false
	  debug_marker: DEBUG_
	  dispatch_limit: 4
	  product_version: ""
	  definitions: functions.yaml
	  log_level: info
	  buffer_size: 256

Dotted keys reach into nested tables:

	cfg.Bool("fnevents.debug", false)

# Type Coercion

Int accepts int and int64 (YAML, TOML) and integral float64 (JSON).
Duration accepts duration strings, seconds as numbers, and time.Duration.

# Thread Safety

Config is safe for concurrent read access. The underlying map is not
modified after creation.
*/
package config
