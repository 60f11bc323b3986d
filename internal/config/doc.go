// Package config loads the geolayer command configuration from TOML.
//
// Values are resolved in order: built-in defaults, then the first config file
// found (an explicit path, ~/.config/geolayer/config.toml, or ./geolayer.toml),
// then normalization and validation.
package config
