// Package config loads, validates, and normalizes Pelotarr configuration
// from TOML files with sensible defaults for every value.
package config
