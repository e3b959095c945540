// Package config loads, normalizes, and validates Scribe configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SCRIBE_APP_SECRET. The Config type centralizes every knob the daemon and
// CLI need: platform credentials and hosts, the intake server bind address,
// workflow polling budgets, and logging output.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
