// Package config loads, normalizes, and validates fieldinspect configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// FIELDINSPECT_API_TOKEN. The Config type centralizes every knob the daemon
// and CLI need: where the inspection database lives, how the API binds, how
// logs are shaped, and which subjects hold which inspection capabilities.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
