// Package config loads, normalizes, and validates gavel configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GAVEL_BUCKET. The Config type centralizes every knob the daemon and CLI
// need: staging directories, object storage coordinates, chunking parameters,
// and the job store backend.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
