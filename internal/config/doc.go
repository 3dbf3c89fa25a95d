// Package config loads, normalizes, and validates voxmemo configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// VOXMEMO_NTFY_TOPIC. The Config type centralizes every knob the capture and
// browse surfaces need, so the catalog location, capture format, and player
// binaries are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
