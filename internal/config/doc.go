// Package config loads, normalizes, and validates nutrilog configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// NUTRILOG_API_KEY and GEMINI_API_KEY. The Config type centralizes every knob
// the pipeline and CLI need, allowing data/media directories and the remote
// analysis credentials to be discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical backend names, and clear validation errors.
package config
