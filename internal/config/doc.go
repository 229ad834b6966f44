// Package config loads, normalizes, and validates subextract configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// batch runner and the watcher need: language preferences, external tool
// names, readiness polling, the history ledger, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
