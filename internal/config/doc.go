// Package config loads, normalizes, and validates relcut configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// RELCUT_VERSION_TOOL. The Config type centralizes every knob the release
// pipeline and auxiliary commands need, covering the repository root, release
// artifacts, changelog generation, docs rewriting, and journal storage.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
