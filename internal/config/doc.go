// Package config loads, normalizes, and validates clipforge configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for the
// YouTube OAuth credentials. The Config type centralizes every knob the CLI
// and daemon need; it is built once at startup and passed by reference so no
// component reaches into ambient globals.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
