// Package config loads, normalizes, and validates adconvert configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENROUTER_API_KEY. The Config type centralizes every knob the CLI, the
// local web surface and the engine need: scratch and cache directories,
// engine locators, the bitrate slider bounds and advisory model settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
