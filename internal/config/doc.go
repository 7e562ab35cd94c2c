// Package config loads, normalizes, and validates marquee configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TMDB_API_KEY, OMDB_API_KEY and OPENAI_API_KEY. The Config type centralizes
// every knob the CLI and HTTP server need: upstream credentials, pipeline
// sizing (discovery target, worker pool, freshness window) and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
