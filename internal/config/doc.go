// Package config loads, normalizes, and validates lyricsync configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the LYRICSYNC_OUTPUT_DIR
// environment fallback. Always obtain settings through this package so
// downstream code receives expanded paths, canonical format names, and clear
// validation errors.
package config
