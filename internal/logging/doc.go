// Package logging assembles structured slog loggers and formatting helpers used
// across lyricsync.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes helpers that keep warning and decision logs in the
// same shape everywhere (event_type, error_hint, impact, decision_type). A
// no-op logger is provided for tests and wiring code that cannot fail.
package logging
