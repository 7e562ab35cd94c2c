// Package logging assembles structured slog loggers and formatting helpers used
// across marquee.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so request handlers and pipeline workers
// can tag log lines with request, session and user identifiers. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
