// Package logging assembles structured slog loggers and formatting helpers used
// across adconvert.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so controller and HTTP code can
// tag log lines with conversion and correlation IDs. Every process gets a
// session_id so the lines of one CLI run or one server lifetime can be grouped.
// The package also provides a no-op logger for tests and wiring code that
// cannot fail.
package logging
