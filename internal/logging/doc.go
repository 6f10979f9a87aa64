// Package logging assembles structured slog loggers used across the gavel
// daemon and CLI.
//
// It owns the console and JSON handlers, centralizes level parsing and output
// plumbing, and exposes attr helpers so components emit data with the same
// shape. The package also provides a no-op logger for tests and wiring code
// that cannot fail.
package logging
