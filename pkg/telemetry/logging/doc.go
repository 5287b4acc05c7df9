// Package logging configures the process-wide structured logger.
//
// It wraps Go's standard log/slog package: callers pick a level and a
// format (JSON or text), and Setup installs the resulting logger as the
// slog default so every component logs through the same handler.
package logging
