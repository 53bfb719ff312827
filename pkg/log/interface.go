// Package log provides structured logging for MVPA analysis runs.
//
// The package defines a minimal, slog-compatible Logger interface so the
// backend can be swapped (the default provider writes JSON through
// log/slog; a zerolog-backed provider is also available) plus a set of
// standard attribute keys for analysis context: operation, data shape,
// cross-validation structure, and performance metrics.
//
// Example:
//
//	logger := log.GetLogger().With(
//	    log.ClassifierKey, "lda",
//	    log.OperationKey, "classify_timextime",
//	)
//	logger.Info("analysis finished",
//	    log.RepeatsKey, 5,
//	    log.FoldsKey, 5,
//	)
package log

import (
	"context"
)

// Logger is a structured logging interface compatible with Go's log/slog.
// Fields are alternating key-value pairs, as in slog.
type Logger interface {
	// Debug logs detailed diagnostic information, e.g. per-fold progress.
	Debug(msg string, fields ...any)

	// Info logs general operational information about an analysis run.
	Info(msg string, fields ...any)

	// Warn logs potentially problematic conditions that do not abort the
	// run, e.g. a solver hitting its iteration limit.
	Warn(msg string, fields ...any)

	// Error logs error conditions. If a field value is an error carrying
	// a cockroachdb stack trace, the trace is attached as a separate
	// attribute.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	// Use it to skip expensive attribute construction.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, value-compatible with slog.Level.
type Level int

// Standard logging levels.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
