// Package observability defines the logging and metrics hooks used by the
// NetBird client. The library itself stays silent unless a Logger or
// MetricsRecorder is supplied; the defaults are no-ops.
package observability

import "log/slog"

// Field is a structured logging key-value pair.
type Field struct {
	Key   string
	Value any
}

// Logger is the structured logging interface accepted by the client.
// Implementations can be backed by any logging library.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...Field)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...Field)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...Field)

	// Error logs an error-level message with optional structured fields.
	Error(msg string, fields ...Field)

	// With returns a new logger with the given fields pre-populated.
	With(fields ...Field) Logger
}

type noopLogger struct{}

// NoopLogger returns a logger that discards everything. It is the default
// when no logger is configured.
//
//nolint:ireturn // Factory function returns the interface on purpose
func NoopLogger() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(string, ...Field) {}
func (l *noopLogger) Info(string, ...Field)  {}
func (l *noopLogger) Warn(string, ...Field)  {}
func (l *noopLogger) Error(string, ...Field) {}

//nolint:ireturn // Method must return interface to satisfy Logger
func (l *noopLogger) With(...Field) Logger { return l }

// slogLogger adapts a *slog.Logger to the Logger interface.
type slogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps a *slog.Logger so it can be plugged into the client.
//
//nolint:ireturn // Factory function returns the interface on purpose
func NewSlogLogger(logger *slog.Logger) Logger {
	return &slogLogger{logger: logger}
}

func (l *slogLogger) Debug(msg string, fields ...Field) {
	l.logger.Debug(msg, slogArgs(fields)...)
}

func (l *slogLogger) Info(msg string, fields ...Field) {
	l.logger.Info(msg, slogArgs(fields)...)
}

func (l *slogLogger) Warn(msg string, fields ...Field) {
	l.logger.Warn(msg, slogArgs(fields)...)
}

func (l *slogLogger) Error(msg string, fields ...Field) {
	l.logger.Error(msg, slogArgs(fields)...)
}

//nolint:ireturn // Method must return interface to satisfy Logger
func (l *slogLogger) With(fields ...Field) Logger {
	return &slogLogger{logger: l.logger.With(slogArgs(fields)...)}
}

func slogArgs(fields []Field) []any {
	args := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	return args
}
