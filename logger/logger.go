package logger

import "context"

// Fields carries structured key-value pairs attached to a log entry.
type Fields map[string]interface{}

// Logger is the structured logging interface used across the service.
type Logger interface {
	Debug(ctx context.Context, msg string, fields Fields)
	Info(ctx context.Context, msg string, fields Fields)
	Warn(ctx context.Context, msg string, fields Fields)
	Error(ctx context.Context, msg string, fields Fields)

	// WithFields returns a logger that attaches the given fields to every
	// subsequent entry.
	WithFields(fields Fields) Logger
}
