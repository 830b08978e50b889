package logger

import (
	"context"
	"sync"
)

// Entry is a single log record captured by the test logger.
type Entry struct {
	Level   string
	Message string
	Fields  Fields
}

// TestLogger captures log entries in memory for assertions in tests.
type TestLogger struct {
	mu      *sync.Mutex
	entries *[]Entry
	bound   Fields
}

// NewTestLogger creates an empty capturing logger.
func NewTestLogger() *TestLogger {
	entries := make([]Entry, 0)
	return &TestLogger{mu: &sync.Mutex{}, entries: &entries, bound: Fields{}}
}

func (l *TestLogger) record(level, msg string, fields Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()

	merged := make(Fields, len(l.bound)+len(fields))
	for k, v := range l.bound {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	*l.entries = append(*l.entries, Entry{Level: level, Message: msg, Fields: merged})
}

func (l *TestLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.record("debug", msg, fields)
}

func (l *TestLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.record("info", msg, fields)
}

func (l *TestLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.record("warn", msg, fields)
}

func (l *TestLogger) Error(ctx context.Context, msg string, fields Fields) {
	l.record("error", msg, fields)
}

// WithFields returns a logger sharing this logger's captured entries.
func (l *TestLogger) WithFields(fields Fields) Logger {
	bound := make(Fields, len(l.bound)+len(fields))
	for k, v := range l.bound {
		bound[k] = v
	}
	for k, v := range fields {
		bound[k] = v
	}
	return &TestLogger{mu: l.mu, entries: l.entries, bound: bound}
}

// Entries returns a copy of all captured entries.
func (l *TestLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(*l.entries))
	copy(out, *l.entries)
	return out
}
