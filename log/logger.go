// Package log defines the leveled, structured logging contract consumed by
// the core. The core calls it but never depends on its output.
package log

import "context"

// Fields is a bag of structured context attached to log events.
type Fields map[string]interface{}

// Logger is the leveled structured logger collaborator.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Fields)
	Info(ctx context.Context, msg string, fields ...Fields)
	Warn(ctx context.Context, msg string, fields ...Fields)
	Error(ctx context.Context, msg string, err error, fields ...Fields)
	// Child returns a logger scoped with the given fields attached to every
	// subsequent event.
	Child(fields Fields) Logger
}

// NewNop returns a logger that discards everything. Useful in tests.
//
//nolint:ireturn
func NewNop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...Fields)        {}
func (nopLogger) Info(context.Context, string, ...Fields)         {}
func (nopLogger) Warn(context.Context, string, ...Fields)         {}
func (nopLogger) Error(context.Context, string, error, ...Fields) {}
func (nopLogger) Child(Fields) Logger                             { return nopLogger{} }
