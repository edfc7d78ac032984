// Package logging is the structured logger used by every authcore
// component. SlogLogger writes JSON through log/slog; SentryLogger adds
// error reporting on top of any Logger.
package logging

import "context"

// Logger takes the request context first and key/value pairs after the
// message:
//
//	logger.Warn(ctx, "account locked", "account_id", id, "until", until)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger carrying args on every entry.
	With(args ...any) Logger
}
