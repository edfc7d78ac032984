package logging

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry configures the global Sentry client. An empty dsn disables
// reporting and is not an error.
func InitSentry(dsn, environment string) error {
	if dsn == "" {
		return nil
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		AttachStacktrace: true,
	})
}

func FlushSentry() {
	sentry.Flush(2 * time.Second)
}

// SentryLogger forwards every Error entry to the wrapped Logger and reports
// it to Sentry as well. When the entry carries an "error" attribute holding
// an error value, that error is captured; otherwise the message is.
type SentryLogger struct {
	next   Logger
	hub    *sentry.Hub
	fields []any
}

func NewSentryLogger(next Logger, hub *sentry.Hub) *SentryLogger {
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	return &SentryLogger{next: next, hub: hub}
}

func (s *SentryLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.next.Debug(ctx, msg, args...)
}

func (s *SentryLogger) Info(ctx context.Context, msg string, args ...any) {
	s.next.Info(ctx, msg, args...)
}

func (s *SentryLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.next.Warn(ctx, msg, args...)
}

func (s *SentryLogger) Error(ctx context.Context, msg string, args ...any) {
	s.next.Error(ctx, msg, args...)
	s.capture(msg, args)
}

func (s *SentryLogger) With(args ...any) Logger {
	fields := append(append([]any{}, s.fields...), args...)
	return &SentryLogger{next: s.next.With(args...), hub: s.hub, fields: fields}
}

func (s *SentryLogger) capture(msg string, args []any) {
	if s.hub.Client() == nil {
		return
	}

	all := append(append([]any{}, s.fields...), args...)

	s.hub.WithScope(func(scope *sentry.Scope) {
		var captured error
		attrs := sentry.Context{"message": msg}
		for i := 0; i+1 < len(all); i += 2 {
			key := fmt.Sprint(all[i])
			if err, ok := all[i+1].(error); ok && key == "error" {
				captured = err
				continue
			}
			attrs[key] = all[i+1]
		}
		scope.SetContext("log", attrs)

		if captured != nil {
			s.hub.CaptureException(captured)
			return
		}
		s.hub.CaptureMessage(msg)
	})
}
