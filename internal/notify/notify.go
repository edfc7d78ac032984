// Package notify delivers the best-effort message sent after a successful
// registration. Nothing here is on the critical path: callers log failures
// and move on.
package notify

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authcore/internal/logging"
)

// Registration describes a freshly created account.
type Registration struct {
	AccountID      string    `json:"account_id"`
	Email          string    `json:"email"`
	ActivationLink string    `json:"activation_link,omitempty"`
	RegisteredAt   time.Time `json:"registered_at"`
}

type Notifier interface {
	NotifyRegistration(ctx context.Context, r Registration) error
}

// LogNotifier writes the activation link to the log instead of sending it.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyRegistration(ctx context.Context, r Registration) error {
	n.logger.Info(ctx, "registration notification",
		"account_id", r.AccountID,
		"email", r.Email,
		"activation_link", r.ActivationLink,
	)
	return nil
}
