// Package accounts is the credential store: one row per registered account,
// keyed by a durable ID with a unique email.
//
// Lookups return common.ErrNotFound for a missing row; Create and
// UpdateEmail return common.ErrDuplicateEmail when the email is taken.
// Every method is a single statement; callers needing more run inside
// dbx.WithTx with a repository bound to the transaction.
package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authcore/internal/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	// FindByIDForUpdate reads the account and, where the driver supports
	// it, holds its row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id string) (*models.Account, error)
	UpdateEmail(ctx context.Context, id, email string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
	Lock(ctx context.Context, id string, until time.Time) error
	IsLocked(ctx context.Context, id string, now time.Time) (bool, error)
}
