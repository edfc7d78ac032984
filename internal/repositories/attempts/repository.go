// Package attempts is the attempt ledger: an append-only record of login
// attempts per account. Records are never updated; they go away only with
// their account.
package attempts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authcore/internal/models"
)

type Repository interface {
	// Record appends r and sets r.ID to its insertion sequence.
	Record(ctx context.Context, r *models.AttemptRecord) error
	// CountFailuresSince counts failed attempts with Timestamp >= since.
	CountFailuresSince(ctx context.Context, accountID string, since time.Time) (int, error)
	// History returns every record of the account in insertion order.
	History(ctx context.Context, accountID string) ([]models.AttemptRecord, error)
	DeleteFor(ctx context.Context, accountID string) error
}
