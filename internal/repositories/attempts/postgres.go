package attempts

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authcore/internal/dbx"
	"github.com/dmitrijs2005/authcore/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Record(ctx context.Context, rec *models.AttemptRecord) error {
	query :=
		`INSERT INTO attempts (account_id, attempted_at, success)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query, rec.AccountID, rec.Timestamp, rec.Success).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) CountFailuresSince(ctx context.Context, accountID string, since time.Time) (int, error) {
	query :=
		`SELECT COUNT(*) FROM attempts
		 WHERE account_id = $1 AND success = false AND attempted_at >= $2
		 `

	var n int
	if err := r.db.QueryRowContext(ctx, query, accountID, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}

func (r *PostgresRepository) History(ctx context.Context, accountID string) ([]models.AttemptRecord, error) {
	query :=
		`SELECT id, account_id, attempted_at, success FROM attempts
		 WHERE account_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.AttemptRecord
	for rows.Next() {
		var rec models.AttemptRecord
		if err := rows.Scan(&rec.ID, &rec.AccountID, &rec.Timestamp, &rec.Success); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		rec.Timestamp = rec.Timestamp.UTC()
		result = append(result, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) DeleteFor(ctx context.Context, accountID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM attempts WHERE account_id = $1`, accountID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
