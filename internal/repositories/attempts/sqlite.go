package attempts

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authcore/internal/dbx"
	"github.com/dmitrijs2005/authcore/internal/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Record(ctx context.Context, rec *models.AttemptRecord) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO attempts (account_id, attempted_at, success) VALUES (?, ?, ?)
	`, rec.AccountID, rec.Timestamp.UnixNano(), rec.Success)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read attempt id: %w", err)
	}
	rec.ID = id
	return nil
}

func (r *SQLiteRepository) CountFailuresSince(ctx context.Context, accountID string, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attempts WHERE account_id = ? AND success = 0 AND attempted_at >= ?
	`, accountID, since.UnixNano()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count failures: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) History(ctx context.Context, accountID string) ([]models.AttemptRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, attempted_at, success FROM attempts WHERE account_id = ? ORDER BY id
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	var result []models.AttemptRecord
	for rows.Next() {
		var (
			rec models.AttemptRecord
			ts  int64
		)
		if err := rows.Scan(&rec.ID, &rec.AccountID, &ts, &rec.Success); err != nil {
			return nil, fmt.Errorf("failed to scan attempt row: %w", err)
		}
		rec.Timestamp = time.Unix(0, ts).UTC()
		result = append(result, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attempt rows: %w", err)
	}

	return result, nil
}

func (r *SQLiteRepository) DeleteFor(ctx context.Context, accountID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM attempts WHERE account_id = ?`, accountID); err != nil {
		return fmt.Errorf("failed to delete attempts: %w", err)
	}
	return nil
}
