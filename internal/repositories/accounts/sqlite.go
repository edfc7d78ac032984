package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authcore/internal/common"
	"github.com/dmitrijs2005/authcore/internal/dbx"
	"github.com/dmitrijs2005/authcore/internal/models"
)

// SQLiteRepository stores timestamps as Unix nanoseconds. It has no row
// locks; transactions must be opened with _txlock=immediate so the first
// statement already holds the write lock.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, account *models.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, email, password_hash, created_at, locked_until)
		VALUES (?, ?, ?, ?, ?)
	`, account.ID, account.Email, account.PasswordHash,
		account.CreatedAt.UnixNano(), account.LockedUntil.UnixNano())

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.scanOne(ctx, `
		SELECT id, email, password_hash, created_at, locked_until FROM accounts WHERE email = ?
	`, email)
}

func (r *SQLiteRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	return r.scanOne(ctx, `
		SELECT id, email, password_hash, created_at, locked_until FROM accounts WHERE id = ?
	`, id)
}

func (r *SQLiteRepository) FindByIDForUpdate(ctx context.Context, id string) (*models.Account, error) {
	return r.FindByID(ctx, id)
}

func (r *SQLiteRepository) scanOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	var (
		a                    models.Account
		created, lockedUntil int64
	)

	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&a.ID, &a.Email, &a.PasswordHash, &created, &lockedUntil)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	a.CreatedAt = time.Unix(0, created).UTC()
	a.LockedUntil = time.Unix(0, lockedUntil).UTC()
	return &a, nil
}

func (r *SQLiteRepository) UpdateEmail(ctx context.Context, id, email string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET email = ? WHERE id = ?`, email, id)
	if err != nil && dbx.IsUniqueViolation(err) {
		return common.ErrDuplicateEmail
	}
	return expectOneRow(res, err)
}

func (r *SQLiteRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET password_hash = ? WHERE id = ?`, passwordHash, id)
	return expectOneRow(res, err)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	return expectOneRow(res, err)
}

func (r *SQLiteRepository) Lock(ctx context.Context, id string, until time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET locked_until = ? WHERE id = ?`, until.UnixNano(), id)
	return expectOneRow(res, err)
}

func (r *SQLiteRepository) IsLocked(ctx context.Context, id string, now time.Time) (bool, error) {
	var locked bool
	err := r.db.QueryRowContext(ctx, `SELECT locked_until > ? FROM accounts WHERE id = ?`, now.UnixNano(), id).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return false, common.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to check lock: %w", err)
	}
	return locked, nil
}
