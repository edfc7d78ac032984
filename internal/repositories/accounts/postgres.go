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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) error {
	query :=
		`INSERT INTO accounts (id, email, password_hash, created_at, locked_until)
		 VALUES ($1, $2, $3, $4, $5)
		 `

	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.Email, account.PasswordHash, account.CreatedAt, account.LockedUntil)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrDuplicateEmail
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query :=
		`SELECT id, email, password_hash, created_at, locked_until FROM accounts
		 WHERE email = $1
		 `
	return r.scanOne(ctx, query, email)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	query :=
		`SELECT id, email, password_hash, created_at, locked_until FROM accounts
		 WHERE id = $1
		 `
	return r.scanOne(ctx, query, id)
}

func (r *PostgresRepository) FindByIDForUpdate(ctx context.Context, id string) (*models.Account, error) {
	query :=
		`SELECT id, email, password_hash, created_at, locked_until FROM accounts
		 WHERE id = $1
		 FOR UPDATE
		 `
	return r.scanOne(ctx, query, id)
}

func (r *PostgresRepository) scanOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	a := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.LockedUntil)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	a.CreatedAt = a.CreatedAt.UTC()
	a.LockedUntil = a.LockedUntil.UTC()
	return a, nil
}

func (r *PostgresRepository) UpdateEmail(ctx context.Context, id, email string) error {
	query :=
		`UPDATE accounts SET email = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, email)
	if err != nil && dbx.IsUniqueViolation(err) {
		return common.ErrDuplicateEmail
	}
	return expectOneRow(res, err)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query :=
		`UPDATE accounts SET password_hash = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, passwordHash)
	return expectOneRow(res, err)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	return expectOneRow(res, err)
}

func (r *PostgresRepository) Lock(ctx context.Context, id string, until time.Time) error {
	query :=
		`UPDATE accounts SET locked_until = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, until)
	return expectOneRow(res, err)
}

func (r *PostgresRepository) IsLocked(ctx context.Context, id string, now time.Time) (bool, error) {
	query :=
		`SELECT locked_until > $2 FROM accounts
		 WHERE id = $1
		 `

	var locked bool
	err := r.db.QueryRowContext(ctx, query, id, now).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, common.ErrNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}

	return locked, nil
}

// expectOneRow turns an Exec result into ErrNotFound when no row matched.
func expectOneRow(res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
