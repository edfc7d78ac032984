// Package repomanager vends repositories for the configured database and
// runs its embedded migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authcore/internal/dbx"
	"github.com/dmitrijs2005/authcore/internal/filex"
	"github.com/dmitrijs2005/authcore/internal/repositories/accounts"
	"github.com/dmitrijs2005/authcore/internal/repositories/attempts"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Attempts(db dbx.DBTX) attempts.Repository
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Open connects to the database named by driver ("sqlite" or "postgres")
// and dsn, verifies the connection and returns the matching manager.
// For SQLite dsn is a file path; its directory is created when missing.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, RepositoryManager, error) {
	var (
		db  *sql.DB
		m   RepositoryManager
		err error
	)

	switch driver {
	case "sqlite":
		if !strings.HasPrefix(dsn, "file:") {
			if _, err := filex.EnsureParentDir(dsn); err != nil {
				return nil, nil, fmt.Errorf("db dir error: %w", err)
			}
		}
		db, err = sql.Open("sqlite", dbx.SQLiteDSN(dsn))
		m = NewSQLiteRepositoryManager()
	case "postgres":
		db, err = sql.Open("pgx", dsn)
		m = NewPostgresRepositoryManager()
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, dbx.Classify(fmt.Errorf("db ping error: %w", err))
	}

	return db, m, nil
}
