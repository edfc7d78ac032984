package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/authcore/internal/common"
	"github.com/dmitrijs2005/authcore/internal/migrations"
	"github.com/dmitrijs2005/authcore/internal/models"
	"github.com/dmitrijs2005/authcore/internal/repositories/accounts"
	"github.com/dmitrijs2005/authcore/internal/repositories/attempts"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db := newDB(t)

	pg := NewPostgresRepositoryManager()
	assert.IsType(t, &accounts.PostgresRepository{}, pg.Accounts(db))
	assert.IsType(t, &attempts.PostgresRepository{}, pg.Attempts(db))

	lite := NewSQLiteRepositoryManager()
	assert.IsType(t, &accounts.SQLiteRepository{}, lite.Accounts(db))
	assert.IsType(t, &attempts.SQLiteRepository{}, lite.Attempts(db))

	var _ RepositoryManager = pg
	var _ RepositoryManager = lite
}

func stubGoose(t *testing.T, fn func(dir string) error) {
	t.Helper()
	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return fn(dir)
	}
	t.Cleanup(func() { gooseUpContext = orig })
}

func TestRunMigrations_Dirs(t *testing.T) {
	db := newDB(t)

	var got []string
	stubGoose(t, func(dir string) error {
		got = append(got, dir)
		return nil
	})

	require.NoError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), db))
	require.NoError(t, NewSQLiteRepositoryManager().RunMigrations(context.Background(), db))
	assert.Equal(t, []string{migrations.PostgresDir, migrations.SQLiteDir}, got)
}

func TestRunMigrations_Error(t *testing.T) {
	db := newDB(t)
	stubGoose(t, func(string) error { return errors.New("boom") })

	err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db)
	require.EqualError(t, err, "boom")
}

func TestOpen_SQLiteEndToEnd(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "users.db")

	db, m, err := Open(ctx, "sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.IsType(t, &SQLiteRepositoryManager{}, m)

	require.NoError(t, m.RunMigrations(ctx, db))
	require.NoError(t, m.RunMigrations(ctx, db), "migrations are idempotent")

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	acc := &models.Account{ID: "a1", Email: "user@example.com", PasswordHash: "h", CreatedAt: now, LockedUntil: now}
	require.NoError(t, m.Accounts(db).Create(ctx, acc))
	require.NoError(t, m.Attempts(db).Record(ctx, &models.AttemptRecord{AccountID: "a1", Timestamp: now}))

	h, err := m.Attempts(db).History(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, h, 1)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, _, err := Open(context.Background(), "mysql", "x")
	require.Error(t, err)
}

func TestOpen_PostgresUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, _, err := Open(ctx, "postgres", "postgres://u:p@127.0.0.1:1/auth?sslmode=disable&connect_timeout=1")
	require.ErrorIs(t, err, common.ErrStorageUnavailable)
}
