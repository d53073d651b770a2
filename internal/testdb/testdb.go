// Package testdb provides helpers for integration tests that run against a
// real PostgreSQL database. Tests using it are skipped unless DATABASE_URL is
// set, so the default test run stays hermetic.
package testdb

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	"github.com/feedscribe/feedscribe/migrations"
)

// EnvDatabaseURL is the environment variable holding the test database URL.
const EnvDatabaseURL = "DATABASE_URL"

var migrateOnce sync.Once

// GetTestDatabaseURL returns the configured test database URL, or an empty
// string when integration tests should be skipped.
func GetTestDatabaseURL() string {
	return os.Getenv(EnvDatabaseURL)
}

// NewDB opens a connection to the test database and ensures the schema is
// migrated. The test is skipped when no database is configured and the
// connection is closed when the test finishes.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()

	url := GetTestDatabaseURL()
	if url == "" {
		t.Skipf("integration test requires %s", EnvDatabaseURL)
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "test database is not reachable")

	migrateOnce.Do(func() {
		goose.SetBaseFS(migrations.FS)
		require.NoError(t, goose.SetDialect("postgres"))
		require.NoError(t, goose.Up(db, "."))
	})

	return db
}

// WithTx runs fn inside a transaction that is always rolled back, keeping
// tests isolated from each other regardless of what they write.
func WithTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	fn(tx)
}
