// Package testutils provides helpers for database integration tests.
//
// Integration tests require a reachable PostgreSQL instance named by the
// DATABASE_URL environment variable and are skipped otherwise. Each test runs
// inside a transaction that is rolled back on completion, so tests can run in
// parallel against the same database without interfering with each other and
// without manual cleanup.
package testutils

import (
	"database/sql"
	"os"
	"sync"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/stretchr/testify/require"

	"github.com/dschilow/Avatales-Backend-sub001/internal/platform/postgres"
)

var migrateOnce sync.Once

// IntegrationDatabaseURL returns the test database URL, or an empty string
// when integration tests should be skipped.
func IntegrationDatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// GetTestDB opens a connection to the integration test database and ensures
// the schema is migrated. The test is skipped when DATABASE_URL is unset; the
// connection is closed automatically when the test finishes.
func GetTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := IntegrationDatabaseURL()
	if url == "" {
		t.Skip("Skipping integration test - requires DATABASE_URL environment variable")
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Ping(), "failed to reach test database")

	migrateOnce.Do(func() {
		err = postgres.MigrateUp(db)
	})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// WithTx runs fn inside a transaction that is rolled back afterwards,
// regardless of the test outcome.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin test transaction")
	defer func() { _ = tx.Rollback() }()

	fn(t, tx)
}
