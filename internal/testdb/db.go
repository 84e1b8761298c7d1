package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/todoapp/notifier/internal/platform/logger"
	"github.com/todoapp/notifier/internal/platform/postgres"
)

// TestTimeout bounds connection setup and migrations.
const TestTimeout = 30 * time.Second

// DatabaseURL returns the test database URL, checking NOTIFIER_DATABASE_URL
// then DATABASE_URL.
func DatabaseURL() string {
	if url := os.Getenv("NOTIFIER_DATABASE_URL"); url != "" {
		return url
	}
	return os.Getenv("DATABASE_URL")
}

// IsIntegrationTestEnvironment reports whether a test database is configured.
func IsIntegrationTestEnvironment() bool {
	return DatabaseURL() != ""
}

// Open connects to the test database and applies all migrations. It skips
// the test when no database is configured and closes the pool on cleanup.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	if !IsIntegrationTestEnvironment() {
		t.Skip("Skipping integration test - NOTIFIER_DATABASE_URL environment variable required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := postgres.Open(ctx, DatabaseURL())
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})

	require.NoError(t, postgres.Migrate(ctx, db, "up", logger.Discard()), "failed to run migrations")
	return db
}

// WithTx runs fn inside a transaction that is always rolled back, so tests
// never see each other's rows.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}
