// Package storagetest provides a migrated in-memory database for store tests.
package storagetest

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"gymhub/internal/adapters/storage"
)

// NewDB opens a fresh in-memory database with every migration applied.
// The database is closed when the test finishes.
func NewDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := storage.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.MigrateDB(db))
	return db
}

// Exec runs seed statements and fails the test on the first error.
func Exec(t testing.TB, db *sql.DB, stmts ...string) {
	t.Helper()
	for _, q := range stmts {
		_, err := db.Exec(q)
		require.NoError(t, err, q)
	}
}
