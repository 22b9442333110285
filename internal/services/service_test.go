package services

import (
	"database/sql"
	"testing"

	"github.com/isdelr/cronospark/internal/database"
	"github.com/stretchr/testify/require"
)

// newTestDB opens a migrated in-memory store. A single connection keeps every
// statement on the same memory database.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}
