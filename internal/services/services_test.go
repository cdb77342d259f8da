package services

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/aboutme-website/aboutme-be/internal/database"
	"github.com/stretchr/testify/require"
)

// testDB opens a migrated throwaway database. A file-backed database is used
// because every pool connection to :memory: would see its own empty schema.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}
