package services

import (
	"database/sql"
	"testing"

	"github.com/isdelr/tripscribe-be/internal/database"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// A second pool connection would get its own empty in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// registerTestUser creates an account and returns its id.
func registerTestUser(t *testing.T, db *sql.DB, email string) string {
	t.Helper()
	user, err := NewUserService(db).Register("Test User", email, "pw123")
	require.NoError(t, err)
	return user.ID
}
