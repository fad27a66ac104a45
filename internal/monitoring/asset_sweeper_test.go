package monitoring

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/isdelr/tripscribe-be/internal/database"
	"github.com/isdelr/tripscribe-be/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestNewAssetSweeper_InvalidSchedule(t *testing.T) {
	_, err := NewAssetSweeper(nil, t.TempDir(), "not a cron expression")
	assert.Error(t, err)
}

func TestReferencedNames(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// A second pool connection would get its own empty in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))

	user, err := services.NewUserService(db).Register("Alice", "alice@example.com", "pw123")
	require.NoError(t, err)

	uploads := t.TempDir()
	storySvc := services.NewStoryService(db, services.NewAssetService(uploads))

	referencedIn := services.StoryInput{
		Title:            "Paris",
		Story:            "...",
		VisitedLocations: []string{"Paris"},
		VisitedDate:      1700000000000,
		ImageURL:         "http://localhost:8000/uploads/linked.png",
	}
	_, err = storySvc.Create(user.ID, referencedIn)
	require.NoError(t, err)

	placeholderIn := referencedIn
	placeholderIn.ImageURL = ""
	_, err = storySvc.Create(user.ID, placeholderIn)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(uploads, "linked.png"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(uploads, "orphan.png"), []byte("x"), 0644))

	sweeper, err := NewAssetSweeper(db, uploads, "0 3 * * *")
	require.NoError(t, err)

	referenced, err := sweeper.referencedNames()
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"linked.png": true}, referenced)

	// A full sweep over the directory runs clean.
	sweeper.sweep()
}
