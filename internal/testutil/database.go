package testutil

import (
	"testing"

	"fv-go/internal/database"
)

// NewTestIndex creates an in-memory SQLite index with the schema migrated.
// The index is closed when the test completes.
func NewTestIndex(t *testing.T) *database.SQLiteDatabase {
	t.Helper()

	db, err := database.NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create index: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
