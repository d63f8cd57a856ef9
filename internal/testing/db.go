// Package testing provides testing helpers shared across packages.
package testing

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/aristath/assetsim/internal/database"
)

// NewTestDB creates a migrated SQLite database in a temporary directory.
// name selects the schema (e.g. "scenarios"); unknown names give an empty
// database. The database is closed when the test finishes.
func NewTestDB(t *testing.T, name string) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), fmt.Sprintf("test_%s.db", name)),
		Profile: database.ProfileStandard,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
	})

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	return db
}
