// Package testutil provides shared test helpers for setting up contact
// vaults and databases.
package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/halvard/gebo/internal/index"
	"github.com/halvard/gebo/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "gebo-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary contacts directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store
}

// FixedClock returns a clock function pinned to the given time.
func FixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
