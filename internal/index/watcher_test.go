package index

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/halvard/gebo/internal/storage"
)

// watcherTestEnv sets up a contacts dir, storage, and DB for watcher tests.
func watcherTestEnv(t *testing.T) (string, storage.Provider, *DB) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store, testDB(t)
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatcher_NewDocumentIndexed(t *testing.T) {
	root, store, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string

	go Watch(ctx, db, store, root, "CONTACT_BIRTHDAY", quietLogger(), func(kind, path string) {
		mu.Lock()
		events = append(events, kind+":"+path)
		mu.Unlock()
	})

	// Give the watcher a moment to start.
	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(root+"/jane.md", []byte(janeSrc), 0o644); err != nil {
		t.Fatal(err)
	}

	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		row, err := db.GetDocument("jane.md")
		return err == nil && row.Title == "Jane Doe"
	}, "new document was not indexed")

	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) > 0
	}, "no callback fired for new document")
}

func TestWatcher_RemovedDocumentDeleted(t *testing.T) {
	root, store, db := watcherTestEnv(t)
	_ = store.Write("gone.md", []byte("# Gone\n"))
	if err := Sync(db, store, "CONTACT_BIRTHDAY", quietLogger()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, db, store, root, "CONTACT_BIRTHDAY", quietLogger(), nil)
	time.Sleep(200 * time.Millisecond)

	if err := os.Remove(root + "/gone.md"); err != nil {
		t.Fatal(err)
	}

	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		paths, err := db.AllPaths()
		if err != nil {
			return false
		}
		_, ok := paths["gone.md"]
		return !ok
	}, "removed document still indexed")
}
