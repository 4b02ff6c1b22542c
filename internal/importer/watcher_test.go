package importer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/roamdeck/internal/collection"
	"github.com/starford/roamdeck/internal/testutil"
)

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

func noteCount(db *collection.DB) int {
	_, total, _ := db.ListNotes(context.Background(), collection.ListOptions{})
	return total
}

func TestWatcher_NewExportImported(t *testing.T) {
	db := testutil.TestDB(t)
	testutil.SeedModel(t, db)
	im := newImporter(t, db)
	dir, inbox := testutil.TestInbox(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string
	go im.Watch(ctx, inbox, inbox.Root(), func(kind, path string, s Summary) {
		mu.Lock()
		events = append(events, kind+":"+path)
		mu.Unlock()
	})
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(dir, "graph.json"), []byte(clozeExport), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return noteCount(db) == 1
	}, "export not imported by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "created:graph.json" {
				return true
			}
		}
		return false
	}, "expected created:graph.json callback")
}

func TestWatcher_NewDirWatched(t *testing.T) {
	db := testutil.TestDB(t)
	testutil.SeedModel(t, db)
	im := newImporter(t, db)
	dir, inbox := testutil.TestInbox(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go im.Watch(ctx, inbox, inbox.Root(), nil)
	time.Sleep(100 * time.Millisecond)

	sub := filepath.Join(dir, "2024")
	_ = os.MkdirAll(sub, 0o755)
	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(sub, "graph.json"), []byte(clozeExport), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return noteCount(db) == 1
	}, "export in new subdir not imported")
}

func TestWatcher_RemoveKeepsNotes(t *testing.T) {
	db := testutil.TestDB(t)
	testutil.SeedModel(t, db)
	im := newImporter(t, db)
	dir, inbox := testutil.TestInbox(t)
	_ = inbox.Write("graph.json", []byte(clozeExport))
	if _, err := im.Sync(context.Background(), inbox); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go im.Watch(ctx, inbox, inbox.Root(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(dir, "graph.json"))
	time.Sleep(500 * time.Millisecond)

	if n := noteCount(db); n != 1 {
		t.Errorf("notes = %d, want 1 after export removed", n)
	}
}
