// Package testutil provides shared test helpers for collections and inboxes.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/starford/roamdeck/internal/collection"
	"github.com/starford/roamdeck/internal/reconcile"
	"github.com/starford/roamdeck/internal/storage"
)

// ModelName is the note model created by SeedModel.
const ModelName = "Roam Cloze"

// Fields is the field mapping matching the model created by SeedModel.
var Fields = reconcile.FieldMap{
	Text:         "Text",
	RoamText:     "Roam Text",
	Source:       "Source",
	Graph:        "Graph",
	PageTitle:    "Page Title",
	PageID:       "Page ID",
	BlockID:      "Block ID",
	BlockCreated: "Block Created",
	BlockUpdated: "Block Updated",
}

// TestDB creates a temporary SQLite collection that is automatically cleaned up.
func TestDB(t *testing.T) *collection.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "roamdeck-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := collection.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// SeedModel creates ModelName with every field in Fields.
func SeedModel(t *testing.T, db *collection.DB) {
	t.Helper()
	if _, err := db.CreateModel(context.Background(), ModelName, Fields.Names()); err != nil {
		t.Fatalf("CreateModel: %v", err)
	}
}

// TestInbox creates a temporary export inbox.
func TestInbox(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}
