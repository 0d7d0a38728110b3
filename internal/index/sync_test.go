package index

import (
	"log/slog"
	"os"
	"testing"

	"github.com/starford/munin/internal/storage"
)

func syncTestEnv(t *testing.T) (storage.Provider, *DB, *slog.Logger) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return store, testDB(t), logger
}

func TestSync_IndexesNewFiles(t *testing.T) {
	store, db, logger := syncTestEnv(t)
	_ = store.EnsureFile("decisions.md", "Decisions")
	_ = store.EnsureFile("topics/glaciers.md", "Topic: glaciers")

	if err := Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	rows, total, err := db.ListNotes(10, 0, "")
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("total = %d, rows = %d, want 2", total, len(rows))
	}

	decisions, _, _ := db.ListNotes(10, 0, "decision")
	if len(decisions) != 1 || decisions[0].Title != "Decisions" {
		t.Errorf("decision rows = %+v", decisions)
	}
}

func TestSync_RemovesStaleEntries(t *testing.T) {
	store, db, logger := syncTestEnv(t)
	_ = store.EnsureFile("todos.md", "Todos")
	if err := Sync(db, store, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if err := os.Remove(store.Root() + "/todos.md"); err != nil {
		t.Fatal(err)
	}
	if err := Sync(db, store, logger); err != nil {
		t.Fatalf("Sync after remove: %v", err)
	}

	cs, _ := db.GetChecksum("todos.md")
	if cs != "" {
		t.Errorf("stale entry survived sync: %q", cs)
	}
}

func TestSync_SkipsUnchanged(t *testing.T) {
	store, db, logger := syncTestEnv(t)
	_ = store.EnsureFile("decisions.md", "Decisions")
	if err := Sync(db, store, logger); err != nil {
		t.Fatal(err)
	}
	first, _ := db.GetChecksum("decisions.md")

	if err := Sync(db, store, logger); err != nil {
		t.Fatal(err)
	}
	second, _ := db.GetChecksum("decisions.md")
	if first == "" || first != second {
		t.Errorf("checksum changed across no-op sync: %q vs %q", first, second)
	}
}

func TestIndexFile_DerivesTitleAndCategory(t *testing.T) {
	_, db, _ := syncTestEnv(t)
	data := []byte("# Person: sarah-chen\n\nbody text\n")
	if err := IndexFile(db, "people/sarah-chen.md", data); err != nil {
		t.Fatalf("IndexFile: %v", err)
	}
	rows, _, err := db.ListNotes(10, 0, "person")
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(rows) != 1 || rows[0].Title != "Person: sarah-chen" {
		t.Errorf("rows = %+v", rows)
	}
}
