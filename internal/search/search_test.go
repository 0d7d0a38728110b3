package search

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/munin/internal/apperr"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestScore_CountsOccurrences(t *testing.T) {
	got := Score("the cat sat on the mat", []string{"the", "cat"})
	if got != 3 {
		t.Errorf("score = %d, want 3", got)
	}
}

func TestScore_CaseInsensitive(t *testing.T) {
	if got := Score("The CAT and the cat", []string{"cat"}); got != 2 {
		t.Errorf("score = %d, want 2", got)
	}
}

func TestScore_EmptyTerms(t *testing.T) {
	if got := Score("anything at all", nil); got != 0 {
		t.Errorf("score = %d, want 0", got)
	}
	if got := Score("anything", []string{""}); got != 0 {
		t.Errorf("empty term score = %d, want 0", got)
	}
}

func TestTerms(t *testing.T) {
	got := Terms("  Hello   WORLD  ")
	if len(got) != 2 || got[0] != "hello" || got[1] != "world" {
		t.Errorf("terms = %v", got)
	}
	if got := Terms("   "); got != nil {
		t.Errorf("blank query terms = %v, want nil", got)
	}
}

func TestFind_RankingAndFiltering(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "high.md", "vendor vendor vendor vendor vendor\n")
	writeFile(t, dir, "zero.md", "nothing relevant here\n")
	writeFile(t, dir, "mid.md", "vendor vendor vendor\n")

	hits, err := Find(dir, "vendor", 10)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(hits))
	}
	if filepath.Base(hits[0].Path) != "high.md" || hits[0].Score != 5 {
		t.Errorf("first hit = %+v", hits[0])
	}
	if filepath.Base(hits[1].Path) != "mid.md" || hits[1].Score != 3 {
		t.Errorf("second hit = %+v", hits[1])
	}
}

func TestFind_TieBrokenByRecency(t *testing.T) {
	dir := t.TempDir()
	older := writeFile(t, dir, "older.md", "vendor once\n")
	newer := writeFile(t, dir, "newer.md", "vendor here\n")

	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatal(err)
	}

	hits, err := Find(dir, "vendor", 10)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(hits))
	}
	if hits[0].Path != newer {
		t.Errorf("first hit = %q, want %q", hits[0].Path, newer)
	}
}

func TestFind_LimitEnforced(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 10; i++ {
		writeFile(t, dir, filepath.Join("sub", "n"+string(rune('a'+i))+".md"), "vendor match\n")
	}
	hits, err := Find(dir, "vendor", 2)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("hits = %d, want 2", len(hits))
	}
}

func TestFind_ExcerptIsFirstNonBlankLine(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "note.md", "\n\n# Decisions\n\nvendor stuff\n")

	hits, err := Find(dir, "vendor", 10)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(hits) != 1 || hits[0].Excerpt != "# Decisions" {
		t.Errorf("hits = %+v", hits)
	}
}

func TestFind_SkipsUnreadable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root; permission bits are not enforced")
	}
	dir := t.TempDir()
	writeFile(t, dir, "ok.md", "vendor fine\n")
	locked := writeFile(t, dir, "locked.md", "vendor hidden\n")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	hits, err := Find(dir, "vendor", 10)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(hits) != 1 || filepath.Base(hits[0].Path) != "ok.md" {
		t.Errorf("hits = %+v, want only ok.md", hits)
	}
}

func TestFind_MissingRoot(t *testing.T) {
	_, err := Find(filepath.Join(t.TempDir(), "nope"), "vendor", 10)
	if !errors.Is(err, apperr.ErrRootMissing) {
		t.Errorf("err = %v, want ErrRootMissing", err)
	}
}

func TestFind_IgnoresNonMarkdown(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "note.txt", "vendor vendor\n")
	hits, err := Find(dir, "vendor", 10)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("hits = %+v, want none", hits)
	}
}
