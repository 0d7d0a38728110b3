package index

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/starford/munin/internal/storage"
)

// Sync walks the store and brings the catalog up to date:
//   - new/changed files are upserted
//   - files removed from disk are deleted from the catalog
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if checksums[m.Path] == checksum(data) {
			continue
		}
		if err := IndexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteNote(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IndexFile upserts one store file into the catalog. The title comes from
// the file's leading heading, the category from its location in the tree.
func IndexFile(db *DB, relPath string, data []byte) error {
	return db.UpsertNote(NoteRow{
		Path:      relPath,
		Title:     deriveTitle(data),
		Category:  categoryFor(relPath),
		Checksum:  checksum(data),
		UpdatedAt: time.Now(),
	}, string(data))
}

// deriveTitle returns the first H1 heading, or empty string.
func deriveTitle(data []byte) string {
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// categoryFor maps a store path to its catalog category. Layout is fixed by
// the router: singleton files at the root, sharded categories per directory,
// plus the daily log and the master index.
func categoryFor(relPath string) string {
	rel := path.Clean(strings.ReplaceAll(relPath, "\\", "/"))
	switch rel {
	case "decisions.md":
		return "decision"
	case "todos.md":
		return "todo"
	case "index.md":
		return "index"
	}
	switch {
	case strings.HasPrefix(rel, "projects/"):
		return "project"
	case strings.HasPrefix(rel, "people/"):
		return "person"
	case strings.HasPrefix(rel, "daily/"):
		return "daily"
	}
	return "note"
}

func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
