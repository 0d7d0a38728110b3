// Package search implements occurrence-count retrieval over the note store.
package search

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/starford/munin/internal/apperr"
	"github.com/starford/munin/internal/models"
	"github.com/starford/munin/internal/storage"
)

// DefaultLimit caps result counts when the caller passes a non-positive limit.
const DefaultLimit = 8

// Score returns the sum over terms of non-overlapping substring occurrences
// in the lowercased text. Total over any input; an empty term list scores 0.
func Score(text string, terms []string) int {
	low := strings.ToLower(text)
	total := 0
	for _, t := range terms {
		if t == "" {
			continue
		}
		total += strings.Count(low, t)
	}
	return total
}

// Terms splits a raw query on whitespace and lowercases each term,
// discarding empties.
func Terms(query string) []string {
	var out []string
	for _, t := range strings.Fields(query) {
		out = append(out, strings.ToLower(t))
	}
	return out
}

type hit struct {
	models.SearchHit
	mtime time.Time
}

// Find walks every .md file under root, scores it against the query, and
// returns up to limit hits ordered by score descending, ties broken by
// last-modified time descending. Zero-score documents are dropped and
// unreadable documents are silently skipped. Each call recomputes from
// scratch; nothing is cached.
func Find(root, query string, limit int) ([]models.SearchHit, error) {
	expanded, err := storage.ExpandHome(root)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return nil, fmt.Errorf("search: resolve root: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("search: %s: %w", abs, apperr.ErrRootMissing)
	}

	if limit <= 0 {
		limit = DefaultLimit
	}
	terms := Terms(query)

	var hits []hit
	_ = filepath.WalkDir(abs, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil
		}
		s := Score(string(data), terms)
		if s <= 0 {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		hits = append(hits, hit{
			SearchHit: models.SearchHit{Score: s, Path: p, Excerpt: firstLine(string(data))},
			mtime:     info.ModTime(),
		})
		return nil
	})

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].mtime.After(hits[j].mtime)
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]models.SearchHit, len(hits))
	for i, h := range hits {
		out[i] = h.SearchHit
	}
	return out, nil
}

// firstLine returns the first non-blank line, trimmed, as a preview.
func firstLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}
