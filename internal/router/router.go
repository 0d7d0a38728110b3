// Package router turns classified notes into appends against the note store:
// a destination file per category, a daily log digest, and a master index.
package router

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/starford/munin/internal/classify"
	"github.com/starford/munin/internal/models"
	"github.com/starford/munin/internal/slug"
	"github.com/starford/munin/internal/storage"
)

const (
	indexFile  = "index.md"
	indexTitle = "Memory Index"
	dailyDir   = "daily"

	// Fixed confidence recorded in every entry's metadata block.
	confidence = "0.70"
)

// indexLineRe captures the link target of a rendered index line.
var indexLineRe = regexp.MustCompile(`^- \[[^\]]*\]\(([^)]+)\)`)

// destination describes where a category's notes land. Sharded categories
// derive a per-topic file under Dir; singletons use File as-is.
type destination struct {
	File        string // singleton file, empty when sharded
	Dir         string // shard directory, empty for singletons
	Title       string // singleton title
	TitlePrefix string // sharded title prefix, e.g. "Project"
}

// destinations maps every category the classifier can emit to a rule.
// preference shares the topics directory with note but keeps its own title
// prefix, so the mapping is total.
var destinations = map[models.Category]destination{
	models.CategoryDecision:   {File: "decisions.md", Title: "Decisions"},
	models.CategoryTodo:       {File: "todos.md", Title: "Todos"},
	models.CategoryProject:    {Dir: "projects", TitlePrefix: "Project"},
	models.CategoryPerson:     {Dir: "people", TitlePrefix: "Person"},
	models.CategoryPreference: {Dir: "topics", TitlePrefix: "Preference"},
	models.CategoryNote:       {Dir: "topics", TitlePrefix: "Topic"},
}

// Router routes notes into the store. It holds no state across calls beyond
// its collaborators.
type Router struct {
	store      storage.Provider
	classifier *classify.Classifier
}

// New creates a Router over the given store and classifier. A nil classifier
// uses the default keyword table.
func New(store storage.Provider, classifier *classify.Classifier) *Router {
	if classifier == nil {
		classifier = classify.New(nil)
	}
	return &Router{store: store, classifier: classifier}
}

// Route classifies the note, appends an entry block to its destination file,
// appends a one-line digest to the daily log, and records the destination in
// the master index. Duplicate notes and unknown sources are not errors; only
// store I/O failures are.
func (r *Router) Route(note models.Note) (models.RouteResult, error) {
	when := note.When
	if when.IsZero() {
		when = time.Now()
	}

	category := r.classifier.Classify(note.Text)
	rel, topic, title := resolve(category, note.Text)

	if err := r.store.EnsureFile(rel, title); err != nil {
		return models.RouteResult{}, fmt.Errorf("router: ensure destination: %w", err)
	}
	if err := r.store.Append(rel, renderEntry(category, note, when)); err != nil {
		return models.RouteResult{}, fmt.Errorf("router: append entry: %w", err)
	}
	if err := r.appendDaily(category, note.Text, when); err != nil {
		return models.RouteResult{}, err
	}
	if err := r.updateIndex(rel, category); err != nil {
		return models.RouteResult{}, err
	}

	return models.RouteResult{
		Category: category,
		Path:     rel,
		AbsPath:  filepath.Join(r.store.Root(), filepath.FromSlash(rel)),
		Topic:    topic,
	}, nil
}

// resolve computes the relative destination path, topic slug (empty for
// singletons), and file title for a category. Both the path and the title
// derive the topic from the same text, so they always agree.
func resolve(category models.Category, text string) (rel, topic, title string) {
	d := destinations[category]
	if d.File != "" {
		return d.File, "", d.Title
	}
	topic = slug.ExtractTopic(text)
	rel = path.Join(d.Dir, topic+".md")
	title = d.TitlePrefix + ": " + topic
	return rel, topic, title
}

// renderEntry formats the append unit: a minute-precision heading, a
// metadata block, and the trimmed note text.
func renderEntry(category models.Category, note models.Note, when time.Time) string {
	date := when.Format("2006-01-02")
	meta := fmt.Sprintf("---\ntype: %s\ncreated: %s\nupdated: %s\nsource: %s\nconfidence: %s\n---\n",
		category, date, date, note.Source, confidence)
	return fmt.Sprintf("\n## %s\n%s\n%s\n", when.Format("2006-01-02T15:04"), meta, strings.TrimSpace(note.Text))
}

// appendDaily records a one-line digest in the date-keyed daily log.
func (r *Router) appendDaily(category models.Category, text string, when time.Time) error {
	date := when.Format("2006-01-02")
	rel := path.Join(dailyDir, date+".md")
	if err := r.store.EnsureFile(rel, "Daily Log "+date); err != nil {
		return fmt.Errorf("router: ensure daily log: %w", err)
	}
	line := fmt.Sprintf("\n- [%s] %s\n", category, strings.TrimSpace(text))
	if err := r.store.Append(rel, line); err != nil {
		return fmt.Errorf("router: append daily log: %w", err)
	}
	return nil
}

// updateIndex appends one line per distinct destination to index.md.
// Duplicates are detected by the normalized relative path parsed out of
// existing lines, not by comparing rendered strings, so a formatting drift
// in an old line still blocks a duplicate.
func (r *Router) updateIndex(rel string, category models.Category) error {
	if err := r.store.EnsureFile(indexFile, indexTitle); err != nil {
		return fmt.Errorf("router: ensure index: %w", err)
	}
	content, err := r.store.Read(indexFile)
	if err != nil {
		return fmt.Errorf("router: read index: %w", err)
	}

	key := normalizeIndexKey(rel)
	for _, line := range strings.Split(string(content), "\n") {
		m := indexLineRe.FindStringSubmatch(line)
		if m != nil && normalizeIndexKey(m[1]) == key {
			return nil
		}
	}

	stem := strings.TrimSuffix(path.Base(rel), ".md")
	line := fmt.Sprintf("- [%s](%s) — %s\n", stem, key, category)
	if err := r.store.Append(indexFile, line); err != nil {
		return fmt.Errorf("router: append index: %w", err)
	}
	return nil
}

// normalizeIndexKey canonicalizes a destination path for index comparison.
func normalizeIndexKey(rel string) string {
	return path.Clean(filepath.ToSlash(strings.TrimSpace(rel)))
}
