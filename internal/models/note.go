// Package models defines the domain types for Munin.
package models

import "time"

// Category is the classification label assigned to a note.
type Category string

// The closed set of categories a note can receive. CategoryNote is the
// fallback when no keyword rule matches.
const (
	CategoryDecision   Category = "decision"
	CategoryTodo       Category = "todo"
	CategoryPreference Category = "preference"
	CategoryProject    Category = "project"
	CategoryPerson     Category = "person"
	CategoryNote       Category = "note"
)

// Categories lists every category in classifier priority order, fallback last.
func Categories() []Category {
	return []Category{
		CategoryDecision,
		CategoryTodo,
		CategoryPreference,
		CategoryProject,
		CategoryPerson,
		CategoryNote,
	}
}

// Known reports whether c is a member of the category set.
func Known(c Category) bool {
	for _, k := range Categories() {
		if c == k {
			return true
		}
	}
	return false
}

// Note is a transient unit of input: raw text plus where and when it came
// from. It is consumed by the router and never persisted as an object.
type Note struct {
	Text   string
	Source string
	When   time.Time
}

// RouteResult describes where a routed note ended up.
type RouteResult struct {
	Category Category `json:"category"`
	Path     string   `json:"path"`     // relative to the store root
	AbsPath  string   `json:"abs_path"` // resolved destination on disk
	Topic    string   `json:"topic,omitempty"`
}

// NoteMetadata is a lightweight representation returned by store list operations.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SearchHit is one ranked retrieval result.
type SearchHit struct {
	Score   int    `json:"score"`
	Path    string `json:"path"`
	Excerpt string `json:"excerpt"`
}
