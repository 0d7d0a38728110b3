package api

import (
	"github.com/starford/munin/internal/index"
	"github.com/starford/munin/internal/models"
)

// RouteRequest is the request body for routing a note.
type RouteRequest struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
	When   string `json:"when,omitempty"` // ISO-8601 override, current time when absent
}

// RouteResponse echoes where the note landed.
type RouteResponse = models.RouteResult

// SearchResponse wraps catalog search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}

// FindResponse wraps occurrence-count retrieval hits.
type FindResponse struct {
	Hits []models.SearchHit `json:"hits"`
}

// NoteResponse is a raw store file.
type NoteResponse struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// IndexResponse lists catalogued files and per-category counts.
type IndexResponse struct {
	Files  []index.NoteRow `json:"files"`
	Total  int             `json:"total"`
	Counts map[string]int  `json:"counts"`
}
