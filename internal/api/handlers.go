package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/starford/munin/internal/index"
	"github.com/starford/munin/internal/models"
	"github.com/starford/munin/internal/router"
	"github.com/starford/munin/internal/search"
	"github.com/starford/munin/internal/sse"
	"github.com/starford/munin/internal/storage"
)

// Handler holds API route handlers.
type Handler struct {
	rt     *router.Router
	store  storage.Provider
	db     *index.DB
	broker *sse.Broker
}

// NewHandler creates a new Handler. broker may be nil (no event publishing).
func NewHandler(rt *router.Router, store storage.Provider, db *index.DB, broker *sse.Broker) *Handler {
	return &Handler{rt: rt, store: store, db: db, broker: broker}
}

// notePath extracts the note path from the URL (everything after /api/notes/).
// Supports encoded slashes from API clients (e.g. topics%2Fnote.md).
func notePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// parseWhen accepts RFC 3339 timestamps as well as the minute- and
// date-precision forms the store itself uses.
func parseWhen(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"} {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, errors.New("unrecognized timestamp")
}

// RouteNote handles POST /api/notes: classify and append a note, then bring
// the catalog up to date for the destination.
func (h *Handler) RouteNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("text is required"))
		return
	}
	source := req.Source
	if source == "" {
		source = "manual"
	}
	var when time.Time
	if req.When != "" {
		ts, err := parseWhen(req.When)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid when timestamp"))
			return
		}
		when = ts
	}

	res, err := h.rt.Route(models.Note{Text: req.Text, Source: source, When: when})
	if err != nil {
		slog.Error("route failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	// Catalog the destination synchronously so a follow-up search sees it
	// even before the watcher fires.
	if data, readErr := h.store.Read(res.Path); readErr == nil {
		if idxErr := index.IndexFile(h.db, res.Path, data); idxErr != nil {
			slog.Warn("catalog update failed", slog.String("path", res.Path), slog.String("error", idxErr.Error()))
		}
	}
	if h.broker != nil {
		h.broker.PublishRouted(string(res.Category), res.Path)
	}

	writeJSON(w, http.StatusCreated, res)
}

// Search handles GET /api/search: catalog-backed full-text search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.db.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Find handles GET /api/find: occurrence-count retrieval straight off the
// store, bypassing the catalog.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	hits, err := search.Find(h.store.Root(), q, limit)
	if err != nil {
		slog.Error("find failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	// Report store-relative paths over the wire.
	for i := range hits {
		if rel, relErr := filepath.Rel(h.store.Root(), hits[i].Path); relErr == nil {
			hits[i].Path = filepath.ToSlash(rel)
		}
	}
	if hits == nil {
		hits = []models.SearchHit{}
	}
	writeJSON(w, http.StatusOK, FindResponse{Hits: hits})
}

// GetNote handles GET /api/notes/*: returns a raw store file.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	data, err := h.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get note failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, NoteResponse{Path: path, Content: string(data)})
}

// GetIndex handles GET /api/index: lists catalogued files with counts.
func (h *Handler) GetIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	category := q.Get("category")

	rows, total, err := h.db.ListNotes(limit, offset, category)
	if err != nil {
		slog.Error("list index failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	counts, err := h.db.CategoryCounts()
	if err != nil {
		slog.Error("category counts failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if rows == nil {
		rows = []index.NoteRow{}
	}
	writeJSON(w, http.StatusOK, IndexResponse{Files: rows, Total: total, Counts: counts})
}
