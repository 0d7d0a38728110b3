package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/starford/munin/internal/index"
	"github.com/starford/munin/internal/router"
	"github.com/starford/munin/internal/sse"
	"github.com/starford/munin/internal/storage"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// broker, if non-nil, is mounted at GET /events inside the auth group and
// receives note.routed events.
func NewRouter(rt *router.Router, store storage.Provider, db *index.DB, broker *sse.Broker, authEnabled bool, token string) chi.Router {
	h := NewHandler(rt, store, db, broker)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Routing.
	r.Post("/notes", h.RouteNote)

	// Reads.
	r.Get("/notes/*", h.GetNote)
	r.Get("/index", h.GetIndex)

	// Search: catalog-backed and store-walking.
	r.Get("/search", h.Search)
	r.Get("/find", h.Find)

	// SSE endpoint (protected by the same auth middleware).
	if broker != nil {
		r.Get("/events", broker.ServeHTTP)
	}

	return r
}
