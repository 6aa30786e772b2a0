package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Pins.
	r.Get("/pins", h.ListPins)
	r.Delete("/pins/{id}", h.RemovePin)
	r.Put("/pins/order", h.ReorderPins)

	// Scanning.
	r.Post("/scan", h.TriggerScan)
	r.Post("/scan/full", h.TriggerFullScan)
	r.Get("/scan/stats", h.ScanStats)

	// Roots.
	r.Put("/roots", h.SetRoots)
	r.Get("/roots", h.GetRoots)

	// Search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
