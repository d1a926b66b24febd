package library

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers library routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/library", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Delete("/{id}", h.Delete)
		r.Get("/{id}/export", h.Export)
	})
}
