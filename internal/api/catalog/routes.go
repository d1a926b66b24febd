package catalog

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers catalog routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/catalog", func(r chi.Router) {
		r.Get("/sources", h.ListSources)
		r.Get("/sources/{id}/units", h.ListUnits)
		r.Get("/skills", h.ListSkills)
	})
}
