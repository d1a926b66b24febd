package wizard

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers wizard routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/wizard", func(r chi.Router) {
		r.Post("/", h.StartWizard)
		r.Get("/{id}", h.GetSession)
		r.Post("/{id}/source", h.SelectSource)
		r.Post("/{id}/units", h.SelectUnits)
		r.Post("/{id}/skill", h.SelectSkill)
		r.Post("/{id}/generate", h.Generate)
		r.Post("/{id}/back", h.Retreat)
		r.Post("/{id}/cancel", h.Cancel)
		r.Post("/{id}/save", h.Save)

		r.Post("/{id}/items", h.AddItem)
		r.Post("/{id}/items/{index}/edit", h.StartEdit)
		r.Delete("/{id}/items/{index}", h.DeleteItem)
		r.Post("/{id}/edit/commit", h.CommitEdit)
		r.Post("/{id}/edit/cancel", h.CancelEdit)

		r.Post("/{id}/audio", h.SynthesizeItem)
	})
}
