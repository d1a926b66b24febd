package catalog

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/owlingo/console-backend/internal/pkg/logger"
	"github.com/owlingo/console-backend/internal/pkg/response"
	"go.uber.org/zap"
)

type Handler struct {
	catalog CatalogConnector
}

func NewHandler(catalog CatalogConnector) *Handler {
	return &Handler{
		catalog: catalog,
	}
}

// ListSources handles GET /catalog/sources
func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListSources")

	sources, err := h.catalog.ListSources(ctx)
	if err != nil {
		h.respondError(ctx, w, "failed to list sources", err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"sources": sources})
}

// ListUnits handles GET /catalog/sources/{id}/units
func (h *Handler) ListUnits(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("source_id", sourceID),
		zap.String("action", "ListUnits"),
	)

	units, err := h.catalog.ListUnits(ctx, sourceID)
	if err != nil {
		h.respondError(ctx, w, "failed to list units", err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"units": units})
}

// ListSkills handles GET /catalog/skills
func (h *Handler) ListSkills(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListSkills")

	skills, err := h.catalog.ListSkills(ctx)
	if err != nil {
		h.respondError(ctx, w, "failed to list skills", err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"skills": skills})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	response.JSON(w, status, data)
}

// The catalog is an upstream read-through; any failure maps to 502.
func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, message string, err error) {
	ctxzap.Error(ctx, message, zap.Error(err))
	response.Error(w, http.StatusBadGateway, message)
}
