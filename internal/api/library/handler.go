package library

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/owlingo/console-backend/internal/entity"
	"github.com/owlingo/console-backend/internal/pkg/logger"
	"github.com/owlingo/console-backend/internal/pkg/response"
	"github.com/owlingo/console-backend/internal/pkg/validator"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   LibraryUsecase
	validator *validator.Validator
}

func NewHandler(
	usecase LibraryUsecase,
	validator *validator.Validator,
) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// List handles GET /library - List saved content, newest first
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListLibrary")

	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, err := h.usecase.List(ctx, skip, limit)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

// Get handles GET /library/{id} - Get one saved content object
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, contentID := h.contentContext(r, "GetLibraryContent")

	saved, err := h.usecase.Get(ctx, contentID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, saved)
}

// Delete handles DELETE /library/{id} - Remove saved content
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, contentID := h.contentContext(r, "DeleteLibraryContent")

	if err := h.usecase.Delete(ctx, contentID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.NoContent(w)
}

// Export handles GET /library/{id}/export?format=...&answers=true - Download
// a worksheet rendering of the saved content
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx, contentID := h.contentContext(r, "ExportLibraryContent")

	formatParam := r.URL.Query().Get("format")
	if formatParam == "" {
		formatParam = "markdown"
	}

	format, err := h.validator.ValidateExportFormat(formatParam)
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid format parameter", err)
		return
	}

	withAnswers := r.URL.Query().Get("answers") == "true"

	ctx = logger.AddFields(ctx, zap.String("format", string(format)))

	result, err := h.usecase.Export(ctx, contentID, format, withAnswers)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Data)
}

// Helper methods

func (h *Handler) contentContext(r *http.Request, action string) (context.Context, string) {
	contentID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("content_id", contentID),
		zap.String("action", action),
	)
	return ctx, contentID
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	response.JSON(w, status, data)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	ctxzap.Error(ctx, message, zap.Error(err))
	response.Error(w, status, message)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrContentNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "content not found", err)
	case errors.Is(err, entity.ErrInvalidParameter):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
