package wizard

import (
	"context"
	"encoding/json"
	"errors"
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
	usecase   WizardUsecase
	validator *validator.Validator
}

func NewHandler(
	usecase WizardUsecase,
	validator *validator.Validator,
) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// StartWizard handles POST /wizard - Open a new wizard session
func (h *Handler) StartWizard(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StartWizard")

	session, err := h.usecase.StartWizard(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, toSessionDTO(session))
}

// GetSession handles GET /wizard/{id} - Get wizard session state
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "GetSession")

	session, err := h.usecase.GetSession(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// SelectSource handles POST /wizard/{id}/source - Choose the content source
func (h *Handler) SelectSource(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "SelectSource")

	var req entity.SelectSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateSelectSource(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	session, err := h.usecase.SelectSource(ctx, sessionID, req.SourceID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// SelectUnits handles POST /wizard/{id}/units - Choose the sub-units
func (h *Handler) SelectUnits(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "SelectUnits")

	var req entity.SelectUnitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateSelectUnits(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	session, err := h.usecase.SelectUnits(ctx, sessionID, req.UnitIDs)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// SelectSkill handles POST /wizard/{id}/skill - Choose skill/format or
// legacy activity type. Choosing the mix skill starts generation directly.
func (h *Handler) SelectSkill(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "SelectSkill")

	var req entity.SelectSkillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateSelectSkill(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	session, err := h.usecase.SelectSkill(ctx, sessionID, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// Generate handles POST /wizard/{id}/generate - Trigger generation. The
// request returns 202 immediately; the client polls GET /wizard/{id} (or
// receives the callback) for the outcome.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "Generate")

	var req entity.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateGenerate(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	ctxzap.Info(ctx, "starting generation", zap.Any("options", req.Options))

	session, err := h.usecase.BeginGeneration(ctx, sessionID, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusAccepted, toSessionDTO(session))
}

// Retreat handles POST /wizard/{id}/back - Go back one step
func (h *Handler) Retreat(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "Retreat")

	req := h.decodeConfirm(r)

	session, err := h.usecase.Retreat(ctx, sessionID, req.Confirm)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// Cancel handles POST /wizard/{id}/cancel - Discard the wizard session
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "Cancel")

	req := h.decodeConfirm(r)

	if err := h.usecase.Cancel(ctx, sessionID, req.Confirm); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{
		"message": "wizard session cancelled",
	})
}

// Save handles POST /wizard/{id}/save - Persist the approved result
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "Save")

	var req entity.SaveContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateSaveContent(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	saved, err := h.usecase.Save(ctx, sessionID, req.Title, req.Description)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, saved)
}

// AddItem handles POST /wizard/{id}/items - Append a blank item and open it
// for editing
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "AddItem")

	session, err := h.usecase.AddItem(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, toSessionDTO(session))
}

// StartEdit handles POST /wizard/{id}/items/{index}/edit - Open an edit buffer
func (h *Handler) StartEdit(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "StartEdit")

	index, err := h.itemIndex(r)
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid item index", err)
		return
	}

	session, err := h.usecase.StartEdit(ctx, sessionID, index)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// CommitEdit handles POST /wizard/{id}/edit/commit - Apply the open edit
func (h *Handler) CommitEdit(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "CommitEdit")

	var req entity.ItemEdit
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	session, err := h.usecase.CommitEdit(ctx, sessionID, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// CancelEdit handles POST /wizard/{id}/edit/cancel - Discard the open edit
func (h *Handler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "CancelEdit")

	session, err := h.usecase.CancelEdit(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// DeleteItem handles DELETE /wizard/{id}/items/{index} - Remove one item
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "DeleteItem")

	index, err := h.itemIndex(r)
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid item index", err)
		return
	}

	session, err := h.usecase.DeleteItem(ctx, sessionID, index)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toSessionDTO(session))
}

// SynthesizeItem handles POST /wizard/{id}/audio - Synthesize audio for one
// item. Returns 202; the item's audio status is visible via GET /wizard/{id}.
func (h *Handler) SynthesizeItem(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "SynthesizeItem")

	req := entity.SynthesizeItemRequest{Path: entity.WholeObjectPath()}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateSynthesizeItem(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "validation failed", err)
		return
	}

	if err := h.usecase.SynthesizeItem(ctx, sessionID, req.Path, req.VoiceID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusAccepted, map[string]string{
		"status":  "accepted",
		"message": "audio synthesis started",
	})
}

// Helper methods

func (h *Handler) sessionContext(r *http.Request, action string) (context.Context, string) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", action),
	)
	return ctx, sessionID
}

func (h *Handler) itemIndex(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "index"))
}

// decodeConfirm tolerates an empty body; confirm defaults to false.
func (h *Handler) decodeConfirm(r *http.Request) entity.ConfirmRequest {
	var req entity.ConfirmRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	return req
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
	case errors.Is(err, entity.ErrSessionNotFound) || errors.Is(err, entity.ErrItemNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "resource not found", err)
	case errors.Is(err, entity.ErrInvalidParameter) || errors.Is(err, entity.ErrMissingField) ||
		errors.Is(err, entity.ErrMissingSelection) || errors.Is(err, entity.ErrInvalidPath) ||
		errors.Is(err, entity.ErrUnknownKind):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	case errors.Is(err, entity.ErrWrongStep) || errors.Is(err, entity.ErrConfirmationRequired) ||
		errors.Is(err, entity.ErrNoResult) || errors.Is(err, entity.ErrEditInProgress) ||
		errors.Is(err, entity.ErrNoEditOpen) || errors.Is(err, entity.ErrLastItem) ||
		errors.Is(err, entity.ErrInvalidContent):
		h.respondError(ctx, w, http.StatusConflict, "invalid wizard state", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
