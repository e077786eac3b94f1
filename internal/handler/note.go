package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/slatepad/slatepad/internal/auth"
	"github.com/slatepad/slatepad/internal/handler/dto"
	"github.com/slatepad/slatepad/internal/service"
)

// NoteHandler handles HTTP requests for note operations.
type NoteHandler struct {
	svc    *service.NoteService
	logger *slog.Logger
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(svc *service.NoteService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /notes.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustCallerFromContext(r.Context())

	var req dto.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	note, err := h.svc.Create(r.Context(), *caller, service.CreateNoteInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("note_created",
		"note_id", note.ID,
		"tenant_id", note.TenantID,
		"user_id", note.UserID,
	)

	writeJSON(w, http.StatusCreated, dto.ToNoteResponse(note))
}

// List handles GET /notes.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustCallerFromContext(r.Context())

	notes, err := h.svc.List(r.Context(), *caller)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToNoteListResponse(notes))
}

// Get handles GET /notes/{id}.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustCallerFromContext(r.Context())

	note, err := h.svc.Get(r.Context(), *caller, chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToNoteResponse(note))
}

// Update handles PUT /notes/{id}.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustCallerFromContext(r.Context())

	var req dto.UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	note, err := h.svc.Update(r.Context(), *caller, chi.URLParam(r, "id"), service.UpdateNoteInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("note_updated",
		"note_id", note.ID,
		"tenant_id", note.TenantID,
	)

	writeJSON(w, http.StatusOK, dto.ToNoteResponse(note))
}

// Delete handles DELETE /notes/{id}.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustCallerFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), *caller, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("note_deleted", "note_id", id, "tenant_id", caller.TenantID)

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps note service errors to HTTP responses.
func (h *NoteHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNoteNotFound):
		writeError(w, http.StatusNotFound, "NOTE_NOT_FOUND", "Note not found")
	case errors.Is(err, service.ErrQuotaExceeded):
		writeError(w, http.StatusForbidden, "QUOTA_EXCEEDED", "Note limit reached. Upgrade to Pro to add more notes.")
	case errors.Is(err, service.ErrTitleRequired):
		writeError(w, http.StatusBadRequest, "TITLE_REQUIRED", "Title is required")
	case errors.Is(err, service.ErrTitleTooLong):
		writeError(w, http.StatusBadRequest, "TITLE_TOO_LONG", "Title exceeds maximum length")
	case errors.Is(err, service.ErrContentTooLong):
		writeError(w, http.StatusBadRequest, "CONTENT_TOO_LONG", "Content exceeds maximum length")
	case errors.Is(err, service.ErrNothingToUpdate):
		writeError(w, http.StatusBadRequest, "EMPTY_UPDATE", "No fields to update")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
