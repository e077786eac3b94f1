package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/slatepad/slatepad/internal/auth"
	"github.com/slatepad/slatepad/internal/handler/dto"
	"github.com/slatepad/slatepad/internal/model"
	"github.com/slatepad/slatepad/internal/service"
)

// TenantHandler handles HTTP requests for tenant operations.
type TenantHandler struct {
	svc    *service.TenantService
	logger *slog.Logger
}

// NewTenantHandler creates a new TenantHandler.
func NewTenantHandler(svc *service.TenantService, logger *slog.Logger) *TenantHandler {
	return &TenantHandler{
		svc:    svc,
		logger: logger,
	}
}

// Get handles GET /tenants/{slug}.
func (h *TenantHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.svc.GetTenant(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTenantResponse(tenant))
}

// Upgrade handles POST /tenants/{slug}/upgrade.
func (h *TenantHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustCallerFromContext(r.Context())

	slug := chi.URLParam(r, "slug")
	tenant, err := h.svc.Upgrade(r.Context(), *caller, slug)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("tenant_upgraded",
		"tenant_id", tenant.ID,
		"slug", tenant.Slug,
		"upgraded_by", caller.UserID,
	)

	writeJSON(w, http.StatusOK, dto.ToTenantResponse(tenant))
}

// Invite handles POST /tenants/{slug}/invite.
func (h *TenantHandler) Invite(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustCallerFromContext(r.Context())

	var req dto.InviteUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	role := model.Role(req.Role)
	if req.Role == "" {
		role = model.RoleMember
	}

	user, err := h.svc.Invite(r.Context(), *caller, chi.URLParam(r, "slug"), service.InviteInput{
		Email: req.Email,
		Role:  role,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_invited",
		"user_id", user.ID,
		"tenant_id", user.TenantID,
		"invited_by", caller.UserID,
	)

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// handleServiceError maps tenant service errors to HTTP responses.
func (h *TenantHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrTenantNotFound):
		writeError(w, http.StatusNotFound, "TENANT_NOT_FOUND", "Tenant not found")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Admin role required")
	case errors.Is(err, service.ErrUserExists):
		writeError(w, http.StatusBadRequest, "USER_EXISTS", "A user with this email already exists")
	case errors.Is(err, service.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, "INVALID_EMAIL", "Invalid email address")
	case errors.Is(err, service.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, "INVALID_ROLE", "Role must be admin or member")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
