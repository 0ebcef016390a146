package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	identitydomain "hrms-platform/backend/internal/identity/domain"
	presencedomain "hrms-platform/backend/internal/presence/domain"
	presenceservice "hrms-platform/backend/internal/presence/service"
)

// PresenceService is the subset of the presence service used by the handlers.
type PresenceService interface {
	Update(ctx context.Context, employeeID string, status presencedomain.Status, ip, userAgent string) error
}

// PresenceHandler serves the authenticated presence endpoints. Employee-only:
// customer principals get 403.
type PresenceHandler struct {
	presence PresenceService
}

// NewPresenceHandler wires the presence endpoints.
func NewPresenceHandler(presence PresenceService) *PresenceHandler {
	return &PresenceHandler{presence: presence}
}

type presenceRequest struct {
	Status string `json:"status"`
}

type presencePayload struct {
	EmployeeID string `json:"employeeId"`
	Status     string `json:"status"`
}

// Update handles PUT /api/v1/auth/presence. Requires a verified employee
// access token in the request context.
func (h *PresenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "missing bearer token")
		return
	}
	if claims.PrincipalType != string(identitydomain.PrincipalEmployee) {
		writeError(w, http.StatusForbidden, CodeForbidden, "presence is employee-only")
		return
	}
	var req presenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "malformed request body")
		return
	}
	meta := clientMeta(r)
	err := h.presence.Update(r.Context(), claims.Subject, presencedomain.Status(req.Status), meta.IPAddress, meta.UserAgent)
	switch {
	case errors.Is(err, presenceservice.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, CodeInvalidStatus, "status must be online, offline, or away")
	case err != nil:
		log.Printf("handler: presence update: %v", err)
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
	default:
		writeSuccess(w, http.StatusOK, "presence updated", presencePayload{
			EmployeeID: claims.Subject,
			Status:     req.Status,
		})
	}
}
