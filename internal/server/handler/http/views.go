package http

import (
	"context"
	"net/http"

	"github.com/keyharmony/keyharmony/internal/models"
)

// ViewService defines the read-only operations required by the
// ViewHandler: secret listings, the audit ledger and the caller's
// notification queue.
type ViewService interface {
	ListSecrets(ctx context.Context, actor *models.User) ([]models.Secret, error)
	Audit(ctx context.Context, actor *models.User) ([]models.AuditEntry, error)
	Notifications(actor *models.User) []string
}

// ViewHandler handles the non-mutating listing endpoints.
type ViewHandler struct {
	Views ViewService
}

// ListSecrets handles GET /api/secrets. Administrators see every secret,
// other users their own.
func (h *ViewHandler) ListSecrets(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}
	secrets, err := h.Views.ListSecrets(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	if secrets == nil {
		secrets = []models.Secret{}
	}
	writeJSON(w, http.StatusOK, secrets)
}

// Audit handles GET /api/audit, returning the full ledger newest first.
// Administrators only.
func (h *ViewHandler) Audit(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}
	entries, err := h.Views.Audit(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// NotificationsResponse wraps the caller's queued messages.
type NotificationsResponse struct {
	Notifications []string `json:"notifications"`
}

// Notifications handles GET /api/notifications for the current principal.
func (h *ViewHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, NotificationsResponse{Notifications: h.Views.Notifications(user)})
}
