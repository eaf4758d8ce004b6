package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/keyharmony/keyharmony/internal/middleware"
	"github.com/keyharmony/keyharmony/internal/models"
)

// LifecycleService defines the interface for request workflow operations
// required by the RequestHandler.
type LifecycleService interface {
	Submit(ctx context.Context, actor *models.User, secretName, reason string) (models.SecretRequest, error)
	ListRequests(ctx context.Context, actor *models.User, all bool) ([]models.SecretRequest, error)
	Review(ctx context.Context, actor *models.User, id int64) (models.SecretRequest, error)
	Escalate(ctx context.Context, actor *models.User, id int64) (models.SecretRequest, error)
	Approve(ctx context.Context, actor *models.User, id int64, secretValue, comment string) (models.SecretRequest, error)
	Deny(ctx context.Context, actor *models.User, id int64, comment string) (models.SecretRequest, error)
	ViewSecret(ctx context.Context, actor *models.User, id int64) (models.Secret, error)
}

// RequestHandler handles HTTP requests for the secret request workflow.
type RequestHandler struct {
	// Lifecycle performs the underlying workflow operations.
	Lifecycle LifecycleService
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// requestID parses the {id} route parameter.
func requestID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, models.ErrInvalidArgument
	}
	return id, nil
}

// actor pulls the authenticated user placed in the context by BearerAuth.
func actor(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, models.ErrUnauthenticated)
		return nil, false
	}
	return user, true
}

// SubmitRequest represents the JSON payload for submitting a request.
type SubmitRequest struct {
	SecretName string `json:"secret_name"`
	Reason     string `json:"reason"`
}

// Submit handles POST /api/requests, creating a pending request.
func (h *RequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}
	var req SubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, models.ErrInvalidArgument)
		return
	}

	created, err := h.Lifecycle.Submit(r.Context(), user, req.SecretName, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// List handles GET /api/requests. With ?all=true an administrator sees
// every request; otherwise the caller sees only their own.
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}
	all := r.URL.Query().Get("all") == "true"

	requests, err := h.Lifecycle.ListRequests(r.Context(), user, all)
	if err != nil {
		writeError(w, err)
		return
	}
	if requests == nil {
		requests = []models.SecretRequest{}
	}
	writeJSON(w, http.StatusOK, requests)
}

// Review handles POST /api/requests/{id}/review.
func (h *RequestHandler) Review(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Lifecycle.Review)
}

// Escalate handles POST /api/requests/{id}/escalate.
func (h *RequestHandler) Escalate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Lifecycle.Escalate)
}

func (h *RequestHandler) transition(w http.ResponseWriter, r *http.Request,
	apply func(ctx context.Context, actor *models.User, id int64) (models.SecretRequest, error),
) {
	user, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := requestID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	req, err := apply(r.Context(), user, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// ApproveRequest represents the JSON payload for approving a request.
type ApproveRequest struct {
	SecretValue string `json:"secret_value"`
	Comment     string `json:"comment"`
}

// Approve handles POST /api/requests/{id}/approve, resolving the request
// and materializing its secret.
func (h *RequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := requestID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req ApproveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, models.ErrInvalidArgument)
		return
	}

	updated, err := h.Lifecycle.Approve(r.Context(), user, id, req.SecretValue, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DenyRequest represents the JSON payload for denying a request.
type DenyRequest struct {
	Comment string `json:"comment"`
}

// Deny handles POST /api/requests/{id}/deny.
func (h *RequestHandler) Deny(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := requestID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req DenyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, models.ErrInvalidArgument)
		return
	}

	updated, err := h.Lifecycle.Deny(r.Context(), user, id, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// SecretResponse carries a disclosed secret value.
type SecretResponse struct {
	Secret string `json:"secret"`
}

// ViewSecret handles GET /api/requests/{id}/secret, returning the secret
// value for an approved request.
func (h *RequestHandler) ViewSecret(w http.ResponseWriter, r *http.Request) {
	user, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := requestID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	secret, err := h.Lifecycle.ViewSecret(r.Context(), user, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SecretResponse{Secret: secret.Value})
}
