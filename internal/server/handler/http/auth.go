package http

import (
	"context"
	"net/http"

	"github.com/keyharmony/keyharmony/internal/middleware"
	"github.com/keyharmony/keyharmony/internal/models"
)

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// Authenticate verifies credentials and mints a fresh bearer token.
	Authenticate(ctx context.Context, username, password string) (string, *models.User, error)
}

// AuthHandler handles HTTP requests for login and principal introspection.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
}

// LoginRequest represents the JSON payload for authentication.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the minted token plus a principal summary.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	IsAdmin     bool   `json:"is_admin"`
}

// Login handles POST /api/login. It expects a JSON body with username and
// password and responds with a bearer token and the principal summary.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil || req.Username == "" || req.Password == "" {
		writeError(w, models.ErrInvalidArgument)
		return
	}

	token, user, err := h.AuthService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ID:          user.ID,
		Username:    user.Username,
		IsAdmin:     user.IsAdmin,
	})
}

// MeResponse is the current principal summary.
type MeResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// Me handles GET /api/me, returning the authenticated principal.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, models.ErrUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, MeResponse{ID: user.ID, Username: user.Username, IsAdmin: user.IsAdmin})
}
