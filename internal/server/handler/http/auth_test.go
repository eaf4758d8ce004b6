package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/keyharmony/keyharmony/internal/models"
)

type authServiceMock struct {
	authenticate func(ctx context.Context, username, password string) (string, *models.User, error)
}

func (m *authServiceMock) Authenticate(ctx context.Context, username, password string) (string, *models.User, error) {
	return m.authenticate(ctx, username, password)
}

// resolverMock resolves any token present in its map.
type resolverMock struct {
	users map[string]*models.User
}

func (m *resolverMock) Resolve(_ context.Context, token string) (*models.User, error) {
	user, ok := m.users[token]
	if !ok {
		return nil, models.ErrUnauthenticated
	}
	return user, nil
}

func newJSONRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func TestLogin(t *testing.T) {
	alice := &models.User{ID: 1, Username: "alice", IsAdmin: false}
	auth := &authServiceMock{
		authenticate: func(_ context.Context, username, password string) (string, *models.User, error) {
			if username == "alice" && password == "s3cret" {
				return "tok-123", alice, nil
			}
			return "", nil, models.ErrInvalidCredentials
		},
	}
	router := NewRouter(
		&AuthHandler{AuthService: auth},
		&RequestHandler{},
		&ViewHandler{},
		&resolverMock{},
		zap.NewNop(),
	)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "valid credentials", body: `{"username":"alice","password":"s3cret"}`, wantStatus: http.StatusOK},
		{name: "wrong password", body: `{"username":"alice","password":"nope"}`, wantStatus: http.StatusUnauthorized},
		{name: "missing fields", body: `{"username":"alice"}`, wantStatus: http.StatusBadRequest},
		{name: "malformed body", body: `{"username":`, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, newJSONRequest(t, http.MethodPost, "/api/login", tt.body))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d; want %d; body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp LoginResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.AccessToken != "tok-123" || resp.TokenType != "bearer" || resp.Username != "alice" {
				t.Errorf("unexpected response: %+v", resp)
			}
		})
	}
}

func TestMe(t *testing.T) {
	alice := &models.User{ID: 1, Username: "alice"}
	router := NewRouter(
		&AuthHandler{},
		&RequestHandler{},
		&ViewHandler{},
		&resolverMock{users: map[string]*models.User{"tok-123": alice}},
		zap.NewNop(),
	)

	req := newJSONRequest(t, http.MethodGet, "/api/me", "")
	req.Header.Set("Authorization", "Bearer tok-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200; body %s", rec.Code, rec.Body.String())
	}
	var resp MeResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != 1 || resp.Username != "alice" || resp.IsAdmin {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestMe_Unauthenticated(t *testing.T) {
	router := NewRouter(&AuthHandler{}, &RequestHandler{}, &ViewHandler{}, &resolverMock{}, zap.NewNop())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, newJSONRequest(t, http.MethodGet, "/api/me", ""))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want 401", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	router := NewRouter(&AuthHandler{}, &RequestHandler{}, &ViewHandler{}, &resolverMock{}, zap.NewNop())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, newJSONRequest(t, http.MethodGet, "/api/health", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}
