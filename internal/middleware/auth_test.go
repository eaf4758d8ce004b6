package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/keyharmony/keyharmony/internal/models"
)

type resolverMock struct {
	resolve func(ctx context.Context, token string) (*models.User, error)
}

func (m *resolverMock) Resolve(ctx context.Context, token string) (*models.User, error) {
	return m.resolve(ctx, token)
}

func TestBearerAuth(t *testing.T) {
	alice := &models.User{ID: 1, Username: "alice"}
	resolver := &resolverMock{
		resolve: func(_ context.Context, token string) (*models.User, error) {
			if token == "good-token" {
				return alice, nil
			}
			return nil, models.ErrUnauthenticated
		},
	}

	var seen *models.User
	handler := BearerAuth(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good-token", wantStatus: http.StatusUnauthorized},
		{name: "no token", header: "Bearer", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer bad-token", wantStatus: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer good-token", wantStatus: http.StatusOK},
		{name: "scheme is case insensitive", header: "bearer good-token", wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/requests", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d; want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && seen != alice {
				t.Error("authenticated user not stored in context")
			}
			if tt.wantStatus == http.StatusUnauthorized && seen != nil {
				t.Error("handler ran despite rejected request")
			}
		})
	}
}

func TestGetUserFromContext_Absent(t *testing.T) {
	if user := GetUserFromContext(context.Background()); user != nil {
		t.Errorf("expected nil user, got %+v", user)
	}
}
