// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/keyharmony/keyharmony/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// TokenResolver maps an opaque bearer token to its principal.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// BearerAuth enforces bearer token authentication.
//
// It expects an "Authorization: Bearer <token>" header, resolves the token
// to a user and stores the user in the request context for downstream
// handlers. Requests without a resolvable token are rejected with 401.
func BearerAuth(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				http.Error(w, "invalid authorization scheme", http.StatusUnauthorized)
				return
			}

			user, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext extracts the authenticated user from the request
// context. Returns nil if the request did not pass BearerAuth.
func GetUserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}
