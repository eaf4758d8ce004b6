// Package service provides the business logic for authentication and the
// secret request lifecycle, delegating persistence to repository
// interfaces.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/keyharmony/keyharmony/internal/models"
	"github.com/keyharmony/keyharmony/internal/password"
	"github.com/keyharmony/keyharmony/internal/session"
)

// UserRepository defines the persistence operations required by the
// authentication service.
type UserRepository interface {
	// GetByUsername fetches a user by login name; models.ErrNotFound if absent.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// GetByID fetches a user by identifier; models.ErrNotFound if absent.
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthService authenticates credentials and resolves bearer tokens to
// principals.
type AuthService struct {
	users    UserRepository
	sessions session.Store
}

// NewAuthService constructs an AuthService over the given user repository
// and session store.
func NewAuthService(users UserRepository, sessions session.Store) *AuthService {
	return &AuthService{users: users, sessions: sessions}
}

// Authenticate verifies the credentials and mints a fresh opaque token.
// A new token is minted on every successful call; prior tokens for the
// same user stay valid. Unknown usernames and failed verification both
// return models.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, plaintext string) (string, *models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		return "", nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if !password.Verify(plaintext, user.PasswordHash) {
		return "", nil, models.ErrInvalidCredentials
	}

	token := uuid.NewString()
	if err := s.sessions.Put(ctx, token, user.ID); err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Resolve maps a bearer token back to its principal. Unknown tokens, and
// tokens whose user has vanished, return models.ErrUnauthenticated.
func (s *AuthService) Resolve(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
