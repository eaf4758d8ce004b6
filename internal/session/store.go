// Package session maps opaque bearer tokens to user identities. Tokens are
// minted at authentication time and, in this deployment, never expire;
// the Redis-backed store exists so production can add expiry without
// changing the interface.
package session

import (
	"context"
	"sync"

	"github.com/keyharmony/keyharmony/internal/models"
)

// Store is the token table consulted on every authenticated call.
type Store interface {
	// Put records a freshly minted token for the given user.
	Put(ctx context.Context, token string, userID int64) error
	// Get resolves a token to a user ID. Returns models.ErrUnauthenticated
	// when the token is absent or unknown.
	Get(ctx context.Context, token string) (int64, error)
}

// MemoryStore is the default process-wide token table. Reads dominate, so
// it uses a read-write mutex.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]int64
}

// NewMemoryStore returns an empty in-memory token table.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]int64)}
}

// Put records the token under exclusive lock.
func (s *MemoryStore) Put(_ context.Context, token string, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = userID
	return nil
}

// Get resolves the token under shared lock.
func (s *MemoryStore) Get(_ context.Context, token string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.tokens[token]
	if !ok {
		return 0, models.ErrUnauthenticated
	}
	return userID, nil
}
