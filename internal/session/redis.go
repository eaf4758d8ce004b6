package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/keyharmony/keyharmony/internal/models"
)

const keyPrefix = "session:"

// RedisStore keeps the token table in Redis, for deployments that need
// sessions to survive a process restart or be shared across replicas.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the given Redis address and verifies the
// connection before returning the store.
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// Put stores the token without expiry; token rotation is a provisioning
// concern in this deployment.
func (s *RedisStore) Put(ctx context.Context, token string, userID int64) error {
	if err := s.client.Set(ctx, keyPrefix+token, userID, 0).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Get resolves the token, mapping a missing key to models.ErrUnauthenticated.
func (s *RedisStore) Get(ctx context.Context, token string) (int64, error) {
	userID, err := s.client.Get(ctx, keyPrefix+token).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, models.ErrUnauthenticated
	}
	if err != nil {
		return 0, fmt.Errorf("resolve session: %w", err)
	}
	return userID, nil
}
