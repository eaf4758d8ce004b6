package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/keyharmony/keyharmony/internal/models"
)

func TestMemoryStorePutGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, "tok-1", 42); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	userID, err := store.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if userID != 42 {
		t.Errorf("Get = %d; want 42", userID)
	}
}

func TestMemoryStoreUnknownToken(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, models.ErrUnauthenticated) {
		t.Errorf("Get unknown token = %v; want ErrUnauthenticated", err)
	}
}

func TestMemoryStoreConcurrent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			token := fmt.Sprintf("tok-%d", i)
			if err := store.Put(ctx, token, int64(i)); err != nil {
				t.Errorf("Put failed: %v", err)
				return
			}
			userID, err := store.Get(ctx, token)
			if err != nil || userID != int64(i) {
				t.Errorf("Get(%s) = %d, %v; want %d, nil", token, userID, err, i)
			}
		}(i)
	}
	wg.Wait()
}
