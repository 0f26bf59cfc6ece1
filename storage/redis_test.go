package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "test", time.Hour), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newRedisStore(t)

	if _, err := store.Get("missing", ScopeLocal); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set("k", "v", ScopeLocal); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, err := store.Get("k", ScopeLocal)
	if err != nil || value != "v" {
		t.Fatalf("Get = %q, %v", value, err)
	}

	if err := store.Delete("k", ScopeLocal); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get("k", ScopeLocal); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRedisStoreKeyPrefix(t *testing.T) {
	store, mr := newRedisStore(t)

	if err := store.Set("accessToken", "abc", ScopeLocal); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !mr.Exists("test:local:accessToken") {
		t.Fatalf("expected prefixed key, have %v", mr.Keys())
	}
}

func TestRedisStoreSessionTTL(t *testing.T) {
	store, mr := newRedisStore(t)

	if err := store.Set("k", "v", ScopeSession); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if mr.TTL("test:session:k") <= 0 {
		t.Fatal("session entries must carry a TTL")
	}

	mr.FastForward(2 * time.Hour)
	if _, err := store.Get("k", ScopeSession); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expiry after TTL, got %v", err)
	}

	// Local entries do not expire.
	if err := store.Set("k", "v", ScopeLocal); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if mr.TTL("test:local:k") != 0 {
		t.Fatal("local entries must not carry a TTL")
	}
}
