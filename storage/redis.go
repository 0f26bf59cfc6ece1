package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 3 * time.Second

// RedisStore keeps entries in Redis so multiple replicas of a server-side
// host share one token store. ScopeSession entries carry a TTL; ScopeLocal
// entries persist until deleted.
type RedisStore struct {
	client     *redis.Client
	prefix     string
	sessionTTL time.Duration
}

// NewRedisStore wraps client. Keys are namespaced under prefix ("storefront"
// when empty). sessionTTL bounds ScopeSession entries; zero means 24h.
func NewRedisStore(client *redis.Client, prefix string, sessionTTL time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "storefront"
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &RedisStore{
		client:     client,
		prefix:     prefix,
		sessionTTL: sessionTTL,
	}
}

func (r *RedisStore) key(key string, scope Scope) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, scope, key)
}

// Get implements Store.
func (r *RedisStore) Get(key string, scope Scope) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	value, err := r.client.Get(ctx, r.key(key, scope)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, nil
}

// Set implements Store.
func (r *RedisStore) Set(key, value string, scope Scope) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	ttl := time.Duration(0)
	if scope == ScopeSession {
		ttl = r.sessionTTL
	}
	if err := r.client.Set(ctx, r.key(key, scope), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Delete implements Store.
func (r *RedisStore) Delete(key string, scope Scope) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := r.client.Del(ctx, r.key(key, scope)).Err(); err != nil {
		return fmt.Errorf("redis delete %q: %w", key, err)
	}
	return nil
}
