package dict

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed terminology store, for sharing one dictionary
// across machines or concurrent runs. SETNX gives the first-seen-wins rule
// atomically: whichever run records a term first owns its rendering. Entries
// never expire; terminology is permanent until curated by hand.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds configuration for the Redis store.
type RedisConfig struct {
	URL       string // Redis connection URL (e.g., "redis://localhost:6379")
	KeyPrefix string // Prefix for all keys (default: "kotoba:term:")
}

// NewRedisStore creates a Redis store with the given configuration.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewRedisStoreFromClient(client, cfg.KeyPrefix), nil
}

// NewRedisStoreFromClient creates a RedisStore from an existing Redis client.
func NewRedisStoreFromClient(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "kotoba:term:"
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Lookup retrieves the canonical rendering for a term.
func (s *RedisStore) Lookup(ctx context.Context, term string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.keyPrefix+Normalize(term)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Record inserts term → rendering if unseen. The stored rendering wins on
// disagreement, even against a concurrent run racing on the same term.
func (s *RedisStore) Record(ctx context.Context, term, rendering string) (string, bool, error) {
	key := s.keyPrefix + Normalize(term)

	set, err := s.client.SetNX(ctx, key, rendering, 0).Result()
	if err != nil {
		return "", false, err
	}
	if set {
		return rendering, false, nil
	}

	existing, err := s.client.Get(ctx, key).Result()
	if err != nil {
		return "", false, err
	}
	return existing, existing != rendering, nil
}

// Ping tests the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Verify RedisStore implements Store
var _ Store = (*RedisStore)(nil)
