package keyvalue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore implements Store over a Redis server. Tables are flattened
// into the physical key space as "{namespace}:{table}:{key}"; key listing
// is a SCAN over that prefix.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a new Redis-backed store.
func NewRedisStore(cfg Config) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	// Override with config values if provided
	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	if cfg.RedisDB >= 0 {
		opts.DB = cfg.RedisDB
	}
	if cfg.RedisMaxRetries > 0 {
		opts.MaxRetries = cfg.RedisMaxRetries
	}
	if cfg.RedisPoolSize > 0 {
		opts.PoolSize = cfg.RedisPoolSize
	}

	// Set connection timeouts
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{
		client:    client,
		namespace: cfg.Namespace,
	}, nil
}

// Keys implements Store.Keys. SCAN matching is glob-based while table
// names embed caller-controlled segments, so the pattern is escaped and
// scanned keys are checked against the literal prefix; a table name
// containing "*" or "?" must never widen the listing to other tables.
func (s *RedisStore) Keys(ctx context.Context, table string) ([]string, error) {
	prefix := s.physicalKey(table, "")

	var keys []string
	iter := s.client.Scan(ctx, 0, escapeGlob(prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		keys = append(keys, strings.TrimPrefix(key, prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan failed for table %s: %w", table, err)
	}
	return keys, nil
}

// Load implements Store.Load.
func (s *RedisStore) Load(ctx context.Context, table, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.physicalKey(table, key)).Bytes()
	if err == redis.Nil {
		return nil, nil // Absent key
	} else if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return value, nil
}

// Save implements Store.Save.
func (s *RedisStore) Save(ctx context.Context, table, key string, value []byte) error {
	if err := s.client.Set(ctx, s.physicalKey(table, key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete implements Store.Delete.
func (s *RedisStore) Delete(ctx context.Context, table, key string) error {
	if err := s.client.Del(ctx, s.physicalKey(table, key)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

// Ping checks Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) physicalKey(table, key string) string {
	return fmt.Sprintf("%s:%s:%s", s.namespace, table, key)
}

// escapeGlob escapes redis glob metacharacters so the result matches the
// input literally when used in a MATCH pattern.
func escapeGlob(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '^', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
