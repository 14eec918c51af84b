// Package keyvalue provides the keyed-object-store managers that back the
// persistent collection implementation. A Store multiplexes any number of
// named tables over one physical backend; values are opaque byte payloads.
package keyvalue

import (
	"context"
	"fmt"
	"time"
)

// Store is an opaque keyed object store. Implementations must be safe for
// concurrent use.
type Store interface {
	// Keys returns every key currently present in the given table. Order
	// is unspecified.
	Keys(ctx context.Context, table string) ([]string, error)

	// Load returns the value stored under key, or (nil, nil) if the key
	// is absent. An absent key is not an error.
	Load(ctx context.Context, table, key string) ([]byte, error)

	// Save stores value under key, replacing any existing value.
	Save(ctx context.Context, table, key string, value []byte) error

	// Delete removes key from the table. Deleting an absent key is a
	// no-op.
	Delete(ctx context.Context, table, key string) error

	// Close releases the underlying backend connection.
	Close() error
}

// Config for keyvalue backends.
type Config struct {
	Type string // "memory", "redis", "sqlite" or "postgres"

	// Namespace prefixes every physical key/table so that several
	// services can share one backend.
	Namespace string

	// Redis config
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RedisMaxRetries int
	RedisPoolSize   int

	// SQLite config
	SQLitePath string

	// PostgreSQL config
	PostgresURL      string
	PostgresMaxConns int
	PostgresTimeout  time.Duration

	// Cache config
	CacheEnabled bool
	CacheSize    int // Entries
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Type:             "memory",
		Namespace:        "storesrv",
		RedisDB:          0,
		RedisMaxRetries:  3,
		RedisPoolSize:    10,
		SQLitePath:       "/tmp/storesrv/store.db",
		PostgresMaxConns: 20,
		PostgresTimeout:  10 * time.Second,
		CacheEnabled:     true,
		CacheSize:        4096,
	}
}

// Open constructs the Store selected by cfg.Type, wrapping it in a
// read-through cache when caching is enabled. The "memory" type has no
// keyvalue store; callers handle it before calling Open.
func Open(cfg Config) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Type {
	case "redis":
		store, err = NewRedisStore(cfg)
	case "sqlite":
		store, err = NewSQLiteStore(cfg.SQLitePath)
	case "postgres":
		store, err = NewPostgresStore(cfg)
	default:
		return nil, fmt.Errorf("unknown keyvalue store type: %s", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	if cfg.CacheEnabled {
		cached, err := NewCachingStore(store, cfg.CacheSize)
		if err != nil {
			store.Close()
			return nil, err
		}
		store = cached
	}
	return store, nil
}
