package keyvalue

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachingStore wraps another Store with a fixed-size in-process LRU cache.
// Loads are read-through, saves are write-through and deletes invalidate.
// Key listing always goes to the backing store; the cache never answers it.
type CachingStore struct {
	inner Store
	cache *lru.Cache[string, []byte]

	onHit  func()
	onMiss func()
}

var _ Store = (*CachingStore)(nil)

// NewCachingStore creates a caching wrapper holding at most size entries.
func NewCachingStore(inner Store, size int) (*CachingStore, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &CachingStore{inner: inner, cache: cache}, nil
}

// Instrument registers callbacks invoked on cache hits and misses.
func (s *CachingStore) Instrument(onHit, onMiss func()) {
	s.onHit = onHit
	s.onMiss = onMiss
}

// Keys implements Store.Keys.
func (s *CachingStore) Keys(ctx context.Context, table string) ([]string, error) {
	return s.inner.Keys(ctx, table)
}

// Load implements Store.Load.
func (s *CachingStore) Load(ctx context.Context, table, key string) ([]byte, error) {
	ck := cacheKey(table, key)
	if value, ok := s.cache.Get(ck); ok {
		if s.onHit != nil {
			s.onHit()
		}
		return cloneBytes(value), nil
	}
	if s.onMiss != nil {
		s.onMiss()
	}

	value, err := s.inner.Load(ctx, table, key)
	if err != nil {
		return nil, err
	}
	// Absent keys are not cached; a later create must be visible.
	if value != nil {
		s.cache.Add(ck, cloneBytes(value))
	}
	return value, nil
}

// Save implements Store.Save.
func (s *CachingStore) Save(ctx context.Context, table, key string, value []byte) error {
	if err := s.inner.Save(ctx, table, key, value); err != nil {
		return err
	}
	s.cache.Add(cacheKey(table, key), cloneBytes(value))
	return nil
}

// Delete implements Store.Delete.
func (s *CachingStore) Delete(ctx context.Context, table, key string) error {
	if err := s.inner.Delete(ctx, table, key); err != nil {
		return err
	}
	s.cache.Remove(cacheKey(table, key))
	return nil
}

// Ping checks the backing store's connectivity when it supports pinging.
func (s *CachingStore) Ping(ctx context.Context) error {
	if p, ok := s.inner.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close closes the backing store.
func (s *CachingStore) Close() error {
	s.cache.Purge()
	return s.inner.Close()
}

func cacheKey(table, key string) string {
	return table + "\x00" + key
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
