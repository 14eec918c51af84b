package keyvalue

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreTests exercises the Store contract against any backend.
func runStoreTests(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("load absent", func(t *testing.T) {
		s := newStore(t)

		value, err := s.Load(ctx, "tbl", "missing")
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("save and load", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Save(ctx, "tbl", "k", []byte(`{"a":1}`)))
		value, err := s.Load(ctx, "tbl", "k")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"a":1}`), value)
	})

	t.Run("save replaces", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Save(ctx, "tbl", "k", []byte("old")))
		require.NoError(t, s.Save(ctx, "tbl", "k", []byte("new")))

		value, err := s.Load(ctx, "tbl", "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), value)
	})

	t.Run("keys", func(t *testing.T) {
		s := newStore(t)

		keys, err := s.Keys(ctx, "tbl")
		require.NoError(t, err)
		assert.Empty(t, keys)

		require.NoError(t, s.Save(ctx, "tbl", "k1", []byte("v1")))
		require.NoError(t, s.Save(ctx, "tbl", "k2", []byte("v2")))
		require.NoError(t, s.Save(ctx, "other", "k3", []byte("v3")))

		keys, err = s.Keys(ctx, "tbl")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"k1", "k2"}, keys)
	})

	t.Run("tables are isolated", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Save(ctx, "tbl1", "k", []byte("one")))
		require.NoError(t, s.Save(ctx, "tbl2", "k", []byte("two")))

		value, err := s.Load(ctx, "tbl1", "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("one"), value)

		require.NoError(t, s.Delete(ctx, "tbl1", "k"))
		value, err = s.Load(ctx, "tbl2", "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("two"), value)
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.Save(ctx, "tbl", "k", []byte("v")))
		require.NoError(t, s.Delete(ctx, "tbl", "k"))

		value, err := s.Load(ctx, "tbl", "k")
		require.NoError(t, err)
		assert.Nil(t, value)

		// Deleting an absent key is a no-op.
		require.NoError(t, s.Delete(ctx, "tbl", "k"))
	})
}

func TestOpen_SQLite(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Type = "sqlite"
	cfg.SQLitePath = filepath.Join(t.TempDir(), "store.db")
	cfg.CacheEnabled = false

	store, err := Open(cfg)
	require.NoError(t, err)
	defer store.Close()

	_, ok := store.(*SQLiteStore)
	assert.True(t, ok)
}

func TestOpen_SQLiteCached(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Type = "sqlite"
	cfg.SQLitePath = filepath.Join(t.TempDir(), "store.db")

	store, err := Open(cfg)
	require.NoError(t, err)
	defer store.Close()

	_, ok := store.(*CachingStore)
	assert.True(t, ok)
}

func TestOpen_UnknownType(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Type = "cassandra"

	_, err := Open(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keyvalue store type")
}

func TestOpen_MemoryIsNotAKeyvalueType(t *testing.T) {
	// The ephemeral backend bypasses keyvalue entirely; Open only knows
	// durable types.
	_, err := Open(DefaultConfig())
	require.Error(t, err)
}
