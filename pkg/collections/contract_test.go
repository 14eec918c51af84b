package collections

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praekelt/go-store-service/pkg/async"
)

// await resolves a future, failing the test on error.
func await[T any](t *testing.T, f *async.Future[T]) T {
	t.Helper()
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	return v
}

// awaitErr resolves a future that is expected to fail.
func awaitErr[T any](t *testing.T, f *async.Future[T]) error {
	t.Helper()
	_, err := f.Await(context.Background())
	require.Error(t, err)
	return err
}

// runCollectionTests exercises the Collection contract against any backend.
// Both implementations must behave identically under every scenario here.
func runCollectionTests(t *testing.T, newBackend func(t *testing.T) StoreBackend) {
	ctx := context.Background()

	t.Run("all keys empty", func(t *testing.T) {
		c := newBackend(t).StoreCollection("owner")
		assert.Empty(t, await(t, c.AllKeys(ctx)))
	})

	t.Run("all empty", func(t *testing.T) {
		c := newBackend(t).StoreCollection("owner")
		assert.Empty(t, await(t, c.All(ctx)))
	})

	t.Run("get absent", func(t *testing.T) {
		c := newBackend(t).StoreCollection("owner")
		assert.Nil(t, await(t, c.Get(ctx, "missing")))
	})

	t.Run("create and get", func(t *testing.T) {
		c := newBackend(t).StoreCollection("owner")

		created := await(t, c.Create(ctx, "obj1", map[string]any{"foo": "bar"}))
		assert.Equal(t, "obj1", created.ID)
		assert.Equal(t, map[string]any{"foo": "bar"}, created.Data)

		got := await(t, c.Get(ctx, "obj1"))
		require.NotNil(t, got)
		assert.Equal(t, created, *got)
	})

	t.Run("create generates id", func(t *testing.T) {
		c := newBackend(t).StoreCollection("owner")

		first := await(t, c.Create(ctx, "", map[string]any{"n": 1.0}))
		second := await(t, c.Create(ctx, "", map[string]any{"n": 2.0}))

		assert.Len(t, first.ID, 32)
		assert.Len(t, second.ID, 32)
		assert.NotEqual(t, first.ID, second.ID)

		assert.ElementsMatch(t, []string{first.ID, second.ID}, await(t, c.AllKeys(ctx)))
	})

	t.Run("create with nil data", func(t *testing.T) {
		c := newBackend(t).StoreCollection("owner")

		created := await(t, c.Create(ctx, "obj1", nil))
		assert.Equal(t, map[string]any{}, created.Data)

		got := await(t, c.Get(ctx, "obj1"))
		require.NotNil(t, got)
		assert.Equal(t, map[string]any{}, got.Data)
	})

	t.Run("create rejects reserved id key", func(t *testing.T) {
		c := newBackend(t).StoreCollection("owner")

		err := awaitErr(t, c.Create(ctx, "obj1", map[string]any{"id": "sneaky"}))
		assert.True(t, IsInvalidArgument(err))
		assert.Nil(t, await(t, c.Get(ctx, "obj1")))
	})

	t.Run("update replaces data", func(t *testing.T) {
		c := newBackend(t).StoreCollection("owner")

		await(t, c.Create(ctx, "obj1", map[string]any{"foo": "bar", "extra": true}))
		updated := await(t, c.Update(ctx, "obj1", map[string]any{"foo": "baz"}))
		assert.Equal(t, Object{ID: "obj1", Data: map[string]any{"foo": "baz"}}, updated)

		got := await(t, c.Get(ctx, "obj1"))
		require.NotNil(t, got)
		assert.Equal(t, map[string]any{"foo": "baz"}, got.Data)
	})

	t.Run("update absent fails", func(t *testing.T) {
		c := newBackend(t).StoreCollection("owner")

		err := awaitErr(t, c.Update(ctx, "missing", map[string]any{"foo": "bar"}))
		assert.True(t, IsNotFound(err))
		assert.Nil(t, await(t, c.Get(ctx, "missing")))
	})

	t.Run("update rejects empty id", func(t *testing.T) {
		c := newBackend(t).StoreCollection("owner")

		err := awaitErr(t, c.Update(ctx, "", map[string]any{"foo": "bar"}))
		assert.True(t, IsInvalidArgument(err))
	})

	t.Run("update rejects reserved id key", func(t *testing.T) {
		c := newBackend(t).StoreCollection("owner")

		await(t, c.Create(ctx, "obj1", map[string]any{"foo": "bar"}))
		err := awaitErr(t, c.Update(ctx, "obj1", map[string]any{"id": "sneaky"}))
		assert.True(t, IsInvalidArgument(err))

		got := await(t, c.Get(ctx, "obj1"))
		require.NotNil(t, got)
		assert.Equal(t, map[string]any{"foo": "bar"}, got.Data)
	})

	t.Run("delete returns prior state", func(t *testing.T) {
		c := newBackend(t).StoreCollection("owner")

		await(t, c.Create(ctx, "obj1", map[string]any{"foo": "bar"}))
		prior := await(t, c.Delete(ctx, "obj1"))
		require.NotNil(t, prior)
		assert.Equal(t, Object{ID: "obj1", Data: map[string]any{"foo": "bar"}}, *prior)

		assert.Nil(t, await(t, c.Get(ctx, "obj1")))
	})

	t.Run("delete absent is not an error", func(t *testing.T) {
		c := newBackend(t).StoreCollection("owner")
		assert.Nil(t, await(t, c.Delete(ctx, "missing")))
	})

	t.Run("delete twice", func(t *testing.T) {
		c := newBackend(t).StoreCollection("owner")

		await(t, c.Create(ctx, "obj1", map[string]any{"foo": "bar"}))
		require.NotNil(t, await(t, c.Delete(ctx, "obj1")))
		assert.Nil(t, await(t, c.Delete(ctx, "obj1")))
	})

	t.Run("all lists every object", func(t *testing.T) {
		c := newBackend(t).StoreCollection("owner")

		await(t, c.Create(ctx, "a", map[string]any{"n": 1.0}))
		await(t, c.Create(ctx, "b", map[string]any{"n": 2.0}))

		objs := await(t, c.All(ctx))
		assert.ElementsMatch(t, []Object{
			{ID: "a", Data: map[string]any{"n": 1.0}},
			{ID: "b", Data: map[string]any{"n": 2.0}},
		}, objs)
	})

	t.Run("owners are isolated", func(t *testing.T) {
		b := newBackend(t)
		c1 := b.StoreCollection("owner1")
		c2 := b.StoreCollection("owner2")

		await(t, c1.Create(ctx, "obj1", map[string]any{"who": "owner1"}))

		assert.Nil(t, await(t, c2.Get(ctx, "obj1")))
		assert.Empty(t, await(t, c2.AllKeys(ctx)))
	})

	t.Run("stores under one owner are isolated", func(t *testing.T) {
		b := newBackend(t)
		rowsA := b.RowCollection("owner", "storeA")
		rowsB := b.RowCollection("owner", "storeB")

		await(t, rowsA.Create(ctx, "row1", map[string]any{"store": "A"}))
		await(t, rowsB.Create(ctx, "row1", map[string]any{"store": "B"}))

		gotA := await(t, rowsA.Get(ctx, "row1"))
		require.NotNil(t, gotA)
		assert.Equal(t, map[string]any{"store": "A"}, gotA.Data)

		gotB := await(t, rowsB.Get(ctx, "row1"))
		require.NotNil(t, gotB)
		assert.Equal(t, map[string]any{"store": "B"}, gotB.Data)

		assert.Equal(t, []string{"row1"}, await(t, rowsA.AllKeys(ctx)))

		require.NotNil(t, await(t, rowsA.Delete(ctx, "row1")))
		assert.Nil(t, await(t, rowsA.Get(ctx, "row1")))
		assert.NotNil(t, await(t, rowsB.Get(ctx, "row1")))
	})

	t.Run("store and row collections are independent", func(t *testing.T) {
		b := newBackend(t)
		stores := b.StoreCollection("owner")
		rows := b.RowCollection("owner", "store1")

		await(t, stores.Create(ctx, "store1", map[string]any{"kind": "store"}))
		await(t, rows.Create(ctx, "store1", map[string]any{"kind": "row"}))

		gotStore := await(t, stores.Get(ctx, "store1"))
		require.NotNil(t, gotStore)
		assert.Equal(t, map[string]any{"kind": "store"}, gotStore.Data)

		gotRow := await(t, rows.Get(ctx, "store1"))
		require.NotNil(t, gotRow)
		assert.Equal(t, map[string]any{"kind": "row"}, gotRow.Data)
	})

	t.Run("concurrent creates", func(t *testing.T) {
		c := newBackend(t).StoreCollection("owner")

		var wg sync.WaitGroup
		futures := make([]*async.Future[Object], 20)
		for i := range futures {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				futures[i] = c.Create(ctx, "", map[string]any{"n": float64(i)})
			}(i)
		}
		wg.Wait()

		seen := make(map[string]bool)
		for _, f := range futures {
			obj := await(t, f)
			assert.False(t, seen[obj.ID])
			seen[obj.ID] = true
		}
		assert.Len(t, await(t, c.AllKeys(ctx)), 20)
	})
}
