package collections

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/praekelt/go-store-service/pkg/async"
	"github.com/praekelt/go-store-service/pkg/keyvalue"
)

// allFetchConcurrency bounds the per-key fan-out in All.
const allFetchConcurrency = 8

// PersistentCollection implements Collection over an injected keyed-object
// store. Row scoping is encoded in the storage keys themselves: a row
// collection prefixes every key with "{store_id}:" and filters listings by
// that prefix client-side, so several logical collections share one
// physical table.
//
// The persisted value is the JSON-encoded data payload only; the id is
// recovered from the key at read time rather than stored redundantly.
type PersistentCollection struct {
	kv        keyvalue.Store
	table     string
	keyPrefix string
}

var _ Collection = (*PersistentCollection)(nil)

// AllKeys implements Collection.AllKeys. The backend has no range scan for
// the prefix, so this fetches the table's full key index and filters.
func (c *PersistentCollection) AllKeys(ctx context.Context) *async.Future[[]string] {
	return async.Go(ctx, func(ctx context.Context) ([]string, error) {
		return c.scopedKeys(ctx)
	})
}

// All implements Collection.All. Element fetches are issued concurrently;
// keys deleted between listing and retrieval are skipped, but a genuine
// fetch failure fails the whole listing.
func (c *PersistentCollection) All(ctx context.Context) *async.Future[[]Object] {
	return async.Go(ctx, func(ctx context.Context) ([]Object, error) {
		ids, err := c.scopedKeys(ctx)
		if err != nil {
			return nil, err
		}

		fetched := make([]*Object, len(ids))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(allFetchConcurrency)
		for i, id := range ids {
			i, id := i, id
			g.Go(func() error {
				obj, err := c.load(gctx, id)
				if err != nil {
					return err
				}
				fetched[i] = obj
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		objs := make([]Object, 0, len(fetched))
		for _, obj := range fetched {
			if obj != nil {
				objs = append(objs, *obj)
			}
		}
		return objs, nil
	})
}

// Get implements Collection.Get.
func (c *PersistentCollection) Get(ctx context.Context, id string) *async.Future[*Object] {
	return async.Go(ctx, func(ctx context.Context) (*Object, error) {
		return c.load(ctx, id)
	})
}

// Create implements Collection.Create.
func (c *PersistentCollection) Create(ctx context.Context, id string, data map[string]any) *async.Future[Object] {
	return async.Go(ctx, func(ctx context.Context) (Object, error) {
		if _, ok := data["id"]; ok {
			return Object{}, errReservedID()
		}
		if id == "" {
			id = newObjectID()
		}
		if data == nil {
			data = map[string]any{}
		}
		if err := c.save(ctx, id, data); err != nil {
			return Object{}, err
		}
		return Object{ID: id, Data: data}, nil
	})
}

// Update implements Collection.Update. The object is loaded first so that
// updating an absent id fails instead of creating; there is no concurrency
// check beyond that, so racing updates are last-writer-wins.
func (c *PersistentCollection) Update(ctx context.Context, id string, data map[string]any) *async.Future[Object] {
	return async.Go(ctx, func(ctx context.Context) (Object, error) {
		if id == "" {
			return Object{}, errEmptyID("update")
		}
		if _, ok := data["id"]; ok {
			return Object{}, errReservedID()
		}

		existing, err := c.load(ctx, id)
		if err != nil {
			return Object{}, err
		}
		if existing == nil {
			return Object{}, ErrNotFound
		}

		if data == nil {
			data = map[string]any{}
		}
		if err := c.save(ctx, id, data); err != nil {
			return Object{}, err
		}
		return Object{ID: id, Data: data}, nil
	})
}

// Delete implements Collection.Delete.
func (c *PersistentCollection) Delete(ctx context.Context, id string) *async.Future[*Object] {
	return async.Go(ctx, func(ctx context.Context) (*Object, error) {
		prior, err := c.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if prior == nil {
			return nil, nil
		}
		if err := c.kv.Delete(ctx, c.table, c.key(id)); err != nil {
			return nil, fmt.Errorf("failed to delete object %s: %w", id, err)
		}
		return prior, nil
	})
}

func (c *PersistentCollection) key(id string) string {
	return c.keyPrefix + id
}

func (c *PersistentCollection) scopedKeys(ctx context.Context) ([]string, error) {
	keys, err := c.kv.Keys(ctx, c.table)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		if strings.HasPrefix(key, c.keyPrefix) {
			ids = append(ids, strings.TrimPrefix(key, c.keyPrefix))
		}
	}
	return ids, nil
}

func (c *PersistentCollection) load(ctx context.Context, id string) (*Object, error) {
	value, err := c.kv.Load(ctx, c.table, c.key(id))
	if err != nil {
		return nil, fmt.Errorf("failed to load object %s: %w", id, err)
	}
	if value == nil {
		return nil, nil
	}

	var data map[string]any
	if err := json.Unmarshal(value, &data); err != nil {
		return nil, fmt.Errorf("failed to decode object %s: %w", id, err)
	}
	return &Object{ID: id, Data: data}, nil
}

func (c *PersistentCollection) save(ctx context.Context, id string, data map[string]any) error {
	value, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode object %s: %w", id, err)
	}
	if err := c.kv.Save(ctx, c.table, c.key(id), value); err != nil {
		return fmt.Errorf("failed to save object %s: %w", id, err)
	}
	return nil
}

// PersistentBackend is a StoreBackend over a keyvalue.Store. Store
// collections live in the "stores:{owner_id}" table keyed by store id; row
// collections share the "rows:{owner_id}" table with composite
// "{store_id}:{id}" keys.
type PersistentBackend struct {
	kv keyvalue.Store
}

var _ StoreBackend = (*PersistentBackend)(nil)

// NewPersistentBackend creates a StoreBackend over the given store manager.
func NewPersistentBackend(kv keyvalue.Store) *PersistentBackend {
	return &PersistentBackend{kv: kv}
}

// StoreCollection implements StoreBackend.StoreCollection.
func (b *PersistentBackend) StoreCollection(ownerID string) Collection {
	return &PersistentCollection{
		kv:    b.kv,
		table: "stores:" + ownerID,
	}
}

// RowCollection implements StoreBackend.RowCollection.
func (b *PersistentBackend) RowCollection(ownerID, storeID string) Collection {
	return &PersistentCollection{
		kv:        b.kv,
		table:     "rows:" + ownerID,
		keyPrefix: storeID + ":",
	}
}
