package collections

import (
	"context"
	"strings"
	"sync"

	"github.com/praekelt/go-store-service/pkg/async"
)

// memoryData is one scope's keyed payloads: storage key -> data map.
type memoryData map[string]map[string]any

// InMemoryCollection implements Collection over a process-local keyed map.
//
// Key translation is delegated to three hooks so that the same machinery
// serves both plain-keyed store collections and composite-keyed row
// collections: idToKey and keyToID convert between object ids and storage
// keys, and ownsKey filters out keys that belong to a different scope.
//
// Every read and write deep-copies payloads, so objects handed to callers
// are independent of internal state.
type InMemoryCollection struct {
	mu      *sync.RWMutex
	data    memoryData
	idToKey func(id string) string
	keyToID func(key string) string
	ownsKey func(key string) bool
}

var _ Collection = (*InMemoryCollection)(nil)

// AllKeys implements Collection.AllKeys.
func (c *InMemoryCollection) AllKeys(ctx context.Context) *async.Future[[]string] {
	return async.Go(ctx, func(ctx context.Context) ([]string, error) {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return c.keys(), nil
	})
}

// All implements Collection.All.
func (c *InMemoryCollection) All(ctx context.Context) *async.Future[[]Object] {
	return async.Go(ctx, func(ctx context.Context) ([]Object, error) {
		c.mu.RLock()
		defer c.mu.RUnlock()

		objs := make([]Object, 0, len(c.data))
		for _, id := range c.keys() {
			if obj := c.load(id); obj != nil {
				objs = append(objs, *obj)
			}
		}
		return objs, nil
	})
}

// Get implements Collection.Get.
func (c *InMemoryCollection) Get(ctx context.Context, id string) *async.Future[*Object] {
	return async.Go(ctx, func(ctx context.Context) (*Object, error) {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return c.load(id), nil
	})
}

// Create implements Collection.Create.
func (c *InMemoryCollection) Create(ctx context.Context, id string, data map[string]any) *async.Future[Object] {
	return async.Go(ctx, func(ctx context.Context) (Object, error) {
		if _, ok := data["id"]; ok {
			return Object{}, errReservedID()
		}
		if id == "" {
			id = newObjectID()
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		c.store(id, data)
		return *c.load(id), nil
	})
}

// Update implements Collection.Update.
func (c *InMemoryCollection) Update(ctx context.Context, id string, data map[string]any) *async.Future[Object] {
	return async.Go(ctx, func(ctx context.Context) (Object, error) {
		if id == "" {
			return Object{}, errEmptyID("update")
		}
		if _, ok := data["id"]; ok {
			return Object{}, errReservedID()
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.data[c.idToKey(id)]; !ok {
			return Object{}, ErrNotFound
		}
		c.store(id, data)
		return *c.load(id), nil
	})
}

// Delete implements Collection.Delete.
func (c *InMemoryCollection) Delete(ctx context.Context, id string) *async.Future[*Object] {
	return async.Go(ctx, func(ctx context.Context) (*Object, error) {
		c.mu.Lock()
		defer c.mu.Unlock()

		prior := c.load(id)
		delete(c.data, c.idToKey(id))
		return prior, nil
	})
}

// keys returns the ids of every key in this collection's scope. Callers
// must hold at least a read lock.
func (c *InMemoryCollection) keys() []string {
	ids := make([]string, 0, len(c.data))
	for key := range c.data {
		if c.ownsKey(key) {
			ids = append(ids, c.keyToID(key))
		}
	}
	return ids
}

// load returns a deep copy of the object with the given id, or nil if
// absent. Callers must hold at least a read lock.
func (c *InMemoryCollection) load(id string) *Object {
	data, ok := c.data[c.idToKey(id)]
	if !ok {
		return nil
	}
	return &Object{ID: id, Data: deepCopyData(data)}
}

// store saves a deep copy of data under id. Callers must hold the write
// lock.
func (c *InMemoryCollection) store(id string, data map[string]any) {
	c.data[c.idToKey(id)] = deepCopyData(data)
}

// deepCopyData clones a JSON-shaped payload (maps, slices and scalars) so
// that caller mutations never reach stored state and vice versa.
func deepCopyData(data map[string]any) map[string]any {
	if data == nil {
		return map[string]any{}
	}
	return deepCopyValue(data).(map[string]any)
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = deepCopyValue(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = deepCopyValue(elem)
		}
		return out
	default:
		return val
	}
}

// InMemoryBackend is a StoreBackend over nested in-process maps. It holds
// the long-lived keyed maps; the collections it hands out are per-call
// scoped views over them.
type InMemoryBackend struct {
	mu     sync.RWMutex
	stores map[string]memoryData // owner id -> store payloads
	rows   map[string]memoryData // owner id -> composite-keyed row payloads
}

var _ StoreBackend = (*InMemoryBackend)(nil)

// NewInMemoryBackend creates an empty in-memory store backend.
func NewInMemoryBackend() *InMemoryBackend {
	return &InMemoryBackend{
		stores: make(map[string]memoryData),
		rows:   make(map[string]memoryData),
	}
}

// StoreCollection implements StoreBackend.StoreCollection.
func (b *InMemoryBackend) StoreCollection(ownerID string) Collection {
	return &InMemoryCollection{
		mu:      &b.mu,
		data:    b.ownerData(b.stores, ownerID),
		idToKey: func(id string) string { return id },
		keyToID: func(key string) string { return key },
		ownsKey: func(string) bool { return true },
	}
}

// RowCollection implements StoreBackend.RowCollection. Row storage keys are
// composites of the form "{store_id}:{id}", so rows from other stores under
// the same owner never leak into this collection's view.
func (b *InMemoryBackend) RowCollection(ownerID, storeID string) Collection {
	prefix := storeID + ":"
	return &InMemoryCollection{
		mu:      &b.mu,
		data:    b.ownerData(b.rows, ownerID),
		idToKey: func(id string) string { return prefix + id },
		keyToID: func(key string) string { return strings.TrimPrefix(key, prefix) },
		ownsKey: func(key string) bool { return strings.HasPrefix(key, prefix) },
	}
}

// ownerData returns the keyed map for one owner, creating it on first use.
func (b *InMemoryBackend) ownerData(byOwner map[string]memoryData, ownerID string) memoryData {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := byOwner[ownerID]
	if !ok {
		data = make(memoryData)
		byOwner[ownerID] = data
	}
	return data
}
