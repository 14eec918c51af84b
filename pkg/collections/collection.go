// Package collections defines the uniform CRUD contract over scoped sets of
// JSON-serializable objects, together with an ephemeral in-memory
// implementation and a durable implementation over an external keyed store.
package collections

import (
	"context"
	"encoding/hex"

	"github.com/google/uuid"

	"github.com/praekelt/go-store-service/pkg/async"
)

// Object is a single identifiable item within a collection. ID is assigned
// on creation and immutable thereafter; Data is the caller's payload.
type Object struct {
	ID   string         `json:"id"`
	Data map[string]any `json:"data"`
}

// Collection is a uniformly-accessed set of objects keyed by id.
//
// Every operation is asynchronous: the returned Future completes on a later
// goroutine scheduling, never within the calling frame. Failures complete
// the Future with an error from this package's taxonomy (ErrNotFound,
// ErrInvalidArgument) or a wrapped storage failure.
type Collection interface {
	// AllKeys resolves to the identifiers of every object in this
	// collection's scope. Order is unspecified.
	AllKeys(ctx context.Context) *async.Future[[]string]

	// All resolves to every object in this collection's scope. Order is
	// unspecified. Objects deleted between key listing and retrieval are
	// silently skipped.
	All(ctx context.Context) *async.Future[[]Object]

	// Get resolves to the object with the given id, or nil if absent.
	// An absent id is not an error.
	Get(ctx context.Context, id string) *async.Future[*Object]

	// Create stores data under the given id and resolves to the stored
	// object. An empty id means "generate one". Data must not contain the
	// reserved "id" key; if it does, the Future fails with
	// ErrInvalidArgument.
	Create(ctx context.Context, id string, data map[string]any) *async.Future[Object]

	// Update replaces the data of an existing object (full replace, not
	// merge) and resolves to the updated object. Updating an absent id
	// fails with ErrNotFound; Update never creates.
	Update(ctx context.Context, id string, data map[string]any) *async.Future[Object]

	// Delete removes the object with the given id and resolves to its
	// prior state, or nil if it was already absent. Deleting twice is not
	// an error.
	Delete(ctx context.Context, id string) *async.Future[*Object]
}

// StoreBackend produces scoped Collection instances. Implementations are
// stateless factories: each call constructs a fresh Collection over the
// backend's long-lived storage.
type StoreBackend interface {
	// StoreCollection returns the collection of stores owned by ownerID.
	StoreCollection(ownerID string) Collection

	// RowCollection returns the collection of rows in the given store.
	RowCollection(ownerID, storeID string) Collection
}

// newObjectID generates a fresh random identifier: 32 lowercase hex digits.
// Uniqueness is probabilistic (128 bits of randomness), not checked against
// existing ids.
func newObjectID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
