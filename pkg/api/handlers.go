package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/praekelt/go-store-service/pkg/async"
	"github.com/praekelt/go-store-service/pkg/collections"
	"github.com/praekelt/go-store-service/pkg/httputil"
	"github.com/praekelt/go-store-service/pkg/observability"
	"github.com/praekelt/go-store-service/pkg/pathpattern"
)

// collectionHandler serves operations on a collection as a whole:
//
//   - GET  - list every object in the collection
//   - POST - create an object within the collection
type collectionHandler struct {
	template string
	factory  CollectionFactory
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// list handles GET on the collection route, streaming one JSON object per
// line. Serialization starts only once every element has resolved.
func (h *collectionHandler) list(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	coll := h.factory(httputil.GetPathVars(r))

	objs, err := coll.All(r.Context()).Await(r.Context())
	h.observe("list", start, err)
	if err != nil {
		h.fail(w, r, err, "Failed to list objects")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	for _, obj := range objs {
		if err := enc.Encode(obj); err != nil {
			h.logger.WithError(err).Error("Failed to stream object listing")
			return
		}
	}
}

// create handles POST on the collection route.
func (h *collectionHandler) create(w http.ResponseWriter, r *http.Request) {
	var data map[string]any
	if !httputil.ParseJSONOrError(w, r, &data) {
		return
	}

	start := time.Now()
	coll := h.factory(httputil.GetPathVars(r))

	obj, err := coll.Create(r.Context(), "", data).Await(r.Context())
	h.observe("create", start, err)
	if err != nil {
		h.fail(w, r, err, "Failed to create object")
		return
	}

	async.SafeGo(r.Context(), 5*time.Second, "create audit", func(ctx context.Context) error {
		h.logger.WithFields(map[string]interface{}{
			"template": h.template,
			"id":       obj.ID,
		}).Info("object created")
		return nil
	})

	httputil.WriteCreated(w, map[string]string{"id": obj.ID})
}

func (h *collectionHandler) observe(op string, start time.Time, err error) {
	if h.metrics != nil {
		h.metrics.ObserveCollectionOp(op, h.template, start, errorType(err))
	}
}

func (h *collectionHandler) fail(w http.ResponseWriter, r *http.Request, err error, reason string) {
	writeCollectionError(w, r, h.logger, err, reason)
}

// elementHandler serves operations on a single object within a collection:
//
//   - GET    - retrieve an object
//   - PUT    - replace an object's data
//   - DELETE - remove an object
type elementHandler struct {
	template string
	factory  CollectionFactory
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// collection splits the elem_id binding off the path bindings and resolves
// the target collection from the rest.
func (h *elementHandler) collection(r *http.Request) (collections.Collection, string) {
	vars := httputil.GetPathVars(r)
	bindings := make(map[string]string, len(vars))
	var elemID string
	for name, value := range vars {
		if name == pathpattern.ElemIDVar {
			elemID = value
			continue
		}
		bindings[name] = value
	}
	return h.factory(bindings), elemID
}

// retrieve handles GET on the element route.
func (h *elementHandler) retrieve(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	coll, elemID := h.collection(r)

	obj, err := coll.Get(r.Context(), elemID).Await(r.Context())
	h.observe("get", start, err)
	if err != nil {
		h.fail(w, r, err, "Failed to retrieve object")
		return
	}
	if obj == nil {
		httputil.WriteNotFoundError(w, "Object not found")
		return
	}

	httputil.WriteSuccess(w, obj)
}

// replace handles PUT on the element route, fully replacing the object's
// data.
func (h *elementHandler) replace(w http.ResponseWriter, r *http.Request) {
	var data map[string]any
	if !httputil.ParseJSONOrError(w, r, &data) {
		return
	}

	start := time.Now()
	coll, elemID := h.collection(r)

	_, err := coll.Update(r.Context(), elemID, data).Await(r.Context())
	h.observe("update", start, err)
	if err != nil {
		h.fail(w, r, err, "Failed to update object")
		return
	}

	httputil.WriteSuccess(w, map[string]bool{"success": true})
}

// remove handles DELETE on the element route. Removing an absent object is
// still a success; delete is idempotent.
func (h *elementHandler) remove(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	coll, elemID := h.collection(r)

	_, err := coll.Delete(r.Context(), elemID).Await(r.Context())
	h.observe("delete", start, err)
	if err != nil {
		h.fail(w, r, err, "Failed to delete object")
		return
	}

	httputil.WriteSuccess(w, map[string]bool{"success": true})
}

func (h *elementHandler) observe(op string, start time.Time, err error) {
	if h.metrics != nil {
		h.metrics.ObserveCollectionOp(op, h.template, start, errorType(err))
	}
}

func (h *elementHandler) fail(w http.ResponseWriter, r *http.Request, err error, reason string) {
	writeCollectionError(w, r, h.logger, err, reason)
}

// writeCollectionError logs a collection-layer failure and converts it to
// a transport response. The failure is always logged before surfacing.
func writeCollectionError(w http.ResponseWriter, r *http.Request, logger *observability.Logger, err error, reason string) {
	logger.WithError(err).WithFields(map[string]interface{}{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error(reason)

	switch {
	case collections.IsInvalidArgument(err):
		httputil.WriteBadRequest(w, err.Error())
	case collections.IsNotFound(err):
		httputil.WriteNotFoundError(w, "Object not found")
	default:
		httputil.WriteErrorMessage(w, http.StatusInternalServerError, reason)
	}
}

func errorType(err error) string {
	switch {
	case err == nil:
		return ""
	case collections.IsNotFound(err):
		return "not_found"
	case collections.IsInvalidArgument(err):
		return "invalid_argument"
	default:
		return "storage"
	}
}
