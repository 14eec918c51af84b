package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/praekelt/go-store-service/pkg/collections"
	"github.com/praekelt/go-store-service/pkg/observability"
	"github.com/praekelt/go-store-service/pkg/pathpattern"
)

// CollectionFactory resolves a Collection instance from the path bindings
// of a matched route. The elem_id binding is never included; it identifies
// an object within the collection, not the collection itself.
type CollectionFactory func(bindings map[string]string) collections.Collection

// Server represents our API server
type Server struct {
	backend collections.StoreBackend
	router  *mux.Router
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewServer creates a new API server exposing the store and row
// collections of the given backend. metrics may be nil.
func NewServer(backend collections.StoreBackend, logger *observability.Logger, metrics *observability.Metrics) *Server {
	s := &Server{
		backend: backend,
		router:  mux.NewRouter(),
		logger:  logger,
		metrics: metrics,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the collection routes
func (s *Server) setupRoutes() {
	s.RegisterCollection("/:owner_id/stores", func(bindings map[string]string) collections.Collection {
		return s.backend.StoreCollection(bindings["owner_id"])
	})
	s.RegisterCollection("/:owner_id/stores/:store_id/keys", func(bindings map[string]string) collections.Collection {
		return s.backend.RowCollection(bindings["owner_id"], bindings["store_id"])
	})
}

// RegisterCollection binds a friendly path template to a collection
// factory, registering both the collection route and the derived element
// route.
func (s *Server) RegisterCollection(template string, factory CollectionFactory) {
	pattern := pathpattern.Compile(template)

	ch := &collectionHandler{
		template: template,
		factory:  factory,
		logger:   s.logger,
		metrics:  s.metrics,
	}
	s.router.HandleFunc(pattern.MuxPath(), ch.list).Methods("GET")
	s.router.HandleFunc(pattern.MuxPath(), ch.create).Methods("POST")

	element := pattern.Element()
	eh := &elementHandler{
		template: template,
		factory:  factory,
		logger:   s.logger,
		metrics:  s.metrics,
	}
	s.router.HandleFunc(element.MuxPath(), eh.retrieve).Methods("GET")
	s.router.HandleFunc(element.MuxPath(), eh.replace).Methods("PUT")
	s.router.HandleFunc(element.MuxPath(), eh.remove).Methods("DELETE")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
