package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/praekelt/go-store-service/pkg/api"
	"github.com/praekelt/go-store-service/pkg/collections"
	"github.com/praekelt/go-store-service/pkg/config"
	"github.com/praekelt/go-store-service/pkg/httputil"
	"github.com/praekelt/go-store-service/pkg/keyvalue"
	"github.com/praekelt/go-store-service/pkg/observability"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	backend, store, err := buildBackend(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	logger.Infof("Storage initialized (type=%s)", cfg.Storage.Type)

	registry := prometheus.NewRegistry()
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(registry)
		if cached, ok := store.(*keyvalue.CachingStore); ok {
			hits := metrics.CacheHitsTotal.WithLabelValues("keyvalue")
			misses := metrics.CacheMissesTotal.WithLabelValues("keyvalue")
			cached.Instrument(func() { hits.Inc() }, func() { misses.Inc() })
		}
	}

	server := api.NewServer(backend, logger, metrics)

	var handler http.Handler = server
	if metrics != nil {
		handler = observability.HTTPMetricsMiddleware(metrics, nil)(handler)
	}
	handler = httputil.RecoveryMiddleware(logger)(handler)
	if len(cfg.Server.CORSOrigins) > 0 {
		handler = httputil.CORSMiddleware(cfg.Server.CORSOrigins)(handler)
	}
	handler = httputil.LoggingMiddleware(logger)(handler)
	handler = httputil.RequestIDMiddleware(handler)

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	startHealthServer(cfg, logger, registry, store)

	go func() {
		logger.Infof("Starting store service on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sm := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	if store != nil {
		sm.RegisterShutdownFunc(func(context.Context) error { return store.Close() })
	}
	if err := sm.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("Shutdown finished with errors")
		os.Exit(1)
	}
}

// buildBackend constructs the collection backend selected by cfg.Type. The
// returned store is nil for the in-memory backend, which has nothing to
// close.
func buildBackend(cfg keyvalue.Config) (collections.StoreBackend, keyvalue.Store, error) {
	if cfg.Type == "memory" {
		return collections.NewInMemoryBackend(), nil, nil
	}

	store, err := keyvalue.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return collections.NewPersistentBackend(store), store, nil
}

// startHealthServer serves the liveness, readiness and metrics endpoints
// on the dedicated health port.
func startHealthServer(cfg *config.Config, logger *observability.Logger, registry *prometheus.Registry, store keyvalue.Store) {
	checker := observability.NewHealthChecker()
	if p, ok := store.(interface{ Ping(context.Context) error }); ok {
		checker.AddCheck("storage", p.Ping)
	}

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, checker)
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort)
	go func() {
		logger.Infof("Starting health server on %s", addr)
		if err := http.ListenAndServe(addr, healthMux); err != nil {
			logger.WithError(err).Error("Health server stopped")
		}
	}()
}
