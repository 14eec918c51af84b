// Package observability provides structured logging, Prometheus metrics,
// health checks and graceful shutdown for the store service.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.Info("Server started")
//
// Context-aware logging:
//
//	logger.WithField("request_id", reqID).WithError(err).Error("Request failed")
//
// # Prometheus Metrics
//
// Initialize metrics:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.HTTPRequestsTotal.WithLabelValues("GET", "/42/stores", "200").Inc()
//
// # Health Checks
//
// Liveness and readiness probes on the health port:
//
//	checker := observability.NewHealthChecker()
//	checker.AddCheck("redis", store.Ping)
//	observability.RegisterHealthRoutes(mux, checker)
//
// # Graceful Shutdown
//
//	sm := observability.NewShutdownManager(logger, server, 30*time.Second)
//	sm.RegisterShutdownFunc(func(ctx context.Context) error { return store.Close() })
//	sm.WaitForShutdown()
package observability
