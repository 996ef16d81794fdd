// Package api serves the record codecs, the comparer and the ledger over HTTP.
//
// Every route except /metrics lives under /api/v1 and is protected by the
// X-API-Key header when an API key is configured.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 30 * time.Second

// NewRouter builds the HTTP handler tree for s. gatherer backs /metrics.
func NewRouter(s *Server, gatherer prometheus.Gatherer) http.Handler {
	metrics := s.metrics

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link", headerRecordCount},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(metrics.InstrumentAuthMiddleware(apiKeyMiddleware(s.config.APIKey)))
		r.Use(bodyLimit(s.config.MaxBodyBytes))

		r.Get("/health", metrics.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		// Stateless codec operations
		r.Post("/convert", metrics.InstrumentHandler("POST", "/api/v1/convert", s.handleConvert))
		r.Post("/compare", metrics.InstrumentHandler("POST", "/api/v1/compare", s.handleCompare))

		// Ledger
		r.Post("/records", metrics.InstrumentHandler("POST", "/api/v1/records", s.handleImport))
		r.Get("/records", metrics.InstrumentHandler("GET", "/api/v1/records", s.handleExport))
		r.Get("/records/{txID}", metrics.InstrumentHandler("GET", "/api/v1/records/{txID}", s.handleGetRecord))
		r.Delete("/records/{txID}", metrics.InstrumentHandler("DELETE", "/api/v1/records/{txID}", s.handleDeleteRecord))
		r.Get("/batches/{batchID}", metrics.InstrumentHandler("GET", "/api/v1/batches/{batchID}", s.handleGetBatch))
	})

	return r
}

// StartServer serves the API until ctx is cancelled, then shuts down gracefully.
func StartServer(ctx context.Context, store RecordStore, config ServerConfig, logger *slog.Logger,
	registry prometheus.Registerer, gatherer prometheus.Gatherer) error {
	metrics := NewMetrics(registry)
	server := NewServer(store, config, metrics, logger)

	if n, err := store.Count(); err == nil {
		metrics.SetLedgerRecords(n)
	}

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(server, gatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting ypbank API server", "addr", addr, "auth", config.APIKey != "")
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("server shutdown complete")
		return nil
	}
}
