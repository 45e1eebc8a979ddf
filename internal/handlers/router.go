package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"records-backend/internal/config"
	"records-backend/internal/middleware"
	"records-backend/internal/service/record"
	"records-backend/pkg/api"
	"records-backend/pkg/observability"
)

// Router creates and configures the HTTP router
type Router struct {
	service record.Service
	cfg     *config.Config
	logger  *zap.Logger
	metrics *observability.Collector
}

// NewRouter creates a new router instance
func NewRouter(service record.Service, cfg *config.Config, logger *zap.Logger, metrics *observability.Collector) *Router {
	return &Router{
		service: service,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.cfg.EnableMetrics {
		router.Use(middleware.Metrics(rt.metrics))
	}

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}))
	}

	// Unknown paths and unsupported methods keep the documented error shape.
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.Error(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.Error(w, http.StatusBadRequest, "unsupported method")
	})

	// Health check and metrics
	router.Get("/health", rt.healthCheck)
	if rt.cfg.EnableMetrics {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	recordHandler := NewRecordHandler(rt.service, rt.logger, rt.metrics)

	// Fixed paths are registered flat so that exact matches always win over
	// the {recordID} wildcard.
	router.Get("/records", recordHandler.ListRecords)
	router.Post("/records", recordHandler.CreateRecord)
	router.Post("/records/bulk", recordHandler.BulkCreateRecords)
	router.Get("/records/search", recordHandler.SearchRecords)
	router.Get("/records/stats", recordHandler.GetStats)
	router.Get("/records/export", recordHandler.ExportRecords)
	// A trailing slash with no id is rejected before method dispatch.
	router.HandleFunc("/records/", func(w http.ResponseWriter, r *http.Request) {
		api.Error(w, http.StatusBadRequest, "id required")
	})
	router.Get("/records/{recordID}", recordHandler.GetRecord)
	router.Put("/records/{recordID}", recordHandler.UpdateRecord)
	router.Delete("/records/{recordID}", recordHandler.DeleteRecord)

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}
