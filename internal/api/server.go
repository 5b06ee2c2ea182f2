package api

import (
	"net/http"
	"time"

	"github.com/futig/schedule-backend/internal/api/docs"
	documentapi "github.com/futig/schedule-backend/internal/api/document"
	"github.com/futig/schedule-backend/internal/api/middleware"
	scheduleapi "github.com/futig/schedule-backend/internal/api/schedule"
	"github.com/futig/schedule-backend/internal/config"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router. requestTimeout must
// cover the generator timeout so a fallback answer can still be written.
func SetupRouter(
	scheduleHandler *scheduleapi.Handler,
	documentHandler *documentapi.Handler,
	rateLimitCfg config.RateLimitConfig,
	requestTimeout time.Duration,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)               // Recover from panics
	r.Use(chimiddleware.RequestID)               // Add request ID
	r.Use(middleware.Logger(logger))             // Log requests
	r.Use(middleware.CORS)                       // Handle CORS
	r.Use(chimiddleware.Timeout(requestTimeout)) // Whole-request deadline

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Register routes
	limiter := middleware.NewRateLimiter(rateLimitCfg.RequestsPerMinute, rateLimitCfg.Burst)
	scheduleapi.RegisterRoutes(r, scheduleHandler, limiter.Handler)
	documentapi.RegisterRoutes(r, documentHandler)

	return r
}
