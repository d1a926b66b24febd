package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	catalogapi "github.com/owlingo/console-backend/internal/api/catalog"
	"github.com/owlingo/console-backend/internal/api/docs"
	libraryapi "github.com/owlingo/console-backend/internal/api/library"
	"github.com/owlingo/console-backend/internal/api/middleware"
	wizardapi "github.com/owlingo/console-backend/internal/api/wizard"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(
	wizardHandler *wizardapi.Handler,
	catalogHandler *catalogapi.Handler,
	libraryHandler *libraryapi.Handler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)                 // Recover from panics
	r.Use(chimiddleware.RequestID)                 // Add request ID
	r.Use(middleware.Logger(logger))               // Log requests
	r.Use(middleware.CORS)                         // Handle CORS
	r.Use(chimiddleware.Timeout(60 * time.Second)) // Default timeout

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Register routes
	wizardapi.RegisterRoutes(r, wizardHandler)
	catalogapi.RegisterRoutes(r, catalogHandler)
	libraryapi.RegisterRoutes(r, libraryHandler)

	return r
}
