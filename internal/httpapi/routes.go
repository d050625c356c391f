package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter configures all routes
func NewRouter(h *Handlers, allowedOrigins []string, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)

	r.Route("/api/{domain}", func(r chi.Router) {
		r.Use(resolveDomain(h.registry))

		// Spreadsheet flow
		r.Post("/upload", h.Upload)
		r.Post("/validate", h.Validate)
		r.Post("/submit", h.Submit)
		r.Get("/template", h.Template)
		r.Get("/uploads/{id}", h.Preview)

		// Single-record CRUD
		r.Post("/", h.CreateReading)
		r.Get("/", h.ListReadings)
		r.Get("/by-id/{id}", h.GetReading)
		r.Get("/by-date/{date}", h.ListReadingsByDate)
		r.Post("/delete-many", h.DeleteManyReadings)
		r.Put("/{id}", h.UpdateReading)
		r.Delete("/{id}", h.DeleteReading)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})

	return r
}
