package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iconidentify/tikgrab/internal/api/handler"
	mw "github.com/iconidentify/tikgrab/internal/api/middleware"
)

// NewRouter creates the HTTP router with all routes configured.
// An empty apiKey leaves the API open.
func NewRouter(
	resolveHandler *handler.ResolveHandler,
	healthHandler *handler.HealthHandler,
	eventHandler *handler.EventHandler,
	uiHandler *handler.UIHandler,
	apiKey string,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath) // Normalize paths (e.g., //ready -> /ready)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(mw.CORS)

	// Health endpoints (no auth)
	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)

	// Web UI (no auth - the page sends the key itself)
	r.Get("/", uiHandler.Index)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(apiKey))

		r.Get("/stats", healthHandler.Stats)

		r.Post("/resolve", resolveHandler.Resolve)
		r.Get("/current", resolveHandler.Current)
		r.Get("/media", resolveHandler.Media)

		if eventHandler != nil {
			r.Get("/events", eventHandler.List)
			r.Get("/events/stats", eventHandler.Stats)
			r.Get("/events/categories", eventHandler.Categories)
		}
	})

	return r
}
