package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/katha/internal/slideservice"
)

// RouterConfig carries the optional pieces of the API router.
type RouterConfig struct {
	// AuthEnabled guards navigation control with Bearer token auth.
	AuthEnabled bool
	Token       string
	// Events, if non-nil, is mounted at GET /events.
	Events http.Handler
}

// NewRouter creates a chi router with all API routes, for mounting at /api.
// Reads are open; navigation control goes through AuthMiddleware.
func NewRouter(svc *slideservice.Service, cfg RouterConfig) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	r.Get("/slides", h.ListSlides)
	r.Get("/slides/{location}", h.GetSlide)
	r.Get("/toc", h.TOC)
	r.Get("/search", h.Search)
	r.Get("/state", h.State)

	r.With(AuthMiddleware(cfg.AuthEnabled, cfg.Token)).Post("/navigate", h.Navigate)

	if cfg.Events != nil {
		r.Get("/events", cfg.Events.ServeHTTP)
	}

	return r
}
