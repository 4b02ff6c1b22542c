package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/roamdeck/internal/cardservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *cardservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/cards", h.ListCards)
	r.Get("/cards/{blockID}", h.GetCard)
	r.Get("/search", h.Search)
	r.Post("/imports", h.Import)
	r.Post("/preview", h.Preview)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
