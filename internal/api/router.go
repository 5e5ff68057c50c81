package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/", h.RootHandler)
	r.Get("/health", h.HealthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.ChatHandler)
		r.Get("/test-retrieval/{query}", h.TestRetrievalHandler)
		r.Get("/vector-store-info", h.VectorStoreInfoHandler)
	})

	return r
}
