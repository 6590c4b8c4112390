package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okazarian/product-recommendation-service/internal/handler"
)

func Setup(h *handler.Handler) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Routes
	r.Route("/products", func(r chi.Router) {
		r.Get("/recommendations/personalized", h.GetPersonalizedRecommendations)
		r.Get("/{productID}/similar", h.GetSimilarProducts)
		r.Get("/{productID}/frequently-bought-together", h.GetFrequentlyBoughtTogether)
		r.Post("/{productID}/track-view", h.TrackProductView)
	})
	r.Get("/health", healthCheck)

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
