package httpapi

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/recommendations", h.Recommend)

		r.Post("/recipes/from-video", h.RecipeFromVideo)
		r.Post("/recipes", h.SaveRecipe)
		r.Get("/recipes", h.ListRecipes)

		r.Post("/receipts/parse", h.ParseReceipt)
		r.Post("/images/analyze", h.AnalyzeImage)

		r.Post("/items/finalize", h.FinalizeItems)
		r.Get("/items", h.ListItems)

		r.Post("/users/profile", h.CreateProfile)
		r.Get("/users/profile/{id}", h.GetProfile)
	})
}
