package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/fotogo/gallery-core/internal/web/handlers"
	"github.com/fotogo/gallery-core/internal/web/middleware"
)

func (s *Server) setupRoutes(deps Deps) {
	imagesHandler := handlers.NewImagesHandler(deps.Crops, deps.Scorer, s.config.Defaults.DiscardThreshold)
	galleryHandler := handlers.NewGalleryHandler(deps.Gallery, deps.Presets)
	presetsHandler := handlers.NewPresetsHandler(deps.Presets, deps.Gallery)
	faceSearchHandler := handlers.NewFaceSearchHandler(deps.Searcher, deps.Watermarker, s.config.Defaults.FaceMatchThreshold)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// Editor API
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.Verifier))

			// Stateless image operations
			r.Post("/images/adjust", imagesHandler.Adjust)
			r.Post("/images/crop", imagesHandler.Crop)
			r.Post("/images/quality", imagesHandler.Quality)

			// Event galleries
			r.Post("/events/{event}/gallery", galleryHandler.Upload)
			r.Get("/events/{event}/gallery", galleryHandler.List)
			r.Delete("/events/{event}/gallery/{id}", galleryHandler.Delete)
			r.Put("/events/{event}/gallery/{id}/discarded", galleryHandler.SetDiscarded)
			r.Post("/events/{event}/presets/{id}/apply", galleryHandler.ApplyPreset)

			// Presets
			r.Get("/presets", presetsHandler.List)
			r.Post("/presets", presetsHandler.Create)
			r.Get("/presets/{id}", presetsHandler.Get)
			r.Delete("/presets/{id}", presetsHandler.Delete)
		})
	})

	// Public visitor surface
	s.router.Route("/public", func(r chi.Router) {
		r.Post("/events/{event}/face-search", faceSearchHandler.Search)
		r.Get("/events/{event}/gallery/{id}/preview", faceSearchHandler.Preview)
	})
}
