package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/mreyes-dev/portfolio-site-backend/models"
)

// setupRoutes mounts the public site routes and the authenticated admin
// routes. The reorder route is registered alongside the {itemID} routes;
// chi resolves the static segment first.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Get("/health", handlers.healthHandler.health())

	r.Route("/api", func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		for _, entityType := range []models.EntityType{models.EntityProject, models.EntityExperience} {
			entityType := entityType
			r.Route("/"+entityType.Plural(), func(r chi.Router) {
				r.Get("/", handlers.itemHandler.list(entityType))
				r.Get("/{itemID}", handlers.itemHandler.get(entityType))

				r.Group(func(r chi.Router) {
					r.Use(authMiddleware.authenticate)
					r.Use(authMiddleware.requireAdmin)

					r.Post("/", handlers.itemHandler.create(entityType))
					r.Put("/reorder", handlers.itemHandler.reorder(entityType))
					r.Put("/{itemID}", handlers.itemHandler.update(entityType))
					r.Delete("/{itemID}", handlers.itemHandler.delete(entityType))
				})
			})
		}

		r.Post("/auth/login", handlers.authHandler.login())
		r.With(authMiddleware.authenticate).Get("/auth/me", handlers.authHandler.me())

		r.Post("/contact", handlers.contactHandler.submit())
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.authenticate)
			r.Use(authMiddleware.requireAdmin)

			r.Get("/contact", handlers.contactHandler.list())
			r.Delete("/contact/{submissionID}", handlers.contactHandler.delete())
		})

		r.Get("/settings", handlers.settingHandler.list())
		r.With(authMiddleware.authenticate, authMiddleware.requireAdmin).
			Put("/settings/{key}", handlers.settingHandler.set())
	})
}
