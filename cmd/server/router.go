package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/feedscribe/feedscribe/internal/api"
	apiMiddleware "github.com/feedscribe/feedscribe/internal/api/middleware"
	"github.com/feedscribe/feedscribe/internal/api/shared"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(
		app.jwtService,
		app.passwordVerifier,
		app.config.Auth,
		app.logger,
	)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	feedHandler := api.NewFeedHandler(app.feedService, app.logger)
	digestHandler := api.NewDigestHandler(app.digestService, app.logger)
	translatorHandler := api.NewTranslatorHandler(app.translatorService, app.logger)
	taskHandler := api.NewTaskHandler(app.taskManager, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoint (public)
		r.Post("/auth/token", authHandler.Token)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Feed endpoints
			r.Post("/feeds", feedHandler.Create)
			r.Get("/feeds", feedHandler.List)
			r.Post("/feeds/refresh", feedHandler.RefreshAll)
			r.Get("/feeds/{id}", feedHandler.Get)
			r.Put("/feeds/{id}", feedHandler.Update)
			r.Delete("/feeds/{id}", feedHandler.Delete)
			r.Get("/feeds/{id}/entries", feedHandler.Entries)
			r.Post("/feeds/{id}/refresh", feedHandler.Refresh)

			// Digest endpoints
			r.Get("/digests", digestHandler.List)
			r.Get("/digests/{day}", digestHandler.Get)
			r.Post("/digests/{day}", digestHandler.Generate)

			// Translation provider endpoints
			r.Post("/translator/validate", translatorHandler.Validate)

			// Task endpoints
			r.Get("/tasks", taskHandler.List)
			r.Get("/tasks/stats", taskHandler.Stats)
			r.Delete("/tasks/completed", taskHandler.ClearCompleted)
			r.Get("/tasks/{name}", taskHandler.Get)
			r.Post("/tasks/{name}/cancel", taskHandler.Cancel)
			r.Put("/tasks/{name}/progress", taskHandler.Progress)
		})
	})

	// Health check endpoint
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, api.HealthResponse{
			Status: "ok",
			Time:   time.Now().UTC(),
		})
	})

	return r
}
