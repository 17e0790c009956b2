package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dschilow/Avatales-Backend-sub001/internal/api"
	apimiddleware "github.com/dschilow/Avatales-Backend-sub001/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userService)
	userHandler := api.NewUserHandler(app.userService)
	storyHandler := api.NewStoryHandler(app.storyService)
	characterHandler := api.NewCharacterHandler(app.characterService)
	goalHandler := api.NewLearningGoalHandler(app.goalService)

	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Account
			r.Get("/me", userHandler.GetProfile)
			r.Put("/me", userHandler.UpdateProfile)
			r.Put("/me/password", userHandler.ChangePassword)
			r.Post("/me/verify-email", userHandler.VerifyEmail)
			r.Put("/me/subscription", userHandler.UpdateSubscription)
			r.Put("/me/preferences", userHandler.SetPreference)

			// Child profiles
			r.Post("/children", userHandler.AddChild)
			r.Get("/children", userHandler.ListChildren)
			r.Delete("/children/{id}", userHandler.RemoveChild)
			r.Post("/children/{id}/usage", userHandler.TrackUsage)
			r.Get("/children/{id}/goals", goalHandler.ListForChild)
			r.Get("/children/{id}/goals/recommended", goalHandler.Recommend)

			// Stories
			r.Post("/stories", storyHandler.Create)
			r.Get("/stories", storyHandler.List)
			r.Get("/stories/published", storyHandler.ListPublished)
			r.Get("/stories/{id}", storyHandler.Get)
			r.Delete("/stories/{id}", storyHandler.Delete)
			r.Post("/stories/{id}/publish", storyHandler.Publish)
			r.Post("/stories/{id}/unpublish", storyHandler.Unpublish)
			r.Post("/stories/{id}/moderate", storyHandler.Moderate)
			r.Post("/stories/{id}/view", storyHandler.RecordView)
			r.Post("/stories/{id}/like", storyHandler.AddLike)
			r.Delete("/stories/{id}/like", storyHandler.RemoveLike)
			r.Post("/stories/{id}/share", storyHandler.RecordShare)
			r.Post("/stories/{id}/rating", storyHandler.Rate)
			r.Post("/stories/{id}/tags", storyHandler.AddTag)
			r.Post("/stories/{id}/images", storyHandler.AddImage)
			r.Post("/stories/{id}/goals/{goalID}", storyHandler.AttachGoal)

			// Characters
			r.Post("/characters", characterHandler.Create)
			r.Get("/characters", characterHandler.List)
			r.Get("/characters/{id}", characterHandler.Get)
			r.Delete("/characters/{id}", characterHandler.Delete)
			r.Post("/characters/{id}/traits", characterHandler.AdjustTrait)
			r.Post("/characters/{id}/memories", characterHandler.AddMemory)
			r.Post("/characters/{id}/experience", characterHandler.GainExperience)

			// Learning goals
			r.Post("/goals", goalHandler.Create)
			r.Get("/goals/{id}", goalHandler.Get)
			r.Delete("/goals/{id}", goalHandler.Delete)
			r.Put("/goals/{id}/progress", goalHandler.UpdateProgress)
			r.Post("/goals/{id}/evidence", goalHandler.AddEvidence)
			r.Post("/goals/{id}/flag", goalHandler.Flag)
			r.Post("/goals/{id}/assign/{childID}", goalHandler.Assign)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
