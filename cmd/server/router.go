package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/homeroomhq/homeroom-api/internal/api"
	"github.com/homeroomhq/homeroom-api/internal/api/middleware"
)

// router assembles the HTTP routes and middleware chain.
func (app *application) router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.TraceMiddleware)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   app.config.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(corsHandler.Handler)

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordHasher)
	childHandler := api.NewChildHandler(app.childStore)
	cardHandler := api.NewCardHandler(app.cardService, app.childStore)
	reviewHandler := api.NewReviewHandler(app.reviewService, app.childStore)
	slotHandler := api.NewSlotHandler(app.slotStore, app.childStore)

	authMiddleware := middleware.NewAuthMiddleware(app.jwtService)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/children", func(r chi.Router) {
				r.Post("/", childHandler.Create)
				r.Get("/", childHandler.List)
				r.Get("/{childID}", childHandler.Get)
				r.Put("/{childID}", childHandler.Update)
				r.Delete("/{childID}", childHandler.Delete)

				r.Route("/{childID}/review", func(r chi.Router) {
					r.Get("/queue", reviewHandler.Queue)
					r.Post("/session", reviewHandler.StartSession)
					r.Post("/cards/{cardID}/outcome", reviewHandler.SubmitOutcome)
					r.Post("/cards/{cardID}/postpone", reviewHandler.Postpone)
				})

				r.Route("/{childID}/slots", func(r chi.Router) {
					r.Post("/", slotHandler.Create)
					r.Get("/", slotHandler.List)
					r.Put("/{slotID}", slotHandler.Update)
					r.Delete("/{slotID}", slotHandler.Delete)
				})
			})

			r.Route("/cards", func(r chi.Router) {
				r.Post("/", cardHandler.Create)
				r.Post("/import", cardHandler.Import)
				r.Post("/generate", cardHandler.GenerateDrafts)
				r.Post("/bulk-status", cardHandler.BulkStatus)
				r.Get("/{cardID}", cardHandler.Get)
				r.Put("/{cardID}", cardHandler.Update)
				r.Delete("/{cardID}", cardHandler.Delete)
				r.Post("/{cardID}/restore", cardHandler.Restore)
				r.Delete("/{cardID}/force", cardHandler.ForceDelete)
			})
		})
	})

	return r
}
