// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/solmarita/filmopine/internal/auth"
	"github.com/solmarita/filmopine/internal/config"
	"github.com/solmarita/filmopine/internal/middleware"
)

// Router assembles the HTTP routing tree.
type Router struct {
	handler *Handler
	authMW  *auth.Middleware
	config  *config.Config
}

// NewRouter creates a router from the handler and auth middleware.
func NewRouter(handler *Handler, authMW *auth.Middleware, cfg *config.Config) *Router {
	return &Router{
		handler: handler,
		authMW:  authMW,
		config:  cfg,
	}
}

// Setup configures all routes and returns the root handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied in order to every route.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)

	if len(router.config.Security.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   router.config.Security.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Every request resolves its bearer token to an actor; routes that
	// need a logged-in user additionally mount RequireAuth.
	r.Use(router.authMW.Authenticate)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", router.handler.Info)

		r.Route("/health", func(r chi.Router) {
			r.Get("/live", router.handler.HealthLive)
			r.Get("/ready", router.handler.HealthReady)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", router.handler.Register)
			r.Post("/login", router.handler.Login)
			r.With(router.authMW.RequireAuth).Get("/me", router.handler.Me)
		})

		r.Route("/movies", func(r chi.Router) {
			r.Get("/search", router.handler.SearchMovies)
			r.Get("/", router.handler.ListMovies)
			r.Post("/", router.handler.CreateMovie)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", router.handler.GetMovie)
				r.Put("/", router.handler.UpdateMovie)
				r.Patch("/", router.handler.UpdateMovie)
				r.Delete("/", router.handler.DeleteMovie)

				r.Get("/reviews", router.handler.ListMovieReviews)
				r.Get("/reviews/{review_id}", router.handler.GetMovieReview)
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/search", router.handler.SearchReviews)
			r.With(router.authMW.RequireAuth).Get("/me", router.handler.MyReviews)
			r.Get("/", router.handler.ListReviews)
			r.With(router.authMW.RequireAuth).Post("/", router.handler.CreateReview)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", router.handler.GetReview)
				r.Put("/", router.handler.UpdateReview)
				r.Patch("/", router.handler.UpdateReview)
				r.Delete("/", router.handler.DeleteReview)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(router.authMW.RequireAuth)
			r.Get("/", router.handler.ListUsers)
			r.Get("/{id}", router.handler.GetUser)
			r.Put("/{id}", router.handler.UpdateUser)
			r.Delete("/{id}", router.handler.DeleteUser)
		})
	})

	return r
}
