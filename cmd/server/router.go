package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/taskhub/taskhub-api/internal/api"
	apimiddleware "github.com/taskhub/taskhub-api/internal/api/middleware"
	"github.com/taskhub/taskhub-api/internal/metrics"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)
	r.Use(app.collector.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(app.config.CORS.Origins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authHandler := api.NewAuthHandler(app.authGateway)
	taskHandler := api.NewTaskHandler(app.taskService)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.verifier, app.directory)

	app.authLimiter = apimiddleware.NewRateLimiter(apimiddleware.RateLimiterConfig{
		Rate:            rate.Limit(app.config.RateLimit.AuthPerSecond),
		Burst:           app.config.RateLimit.AuthBurst,
		CleanupInterval: apimiddleware.DefaultRateLimiterConfig().CleanupInterval,
	})

	// Authentication endpoints (public, rate limited per client)
	r.Group(func(r chi.Router) {
		r.Use(app.authLimiter.Limit)
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/login", authHandler.Login)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/auth/me", authHandler.Me)

		r.Post("/tasks", taskHandler.Create)
		r.Get("/tasks", taskHandler.List)
		r.Get("/tasks/{id}", taskHandler.Get)
		r.Put("/tasks/{id}", taskHandler.Update)
		r.Patch("/tasks/{id}/complete", taskHandler.Complete)
		r.Delete("/tasks/{id}", taskHandler.Delete)
	})

	// Operational endpoints
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"service":"taskhub-api","status":"ok"}`))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler(app.registry))

	return r
}
