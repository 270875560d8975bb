package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dataqna/backend/internal/api/handlers"
	"github.com/dataqna/backend/internal/api/middleware"
	"github.com/dataqna/backend/internal/auth"
	"github.com/dataqna/backend/internal/config"
)

// NewRouter creates the HTTP router with all API routes.
func NewRouter(cfg *config.Config, h *handlers.Handlers, verifier *auth.Verifier) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Telemetry)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.OAuth.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health & info
	r.Get("/", rootHandler(cfg))
	r.Get("/health", healthHandler)
	r.Get("/version", versionHandler(cfg))

	r.Route("/api", func(r chi.Router) {
		// Authentication — public
		r.Route("/auth", func(r chi.Router) {
			r.Get("/url", h.AuthURL)
			r.Get("/callback", h.AuthCallback)
			r.Post("/callback", h.AuthExchange)
			r.Get("/logout", h.Logout)
		})

		// Everything else requires a verified bearer token
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireBearer(verifier))

			r.Route("/agents", func(r chi.Router) {
				r.Get("/", h.ListAgents)
				r.Post("/", h.CreateAgent)
				r.Delete("/{projectID}/{location}/{agentID}", h.DeleteAgent)
				// Agent names are full resource paths with slashes.
				r.Put("/*", h.UpdateAgent)
			})

			r.Route("/chat", func(r chi.Router) {
				r.Post("/conversations", h.CreateConversation)
				r.Get("/conversations/*", h.ChatGet)
				r.Post("/conversations/*", h.ChatPost)
			})
		})
	})

	return r
}

func rootHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Conversational Analytics API",
			"version": cfg.Version,
		})
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "ca-backend",
	})
}

func versionHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"version": cfg.Version,
			"service": "ca-backend",
		})
	}
}
