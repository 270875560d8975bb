// Package server provides the public entry point for initializing the
// Conversational Analytics backend: configuration, telemetry, remote
// clients, handlers and the HTTP router, composed in one place.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/dataqna/backend/internal/api"
	"github.com/dataqna/backend/internal/api/handlers"
	"github.com/dataqna/backend/internal/auth"
	"github.com/dataqna/backend/internal/config"
	"github.com/dataqna/backend/internal/geminidata"
	"github.com/dataqna/backend/internal/telemetry"
)

// Server holds the initialized backend.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Config is the immutable process configuration.
	Config *config.Config

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc should be called on graceful shutdown to flush telemetry.
	ShutdownFunc func(context.Context) error
}

// New initializes the backend from environment configuration.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, config.Load())
}

// NewWithConfig initializes the backend with an explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	shutdown, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	verifier := auth.NewVerifier(cfg)
	flow := auth.NewFlow(cfg)
	data := geminidata.NewClient(geminidata.WithEndpoint(cfg.Endpoints.AnalyticsURL))

	h := handlers.New(cfg, flow, data)
	router := api.NewRouter(cfg, h, verifier)

	log.Info().Str("project", cfg.ProjectID).Msg("backend initialized")

	return &Server{
		Handler:      router,
		Config:       cfg,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}
