// Package handlers implements the HTTP boundary of the Conversational
// Analytics backend: OAuth endpoints, data agent CRUD, and the chat surface
// with its streamed responses. Handlers validate input, issue one or two
// upstream calls, and reshape the reply; they hold no state of their own.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dataqna/backend/internal/apperr"
	"github.com/dataqna/backend/internal/auth"
	"github.com/dataqna/backend/internal/config"
	"github.com/dataqna/backend/internal/geminidata"
)

// Handlers holds all handler dependencies.
type Handlers struct {
	cfg  *config.Config
	flow *auth.Flow
	data *geminidata.Client
}

// New creates a Handlers instance with all dependencies.
func New(cfg *config.Config, flow *auth.Flow, data *geminidata.Client) *Handlers {
	return &Handlers{cfg: cfg, flow: flow, data: data}
}

// parent is the resource parent agents and conversations are scoped to.
func (h *Handlers) parent() string { return h.cfg.Parent() }

// ── Helpers ──────────────────────────────────────────────────

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondDetail writes the error body shape the web client expects.
func respondDetail(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}

// respondError maps a taxonomy error to its status code, once, here.
func respondError(w http.ResponseWriter, err error) {
	respondDetail(w, apperr.Status(err), err.Error())
}
