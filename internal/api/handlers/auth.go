package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
)

// AuthURL returns the provider's consent-screen URL for the web client to
// open.
func (h *Handlers) AuthURL(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"auth_url": h.flow.AuthCodeURL(r.URL.Query().Get("state")),
	})
}

// AuthCallback is the browser-facing half of the OAuth flow: the provider
// redirects here, and the code (or error) is forwarded to the frontend,
// which then calls AuthExchange.
func (h *Handlers) AuthCallback(w http.ResponseWriter, r *http.Request) {
	frontend := h.cfg.OAuth.FrontendURL

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		http.Redirect(w, r, frontend+"/?error="+url.QueryEscape(errParam), http.StatusTemporaryRedirect)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		respondDetail(w, http.StatusBadRequest, "authorization code is required")
		return
	}
	http.Redirect(w, r, frontend+"/?code="+url.QueryEscape(code), http.StatusTemporaryRedirect)
}

// AuthExchange trades the authorization code for a bearer token. This is
// the JSON half of the flow, called by the frontend with the code it was
// handed by AuthCallback.
func (h *Handlers) AuthExchange(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code  string `json:"code"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Error != "" {
		respondDetail(w, http.StatusBadRequest, "authorization failed: "+body.Error)
		return
	}
	if body.Code == "" {
		respondDetail(w, http.StatusBadRequest, "authorization code is required")
		return
	}

	token, err := h.flow.Exchange(r.Context(), body.Code)
	if err != nil {
		log.Warn().Err(err).Msg("code exchange failed")
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, token)
}

// Logout is a stateless no-op; the client clears its own token.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
