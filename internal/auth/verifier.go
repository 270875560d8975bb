// Package auth covers the identity side of the backend: bearer-token
// verification against Google's introspection endpoint, the OAuth
// authorization-code flow, and the adapter that turns a verified bearer
// token into an authenticated HTTP client for upstream calls.
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dataqna/backend/internal/apperr"
	"github.com/dataqna/backend/internal/config"
)

const defaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// Claims is the subset of the tokeninfo response the backend cares about.
// Numeric fields arrive as strings on this endpoint.
type Claims struct {
	Audience  string `json:"aud"`
	Subject   string `json:"sub"`
	Email     string `json:"email"`
	Scope     string `json:"scope"`
	ExpiresIn string `json:"expires_in"`
}

// Verifier validates bearer tokens against the provider's introspection
// endpoint and checks the audience claim. One attempt per call, no retry.
type Verifier struct {
	clientID string
	endpoint string
	client   *http.Client
}

// NewVerifier creates a verifier for the configured OAuth client.
func NewVerifier(cfg *config.Config) *Verifier {
	endpoint := cfg.Endpoints.TokenInfoURL
	if endpoint == "" {
		endpoint = defaultTokenInfoURL
	}
	return &Verifier{
		clientID: cfg.OAuth.ClientID,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify introspects the token and confirms it was issued for this
// application. A rejected token is an authentication failure; a failure to
// reach the provider at all is a server-side fault, not a credential fault.
func (v *Verifier) Verify(ctx context.Context, token string) (*Claims, error) {
	u := v.endpoint + "?" + url.Values{"access_token": {token}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, apperr.Unavailable(err, "failed to build tokeninfo request")
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, apperr.Unavailable(err, "failed to verify token with Google")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Debug().Int("status", resp.StatusCode).Msg("tokeninfo rejected token")
		return nil, apperr.Unauthorized("invalid or expired token")
	}

	var claims Claims
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return nil, apperr.Unavailable(err, "failed to decode tokeninfo response")
	}

	if claims.Audience != v.clientID {
		return nil, apperr.Unauthorized("token was not issued for this application")
	}
	return &claims, nil
}
