package auth

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/dataqna/backend/internal/apperr"
	"github.com/dataqna/backend/internal/config"
)

// Scopes requested during sign-in. BigQuery and cloud-platform are what the
// analytics service needs; the Workspace scopes let agents export results.
var Scopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/bigquery",
	"https://www.googleapis.com/auth/cloud-platform",
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/documents",
	"https://www.googleapis.com/auth/drive",
}

// Token is the exchange result returned to the web client.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Flow implements the OAuth authorization-code flow and the bearer-token
// credential adapter. Credential construction is pure; only Exchange talks
// to the provider.
type Flow struct {
	conf *oauth2.Config
}

// NewFlow creates the flow from the configured OAuth client.
func NewFlow(cfg *config.Config) *Flow {
	return &Flow{
		conf: &oauth2.Config{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			RedirectURL:  cfg.OAuth.RedirectURI,
			Scopes:       Scopes,
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthCodeURL returns the provider's consent-screen URL with offline access
// so a refresh token is issued alongside the access token.
func (f *Flow) AuthCodeURL(state string) string {
	return f.conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for an access token. A rejected
// code is an authentication failure.
func (f *Flow) Exchange(ctx context.Context, code string) (*Token, error) {
	tok, err := f.conf.Exchange(ctx, code)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, err, "failed to get access token")
	}
	expiresIn := 3600
	if !tok.Expiry.IsZero() {
		expiresIn = int(time.Until(tok.Expiry).Seconds())
	}
	return &Token{
		AccessToken: tok.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
	}, nil
}

// Client wraps a verified bearer token into an HTTP client the upstream
// SDK-style client accepts. No network call happens here; if the token has
// expired, the upstream call fails and surfaces as an authentication error.
func (f *Flow) Client(ctx context.Context, accessToken string) *http.Client {
	return f.conf.Client(ctx, &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})
}
