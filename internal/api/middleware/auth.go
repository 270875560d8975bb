package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dataqna/backend/internal/apperr"
	"github.com/dataqna/backend/internal/auth"
)

type contextKey string

const (
	tokenKey  contextKey = "bearer_token"
	claimsKey contextKey = "claims"
)

// RequireBearer authenticates requests with a Bearer token verified against
// the identity provider, storing the raw token and its claims in the request
// context. No session state exists: every request re-verifies its token.
func RequireBearer(v *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeDetail(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := v.Verify(r.Context(), token)
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("authentication failed")
				writeDetail(w, apperr.Status(err), err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), tokenKey, token)
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Token returns the verified bearer token from the request context.
func Token(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

// Claims returns the verified token claims, or nil outside authed routes.
func Claims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="ca-backend"`)
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
