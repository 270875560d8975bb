package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dataqna/backend/internal/api/middleware"
	"github.com/dataqna/backend/internal/auth"
	"github.com/dataqna/backend/internal/config"
)

// fakeTokenInfo accepts "good-token" for client "client-123".
func fakeTokenInfo(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") != "good-token" {
			http.Error(w, `{"error":"invalid_token"}`, http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"aud":"client-123","email":"u@example.com"}`))
	}))
}

func newMiddleware(tokenInfoURL string) func(http.Handler) http.Handler {
	cfg := &config.Config{
		OAuth:     config.OAuthConfig{ClientID: "client-123"},
		Endpoints: config.EndpointConfig{TokenInfoURL: tokenInfoURL},
	}
	return middleware.RequireBearer(auth.NewVerifier(cfg))
}

func TestRequireBearer_MissingHeader(t *testing.T) {
	srv := fakeTokenInfo(t)
	defer srv.Close()

	handler := newMiddleware(srv.URL)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without credentials")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	var body map[string]string
	json.NewDecoder(w.Body).Decode(&body)
	if body["detail"] == "" {
		t.Error("401 body missing detail")
	}
}

func TestRequireBearer_InvalidToken(t *testing.T) {
	srv := fakeTokenInfo(t)
	defer srv.Close()

	handler := newMiddleware(srv.URL)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached with bad token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireBearer_ValidTokenInContext(t *testing.T) {
	srv := fakeTokenInfo(t)
	defer srv.Close()

	handler := newMiddleware(srv.URL)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := middleware.Token(r.Context()); got != "good-token" {
			t.Errorf("Token(ctx) = %q", got)
		}
		claims := middleware.Claims(r.Context())
		if claims == nil || claims.Email != "u@example.com" {
			t.Errorf("Claims(ctx) = %+v", claims)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
