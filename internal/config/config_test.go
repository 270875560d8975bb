package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "VERSION", "FRONTEND_URL", "OTEL_SERVICE_NAME"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.OAuth.FrontendURL != "http://localhost:3000" {
		t.Errorf("FrontendURL = %q", cfg.OAuth.FrontendURL)
	}
	if cfg.Telemetry.Enabled {
		t.Error("telemetry enabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PROJECT_ID", "my-project")
	t.Setenv("OTEL_ENABLED", "true")

	cfg := Load()
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if !cfg.Telemetry.Enabled {
		t.Error("OTEL_ENABLED=true not honored")
	}
	if got := cfg.Parent(); got != "projects/my-project/locations/global" {
		t.Errorf("Parent() = %q", got)
	}
}

func TestLoadBadPortFallsBack(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	if got := Load().Port; got != 8080 {
		t.Errorf("Port = %d, want fallback 8080", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		ProjectID: "p",
		OAuth: OAuthConfig{
			ClientID:     "id",
			ClientSecret: "secret",
			RedirectURI:  "http://localhost/cb",
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	cfg.OAuth.ClientSecret = ""
	cfg.ProjectID = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	for _, name := range []string{"GOOGLE_CLIENT_SECRET", "PROJECT_ID"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not name %s", err, name)
		}
	}
}
