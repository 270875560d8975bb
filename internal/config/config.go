package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the Conversational Analytics backend.
// It is built once at process start and passed explicitly into every
// component constructor; nothing reads the environment after Load returns.
type Config struct {
	Port      int
	Version   string
	ProjectID string
	OAuth     OAuthConfig
	Looker    LookerConfig
	Endpoints EndpointConfig
	Telemetry TelemetryConfig
}

// OAuthConfig is the Google OAuth client configuration.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// FrontendURL is the web client origin, used for CORS and for the
	// authorization-code redirect back to the client.
	FrontendURL string
}

// LookerConfig is the optional semantic-layer OAuth client pair attached to
// chat requests against Looker-backed agents.
type LookerConfig struct {
	ClientID     string
	ClientSecret string
}

// EndpointConfig carries remote endpoint overrides, mainly for tests and
// proxies. Empty values mean the production defaults.
type EndpointConfig struct {
	TokenInfoURL string
	AnalyticsURL string
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:      envInt("PORT", 8080),
		Version:   envStr("VERSION", "1.0.0"),
		ProjectID: os.Getenv("PROJECT_ID"),
		OAuth: OAuthConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURI:  os.Getenv("REDIRECT_URI"),
			FrontendURL:  envStr("FRONTEND_URL", "http://localhost:3000"),
		},
		Looker: LookerConfig{
			ClientID:     os.Getenv("LOOKER_CLIENT_ID"),
			ClientSecret: os.Getenv("LOOKER_CLIENT_SECRET"),
		},
		Endpoints: EndpointConfig{
			TokenInfoURL: os.Getenv("TOKENINFO_URL"),
			AnalyticsURL: os.Getenv("ANALYTICS_ENDPOINT"),
		},
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "ca-backend"),
		},
	}
}

// Validate checks that the credentials required to reach Google are present.
func (c *Config) Validate() error {
	var missing []string
	if c.OAuth.ClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if c.OAuth.ClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if c.OAuth.RedirectURI == "" {
		missing = append(missing, "REDIRECT_URI")
	}
	if c.ProjectID == "" {
		missing = append(missing, "PROJECT_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	return nil
}

// Parent returns the resource parent all agents and conversations live under.
func (c *Config) Parent() string {
	return "projects/" + c.ProjectID + "/locations/global"
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
