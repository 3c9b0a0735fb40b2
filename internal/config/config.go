package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	Port               string
	PublicURL          string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
	SessionSecret      string
	DatabasePath       string
	SessionDBPath      string
	Env                string
	LogLevel           string
	LogFormat          string
	SeedDevData        bool
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first if present; real environment variables
// win over values from the file.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env file")
	}

	cfg := &Config{
		Port:               getEnvWithDefault("PORT", "6923"),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		DatabasePath:       getEnvWithDefault("DATABASE_PATH", "data/analytics.db"),
		SessionDBPath:      getEnvWithDefault("SESSION_DB_PATH", "data/sessions/sessions.db"),
		Env:                getEnvWithDefault("ENV", "development"),
		LogLevel:           getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat:          getEnvWithDefault("LOG_FORMAT", "text"),
		SeedDevData:        os.Getenv("SEED_DEV_DATA") == "true",
	}

	cfg.PublicURL = getEnvWithDefault("PUBLIC_URL", fmt.Sprintf("http://localhost:%s", cfg.Port))
	cfg.GoogleCallbackURL = getEnvWithDefault("GOOGLE_CALLBACK_URL", cfg.PublicURL+"/auth/google/callback")

	// Warn if using default session secret (insecure for production)
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "fallback-secret-change-in-production"
		log.Println("WARNING: Using default SESSION_SECRET. Generate a secure secret with: openssl rand -hex 32")
	}

	return cfg
}

// OAuthEnabled reports whether Google OAuth credentials are configured.
// When false the auth routes respond 503 and login is unavailable; this is
// a supported deployment mode, not an error.
func (c *Config) OAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// IsHTTPS reports whether the public endpoint is served over TLS (directly
// or behind a terminating proxy). Session cookies switch to
// Secure/SameSite=None in that case so cross-origin OAuth redirects work.
func (c *Config) IsHTTPS() bool {
	return strings.HasPrefix(c.PublicURL, "https://")
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
