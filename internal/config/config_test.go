package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "PUBLIC_URL", "GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET",
		"GOOGLE_CALLBACK_URL", "SESSION_SECRET", "DATABASE_PATH",
		"SESSION_DB_PATH", "ENV", "LOG_LEVEL", "LOG_FORMAT", "SEED_DEV_DATA",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "6923", cfg.Port)
	assert.Equal(t, "http://localhost:6923", cfg.PublicURL)
	assert.Equal(t, "http://localhost:6923/auth/google/callback", cfg.GoogleCallbackURL)
	assert.Equal(t, "data/analytics.db", cfg.DatabasePath)
	assert.Equal(t, "data/sessions/sessions.db", cfg.SessionDBPath)
	assert.Equal(t, "development", cfg.Env)
	assert.NotEmpty(t, cfg.SessionSecret)
	assert.False(t, cfg.SeedDevData)
}

func TestOAuthEnabled(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.False(t, cfg.OAuthEnabled())

	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	cfg = Load()
	assert.False(t, cfg.OAuthEnabled(), "id without secret is not enough")

	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	cfg = Load()
	assert.True(t, cfg.OAuthEnabled())
}

func TestCallbackURLFollowsPublicURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("PUBLIC_URL", "https://velo.example.com")

	cfg := Load()

	assert.Equal(t, "https://velo.example.com/auth/google/callback", cfg.GoogleCallbackURL)
	assert.True(t, cfg.IsHTTPS())
}

func TestExplicitCallbackURLWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("PUBLIC_URL", "https://velo.example.com")
	t.Setenv("GOOGLE_CALLBACK_URL", "https://other.example.com/cb")

	cfg := Load()

	assert.Equal(t, "https://other.example.com/cb", cfg.GoogleCallbackURL)
}

func TestIsHTTPS(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.False(t, cfg.IsHTTPS())
}
