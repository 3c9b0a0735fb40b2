package auth

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"

	"velotrack/internal/config"
)

// exchangeTimeout bounds the server-to-server calls to Google (token
// exchange and profile fetch). A hung upstream becomes a failed login
// rather than a stuck request.
const exchangeTimeout = 15 * time.Second

// InitProviders initializes Goth OAuth providers and returns whether OAuth
// is enabled. With no credentials configured nothing is registered and the
// auth routes answer 503 — a supported deployment mode, not an error.
func InitProviders(cfg *config.Config) bool {
	// Configure Gothic's session store to match our app session settings.
	// Gothic uses its own gorilla/sessions store separate from
	// gin-contrib/sessions. The default has Secure=true which breaks
	// localhost (plain HTTP).
	gothStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	gothStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		Secure:   cfg.IsHTTPS(),
	}
	if cfg.IsHTTPS() {
		gothStore.Options.SameSite = http.SameSiteNoneMode
	} else {
		gothStore.Options.SameSite = http.SameSiteLaxMode
	}
	gothic.Store = gothStore

	if !cfg.OAuthEnabled() {
		log.Println("Google OAuth is not configured - running without authentication features")
		log.Println("To enable OAuth, set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET in .env")
		return false
	}

	provider := google.New(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleCallbackURL,
		"profile",
		"email",
	)
	provider.HTTPClient = &http.Client{Timeout: exchangeTimeout}
	goth.UseProviders(provider)

	log.Println("Google OAuth is enabled")
	log.Println("  Public URL:", cfg.PublicURL)
	log.Println("  Callback URL:", cfg.GoogleCallbackURL)
	return true
}
