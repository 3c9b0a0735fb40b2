// Package session provides the persistent session store. Sessions live in
// their own SQLite file rather than in memory, so active logins survive a
// server restart.
package session

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/wader/gormstore/v2"
	"gorm.io/gorm"
)

// CleanupInterval is how often expired sessions are swept from the store.
// Expiry is enforced lazily between sweeps; a stale row only lingers until
// the next pass, never past cookie validation.
const CleanupInterval = 15 * time.Minute

// CookieMaxAge is the session cookie lifetime in seconds (24 hours).
const CookieMaxAge = 24 * 60 * 60

// Store adapts gormstore to the gin-contrib/sessions Store interface.
type Store struct {
	*gormstore.Store
}

// Options applies cookie options to sessions created by this store
func (s *Store) Options(options sessions.Options) {
	s.Store.SessionOpts = options.ToGorillaOptions()
}

// NewStore creates a session store on db (gormstore creates its own table)
// and starts the periodic expiry sweep. The sweep runs on its own goroutine
// and stops when quit is closed.
func NewStore(db *gorm.DB, secret []byte, quit <-chan struct{}) *Store {
	gs := gormstore.New(db, secret)
	go gs.PeriodicCleanup(CleanupInterval, quit)
	return &Store{Store: gs}
}

// CookieOptions returns the cookie attributes for the deployment. Behind
// HTTPS the cookie must be Secure with SameSite=None so the OAuth redirect
// chain keeps the session; on plain HTTP browsers reject SameSite=None
// without Secure, so it falls back to Lax.
func CookieOptions(isHTTPS bool) sessions.Options {
	opts := sessions.Options{
		Path:     "/",
		MaxAge:   CookieMaxAge,
		HttpOnly: true,
		Secure:   isHTTPS,
	}
	if isHTTPS {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	return opts
}
