package auth

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"

	"velotrack/internal/models"
	"velotrack/internal/store"
)

// sessionUserKey is the session entry holding the authenticated user's id.
// The session carries nothing else; the principal is re-read from the store
// on each request.
const sessionUserKey = "user_id"

// BeginLoginHandler initiates the Google OAuth flow
func BeginLoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Gothic requires the "provider" query parameter
		q := c.Request.URL.Query()
		q.Add("provider", "google")
		c.Request.URL.RawQuery = q.Encode()

		gothic.BeginAuthHandler(c.Writer, c.Request)
	}
}

// CallbackHandler completes the OAuth flow: exchanges the authorization code
// for a profile, creates or refreshes the local user, and stores the user id
// in the session. Every failure path recovers into a /?login=failed redirect;
// the exchange never takes the process down.
func CallbackHandler(s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Gothic requires the "provider" query parameter
		q := c.Request.URL.Query()
		q.Add("provider", "google")
		c.Request.URL.RawQuery = q.Encode()

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			log.Printf("Auth error: %v", err)
			c.Redirect(http.StatusFound, "/?login=failed")
			return
		}

		ctx := c.Request.Context()
		user, err := s.GetUserByGoogleID(ctx, gothUser.UserID)
		switch {
		case err == nil:
			// Returning user: refresh last_login
			if err := s.TouchLastLogin(ctx, user.ID); err != nil {
				log.Printf("Failed to update last login for user %d: %v", user.ID, err)
			}
		case errors.Is(err, store.ErrNotFound):
			user, err = createFromProfile(ctx, s, gothUser.UserID, gothUser.Email, gothUser.Name, gothUser.AvatarURL)
			if err != nil {
				log.Printf("Failed to create user: %v", err)
				c.Redirect(http.StatusFound, "/?login=failed")
				return
			}
		default:
			log.Printf("User lookup failed: %v", err)
			c.Redirect(http.StatusFound, "/?login=failed")
			return
		}

		session := sessions.Default(c)
		session.Set(sessionUserKey, user.ID)
		if err := session.Save(); err != nil {
			log.Printf("Session save error: %v", err)
			c.Redirect(http.StatusFound, "/?login=failed")
			return
		}

		log.Printf("OAuth callback successful for user: %s", user.Email)
		c.Redirect(http.StatusFound, "/?login=success")
	}
}

// createFromProfile inserts a user from the provider profile. Optional
// fields the provider omitted are stored as NULL; a missing email is
// accepted as-is. Losing a concurrent first-login race is recovered by
// re-reading the row the winner created.
func createFromProfile(ctx context.Context, s *store.Store, googleID, email, name, avatarURL string) (models.User, error) {
	params := store.CreateUserParams{
		GoogleID: googleID,
		Email:    email,
	}
	if name != "" {
		params.Name = &name
	}
	if avatarURL != "" {
		params.Picture = &avatarURL
	}

	id, err := s.CreateUser(ctx, params)
	if errors.Is(err, store.ErrDuplicate) {
		// Another request created this user between our lookup and insert.
		// Complete the flow as a login to the existing record.
		user, err := s.GetUserByGoogleID(ctx, googleID)
		if err != nil {
			return user, err
		}
		if err := s.TouchLastLogin(ctx, user.ID); err != nil {
			log.Printf("Failed to update last login for user %d: %v", user.ID, err)
		}
		return user, nil
	}
	if err != nil {
		return models.User{}, err
	}

	return s.GetUserByID(ctx, id)
}

// LogoutHandler clears the session and redirects to the home page
func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		session.Clear()

		if err := session.Save(); err != nil {
			log.Printf("Session clear error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
			return
		}

		c.Redirect(http.StatusFound, "/")
	}
}

// StatusHandler reports authentication state for the frontend
func StatusHandler(s *store.Store, oauthEnabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !oauthEnabled {
			c.JSON(http.StatusOK, gin.H{"authenticated": false, "oauthEnabled": false})
			return
		}

		user, ok := principalFromSession(c, s)
		if !ok {
			c.JSON(http.StatusOK, gin.H{
				"authenticated": false,
				"oauthEnabled":  true,
				"user":          nil,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"authenticated": true,
			"oauthEnabled":  true,
			"user": gin.H{
				"id":      user.ID,
				"name":    user.Name,
				"email":   user.Email,
				"picture": user.Picture,
			},
		})
	}
}

// OAuthStatusHandler reports whether OAuth is configured plus the current
// principal, for the landing page
func OAuthStatusHandler(s *store.Store, oauthEnabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user any
		authenticated := false
		if oauthEnabled {
			if u, ok := principalFromSession(c, s); ok {
				user = u
				authenticated = true
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"enabled":       oauthEnabled,
			"authenticated": authenticated,
			"user":          user,
		})
	}
}

// TestHandler is a debug route to verify the auth routes are mounted
func TestHandler(s *store.Store, oauthEnabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, authenticated := principalFromSession(c, s)
		c.JSON(http.StatusOK, gin.H{
			"message":       "Auth routes are working",
			"oauthEnabled":  oauthEnabled,
			"authenticated": authenticated,
		})
	}
}
