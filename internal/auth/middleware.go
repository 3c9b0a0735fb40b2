package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"velotrack/internal/models"
	"velotrack/internal/store"
)

// contextUserKey is the gin context key the middleware stores the resolved
// principal under.
const contextUserKey = "user"

// RequireOAuth gates the OAuth routes themselves: with no provider
// configured they answer 503 rather than starting a flow that cannot finish.
func RequireOAuth(oauthEnabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !oauthEnabled {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error":   "OAuth is not configured",
				"message": "Google OAuth is not enabled on this server",
			})
			return
		}
		c.Next()
	}
}

// RequireAuth protects the resource API. Two gates run in order: the feature
// gate (503 when OAuth was never configured — distinct from "not logged in")
// and the authentication gate (401 when the session carries no valid
// principal). On success the principal is attached to the gin context for
// downstream handlers.
func RequireAuth(oauthEnabled bool, s *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !oauthEnabled {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error":   "Authentication not available",
				"message": "OAuth is not configured on this server",
			})
			return
		}

		user, ok := principalFromSession(c, s)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized - Please log in",
			})
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the principal attached by RequireAuth
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, exists := c.Get(contextUserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

// principalFromSession resolves the session's user id to a user record.
// A session pointing at a deleted user counts as unauthenticated.
func principalFromSession(c *gin.Context, s *store.Store) (models.User, bool) {
	session := sessions.Default(c)
	v := session.Get(sessionUserKey)
	if v == nil {
		return models.User{}, false
	}

	userID, ok := v.(int64)
	if !ok {
		return models.User{}, false
	}

	user, err := s.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		return models.User{}, false
	}
	return user, true
}
