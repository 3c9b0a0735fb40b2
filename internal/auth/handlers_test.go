package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"velotrack/internal/store"
)

func TestCreateFromProfile(t *testing.T) {
	s := newTestStore(t)

	user, err := createFromProfile(context.Background(), s, "g-new", "new@example.com", "New User", "https://example.com/p.png")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	require.NotNil(t, user.Name)
	assert.Equal(t, "New User", *user.Name)
	require.NotNil(t, user.Picture)
}

func TestCreateFromProfile_OmittedOptionalFields(t *testing.T) {
	s := newTestStore(t)

	// The provider may return no name or photo; creation must not fail and
	// a missing email is accepted too.
	user, err := createFromProfile(context.Background(), s, "g-bare", "", "", "")
	require.NoError(t, err)
	assert.Empty(t, user.Email)
	assert.Nil(t, user.Name)
	assert.Nil(t, user.Picture)
}

func TestCreateFromProfile_LostRaceBecomesLogin(t *testing.T) {
	s := newTestStore(t)
	winnerID, err := s.CreateUser(context.Background(), store.CreateUserParams{
		GoogleID: "g-race",
		Email:    "winner@example.com",
	})
	require.NoError(t, err)

	// A concurrent callback already inserted this identity; the loser must
	// resolve to the same row instead of failing.
	user, err := createFromProfile(context.Background(), s, "g-race", "loser@example.com", "", "")
	require.NoError(t, err)
	assert.Equal(t, winnerID, user.ID)
	assert.Equal(t, "winner@example.com", user.Email)
}

func TestStatusHandler_FeatureDisabled(t *testing.T) {
	s := newTestStore(t)
	r := newTestRouter(t)
	r.GET("/auth/status", StatusHandler(s, false))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/status", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["authenticated"])
	assert.Equal(t, false, body["oauthEnabled"])
}

func TestStatusHandler_Anonymous(t *testing.T) {
	s := newTestStore(t)
	r := newTestRouter(t)
	r.GET("/auth/status", StatusHandler(s, true))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/status", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["authenticated"])
	assert.Equal(t, true, body["oauthEnabled"])
	assert.Nil(t, body["user"])
}

func TestStatusHandler_Authenticated(t *testing.T) {
	s := newTestStore(t)
	userID := createTestUser(t, s, "g-status")

	r := newTestRouter(t)
	r.GET("/auth/status", StatusHandler(s, true))

	cookies := login(t, r, userID)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Authenticated bool `json:"authenticated"`
		OAuthEnabled  bool `json:"oauthEnabled"`
		User          *struct {
			ID    int64  `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Authenticated)
	assert.True(t, body.OAuthEnabled)
	require.NotNil(t, body.User)
	assert.Equal(t, userID, body.User.ID)
	assert.Equal(t, "g-status@example.com", body.User.Email)
}

func TestOAuthStatusHandler(t *testing.T) {
	s := newTestStore(t)
	r := newTestRouter(t)
	r.GET("/api/oauth-status", OAuthStatusHandler(s, false))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/oauth-status", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["enabled"])
	assert.Equal(t, false, body["authenticated"])
	assert.Nil(t, body["user"])
}

func TestLogoutHandler(t *testing.T) {
	s := newTestStore(t)
	userID := createTestUser(t, s, "g-logout")

	r := newTestRouter(t)
	r.GET("/auth/logout", LogoutHandler())
	r.GET("/auth/status", StatusHandler(s, true))

	cookies := login(t, r, userID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	// The cleared session no longer authenticates
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	for _, c := range w.Result().Cookies() {
		req2.AddCookie(c)
	}
	r.ServeHTTP(w2, req2)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &body))
	assert.Equal(t, false, body["authenticated"])
}

func TestTestHandler(t *testing.T) {
	s := newTestStore(t)
	r := newTestRouter(t)
	r.GET("/auth/test", TestHandler(s, true))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/test", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Auth routes are working", body["message"])
	assert.Equal(t, true, body["oauthEnabled"])
	assert.Equal(t, false, body["authenticated"])
}
