package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ifrs-console/internal/session"
	"ifrs-console/internal/store"
)

// sessionCookie returns the last session cookie set, which is the one a
// browser keeps.
func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	var found *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			found = c
		}
	}
	if found == nil {
		t.Fatal("no session cookie in response")
	}
	return found
}

func TestLoginShouldStoreTokenAndRedirectHome(t *testing.T) {
	e := newTestEnv(t)

	// First visit issues the session cookie.
	first := e.get(t, "/login", nil)
	require.Equal(t, http.StatusOK, first.Code)
	cookie := sessionCookie(t, first.Result())

	w := e.post(t, "/login", url.Values{"email": {"ana@example.com"}, "password": {"secret"}}, cookie)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	rotated := sessionCookie(t, w.Result())

	sid, _, err := e.codec.Decode(rotated.Value)
	require.NoError(t, err)
	tok, err := e.tokens.Load(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, "tok-analyst", tok)

	home := e.get(t, "/", rotated)
	assert.Equal(t, http.StatusOK, home.Code)
	assert.Contains(t, home.Body.String(), "Acme")
}

func TestLoginShouldRotateSessionID(t *testing.T) {
	e := newTestEnv(t)

	// A cookie handed out before login must not become authenticated.
	planted := sessionCookie(t, e.get(t, "/login", nil).Result())
	oldSID, _, err := e.codec.Decode(planted.Value)
	require.NoError(t, err)

	w := e.post(t, "/login", url.Values{"email": {"ana@example.com"}, "password": {"secret"}}, planted)
	require.Equal(t, http.StatusFound, w.Code)
	newSID, _, err := e.codec.Decode(sessionCookie(t, w.Result()).Value)
	require.NoError(t, err)
	assert.NotEqual(t, oldSID, newSID)

	_, err = e.tokens.Load(context.Background(), oldSID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	again := e.get(t, "/", planted)
	assert.Equal(t, http.StatusFound, again.Code)
	assert.Equal(t, "/login", again.Header().Get("Location"))
}

func TestRegisterShouldRotateSessionID(t *testing.T) {
	e := newTestEnv(t)
	planted := sessionCookie(t, e.get(t, "/register", nil).Result())

	w := e.post(t, "/register", url.Values{"email": {"ana@example.com"}, "password": {"secret"}, "role": {"analyst"}}, planted)
	require.Equal(t, http.StatusFound, w.Code)
	rotated := sessionCookie(t, w.Result())
	assert.NotEqual(t, planted.Value, rotated.Value)

	assert.Equal(t, http.StatusFound, e.get(t, "/", planted).Code)
	assert.Equal(t, http.StatusOK, e.get(t, "/", rotated).Code)
}

func TestLoginShouldShowBackendDetailOnFailure(t *testing.T) {
	e := newTestEnv(t)
	w := e.post(t, "/login", url.Values{"email": {"ana@example.com"}, "password": {"wrong"}}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
	assert.Contains(t, w.Body.String(), `value="ana@example.com"`)
	assert.Zero(t, e.backend.count("GET /auth/me"), "no profile fetch after rejected credentials")
}

func TestLoginShouldRequireBothFields(t *testing.T) {
	e := newTestEnv(t)
	w := e.post(t, "/login", url.Values{"email": {"ana@example.com"}}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, e.backend.callsExceptMe())
}

func TestLoginPageShouldRedirectSignedInUsers(t *testing.T) {
	e := newTestEnv(t)
	cookie, _ := e.signIn(t, "tok-analyst")
	w := e.get(t, "/login", cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestRegisterShouldRejectUnknownRole(t *testing.T) {
	e := newTestEnv(t)
	w := e.post(t, "/register", url.Values{"email": {"x@example.com"}, "password": {"pw1234"}, "role": {"owner"}}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Choose a valid role.")
	assert.Zero(t, e.backend.count("POST /auth/register"))
}

func TestLogoutShouldClearTokenWithoutCallingBackend(t *testing.T) {
	e := newTestEnv(t)
	cookie, sid := e.signIn(t, "tok-analyst")

	w := e.post(t, "/logout", nil, cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	_, err := e.tokens.Load(context.Background(), sid)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Empty(t, e.backend.callsExceptMe())

	expired := sessionCookie(t, w.Result())
	assert.Less(t, expired.MaxAge, 0)
}

func TestExpiredTokenShouldRedirectToLogin(t *testing.T) {
	e := newTestEnv(t)
	cookie, sid := e.signIn(t, "tok-gone")

	w := e.get(t, "/", cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	_, err := e.tokens.Load(context.Background(), sid)
	assert.ErrorIs(t, err, store.ErrNotFound, "rejected token is cleared")
}

func TestBackendUnauthorizedMidSessionShouldEndSession(t *testing.T) {
	e := newTestEnv(t)
	cookie, sid := e.signIn(t, "tok-analyst")
	e.backend.failWith("GET /dashboard/summary/c1", http.StatusUnauthorized, "Token expired")

	w := e.get(t, "/", cookie)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	_, err := e.tokens.Load(context.Background(), sid)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
