package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sanLimbu/todo-app/internal/session"
	"github.com/sanLimbu/todo-app/internal/session/sessiontesting"
)

var secret = []byte("test-secret")

type result struct {
	userID  int64
	flashes []session.Flash
	cookie  *http.Cookie
}

// do runs fn within the session middleware and returns what the handler observed.
func do(t *testing.T, m *session.Manager, cookie *http.Cookie, fn func(w http.ResponseWriter, r *http.Request)) result {
	t.Helper()

	var res result

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fn != nil {
			fn(w, r)
		}

		res.userID = m.UserID(r)

		flashes, err := m.Flashes(w, r)
		require.NoError(t, err)

		res.flashes = flashes
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			res.cookie = c
		}
	}

	return res
}

func newManager() (*session.Manager, *sessiontesting.Memory) {
	backend := sessiontesting.NewMemory()

	return session.NewManager(zap.NewNop(), backend, session.Config{Secret: secret, TTL: time.Hour}), backend
}

func TestManager_Anonymous(t *testing.T) {
	t.Parallel()

	m, backend := newManager()

	res := do(t, m, nil, nil)
	require.Zero(t, res.userID)
	require.Nil(t, res.cookie)
	require.Zero(t, backend.Len())
}

func TestManager_Flashes(t *testing.T) {
	t.Parallel()

	m, _ := newManager()

	res := do(t, m, nil, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, m.AddFlash(w, r, session.CategorySuccess, "first"))
		require.NoError(t, m.AddFlash(w, r, session.CategoryInfo, "second"))
	})
	require.NotNil(t, res.cookie)
	require.True(t, res.cookie.HttpOnly)
	require.Equal(t, []session.Flash{
		{Category: session.CategorySuccess, Message: "first"},
		{Category: session.CategoryInfo, Message: "second"},
	}, res.flashes)

	// Popped in the same request, nothing is left for the next one.
	next := do(t, m, res.cookie, nil)
	require.Empty(t, next.flashes)

	redirected := do(t, m, res.cookie, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, m.AddFlash(w, r, session.CategoryWarning, "later"))
	})
	require.Nil(t, redirected.cookie, "existing sessions keep their cookie")
	require.Len(t, redirected.flashes, 1)
}

func TestManager_LoginLogout(t *testing.T) {
	t.Parallel()

	m, backend := newManager()

	anon := do(t, m, nil, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, m.AddFlash(w, r, session.CategoryInfo, "hello"))
	})
	require.NotNil(t, anon.cookie)

	login := do(t, m, anon.cookie, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, m.Login(w, r, 42))
	})
	require.Equal(t, int64(42), login.userID)
	require.NotNil(t, login.cookie)
	require.NotEqual(t, anon.cookie.Value, login.cookie.Value)
	require.Equal(t, 1, backend.Len(), "previous session is discarded")

	stale := do(t, m, anon.cookie, nil)
	require.Zero(t, stale.userID)

	again := do(t, m, login.cookie, nil)
	require.Equal(t, int64(42), again.userID)

	logout := do(t, m, login.cookie, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, m.Logout(w, r))
		require.NoError(t, m.AddFlash(w, r, session.CategoryInfo, "You have been logged out."))
	})
	require.Zero(t, logout.userID)
	require.Len(t, logout.flashes, 1)

	after := do(t, m, login.cookie, nil)
	require.Zero(t, after.userID)
}

func TestManager_InvalidCookies(t *testing.T) {
	t.Parallel()

	m, _ := newManager()

	login := do(t, m, nil, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, m.Login(w, r, 7))
	})

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(login.cookie.Value, claims, func(*jwt.Token) (interface{}, error) { return secret, nil })
	require.NoError(t, err)

	sign := func(key []byte, method jwt.SigningMethod, c jwt.RegisteredClaims) *http.Cookie {
		var k interface{} = key
		if method == jwt.SigningMethodNone {
			k = jwt.UnsafeAllowNoneSignatureType
		}

		v, err := jwt.NewWithClaims(method, c).SignedString(k)
		require.NoError(t, err)

		return &http.Cookie{Name: session.CookieName, Value: v}
	}

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"garbage", &http.Cookie{Name: session.CookieName, Value: "garbage"}},
		{"wrong secret", sign([]byte("other"), jwt.SigningMethodHS256, *claims)},
		{"unsigned", sign(nil, jwt.SigningMethodNone, *claims)},
		{"expired", sign(secret, jwt.SigningMethodHS256, jwt.RegisteredClaims{
			ID:        claims.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		})},
	}

	for _, tt := range tests {
		res := do(t, m, tt.cookie, nil)
		require.Zero(t, res.userID, tt.name)
	}

	valid := do(t, m, sign(secret, jwt.SigningMethodHS256, *claims), nil)
	require.Equal(t, int64(7), valid.userID)
}
