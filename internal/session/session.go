// Package session keeps per browser state: the signed in user and pending flash messages.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sanLimbu/todo-app/internal"
)

// CookieName is the name of the cookie carrying the signed session id.
const CookieName = "todo_session"

// Flash categories.
const (
	CategorySuccess = "success"
	CategoryInfo    = "info"
	CategoryWarning = "warning"
	CategoryError   = "error"
	CategoryDanger  = "danger"
)

// Flash is a one time message shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Data is the state stored by a Backend.
type Data struct {
	UserID  int64   `json:"user_id,omitempty"`
	Flashes []Flash `json:"flashes,omitempty"`
}

// Backend persists session Data, Get fails with internal.ErrorCodeNotFound for unknown ids.
type Backend interface {
	Get(ctx context.Context, id string) (Data, error)
	Set(ctx context.Context, id string, data Data, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// Config defines how cookies are issued.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Secure bool
}

// Manager loads sessions for each request and writes them back on change.
type Manager struct {
	logger  *zap.Logger
	backend Backend
	config  Config
}

// NewManager instantiates the Manager.
func NewManager(logger *zap.Logger, backend Backend, config Config) *Manager {
	return &Manager{
		logger:  logger,
		backend: backend,
		config:  config,
	}
}

type state struct {
	id    string
	data  Data
	fresh bool
}

type stateKey struct{}

// Middleware loads the session of the request, missing or invalid cookies start a new
// anonymous session which is only stored once it holds something.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := m.load(r)

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), stateKey{}, st)))
	})
}

func (m *Manager) load(r *http.Request) *state {
	anonymous := &state{id: uuid.NewString(), fresh: true}

	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return anonymous
	}

	var claims jwt.RegisteredClaims

	if _, err := jwt.ParseWithClaims(cookie.Value, &claims, func(*jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})); err != nil || claims.ID == "" {
		return anonymous
	}

	data, err := m.backend.Get(r.Context(), claims.ID)
	if err != nil {
		if internal.CodeOf(err) != internal.ErrorCodeNotFound {
			m.logger.Warn("loading session", zap.Error(err))
		}

		return anonymous
	}

	return &state{id: claims.ID, data: data}
}

func stateFrom(r *http.Request) (*state, error) {
	st, ok := r.Context().Value(stateKey{}).(*state)
	if !ok {
		return nil, internal.NewErrorf(internal.ErrorCodeUnknown, "session middleware not installed")
	}

	return st, nil
}

// UserID returns the signed in user, 0 for anonymous requests.
func (m *Manager) UserID(r *http.Request) int64 {
	st, err := stateFrom(r)
	if err != nil {
		return 0
	}

	return st.data.UserID
}

// Login stores userID under a new session id.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, userID int64) error {
	st, err := stateFrom(r)
	if err != nil {
		return err
	}

	if !st.fresh {
		if err := m.backend.Delete(r.Context(), st.id); err != nil {
			m.logger.Warn("deleting rotated session", zap.Error(err))
		}
	}

	st.id = uuid.NewString()
	st.fresh = true
	st.data.UserID = userID

	return m.save(w, r, st)
}

// Logout forgets the signed in user, pending flash messages are kept.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	st, err := stateFrom(r)
	if err != nil {
		return err
	}

	st.data.UserID = 0

	return m.save(w, r, st)
}

// AddFlash queues a message for the next rendered page.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, category, message string) error {
	st, err := stateFrom(r)
	if err != nil {
		return err
	}

	st.data.Flashes = append(st.data.Flashes, Flash{Category: category, Message: message})

	return m.save(w, r, st)
}

// Flashes returns and clears the pending messages.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) ([]Flash, error) {
	st, err := stateFrom(r)
	if err != nil {
		return nil, err
	}

	res := st.data.Flashes
	if len(res) == 0 {
		return nil, nil
	}

	st.data.Flashes = nil

	if err := m.save(w, r, st); err != nil {
		return nil, err
	}

	return res, nil
}

// save stores the data and, for new ids, issues the cookie.
func (m *Manager) save(w http.ResponseWriter, r *http.Request, st *state) error {
	if err := m.backend.Set(r.Context(), st.id, st.data, m.config.TTL); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "backend.Set")
	}

	if !st.fresh {
		return nil
	}

	now := time.Now()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        st.id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
	}).SignedString(m.config.Secret)
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "token.SignedString")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.config.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	st.fresh = false

	return nil
}
