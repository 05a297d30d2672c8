package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/session"
)

// AuthService authenticates users.
type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (internal.User, error)
}

// AuthHandler serves the login and logout pages.
type AuthHandler struct {
	*views
	svc AuthService
}

func newAuthHandler(v *views, svc AuthService) *AuthHandler {
	return &AuthHandler{
		views: v,
		svc:   svc,
	}
}

// Register connects the handlers to the router.
func (a *AuthHandler) Register(r chi.Router) {
	r.Get("/login", a.loginForm)
	r.Post("/login", a.login)
	r.Get("/logout", a.logout)
}

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

type loginPage struct {
	Username string
}

func (a *AuthHandler) loginForm(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, "login.html", loginPage{})
}

func (a *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := render.DecodeForm(r.Body, &form); err != nil {
		a.flash(w, r, session.CategoryError, "Invalid form submission.")
		a.render(w, r, "login.html", loginPage{})

		return
	}

	user, err := a.svc.Authenticate(r.Context(), form.Username, form.Password)
	if err != nil {
		if internal.CodeOf(err) == internal.ErrorCodeUnauthenticated {
			a.flash(w, r, session.CategoryError, messageOf(err))
		} else {
			a.logger.Error("authenticating", zap.Error(err))
			a.flash(w, r, session.CategoryError, "An error occurred while signing in.")
		}

		a.render(w, r, "login.html", loginPage{Username: form.Username})

		return
	}

	if err := a.sessions.Login(w, r, user.ID); err != nil {
		a.logger.Error("starting session", zap.Error(err))
		a.flash(w, r, session.CategoryError, "An error occurred while signing in.")
		a.render(w, r, "login.html", loginPage{Username: form.Username})

		return
	}

	a.logger.Info("user signed in", zap.Int64("user_id", user.ID))

	a.redirect(w, r, "/", session.CategorySuccess, "Login successful!")
}

func (a *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Logout(w, r); err != nil {
		a.logger.Error("ending session", zap.Error(err))
	}

	a.redirect(w, r, "/login", session.CategoryInfo, "You have been logged out.")
}
