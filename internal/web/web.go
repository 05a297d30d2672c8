// Package web implements the HTML interface: pages, form handling and flash driven redirects.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/authz"
	"github.com/sanLimbu/todo-app/internal/session"
)

const otelName = "github.com/sanLimbu/todo-app/internal/web"

//go:embed templates static
var content embed.FS

// Config defines the dependencies of the handlers.
type Config struct {
	Logger   *zap.Logger
	Sessions *session.Manager
	Tasks    TaskService
	Users    UserService
	Checks   map[string]func(context.Context) error
}

// Register connects every page to the router. Pages run behind the session and identity
// middlewares, health checks and assets don't.
func Register(r chi.Router, conf Config) error {
	v, err := newViews(conf.Logger, conf.Sessions)
	if err != nil {
		return err
	}

	r.Group(func(r chi.Router) {
		r.Use(conf.Sessions.Middleware, IdentityMiddleware(conf.Logger, conf.Sessions, conf.Users))

		newTaskHandler(v, conf.Tasks).Register(r)
		newAuthHandler(v, conf.Users).Register(r)
		newAdminHandler(v, conf.Users).Register(r)
	})

	NewHealthHandler(conf.Checks).Register(r)

	static, err := fs.Sub(content, "static")
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "fs.Sub")
	}

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	return nil
}

// IdentityService resolves the identity of signed in users.
type IdentityService interface {
	Identity(ctx context.Context, userID int64) (*internal.Identity, error)
}

// IdentityMiddleware reloads the signed in user on every request so role changes and
// deletions apply immediately. Sessions of deleted users are signed out.
func IdentityMiddleware(logger *zap.Logger, sessions *session.Manager, svc IdentityService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sessions.UserID(r)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			id, err := svc.Identity(r.Context(), userID)
			if err != nil {
				if internal.CodeOf(err) == internal.ErrorCodeNotFound {
					_ = sessions.Logout(w, r)
				} else {
					logger.Error("resolving identity", zap.Int64("user_id", userID), zap.Error(err))
				}

				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(internal.WithIdentity(r.Context(), id)))
		})
	}
}

type views struct {
	logger    *zap.Logger
	sessions  *session.Manager
	templates map[string]*template.Template
}

var pages = []string{
	"index.html",
	"add_task.html",
	"edit_task.html",
	"dashboard.html",
	"login.html",
	"admin.html",
	"users.html",
	"create_user.html",
	"edit_user.html",
}

func newViews(logger *zap.Logger, sessions *session.Manager) (*views, error) {
	funcs := template.FuncMap{
		"joinTags": internal.JoinTags,
	}

	res := make(map[string]*template.Template, len(pages))

	for _, name := range pages {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(content, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "template.ParseFS %s", name)
		}

		res[name] = tmpl
	}

	return &views{
		logger:    logger,
		sessions:  sessions,
		templates: res,
	}, nil
}

type page struct {
	Identity *internal.Identity
	Flashes  []session.Flash
	Data     interface{}
}

func (v *views) render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	// Popping flashes may issue a cookie, it must happen before the body is written.
	flashes, err := v.sessions.Flashes(w, r)
	if err != nil {
		v.logger.Warn("reading flashes", zap.Error(err))
	}

	var buf bytes.Buffer

	if err := v.templates[name].ExecuteTemplate(&buf, "layout", page{
		Identity: internal.IdentityFromContext(r.Context()),
		Flashes:  flashes,
		Data:     data,
	}); err != nil {
		v.logger.Error("rendering template", zap.String("template", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (v *views) flash(w http.ResponseWriter, r *http.Request, category, message string) {
	if err := v.sessions.AddFlash(w, r, category, message); err != nil {
		v.logger.Warn("adding flash", zap.String("message", message), zap.Error(err))
	}
}

func (v *views) redirect(w http.ResponseWriter, r *http.Request, url, category, message string) {
	v.flash(w, r, category, message)
	http.Redirect(w, r, url, http.StatusFound)
}

// onError describes where a failed request is sent.
type onError struct {
	// action completes "An error occurred while ..."
	action string
	// retry is the form to go back to.
	retry string
	// back is where missing resources and cancellations lead.
	back     string
	notFound string
}

func (v *views) handleError(w http.ResponseWriter, r *http.Request, err error, e onError) {
	_, span := otel.Tracer(otelName).Start(r.Context(), "web.handleError")
	defer span.End()

	span.RecordError(err)

	switch internal.CodeOf(err) {
	case internal.ErrorCodeUnauthenticated:
		v.redirect(w, r, "/login", session.CategoryWarning, authz.MessageUnauthenticated)
	case internal.ErrorCodePermissionDenied:
		v.redirect(w, r, "/", session.CategoryDanger, authz.MessageAdminOnly)
	case internal.ErrorCodeNotFound:
		v.redirect(w, r, e.back, session.CategoryWarning, e.notFound)
	case internal.ErrorCodeInvalidArgument:
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			for _, msg := range validationMessages(verrs) {
				v.flash(w, r, session.CategoryError, msg)
			}

			http.Redirect(w, r, e.retry, http.StatusFound)

			return
		}

		v.redirect(w, r, e.retry, session.CategoryWarning, messageOf(err))
	case internal.ErrorCodeAlreadyExists:
		v.redirect(w, r, e.retry, session.CategoryWarning, messageOf(err))
	case internal.ErrorCodeCancelled:
		v.redirect(w, r, e.back, session.CategoryInfo, messageOf(err))
	default:
		v.logger.Error(e.action, zap.String("url", r.URL.String()), zap.Error(err))
		v.redirect(w, r, e.retry, session.CategoryError, "An error occurred while "+e.action+".")
	}
}

// validationMessages returns one message per failing field, ordered by field name and
// without duplicates.
func validationMessages(verrs validation.Errors) []string {
	fields := make([]string, 0, len(verrs))
	for field := range verrs {
		fields = append(fields, field)
	}

	sort.Strings(fields)

	seen := map[string]bool{}
	res := make([]string, 0, len(fields))

	for _, field := range fields {
		msg := verrs[field].Error()
		if seen[msg] {
			continue
		}

		seen[msg] = true
		res = append(res, msg)
	}

	return res
}

// messageOf returns the message of the first coded error in the chain.
func messageOf(err error) string {
	for err != nil {
		var ierr *internal.Error
		if !errors.As(err, &ierr) {
			break
		}

		if ierr.Code() != internal.ErrorCodeUnknown {
			return ierr.Message()
		}

		err = ierr.Unwrap()
	}

	return "Invalid request."
}
