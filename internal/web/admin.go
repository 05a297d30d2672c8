package web

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/authz"
	"github.com/sanLimbu/todo-app/internal/service"
	"github.com/sanLimbu/todo-app/internal/session"
)

const messageUserNotFound = "User not found."

// UserService defines the account use cases the pages depend on.
type UserService interface {
	AuthService
	IdentityService
	Dashboard(ctx context.Context, id *internal.Identity) (internal.Dashboard, error)
	Users(ctx context.Context, id *internal.Identity) ([]internal.User, error)
	User(ctx context.Context, id *internal.Identity, userID int64) (internal.User, error)
	Create(ctx context.Context, id *internal.Identity, params internal.CreateUserParams) (internal.User, error)
	Update(ctx context.Context, id *internal.Identity, userID int64, params internal.UpdateUserParams) error
	Delete(ctx context.Context, id *internal.Identity, userID int64, confirm string) (internal.User, error)
}

// AdminHandler serves the administration pages.
type AdminHandler struct {
	*views
	svc UserService
}

func newAdminHandler(v *views, svc UserService) *AdminHandler {
	return &AdminHandler{
		views: v,
		svc:   svc,
	}
}

// Register connects the handlers to the router.
func (a *AdminHandler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/", a.dashboard)
		r.Get("/users", a.users)
		r.Get("/create_user", a.createForm)
		r.Post("/create_user", a.create)
		r.Get("/edit_user/{id}", a.editForm)
		r.Post("/edit_user/{id}", a.edit)
		r.Post("/delete_user/{id}", a.delete)
	})
}

// userForm is the body posted by the create and edit pages, is_admin holds the checkbox value.
type userForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
	IsAdmin  string `form:"is_admin"`
}

func (f userForm) admin() bool {
	return f.IsAdmin != ""
}

type deleteForm struct {
	Confirm string `form:"confirm"`
}

func (a *AdminHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := a.svc.Dashboard(r.Context(), internal.IdentityFromContext(r.Context()))
	if err != nil {
		a.handleError(w, r, err, onError{action: "loading the dashboard", retry: "/"})
		return
	}

	a.render(w, r, "admin.html", stats)
}

type usersPage struct {
	Users   []internal.User
	Confirm string
}

func (a *AdminHandler) users(w http.ResponseWriter, r *http.Request) {
	users, err := a.svc.Users(r.Context(), internal.IdentityFromContext(r.Context()))
	if err != nil {
		a.handleError(w, r, err, onError{action: "loading users", retry: "/admin"})
		return
	}

	a.render(w, r, "users.html", usersPage{Users: users, Confirm: service.ConfirmDelete})
}

func (a *AdminHandler) createForm(w http.ResponseWriter, r *http.Request) {
	if err := authz.Authorize(internal.IdentityFromContext(r.Context()), authz.ActionCreateUser, nil).Err(); err != nil {
		a.handleError(w, r, err, onError{})
		return
	}

	a.render(w, r, "create_user.html", nil)
}

func (a *AdminHandler) create(w http.ResponseWriter, r *http.Request) {
	e := onError{action: "creating the user", retry: "/admin/create_user", back: "/admin"}

	var form userForm
	if err := render.DecodeForm(r.Body, &form); err != nil {
		a.handleError(w, r, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "Invalid form submission."), e)
		return
	}

	user, err := a.svc.Create(r.Context(), internal.IdentityFromContext(r.Context()),
		internal.NewCreateUserParams(form.Username, form.Password, form.admin()))
	if err != nil {
		a.handleError(w, r, err, e)
		return
	}

	a.redirect(w, r, "/admin", session.CategorySuccess, fmt.Sprintf("User %s created successfully.", user.Username))
}

type editUserPage struct {
	User internal.User
}

func (a *AdminHandler) editForm(w http.ResponseWriter, r *http.Request) {
	e := onError{action: "loading the user", retry: "/admin/users", back: "/admin/users", notFound: messageUserNotFound}

	userID, err := userIDParam(r)
	if err != nil {
		a.handleError(w, r, err, e)
		return
	}

	user, err := a.svc.User(r.Context(), internal.IdentityFromContext(r.Context()), userID)
	if err != nil {
		a.handleError(w, r, err, e)
		return
	}

	a.render(w, r, "edit_user.html", editUserPage{User: user})
}

func (a *AdminHandler) edit(w http.ResponseWriter, r *http.Request) {
	e := onError{
		action:   "updating the user",
		retry:    "/admin/edit_user/" + chi.URLParam(r, "id"),
		back:     "/admin/users",
		notFound: messageUserNotFound,
	}

	userID, err := userIDParam(r)
	if err != nil {
		a.handleError(w, r, err, e)
		return
	}

	var form userForm
	if err := render.DecodeForm(r.Body, &form); err != nil {
		a.handleError(w, r, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "Invalid form submission."), e)
		return
	}

	if err := a.svc.Update(r.Context(), internal.IdentityFromContext(r.Context()), userID,
		internal.NewUpdateUserParams(form.Username, form.admin())); err != nil {
		a.handleError(w, r, err, e)
		return
	}

	a.redirect(w, r, "/admin/users", session.CategorySuccess, "User updated successfully.")
}

func (a *AdminHandler) delete(w http.ResponseWriter, r *http.Request) {
	e := onError{action: "deleting the user", retry: "/admin/users", back: "/admin/users", notFound: messageUserNotFound}

	userID, err := userIDParam(r)
	if err != nil {
		a.handleError(w, r, err, e)
		return
	}

	var form deleteForm
	if err := render.DecodeForm(r.Body, &form); err != nil {
		a.handleError(w, r, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "Invalid form submission."), e)
		return
	}

	user, err := a.svc.Delete(r.Context(), internal.IdentityFromContext(r.Context()), userID, form.Confirm)
	if err != nil {
		a.handleError(w, r, err, e)
		return
	}

	a.redirect(w, r, "/admin/users", session.CategorySuccess, fmt.Sprintf("User '%s' deleted.", user.Username))
}

// userIDParam parses the id route parameter, ids that can't exist are reported as missing.
func userIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewErrorf(internal.ErrorCodeNotFound, messageUserNotFound)
	}

	return id, nil
}
