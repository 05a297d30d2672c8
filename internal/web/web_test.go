package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/service"
	"github.com/sanLimbu/todo-app/internal/session"
	"github.com/sanLimbu/todo-app/internal/session/sessiontesting"
	"github.com/sanLimbu/todo-app/internal/sqlite"
	"github.com/sanLimbu/todo-app/internal/sqlite/sqlitetesting"
	"github.com/sanLimbu/todo-app/internal/web"
)

type app struct {
	srv   *httptest.Server
	tasks *service.Task
	users *service.User
	repo  *sqlite.User
}

func newApp(t *testing.T, checks map[string]func(context.Context) error) *app {
	t.Helper()

	db := sqlitetesting.New(t)
	logger := zap.NewNop()

	taskRepo := sqlite.NewTask(db)
	userRepo := sqlite.NewUser(db)

	tasks := service.NewTask(logger, taskRepo, service.NopMessageBroker{})
	users := service.NewUser(logger, userRepo, taskRepo, service.NopMessageBroker{}).WithHashCost(bcrypt.MinCost)

	_, err := users.Bootstrap(context.Background(), "admin", "admin")
	require.NoError(t, err)

	sessions := session.NewManager(logger, sessiontesting.NewMemory(), session.Config{
		Secret: []byte("test-secret"),
		TTL:    time.Hour,
	})

	router := chi.NewRouter()

	require.NoError(t, web.Register(router, web.Config{
		Logger:   logger,
		Sessions: sessions,
		Tasks:    tasks,
		Users:    users,
		Checks:   checks,
	}))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &app{srv: srv, tasks: tasks, users: users, repo: userRepo}
}

// identity returns the Identity of an existing user.
func (a *app) identity(t *testing.T, username string) *internal.Identity {
	t.Helper()

	user, err := a.repo.FindByUsername(context.Background(), username)
	require.NoError(t, err)

	return internal.NewIdentity(user)
}

func (a *app) createUser(t *testing.T, username string, isAdmin bool) {
	t.Helper()

	_, err := a.users.Create(context.Background(), a.identity(t, "admin"),
		internal.NewCreateUserParams(username, "pw-"+username, isAdmin))
	require.NoError(t, err)
}

// browser keeps cookies between requests and never follows redirects.
type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func (a *app) browser(t *testing.T) *browser {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &browser{
		t:    t,
		base: a.srv.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type response struct {
	status   int
	location string
	body     string
}

func (b *browser) read(res *http.Response, err error) response {
	b.t.Helper()

	require.NoError(b.t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(b.t, err)

	return response{
		status:   res.StatusCode,
		location: res.Header.Get("Location"),
		body:     string(body),
	}
}

func (b *browser) get(path string) response {
	b.t.Helper()

	return b.read(b.client.Get(b.base + path))
}

func (b *browser) post(path string, form url.Values) response {
	b.t.Helper()

	return b.read(b.client.PostForm(b.base+path, form))
}

// redirected asserts res redirects to location and returns the page found there.
func (b *browser) redirected(res response, location string) string {
	b.t.Helper()

	require.Equal(b.t, http.StatusFound, res.status)
	require.Equal(b.t, location, res.location)

	page := b.get(location)
	require.Equal(b.t, http.StatusOK, page.status)

	return page.body
}

func (b *browser) login(username, password string) {
	b.t.Helper()

	res := b.post("/login", url.Values{"username": {username}, "password": {password}})
	require.Contains(b.t, b.redirected(res, "/"), "Login successful!")
}

func TestAnonymous(t *testing.T) {
	t.Parallel()

	a := newApp(t, nil)
	b := a.browser(t)

	for _, path := range []string{"/", "/add", "/dashboard", "/edit/x", "/complete/x", "/admin", "/admin/users"} {
		res := b.get(path)
		require.Contains(t, b.redirected(res, "/login"), "Please log in to access this page.", path)
	}

	res := b.get("/login")
	require.Equal(t, http.StatusOK, res.status)
	require.Contains(t, res.body, `action="/login"`)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	a := newApp(t, nil)
	b := a.browser(t)

	res := b.post("/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	require.Equal(t, http.StatusOK, res.status)
	require.Contains(t, res.body, "Invalid username or password.")

	res = b.post("/login", url.Values{"username": {"nobody"}, "password": {"admin"}})
	require.Equal(t, http.StatusOK, res.status)
	require.Contains(t, res.body, "Invalid username or password.")

	b.login("admin", "admin")

	page := b.get("/")
	require.Equal(t, http.StatusOK, page.status)
	require.Contains(t, page.body, "No tasks found.")
	require.NotContains(t, page.body, "Login successful!", "flashes are shown once")

	require.Contains(t, b.redirected(b.get("/logout"), "/login"), "You have been logged out.")
	require.Contains(t, b.redirected(b.get("/"), "/login"), "Please log in to access this page.")
}

func TestTasks(t *testing.T) {
	t.Parallel()

	a := newApp(t, nil)
	a.createUser(t, "alice", false)

	b := a.browser(t)
	b.login("alice", "pw-alice")

	res := b.post("/add", url.Values{
		"title":       {"Write report"},
		"description": {"quarterly"},
		"due_date":    {"2000-01-01"},
		"tags":        {"work, urgent"},
		"priority":    {"High"},
	})

	page := b.redirected(res, "/")
	require.Contains(t, page, "Task added successfully!")
	require.Contains(t, page, "Write report")
	require.Contains(t, page, "Overdue")

	views, err := a.tasks.List(context.Background(), a.identity(t, "alice"), internal.ViewParams{})
	require.NoError(t, err)
	require.Len(t, views, 1)

	id := views[0].ID

	t.Run("validation", func(t *testing.T) {
		res := b.post("/add", url.Values{"title": {" "}, "due_date": {"31-12-2024"}, "priority": {"Urgent"}})

		page := b.redirected(res, "/add")
		require.Contains(t, page, "Title is required!")
		require.Contains(t, page, "Invalid date format. Use YYYY-MM-DD.")
		require.Contains(t, page, "Invalid priority. Choose High, Medium, or Low.")

		res = b.post("/edit/"+id, url.Values{"title": {""}, "priority": {"Low"}})
		require.Contains(t, b.redirected(res, "/edit/"+id), "Title is required!")
	})

	t.Run("filters", func(t *testing.T) {
		require.Contains(t, b.get("/?tag=urgent").body, "Write report")
		require.NotContains(t, b.get("/?tag=home").body, "Write report")
		require.Contains(t, b.get("/?search=QUARTER&sort=title").body, "Write report")
	})

	t.Run("edit", func(t *testing.T) {
		form := b.get("/edit/" + id)
		require.Equal(t, http.StatusOK, form.status)
		require.Contains(t, form.body, `value="work, urgent"`)

		res := b.post("/edit/"+id, url.Values{
			"title":    {"Write summary"},
			"due_date": {"9999-12-31"},
			"tags":     {"work"},
			"priority": {"Low"},
		})

		page := b.redirected(res, "/")
		require.Contains(t, page, "Task updated successfully!")
		require.Contains(t, page, "Write summary")
		require.NotContains(t, page, "Overdue")
	})

	t.Run("complete", func(t *testing.T) {
		require.Contains(t, b.redirected(b.get("/complete/"+id), "/"), "Task marked as completed!")

		task, err := a.tasks.Task(context.Background(), a.identity(t, "alice"), id)
		require.NoError(t, err)
		require.True(t, task.Completed)

		require.Contains(t, b.redirected(b.get("/incomplete/"+id), "/"), "Task marked as incompleted!")
	})

	t.Run("dashboard", func(t *testing.T) {
		page := b.get("/dashboard")
		require.Equal(t, http.StatusOK, page.status)
		require.Contains(t, page.body, "Total tasks: 1")
	})

	t.Run("isolation", func(t *testing.T) {
		a.createUser(t, "bob", false)

		bob := a.browser(t)
		bob.login("bob", "pw-bob")

		for _, path := range []string{"/edit/" + id, "/complete/" + id, "/delete/" + id} {
			require.Contains(t, bob.redirected(bob.get(path), "/"), "Task not found or unauthorized access.", path)
		}

		res := bob.post("/edit/"+id, url.Values{"title": {"mine"}, "priority": {"Low"}})
		require.Contains(t, bob.redirected(res, "/"), "Task not found or unauthorized access.")

		require.NotContains(t, bob.get("/").body, "Write summary")
	})

	t.Run("delete", func(t *testing.T) {
		require.Contains(t, b.redirected(b.get("/delete/"+id), "/"), "Task deleted successfully!")
		require.Contains(t, b.redirected(b.get("/delete/"+id), "/"), "Task not found or unauthorized access.")
	})
}

func TestAdmin(t *testing.T) {
	t.Parallel()

	a := newApp(t, nil)
	a.createUser(t, "alice", false)

	alice := a.browser(t)
	alice.login("alice", "pw-alice")

	for _, path := range []string{"/admin", "/admin/users", "/admin/create_user", "/admin/edit_user/1"} {
		require.Contains(t, alice.redirected(alice.get(path), "/"), "Access denied: Admins only.", path)
	}

	res := alice.post("/admin/delete_user/1", url.Values{"confirm": {"delete"}})
	require.Contains(t, alice.redirected(res, "/"), "Access denied: Admins only.")

	admin := a.browser(t)
	admin.login("admin", "admin")

	page := admin.get("/admin")
	require.Equal(t, http.StatusOK, page.status)
	require.Contains(t, page.body, "Users: 2")

	t.Run("create", func(t *testing.T) {
		res := admin.post("/admin/create_user", url.Values{"username": {"carol"}, "password": {"pw"}, "is_admin": {"on"}})
		require.Contains(t, admin.redirected(res, "/admin"), "User carol created successfully.")

		require.True(t, a.identity(t, "carol").IsAdmin)

		res = admin.post("/admin/create_user", url.Values{"username": {"carol"}, "password": {"pw"}})
		require.Contains(t, admin.redirected(res, "/admin/create_user"), "Username already exists.")

		res = admin.post("/admin/create_user", url.Values{"username": {""}, "password": {""}})
		require.Contains(t, admin.redirected(res, "/admin/create_user"), "Username and password are required.")
	})

	t.Run("edit", func(t *testing.T) {
		carol := a.identity(t, "carol")
		path := "/admin/edit_user/" + itoa(carol.UserID)

		form := admin.get(path)
		require.Equal(t, http.StatusOK, form.status)
		require.Contains(t, form.body, `value="carol"`)

		res := admin.post(path, url.Values{"username": {"carol2"}})
		require.Contains(t, admin.redirected(res, "/admin/users"), "User updated successfully.")
		require.False(t, a.identity(t, "carol2").IsAdmin)

		res = admin.post(path, url.Values{"username": {"alice"}})
		require.Contains(t, admin.redirected(res, path), "Username already exists.")

		res = admin.post(path, url.Values{"username": {" "}})
		require.Contains(t, admin.redirected(res, path), "Username is required.")

		require.Contains(t, admin.redirected(admin.get("/admin/edit_user/999"), "/admin/users"), "User not found.")
		require.Contains(t, admin.redirected(admin.get("/admin/edit_user/abc"), "/admin/users"), "User not found.")
	})

	t.Run("delete", func(t *testing.T) {
		target := a.identity(t, "alice")
		path := "/admin/delete_user/" + itoa(target.UserID)

		_, err := a.tasks.Create(context.Background(), target, internal.NewTaskParams("doomed", "", "", "", "Low"))
		require.NoError(t, err)

		res := admin.post(path, url.Values{"confirm": {"yes"}})
		require.Contains(t, admin.redirected(res, "/admin/users"), "Deletion cancelled or not confirmed.")

		res = admin.post("/admin/delete_user/"+itoa(a.identity(t, "admin").UserID), url.Values{"confirm": {"delete"}})
		require.Contains(t, admin.redirected(res, "/admin/users"), "You cannot delete your own account.")

		res = admin.post(path, url.Values{"confirm": {"delete"}})
		require.Contains(t, admin.redirected(res, "/admin/users"), html.EscapeString("User 'alice' deleted."))

		res = admin.post(path, url.Values{"confirm": {"delete"}})
		require.Contains(t, admin.redirected(res, "/admin/users"), "User not found.")

		// The deleted user is signed out on the next request.
		require.Contains(t, alice.redirected(alice.get("/"), "/login"), "Please log in to access this page.")

		page := admin.get("/admin")
		require.Contains(t, page.body, "Tasks: 0")
	})
}

func TestHealth(t *testing.T) {
	t.Parallel()

	t.Run("OK", func(t *testing.T) {
		t.Parallel()

		a := newApp(t, map[string]func(context.Context) error{
			"database": func(context.Context) error { return nil },
		})

		res, err := http.Get(a.srv.URL + "/healthz")
		require.NoError(t, err)
		defer res.Body.Close()

		require.Equal(t, http.StatusOK, res.StatusCode)

		var got web.HealthResponse
		require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
		require.Equal(t, web.HealthResponse{Status: "ok", Checks: map[string]string{"database": "ok"}}, got)
	})

	t.Run("ERR", func(t *testing.T) {
		t.Parallel()

		a := newApp(t, map[string]func(context.Context) error{
			"database": func(context.Context) error { return nil },
			"cache":    func(context.Context) error { return errors.New("connection refused") },
		})

		res, err := http.Get(a.srv.URL + "/healthz")
		require.NoError(t, err)
		defer res.Body.Close()

		require.Equal(t, http.StatusServiceUnavailable, res.StatusCode)

		var got web.HealthResponse
		require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
		require.Equal(t, "unavailable", got.Status)
		require.Equal(t, "connection refused", got.Checks["cache"])
	})
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
