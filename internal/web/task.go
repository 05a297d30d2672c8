package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/authz"
	"github.com/sanLimbu/todo-app/internal/session"
)

// TaskService defines the task use cases the pages depend on.
type TaskService interface {
	List(ctx context.Context, id *internal.Identity, params internal.ViewParams) ([]internal.TaskView, error)
	Task(ctx context.Context, id *internal.Identity, taskID string) (internal.Task, error)
	Create(ctx context.Context, id *internal.Identity, params internal.TaskParams) (internal.Task, error)
	Update(ctx context.Context, id *internal.Identity, taskID string, params internal.TaskParams) error
	Complete(ctx context.Context, id *internal.Identity, taskID string) error
	Incomplete(ctx context.Context, id *internal.Identity, taskID string) error
	Delete(ctx context.Context, id *internal.Identity, taskID string) error
}

// TaskHandler serves the task pages of the signed in user.
type TaskHandler struct {
	*views
	svc TaskService
}

// newTaskHandler instantiates the task pages.
func newTaskHandler(v *views, svc TaskService) *TaskHandler {
	return &TaskHandler{
		views: v,
		svc:   svc,
	}
}

// Register connects the handlers to the router.
func (t *TaskHandler) Register(r chi.Router) {
	r.Get("/", t.index)
	r.Get("/dashboard", t.dashboard)
	r.Get("/add", t.addForm)
	r.Post("/add", t.add)
	r.Get("/edit/{id}", t.editForm)
	r.Post("/edit/{id}", t.edit)
	r.Get("/complete/{id}", t.complete)
	r.Get("/incomplete/{id}", t.incomplete)
	r.Get("/delete/{id}", t.delete)
}

// taskForm is the body posted by the add and edit pages.
type taskForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	DueDate     string `form:"due_date"`
	Tags        string `form:"tags"`
	Priority    string `form:"priority"`
}

func (f taskForm) params() internal.TaskParams {
	return internal.NewTaskParams(f.Title, f.Description, f.DueDate, f.Tags, f.Priority)
}

type indexPage struct {
	Tasks  []internal.TaskView
	Tag    string
	Search string
	Sort   internal.Sort
}

func (t *TaskHandler) index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := internal.ViewParams{
		Tag:    q.Get("tag"),
		Search: q.Get("search"),
		Sort:   internal.ParseSort(q.Get("sort")),
	}

	id := internal.IdentityFromContext(r.Context())

	tasks, err := t.svc.List(r.Context(), id, params)
	if err != nil {
		if internal.CodeOf(err) == internal.ErrorCodeUnauthenticated {
			t.handleError(w, r, err, onError{})
			return
		}

		t.logger.Error("loading tasks", zap.Error(err))
		t.flash(w, r, session.CategoryError, "An error occurred while loading tasks.")
	}

	t.render(w, r, "index.html", indexPage{
		Tasks:  tasks,
		Tag:    params.Tag,
		Search: params.Search,
		Sort:   params.Sort,
	})
}

type dashboardPage struct {
	Total     int
	Completed int
	Pending   int
	Overdue   int
}

func (t *TaskHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	tasks, err := t.svc.List(r.Context(), internal.IdentityFromContext(r.Context()), internal.ViewParams{})
	if err != nil {
		t.handleError(w, r, err, onError{action: "loading the dashboard", retry: "/"})
		return
	}

	var res dashboardPage

	for _, task := range tasks {
		res.Total++

		switch {
		case task.Completed:
			res.Completed++
		case task.IsOverdue:
			res.Overdue++
			res.Pending++
		default:
			res.Pending++
		}
	}

	t.render(w, r, "dashboard.html", res)
}

func (t *TaskHandler) addForm(w http.ResponseWriter, r *http.Request) {
	if err := authz.Authorize(internal.IdentityFromContext(r.Context()), authz.ActionAdd, nil).Err(); err != nil {
		t.handleError(w, r, err, onError{})
		return
	}

	t.render(w, r, "add_task.html", nil)
}

func (t *TaskHandler) add(w http.ResponseWriter, r *http.Request) {
	e := onError{action: "adding the task", retry: "/add", back: "/", notFound: authz.MessageNotFound}

	var form taskForm
	if err := render.DecodeForm(r.Body, &form); err != nil {
		t.handleError(w, r, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "Invalid form submission."), e)
		return
	}

	if _, err := t.svc.Create(r.Context(), internal.IdentityFromContext(r.Context()), form.params()); err != nil {
		t.handleError(w, r, err, e)
		return
	}

	t.redirect(w, r, "/", session.CategorySuccess, "Task added successfully!")
}

type editPage struct {
	Task internal.Task
}

func (t *TaskHandler) editForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	task, err := t.svc.Task(r.Context(), internal.IdentityFromContext(r.Context()), id)
	if err != nil {
		t.handleError(w, r, err, onError{action: "loading the task", retry: "/", back: "/", notFound: authz.MessageNotFound})
		return
	}

	t.render(w, r, "edit_task.html", editPage{Task: task})
}

func (t *TaskHandler) edit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	e := onError{action: "updating the task", retry: "/edit/" + id, back: "/", notFound: authz.MessageNotFound}

	var form taskForm
	if err := render.DecodeForm(r.Body, &form); err != nil {
		t.handleError(w, r, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "Invalid form submission."), e)
		return
	}

	if err := t.svc.Update(r.Context(), internal.IdentityFromContext(r.Context()), id, form.params()); err != nil {
		t.handleError(w, r, err, e)
		return
	}

	t.redirect(w, r, "/", session.CategoryInfo, "Task updated successfully!")
}

func (t *TaskHandler) complete(w http.ResponseWriter, r *http.Request) {
	t.change(w, r, t.svc.Complete, "completing the task", session.CategorySuccess, "Task marked as completed!")
}

func (t *TaskHandler) incomplete(w http.ResponseWriter, r *http.Request) {
	t.change(w, r, t.svc.Incomplete, "reopening the task", session.CategoryInfo, "Task marked as incompleted!")
}

func (t *TaskHandler) delete(w http.ResponseWriter, r *http.Request) {
	t.change(w, r, t.svc.Delete, "deleting the task", session.CategoryWarning, "Task deleted successfully!")
}

// change runs one of the single task actions reached through a link.
func (t *TaskHandler) change(w http.ResponseWriter, r *http.Request,
	fn func(context.Context, *internal.Identity, string) error,
	action, category, message string,
) {
	if err := fn(r.Context(), internal.IdentityFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		t.handleError(w, r, err, onError{action: action, retry: "/", back: "/", notFound: authz.MessageNotFound})
		return
	}

	t.redirect(w, r, "/", category, message)
}
