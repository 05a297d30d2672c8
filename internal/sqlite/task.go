package sqlite

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sanLimbu/todo-app/internal"
)

// taskRow is the persisted shape of a Task, tags are kept as comma separated text.
type taskRow struct {
	ID          string `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	DueDate     string `db:"due_date"`
	Completed   bool   `db:"completed"`
	Priority    string `db:"priority"`
	Tags        string `db:"tags"`
	UserID      int64  `db:"user_id"`
}

func (r taskRow) task() internal.Task {
	return internal.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate,
		Completed:   r.Completed,
		Priority:    internal.Priority(r.Priority),
		Tags:        internal.ParseTags(r.Tags),
		UserID:      r.UserID,
	}
}

const taskColumns = `id, title, description, due_date, completed, priority, tags, user_id`

// Task represents the repository used for interacting with Task records.
type Task struct {
	db *sqlx.DB
}

// NewTask instantiates the Task repository.
func NewTask(db *sqlx.DB) *Task {
	return &Task{
		db: db,
	}
}

// Create inserts a new task record owned by userID.
func (t *Task) Create(ctx context.Context, userID int64, params internal.TaskParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Create").End()

	row := taskRow{
		ID:          uuid.NewString(),
		Title:       params.Title,
		Description: params.Description,
		DueDate:     params.DueDate,
		Priority:    string(params.Priority),
		Tags:        internal.JoinTags(params.Tags),
		UserID:      userID,
	}

	if _, err := t.db.NamedExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (:id, :title, :description, :due_date, :completed, :priority, :tags, :user_id)`, row); err != nil {
		return internal.Task{}, wrapError(err, "insert task")
	}

	return row.task(), nil
}

// Delete deletes the existing record matching the id.
func (t *Task) Delete(ctx context.Context, id string) error {
	defer newOTELSpan(ctx, "Task.Delete").End()

	res, err := t.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return wrapError(err, "delete task")
	}

	return mustAffect(res, "delete task")
}

// Find returns the requested task by searching its id.
func (t *Task) Find(ctx context.Context, id string) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Find").End()

	var row taskRow

	if err := t.db.GetContext(ctx, &row, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id); err != nil {
		return internal.Task{}, wrapError(err, "select task")
	}

	return row.task(), nil
}

// ByOwner returns the tasks of userID in insertion order.
func (t *Task) ByOwner(ctx context.Context, userID int64) ([]internal.Task, error) {
	defer newOTELSpan(ctx, "Task.ByOwner").End()

	var rows []taskRow

	if err := t.db.SelectContext(ctx, &rows,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY rowid`, userID); err != nil {
		return nil, wrapError(err, "select tasks")
	}

	res := make([]internal.Task, len(rows))
	for i, row := range rows {
		res[i] = row.task()
	}

	return res, nil
}

// Update updates the user editable fields of the existing record.
func (t *Task) Update(ctx context.Context, id string, params internal.TaskParams) error {
	defer newOTELSpan(ctx, "Task.Update").End()

	res, err := t.db.ExecContext(ctx, `
		UPDATE tasks SET
			title = ?, description = ?, due_date = ?, priority = ?, tags = ?
		WHERE id = ?`,
		params.Title, params.Description, params.DueDate, string(params.Priority), internal.JoinTags(params.Tags),
		id,
	)
	if err != nil {
		return wrapError(err, "update task")
	}

	return mustAffect(res, "update task")
}

// SetCompleted changes the completion status of the existing record.
func (t *Task) SetCompleted(ctx context.Context, id string, completed bool) error {
	defer newOTELSpan(ctx, "Task.SetCompleted").End()

	res, err := t.db.ExecContext(ctx, `UPDATE tasks SET completed = ? WHERE id = ?`, completed, id)
	if err != nil {
		return wrapError(err, "update task completion")
	}

	return mustAffect(res, "update task completion")
}
