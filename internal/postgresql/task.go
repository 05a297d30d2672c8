package postgresql

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/postgresql/db"
)

// Task represents the repository used for interacting with Task records.
type Task struct {
	q *db.Queries
}

// NewTask instantiates the Task repository.
func NewTask(pool *pgxpool.Pool) *Task {
	return &Task{
		q: db.New(pool),
	}
}

// Create inserts a new task record.
func (t *Task) Create(ctx context.Context, userID int64, params internal.TaskParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Create").End()

	id, err := t.q.InsertTask(ctx, db.InsertTaskParams{
		Title:       params.Title,
		Description: params.Description,
		DueDate:     params.DueDate,
		Priority:    newPriority(params.Priority),
		Tags:        newTags(params.Tags),
		UserID:      userID,
	})
	if err != nil {
		return internal.Task{}, wrapError(err, "insert task")
	}

	return internal.Task{
		ID:          id.String(),
		Title:       params.Title,
		Description: params.Description,
		DueDate:     params.DueDate,
		Priority:    params.Priority,
		Tags:        newTags(params.Tags),
		UserID:      userID,
	}, nil
}

// Delete deletes the existing record matching the id.
func (t *Task) Delete(ctx context.Context, id string) error {
	defer newOTELSpan(ctx, "Task.Delete").End()

	val, err := parseID(id)
	if err != nil {
		return err
	}

	n, err := t.q.DeleteTask(ctx, val)
	if err != nil {
		return wrapError(err, "delete task")
	}

	return mustAffect(n, "delete task")
}

// Find returns the requested task by searching its id.
func (t *Task) Find(ctx context.Context, id string) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Find").End()

	val, err := parseID(id)
	if err != nil {
		return internal.Task{}, err
	}

	res, err := t.q.SelectTask(ctx, val)
	if err != nil {
		return internal.Task{}, wrapError(err, "select task")
	}

	return newTask(res), nil
}

// ByOwner returns the tasks of userID in creation order.
func (t *Task) ByOwner(ctx context.Context, userID int64) ([]internal.Task, error) {
	defer newOTELSpan(ctx, "Task.ByOwner").End()

	rows, err := t.q.SelectTasksByOwner(ctx, userID)
	if err != nil {
		return nil, wrapError(err, "select tasks")
	}

	res := make([]internal.Task, len(rows))
	for i, row := range rows {
		res[i] = newTask(row)
	}

	return res, nil
}

// Update updates the user editable fields of the existing record.
func (t *Task) Update(ctx context.Context, id string, params internal.TaskParams) error {
	defer newOTELSpan(ctx, "Task.Update").End()

	val, err := parseID(id)
	if err != nil {
		return err
	}

	n, err := t.q.UpdateTask(ctx, db.UpdateTaskParams{
		ID:          val,
		Title:       params.Title,
		Description: params.Description,
		DueDate:     params.DueDate,
		Priority:    newPriority(params.Priority),
		Tags:        newTags(params.Tags),
	})
	if err != nil {
		return wrapError(err, "update task")
	}

	return mustAffect(n, "update task")
}

// SetCompleted changes the completion status of the existing record.
func (t *Task) SetCompleted(ctx context.Context, id string, completed bool) error {
	defer newOTELSpan(ctx, "Task.SetCompleted").End()

	val, err := parseID(id)
	if err != nil {
		return err
	}

	n, err := t.q.UpdateTaskCompleted(ctx, db.UpdateTaskCompletedParams{
		ID:        val,
		Completed: completed,
	})
	if err != nil {
		return wrapError(err, "update task completion")
	}

	return mustAffect(n, "update task completion")
}

// parseID treats malformed ids as missing records.
func parseID(id string) (uuid.UUID, error) {
	val, err := uuid.Parse(id)
	if err != nil {
		return uuid.UUID{}, internal.WrapErrorf(err, internal.ErrorCodeNotFound, "uuid.Parse")
	}

	return val, nil
}

func newTask(row db.Task) internal.Task {
	return internal.Task{
		ID:          row.ID.String(),
		Title:       row.Title,
		Description: row.Description,
		DueDate:     row.DueDate,
		Completed:   row.Completed,
		Priority:    convertPriority(row.Priority),
		Tags:        newTags(row.Tags),
		UserID:      row.UserID,
	}
}
