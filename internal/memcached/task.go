package memcached

import (
	"context"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"go.uber.org/zap"

	"github.com/sanLimbu/todo-app/internal"
)

// Task caches single task lookups, every write invalidates the cached copy.
type Task struct {
	client     *memcache.Client
	orig       TaskStore
	expiration time.Duration
	logger     *zap.Logger
}

// TaskStore is the repository being cached.
type TaskStore interface {
	Create(ctx context.Context, userID int64, params internal.TaskParams) (internal.Task, error)
	Delete(ctx context.Context, id string) error
	Find(ctx context.Context, id string) (internal.Task, error)
	ByOwner(ctx context.Context, userID int64) ([]internal.Task, error)
	Update(ctx context.Context, id string, params internal.TaskParams) error
	SetCompleted(ctx context.Context, id string, completed bool) error
}

// NewTask instantiates the Task cache.
func NewTask(client *memcache.Client, orig TaskStore, logger *zap.Logger) *Task {
	return &Task{
		client:     client,
		orig:       orig,
		expiration: 15 * time.Minute,
		logger:     logger,
	}
}

// Create stores the task and primes the cache.
func (t *Task) Create(ctx context.Context, userID int64, params internal.TaskParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Create").End()

	task, err := t.orig.Create(ctx, userID, params)
	if err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "orig.Create")
	}

	setTask(ctx, t.client, taskKey(task.ID), &task, t.expiration)

	return task, nil
}

// Delete removes the task and its cached copy.
func (t *Task) Delete(ctx context.Context, id string) error {
	defer newOTELSpan(ctx, "Task.Delete").End()

	if err := t.orig.Delete(ctx, id); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "orig.Delete")
	}

	deleteTask(ctx, t.client, taskKey(id))

	return nil
}

// Find returns the cached task, falling back to the store on a miss.
func (t *Task) Find(ctx context.Context, id string) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Find").End()

	var res internal.Task

	if err := getTask(ctx, t.client, taskKey(id), &res); err == nil {
		return res, nil
	}

	t.logger.Debug("Find: cache miss", zap.String("task_id", id))

	res, err := t.orig.Find(ctx, id)
	if err != nil {
		return res, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "orig.Find")
	}

	setTask(ctx, t.client, taskKey(res.ID), &res, t.expiration)

	return res, nil
}

// ByOwner is never cached.
func (t *Task) ByOwner(ctx context.Context, userID int64) ([]internal.Task, error) {
	defer newOTELSpan(ctx, "Task.ByOwner").End()

	res, err := t.orig.ByOwner(ctx, userID)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "orig.ByOwner")
	}

	return res, nil
}

// Update updates the task and invalidates its cached copy.
func (t *Task) Update(ctx context.Context, id string, params internal.TaskParams) error {
	defer newOTELSpan(ctx, "Task.Update").End()

	if err := t.orig.Update(ctx, id, params); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "orig.Update")
	}

	deleteTask(ctx, t.client, taskKey(id))

	return nil
}

// SetCompleted updates the completion status and invalidates the cached copy.
func (t *Task) SetCompleted(ctx context.Context, id string, completed bool) error {
	defer newOTELSpan(ctx, "Task.SetCompleted").End()

	if err := t.orig.SetCompleted(ctx, id, completed); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "orig.SetCompleted")
	}

	deleteTask(ctx, t.client, taskKey(id))

	return nil
}
