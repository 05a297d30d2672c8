package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mercari/go-circuitbreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/authz"
)

// TaskRepository defines the datastore handling persisting Task records.
type TaskRepository interface {
	Create(ctx context.Context, userID int64, params internal.TaskParams) (internal.Task, error)
	Delete(ctx context.Context, id string) error
	Find(ctx context.Context, id string) (internal.Task, error)
	ByOwner(ctx context.Context, userID int64) ([]internal.Task, error)
	Update(ctx context.Context, id string, params internal.TaskParams) error
	SetCompleted(ctx context.Context, id string, completed bool) error
}

// TaskMessageBrokerRepository defines the messaging broker publishing Task changes.
type TaskMessageBrokerRepository interface {
	Created(ctx context.Context, task internal.Task) error
	Deleted(ctx context.Context, id string) error
	Updated(ctx context.Context, task internal.Task) error
}

// Task defines the application service in charge of interacting with Tasks.
type Task struct {
	logger    *zap.Logger
	repo      TaskRepository
	msgBroker TaskMessageBrokerRepository
	cb        *circuitbreaker.CircuitBreaker
	now       func() time.Time
}

// NewTask instantiates the Task service.
func NewTask(logger *zap.Logger, repo TaskRepository, msgBroker TaskMessageBrokerRepository) *Task {
	return &Task{
		logger:    logger,
		repo:      repo,
		msgBroker: msgBroker,
		cb:        newCircuitBreaker(),
		now:       time.Now,
	}
}

// WithClock replaces the clock used for the overdue computation.
func (t *Task) WithClock(now func() time.Time) *Task {
	t.now = now
	return t
}

// List returns the tasks owned by id, filtered, sorted and annotated according to params.
func (t *Task) List(ctx context.Context, id *internal.Identity, params internal.ViewParams) ([]internal.TaskView, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "Task.List")
	defer span.End()

	if err := authz.Authorize(id, authz.ActionViewList, nil).Err(); err != nil {
		return nil, err
	}

	tasks, err := t.repo.ByOwner(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("repo by owner: %w", err)
	}

	return internal.BuildView(tasks, params, t.now()), nil
}

// Task gets an existing Task owned by id.
func (t *Task) Task(ctx context.Context, id *internal.Identity, taskID string) (internal.Task, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "Task.Task")
	defer span.End()

	return t.authorized(ctx, id, authz.ActionEdit, taskID)
}

// Create stores a new Task owned by id.
func (t *Task) Create(ctx context.Context, id *internal.Identity, params internal.TaskParams) (internal.Task, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "Task.Create")
	defer span.End()

	if err := authz.Authorize(id, authz.ActionAdd, nil).Err(); err != nil {
		return internal.Task{}, err
	}

	if err := params.Validate(); err != nil {
		return internal.Task{}, fmt.Errorf("params validate: %w", err)
	}

	task, err := t.repo.Create(ctx, id.UserID, params)
	if err != nil {
		return internal.Task{}, fmt.Errorf("repo create: %w", err)
	}

	t.publish(ctx, "Created", func() error { return t.msgBroker.Created(ctx, task) })

	return task, nil
}

// Update updates an existing Task owned by id.
func (t *Task) Update(ctx context.Context, id *internal.Identity, taskID string, params internal.TaskParams) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "Task.Update")
	defer span.End()

	if _, err := t.authorized(ctx, id, authz.ActionEdit, taskID); err != nil {
		return err
	}

	if err := params.Validate(); err != nil {
		return fmt.Errorf("params validate: %w", err)
	}

	if err := t.repo.Update(ctx, taskID, params); err != nil {
		return fmt.Errorf("repo update: %w", err)
	}

	t.publishUpdated(ctx, taskID)

	return nil
}

// Complete marks a Task owned by id as completed.
func (t *Task) Complete(ctx context.Context, id *internal.Identity, taskID string) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "Task.Complete")
	defer span.End()

	return t.setCompleted(ctx, id, authz.ActionComplete, taskID, true)
}

// Incomplete marks a Task owned by id as not completed.
func (t *Task) Incomplete(ctx context.Context, id *internal.Identity, taskID string) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "Task.Incomplete")
	defer span.End()

	return t.setCompleted(ctx, id, authz.ActionIncomplete, taskID, false)
}

// Delete removes an existing Task owned by id.
func (t *Task) Delete(ctx context.Context, id *internal.Identity, taskID string) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "Task.Delete")
	defer span.End()

	if _, err := t.authorized(ctx, id, authz.ActionDelete, taskID); err != nil {
		return err
	}

	if err := t.repo.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("repo delete: %w", err)
	}

	t.publish(ctx, "Deleted", func() error { return t.msgBroker.Deleted(ctx, taskID) })

	return nil
}

func (t *Task) setCompleted(ctx context.Context, id *internal.Identity, action authz.Action, taskID string, completed bool) error {
	if _, err := t.authorized(ctx, id, action, taskID); err != nil {
		return err
	}

	if err := t.repo.SetCompleted(ctx, taskID, completed); err != nil {
		return fmt.Errorf("repo set completed: %w", err)
	}

	t.publishUpdated(ctx, taskID)

	return nil
}

// authorized loads the task and consults the gate. Lookup failures other than not found
// are returned as is, a missing task is handed to the gate as nil.
func (t *Task) authorized(ctx context.Context, id *internal.Identity, action authz.Action, taskID string) (internal.Task, error) {
	if id == nil {
		return internal.Task{}, authz.Authorize(nil, action, nil).Err()
	}

	var found *internal.Task

	task, err := t.repo.Find(ctx, taskID)
	switch {
	case err == nil:
		found = &task
	case internal.CodeOf(err) != internal.ErrorCodeNotFound:
		return internal.Task{}, fmt.Errorf("repo find: %w", err)
	}

	if err := authz.Authorize(id, action, found).Err(); err != nil {
		return internal.Task{}, err
	}

	return task, nil
}

func (t *Task) publishUpdated(ctx context.Context, taskID string) {
	task, err := t.repo.Find(ctx, taskID)
	if err != nil {
		t.logger.Warn("skipping updated event", zap.String("task_id", taskID), zap.Error(err))
		return
	}

	t.publish(ctx, "Updated", func() error { return t.msgBroker.Updated(ctx, task) })
}

// publish sends an event through the circuit breaker, failures never fail the request.
func (t *Task) publish(ctx context.Context, event string, fn func() error) {
	_, err := t.cb.Do(ctx, func() (interface{}, error) {
		return nil, fn()
	})
	if err != nil {
		t.logger.Warn("publishing task event", zap.String("event", event), zap.Error(err))
	}
}
