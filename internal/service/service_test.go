package service_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/sanLimbu/todo-app/internal"
)

type fakeTaskRepository struct {
	mu    sync.Mutex
	order []string
	tasks map[string]internal.Task
}

func newFakeTaskRepository() *fakeTaskRepository {
	return &fakeTaskRepository{tasks: map[string]internal.Task{}}
}

func (f *fakeTaskRepository) Create(_ context.Context, userID int64, params internal.TaskParams) (internal.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	task := internal.Task{
		ID:          fmt.Sprintf("task-%d", len(f.order)+1),
		Title:       params.Title,
		Description: params.Description,
		DueDate:     params.DueDate,
		Priority:    params.Priority,
		Tags:        params.Tags,
		UserID:      userID,
	}

	f.order = append(f.order, task.ID)
	f.tasks[task.ID] = task

	return task, nil
}

func (f *fakeTaskRepository) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tasks[id]; !ok {
		return internal.NewErrorf(internal.ErrorCodeNotFound, "not found")
	}

	delete(f.tasks, id)

	return nil
}

func (f *fakeTaskRepository) Find(_ context.Context, id string) (internal.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	task, ok := f.tasks[id]
	if !ok {
		return internal.Task{}, internal.NewErrorf(internal.ErrorCodeNotFound, "not found")
	}

	return task, nil
}

func (f *fakeTaskRepository) ByOwner(_ context.Context, userID int64) ([]internal.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	res := []internal.Task{}

	for _, id := range f.order {
		if task, ok := f.tasks[id]; ok && task.UserID == userID {
			res = append(res, task)
		}
	}

	return res, nil
}

func (f *fakeTaskRepository) Update(_ context.Context, id string, params internal.TaskParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	task, ok := f.tasks[id]
	if !ok {
		return internal.NewErrorf(internal.ErrorCodeNotFound, "not found")
	}

	task.Title = params.Title
	task.Description = params.Description
	task.DueDate = params.DueDate
	task.Priority = params.Priority
	task.Tags = params.Tags

	f.tasks[id] = task

	return nil
}

func (f *fakeTaskRepository) SetCompleted(_ context.Context, id string, completed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	task, ok := f.tasks[id]
	if !ok {
		return internal.NewErrorf(internal.ErrorCodeNotFound, "not found")
	}

	task.Completed = completed
	f.tasks[id] = task

	return nil
}

func (f *fakeTaskRepository) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.tasks)
}

// deleteOwnedBy mimics the ON DELETE CASCADE foreign key.
func (f *fakeTaskRepository) deleteOwnedBy(userID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, task := range f.tasks {
		if task.UserID == userID {
			delete(f.tasks, id)
		}
	}
}

type fakeUserRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]internal.User
	tasks  *fakeTaskRepository
}

func newFakeUserRepository(tasks *fakeTaskRepository) *fakeUserRepository {
	return &fakeUserRepository{users: map[int64]internal.User{}, tasks: tasks}
}

func (f *fakeUserRepository) Create(_ context.Context, username, passwordHash string, isAdmin bool) (internal.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Username == username {
			return internal.User{}, internal.NewErrorf(internal.ErrorCodeAlreadyExists, "duplicate")
		}
	}

	f.nextID++

	user := internal.User{ID: f.nextID, Username: username, PasswordHash: passwordHash, IsAdmin: isAdmin}
	f.users[user.ID] = user

	return user, nil
}

func (f *fakeUserRepository) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[id]; !ok {
		return internal.NewErrorf(internal.ErrorCodeNotFound, "not found")
	}

	delete(f.users, id)
	f.tasks.deleteOwnedBy(id)

	return nil
}

func (f *fakeUserRepository) Find(_ context.Context, id int64) (internal.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return internal.User{}, internal.NewErrorf(internal.ErrorCodeNotFound, "not found")
	}

	return user, nil
}

func (f *fakeUserRepository) FindByUsername(_ context.Context, username string) (internal.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}

	return internal.User{}, internal.NewErrorf(internal.ErrorCodeNotFound, "not found")
}

func (f *fakeUserRepository) All(_ context.Context) ([]internal.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	res := []internal.User{}

	for id := int64(1); id <= f.nextID; id++ {
		if u, ok := f.users[id]; ok {
			res = append(res, u)
		}
	}

	return res, nil
}

func (f *fakeUserRepository) Update(_ context.Context, id int64, params internal.UpdateUserParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return internal.NewErrorf(internal.ErrorCodeNotFound, "not found")
	}

	user.Username = params.Username
	user.IsAdmin = params.IsAdmin
	f.users[id] = user

	return nil
}

func (f *fakeUserRepository) Stats(_ context.Context) (internal.Dashboard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var res internal.Dashboard

	for _, u := range f.users {
		res.Users++

		if u.IsAdmin {
			res.Admins++
		}
	}

	res.Tasks = f.tasks.count()

	return res, nil
}

type event struct {
	name string
	id   string
}

type fakeMessageBroker struct {
	mu     sync.Mutex
	events []event
	err    error
}

func (f *fakeMessageBroker) record(name, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.events = append(f.events, event{name, id})

	return nil
}

func (f *fakeMessageBroker) Created(_ context.Context, task internal.Task) error {
	return f.record("created", task.ID)
}

func (f *fakeMessageBroker) Deleted(_ context.Context, id string) error {
	return f.record("deleted", id)
}

func (f *fakeMessageBroker) Updated(_ context.Context, task internal.Task) error {
	return f.record("updated", task.ID)
}

func (f *fakeMessageBroker) recorded() []event {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]event(nil), f.events...)
}
