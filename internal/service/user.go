package service

import (
	"context"
	"fmt"

	"github.com/mercari/go-circuitbreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/authz"
)

// UserRepository defines the datastore handling persisting User records.
type UserRepository interface {
	Create(ctx context.Context, username, passwordHash string, isAdmin bool) (internal.User, error)
	Delete(ctx context.Context, id int64) error
	Find(ctx context.Context, id int64) (internal.User, error)
	FindByUsername(ctx context.Context, username string) (internal.User, error)
	All(ctx context.Context) ([]internal.User, error)
	Update(ctx context.Context, id int64, params internal.UpdateUserParams) error
	Stats(ctx context.Context) (internal.Dashboard, error)
}

// TaskOwnerRepository lists the tasks of a user, used to announce cascaded deletions.
type TaskOwnerRepository interface {
	ByOwner(ctx context.Context, userID int64) ([]internal.Task, error)
}

// ConfirmDelete is the literal value required to confirm deleting a user.
const ConfirmDelete = "delete"

// User defines the application service in charge of authentication and account management.
type User struct {
	logger    *zap.Logger
	repo      UserRepository
	tasks     TaskOwnerRepository
	msgBroker TaskMessageBrokerRepository
	cb        *circuitbreaker.CircuitBreaker
	hashCost  int
}

// NewUser instantiates the User service.
func NewUser(logger *zap.Logger, repo UserRepository, tasks TaskOwnerRepository, msgBroker TaskMessageBrokerRepository) *User {
	return &User{
		logger:    logger,
		repo:      repo,
		tasks:     tasks,
		msgBroker: msgBroker,
		cb:        newCircuitBreaker(),
		hashCost:  bcrypt.DefaultCost,
	}
}

// WithHashCost changes the bcrypt cost used for new passwords.
func (u *User) WithHashCost(cost int) *User {
	u.hashCost = cost
	return u
}

// Authenticate returns the User matching the credentials. Unknown usernames and wrong
// passwords fail with the same error.
func (u *User) Authenticate(ctx context.Context, username, password string) (internal.User, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "User.Authenticate")
	defer span.End()

	user, err := u.repo.FindByUsername(ctx, username)
	if err != nil {
		if internal.CodeOf(err) == internal.ErrorCodeNotFound {
			return internal.User{}, internal.NewErrorf(internal.ErrorCodeUnauthenticated, "Invalid username or password.")
		}

		return internal.User{}, fmt.Errorf("repo find by username: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return internal.User{}, internal.WrapErrorf(err, internal.ErrorCodeUnauthenticated, "Invalid username or password.")
	}

	return user, nil
}

// Identity returns the current Identity of the user, reflecting the latest admin flag.
func (u *User) Identity(ctx context.Context, userID int64) (*internal.Identity, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "User.Identity")
	defer span.End()

	user, err := u.repo.Find(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("repo find: %w", err)
	}

	return internal.NewIdentity(user), nil
}

// Bootstrap creates the initial administrator unless a user with that username exists.
// It reports whether the account was created.
func (u *User) Bootstrap(ctx context.Context, username, password string) (bool, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "User.Bootstrap")
	defer span.End()

	params := internal.NewCreateUserParams(username, password, true)
	if err := params.Validate(); err != nil {
		return false, fmt.Errorf("params validate: %w", err)
	}

	_, err := u.repo.FindByUsername(ctx, params.Username)
	if err == nil {
		return false, nil
	}

	if internal.CodeOf(err) != internal.ErrorCodeNotFound {
		return false, fmt.Errorf("repo find by username: %w", err)
	}

	if _, err := u.create(ctx, params); err != nil {
		return false, err
	}

	return true, nil
}

// Dashboard returns account totals.
func (u *User) Dashboard(ctx context.Context, id *internal.Identity) (internal.Dashboard, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "User.Dashboard")
	defer span.End()

	if err := authz.Authorize(id, authz.ActionAdminDashboard, nil).Err(); err != nil {
		return internal.Dashboard{}, err
	}

	res, err := u.repo.Stats(ctx)
	if err != nil {
		return internal.Dashboard{}, fmt.Errorf("repo stats: %w", err)
	}

	return res, nil
}

// Users returns every account.
func (u *User) Users(ctx context.Context, id *internal.Identity) ([]internal.User, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "User.Users")
	defer span.End()

	if err := authz.Authorize(id, authz.ActionListUsers, nil).Err(); err != nil {
		return nil, err
	}

	res, err := u.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo all: %w", err)
	}

	return res, nil
}

// User returns a single account for editing.
func (u *User) User(ctx context.Context, id *internal.Identity, userID int64) (internal.User, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "User.User")
	defer span.End()

	if err := authz.Authorize(id, authz.ActionEditUser, nil).Err(); err != nil {
		return internal.User{}, err
	}

	return u.find(ctx, userID)
}

// Create registers a new account.
func (u *User) Create(ctx context.Context, id *internal.Identity, params internal.CreateUserParams) (internal.User, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "User.Create")
	defer span.End()

	if err := authz.Authorize(id, authz.ActionCreateUser, nil).Err(); err != nil {
		return internal.User{}, err
	}

	if err := params.Validate(); err != nil {
		return internal.User{}, fmt.Errorf("params validate: %w", err)
	}

	if err := u.usernameAvailable(ctx, params.Username, 0); err != nil {
		return internal.User{}, err
	}

	return u.create(ctx, params)
}

// Update changes the username and admin flag of an account. The last administrator can't
// be demoted.
func (u *User) Update(ctx context.Context, id *internal.Identity, userID int64, params internal.UpdateUserParams) error {
	ctx, span := otel.Tracer(otelName).Start(ctx, "User.Update")
	defer span.End()

	if err := authz.Authorize(id, authz.ActionEditUser, nil).Err(); err != nil {
		return err
	}

	target, err := u.find(ctx, userID)
	if err != nil {
		return err
	}

	if err := params.Validate(); err != nil {
		return fmt.Errorf("params validate: %w", err)
	}

	if err := u.usernameAvailable(ctx, params.Username, userID); err != nil {
		return err
	}

	if target.IsAdmin && !params.IsAdmin {
		if err := u.keepOneAdmin(ctx); err != nil {
			return err
		}
	}

	if err := u.repo.Update(ctx, userID, params); err != nil {
		return fmt.Errorf("repo update: %w", err)
	}

	return nil
}

// Delete removes an account together with its tasks. confirm must equal ConfirmDelete,
// administrators can't delete themselves nor the last administrator.
func (u *User) Delete(ctx context.Context, id *internal.Identity, userID int64, confirm string) (internal.User, error) {
	ctx, span := otel.Tracer(otelName).Start(ctx, "User.Delete")
	defer span.End()

	if err := authz.Authorize(id, authz.ActionDeleteUser, nil).Err(); err != nil {
		return internal.User{}, err
	}

	target, err := u.find(ctx, userID)
	if err != nil {
		return internal.User{}, err
	}

	if confirm != ConfirmDelete {
		return internal.User{}, internal.NewErrorf(internal.ErrorCodeCancelled, "Deletion cancelled or not confirmed.")
	}

	if target.ID == id.UserID {
		return internal.User{}, internal.NewErrorf(internal.ErrorCodeInvalidArgument, "You cannot delete your own account.")
	}

	if target.IsAdmin {
		if err := u.keepOneAdmin(ctx); err != nil {
			return internal.User{}, err
		}
	}

	tasks, err := u.tasks.ByOwner(ctx, userID)
	if err != nil {
		return internal.User{}, fmt.Errorf("tasks by owner: %w", err)
	}

	if err := u.repo.Delete(ctx, userID); err != nil {
		return internal.User{}, fmt.Errorf("repo delete: %w", err)
	}

	for _, task := range tasks {
		taskID := task.ID

		if _, err := u.cb.Do(ctx, func() (interface{}, error) {
			return nil, u.msgBroker.Deleted(ctx, taskID)
		}); err != nil {
			u.logger.Warn("publishing cascaded task deletion", zap.String("task_id", taskID), zap.Error(err))
		}
	}

	u.logger.Info("user deleted",
		zap.Int64("user_id", userID),
		zap.Int("tasks", len(tasks)),
		zap.Int64("by", id.UserID))

	return target, nil
}

func (u *User) create(ctx context.Context, params internal.CreateUserParams) (internal.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), u.hashCost)
	if err != nil {
		return internal.User{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "bcrypt.GenerateFromPassword")
	}

	user, err := u.repo.Create(ctx, params.Username, string(hash), params.IsAdmin)
	if err != nil {
		return internal.User{}, fmt.Errorf("repo create: %w", err)
	}

	return user, nil
}

func (u *User) find(ctx context.Context, userID int64) (internal.User, error) {
	user, err := u.repo.Find(ctx, userID)
	if err != nil {
		if internal.CodeOf(err) == internal.ErrorCodeNotFound {
			return internal.User{}, internal.WrapErrorf(err, internal.ErrorCodeNotFound, "User not found.")
		}

		return internal.User{}, fmt.Errorf("repo find: %w", err)
	}

	return user, nil
}

// usernameAvailable fails when username belongs to a user other than except.
func (u *User) usernameAvailable(ctx context.Context, username string, except int64) error {
	user, err := u.repo.FindByUsername(ctx, username)

	switch {
	case err == nil:
		if user.ID != except {
			return internal.NewErrorf(internal.ErrorCodeAlreadyExists, "Username already exists.")
		}
	case internal.CodeOf(err) != internal.ErrorCodeNotFound:
		return fmt.Errorf("repo find by username: %w", err)
	}

	return nil
}

func (u *User) keepOneAdmin(ctx context.Context) error {
	stats, err := u.repo.Stats(ctx)
	if err != nil {
		return fmt.Errorf("repo stats: %w", err)
	}

	if stats.Admins <= 1 {
		return internal.NewErrorf(internal.ErrorCodeInvalidArgument, "At least one administrator is required.")
	}

	return nil
}
