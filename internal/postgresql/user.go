package postgresql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/postgresql/db"
)

// User represents the repository used for interacting with User records.
type User struct {
	q *db.Queries
}

// NewUser instantiates the User repository.
func NewUser(pool *pgxpool.Pool) *User {
	return &User{
		q: db.New(pool),
	}
}

// Create inserts a new user record.
func (u *User) Create(ctx context.Context, username, passwordHash string, isAdmin bool) (internal.User, error) {
	defer newOTELSpan(ctx, "User.Create").End()

	id, err := u.q.InsertUser(ctx, db.InsertUserParams{
		Username:     username,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
	})
	if err != nil {
		return internal.User{}, wrapError(err, "insert user")
	}

	return internal.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
	}, nil
}

// Delete deletes the user, their tasks are removed by the foreign key.
func (u *User) Delete(ctx context.Context, id int64) error {
	defer newOTELSpan(ctx, "User.Delete").End()

	n, err := u.q.DeleteUser(ctx, id)
	if err != nil {
		return wrapError(err, "delete user")
	}

	return mustAffect(n, "delete user")
}

// Find returns the user matching id.
func (u *User) Find(ctx context.Context, id int64) (internal.User, error) {
	defer newOTELSpan(ctx, "User.Find").End()

	res, err := u.q.SelectUser(ctx, id)
	if err != nil {
		return internal.User{}, wrapError(err, "select user")
	}

	return internal.User(res), nil
}

// FindByUsername returns the user matching username exactly.
func (u *User) FindByUsername(ctx context.Context, username string) (internal.User, error) {
	defer newOTELSpan(ctx, "User.FindByUsername").End()

	res, err := u.q.SelectUserByUsername(ctx, username)
	if err != nil {
		return internal.User{}, wrapError(err, "select user by username")
	}

	return internal.User(res), nil
}

// All returns every user ordered by id.
func (u *User) All(ctx context.Context) ([]internal.User, error) {
	defer newOTELSpan(ctx, "User.All").End()

	rows, err := u.q.SelectUsers(ctx)
	if err != nil {
		return nil, wrapError(err, "select users")
	}

	res := make([]internal.User, len(rows))
	for i, row := range rows {
		res[i] = internal.User(row)
	}

	return res, nil
}

// Update changes the username and admin flag.
func (u *User) Update(ctx context.Context, id int64, params internal.UpdateUserParams) error {
	defer newOTELSpan(ctx, "User.Update").End()

	n, err := u.q.UpdateUser(ctx, db.UpdateUserParams{
		ID:       id,
		Username: params.Username,
		IsAdmin:  params.IsAdmin,
	})
	if err != nil {
		return wrapError(err, "update user")
	}

	return mustAffect(n, "update user")
}

// Stats counts users, administrators and tasks.
func (u *User) Stats(ctx context.Context) (internal.Dashboard, error) {
	defer newOTELSpan(ctx, "User.Stats").End()

	res, err := u.q.SelectStats(ctx)
	if err != nil {
		return internal.Dashboard{}, wrapError(err, "select stats")
	}

	return internal.Dashboard{
		Users:  int(res.Users),
		Admins: int(res.Admins),
		Tasks:  int(res.Tasks),
	}, nil
}
