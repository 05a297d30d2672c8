package sqlite

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/sanLimbu/todo-app/internal"
)

type userRow struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	IsAdmin      bool   `db:"is_admin"`
}

func (r userRow) user() internal.User {
	return internal.User(r)
}

const userColumns = `id, username, password_hash, is_admin`

// User represents the repository used for interacting with User records.
type User struct {
	db *sqlx.DB
}

// NewUser instantiates the User repository.
func NewUser(db *sqlx.DB) *User {
	return &User{
		db: db,
	}
}

// Create inserts a new user record.
func (u *User) Create(ctx context.Context, username, passwordHash string, isAdmin bool) (internal.User, error) {
	defer newOTELSpan(ctx, "User.Create").End()

	res, err := u.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, is_admin) VALUES (?, ?, ?)`,
		username, passwordHash, isAdmin)
	if err != nil {
		return internal.User{}, wrapError(err, "insert user")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return internal.User{}, wrapError(err, "insert user id")
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

	res, err := u.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return wrapError(err, "delete user")
	}

	return mustAffect(res, "delete user")
}

// Find returns the user matching id.
func (u *User) Find(ctx context.Context, id int64) (internal.User, error) {
	defer newOTELSpan(ctx, "User.Find").End()

	var row userRow

	if err := u.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = ?`, id); err != nil {
		return internal.User{}, wrapError(err, "select user")
	}

	return row.user(), nil
}

// FindByUsername returns the user matching username exactly.
func (u *User) FindByUsername(ctx context.Context, username string) (internal.User, error) {
	defer newOTELSpan(ctx, "User.FindByUsername").End()

	var row userRow

	if err := u.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE username = ?`, username); err != nil {
		return internal.User{}, wrapError(err, "select user by username")
	}

	return row.user(), nil
}

// All returns every user ordered by id.
func (u *User) All(ctx context.Context) ([]internal.User, error) {
	defer newOTELSpan(ctx, "User.All").End()

	var rows []userRow

	if err := u.db.SelectContext(ctx, &rows, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		return nil, wrapError(err, "select users")
	}

	res := make([]internal.User, len(rows))
	for i, row := range rows {
		res[i] = row.user()
	}

	return res, nil
}

// Update changes the username and admin flag.
func (u *User) Update(ctx context.Context, id int64, params internal.UpdateUserParams) error {
	defer newOTELSpan(ctx, "User.Update").End()

	res, err := u.db.ExecContext(ctx,
		`UPDATE users SET username = ?, is_admin = ? WHERE id = ?`,
		params.Username, params.IsAdmin, id)
	if err != nil {
		return wrapError(err, "update user")
	}

	return mustAffect(res, "update user")
}

// Stats counts users, administrators and tasks.
func (u *User) Stats(ctx context.Context) (internal.Dashboard, error) {
	defer newOTELSpan(ctx, "User.Stats").End()

	var res struct {
		Users  int `db:"users"`
		Admins int `db:"admins"`
		Tasks  int `db:"tasks"`
	}

	if err := u.db.GetContext(ctx, &res, `
		SELECT
			(SELECT COUNT(*) FROM users)                 AS users,
			(SELECT COUNT(*) FROM users WHERE is_admin)  AS admins,
			(SELECT COUNT(*) FROM tasks)                 AS tasks`); err != nil {
		return internal.Dashboard{}, wrapError(err, "select stats")
	}

	return internal.Dashboard(res), nil
}
