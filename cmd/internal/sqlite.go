package internal

import (
	"github.com/jmoiron/sqlx"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/sqlite"
)

// NewSQLite opens the SQLite database file, creating and migrating it when needed.
func NewSQLite(settings Settings) (*sqlx.DB, error) {
	db, err := sqlite.Open(settings.SQLitePath)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "sqlite.Open")
	}

	return db, nil
}
