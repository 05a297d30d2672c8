// Package sqlite implements the record store on top of an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sanLimbu/todo-app/internal"
)

const otelName = "github.com/sanLimbu/todo-app/internal/sqlite"

// Open opens (or creates) the database at path, enables foreign keys and applies pending
// migrations. Use ":memory:" for a throwaway database.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "sqlx.Open")
	}

	// PRAGMAs are per connection and an in-memory database only lives as long as its
	// connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "enabling foreign keys")
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func migrate(db *sqlx.DB) error {
	current := 0

	var tables int
	if err := db.Get(&tables, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'"); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "checking schema_version table")
	}

	if tables > 0 {
		if err := db.Get(&current, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
			return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "reading schema version")
		}
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		if _, err := db.Exec(m.sql); err != nil {
			return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "applying migration v%d", m.version)
		}
	}

	return nil
}

func wrapError(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return internal.WrapErrorf(err, internal.ErrorCodeNotFound, "%s", op)
	}

	var serr *msqlite.Error
	if errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return internal.WrapErrorf(err, internal.ErrorCodeAlreadyExists, "%s", op)
	}

	return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "%s", op)
}

// mustAffect fails with not found when the statement did not match any row.
func mustAffect(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "%s", op)
	}

	if n == 0 {
		return internal.NewErrorf(internal.ErrorCodeNotFound, "%s: not found", op)
	}

	return nil
}

func newOTELSpan(ctx context.Context, name string) trace.Span {
	_, span := otel.Tracer(otelName).Start(ctx, name)

	span.SetAttributes(semconv.DBSystemSqlite)

	return span
}
