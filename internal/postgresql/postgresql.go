// Package postgresql implements the record store on top of PostgreSQL.
package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/postgresql/db"
)

//go:generate sqlc generate -f ../../sqlc.yaml

const otelName = "github.com/sanLimbu/todo-app/internal/postgresql"

const uniqueViolation = "23505"

func convertPriority(p db.Priority) internal.Priority {
	switch p {
	case db.PriorityHigh:
		return internal.PriorityHigh
	case db.PriorityLow:
		return internal.PriorityLow
	}

	return internal.PriorityMedium
}

func newPriority(p internal.Priority) db.Priority {
	switch p {
	case internal.PriorityHigh:
		return db.PriorityHigh
	case internal.PriorityLow:
		return db.PriorityLow
	}

	return db.PriorityMedium
}

// newTags never returns nil, the column does not accept NULL.
func newTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}

	return tags
}

func wrapError(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return internal.WrapErrorf(err, internal.ErrorCodeNotFound, "%s", op)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return internal.WrapErrorf(err, internal.ErrorCodeAlreadyExists, "%s", op)
	}

	return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "%s", op)
}

func mustAffect(n int64, op string) error {
	if n == 0 {
		return internal.NewErrorf(internal.ErrorCodeNotFound, "%s: not found", op)
	}

	return nil
}

func newOTELSpan(ctx context.Context, name string) trace.Span {
	_, span := otel.Tracer(otelName).Start(ctx, name)

	span.SetAttributes(semconv.DBSystemPostgreSQL)

	return span
}
