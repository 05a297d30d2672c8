// Package sqlitetesting provides throwaway in-memory databases for tests.
package sqlitetesting

import (
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/sanLimbu/todo-app/internal/sqlite"
)

// New returns a migrated in-memory database closed when the test ends.
func New(tb testing.TB) *sqlx.DB {
	tb.Helper()

	db, err := sqlite.Open(":memory:")
	if err != nil {
		tb.Fatalf("Couldn't open database: %s", err)
	}

	tb.Cleanup(func() {
		_ = db.Close()
	})

	return db
}
