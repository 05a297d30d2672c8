//go:build tools

// Package tools pins the versions of the command line tools used for development:
// golangci-lint for linting, sqlc for generating internal/postgresql/db and tern for
// applying db/migrations.
package tools

import (
	_ "github.com/golangci/golangci-lint/cmd/golangci-lint"
	_ "github.com/jackc/tern/v2"
	_ "github.com/sqlc-dev/sqlc/cmd/sqlc"
)
