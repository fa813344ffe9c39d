package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"path"

	"github.com/pressly/goose/v3"
)

const DefaultDir = "pkg/migrate/migrations"

// DirFor returns the migration set for the given driver. Postgres and sqlite
// keep separate SQL because serial keys and timestamp defaults do not share
// a portable DDL form.
func DirFor(driver string) string {
	if normalizeDialect(driver) == "sqlite3" {
		return path.Join(DefaultDir, "sqlite")
	}
	return path.Join(DefaultDir, "postgres")
}

// Run executes a standard goose command that requires a DB connection.
func Run(ctx context.Context, db *sql.DB, dir, dialect, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	if err := goose.SetDialect(normalizeDialect(dialect)); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

func normalizeDialect(dialect string) string {
	switch dialect {
	case "sqlite", "sqlite3":
		return "sqlite3"
	default:
		return "postgres"
	}
}
