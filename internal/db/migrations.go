package db

import (
	"context"
	"embed"
	"fmt"
	"io"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// goose keeps its dialect and base FS in package state.
var gooseMu sync.Mutex

// Migrate applies every pending up migration for the connection's driver.
// Migrations only ever add to the schema; down steps are never run.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	return withGoose(db, func(dir string) error {
		if err := goose.UpContext(ctx, db.DB, dir); err != nil {
			return fmt.Errorf("db: migrate up: %w", err)
		}
		return nil
	})
}

// MigrationStatus writes the applied/pending state of each migration to w.
func MigrationStatus(ctx context.Context, db *sqlx.DB, w io.Writer) error {
	return withGoose(db, func(dir string) error {
		migrations, err := goose.CollectMigrations(dir, 0, goose.MaxVersion)
		if err != nil {
			return fmt.Errorf("db: collect migrations: %w", err)
		}
		current, err := goose.GetDBVersionContext(ctx, db.DB)
		if err != nil {
			return fmt.Errorf("db: read version: %w", err)
		}
		for _, m := range migrations {
			state := "pending"
			if m.Version <= current {
				state = "applied"
			}
			fmt.Fprintf(w, "%-8s %s\n", state, m.Source)
		}
		return nil
	})
}

func withGoose(db *sqlx.DB, fn func(dir string) error) error {
	dialect, dir, err := migrationSource(db.DriverName())
	if err != nil {
		return err
	}
	gooseMu.Lock()
	defer func() {
		goose.SetBaseFS(nil)
		gooseMu.Unlock()
	}()
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("db: set goose dialect: %w", err)
	}
	return fn(dir)
}

func migrationSource(driver string) (dialect, dir string, err error) {
	switch driver {
	case "pgx":
		return "postgres", "migrations/postgres", nil
	case "sqlite":
		return "sqlite3", "migrations/sqlite", nil
	default:
		return "", "", fmt.Errorf("db: no migrations for driver %q", driver)
	}
}
