package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/vaughan-dsouza/postsvc/internal/config"

	// Register the modernc SQLite driver with database/sql.
	_ "modernc.org/sqlite"
)

// ErrConnectivity reports that the database could not be reached.
var ErrConnectivity = errors.New("database unreachable")

func Connect(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := open(cfg)
	if err != nil {
		return nil, err
	}

	// ---- Connection Pool Settings ----
	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(cfg.MaxLifetime)

	if err := Ping(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pgCfg, err := pgx.ParseConfig(cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("db: failed to parse DSN: %w", err)
		}
		// Fail fast on startup if PG is unreachable
		pgCfg.ConnectTimeout = 5 * time.Second
		return sqlx.NewDb(stdlib.OpenDB(*pgCfg), "pgx"), nil
	case config.DriverSQLite:
		sqlDB, err := sql.Open("sqlite", cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("db: failed to open sqlite: %w", err)
		}
		return sqlx.NewDb(sqlDB, "sqlite"), nil
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", cfg.Driver)
	}
}

// Ping checks connectivity with a round trip query. Failures wrap
// ErrConnectivity.
func Ping(ctx context.Context, db *sqlx.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %w", ErrConnectivity, err)
	}
	var tmp int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&tmp); err != nil {
		return fmt.Errorf("%w: health check: %w", ErrConnectivity, err)
	}
	return nil
}
