// Package dbtest builds throwaway migrated databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/vaughan-dsouza/postsvc/internal/config"
	"github.com/vaughan-dsouza/postsvc/internal/db"
)

// NewSQLite returns a migrated SQLite database in the test's temp dir.
// A single connection serialises writers so concurrent tests never see
// SQLITE_BUSY.
func NewSQLite(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Connect(ctx, config.DatabaseConfig{
		Driver:  config.DriverSQLite,
		URL:     "file:" + filepath.Join(t.TempDir(), "posts.db"),
		MaxOpen: 1,
		MaxIdle: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(ctx, conn))
	return conn
}
