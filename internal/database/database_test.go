package database

import (
	"context"
	"path/filepath"
	"testing"

	"checkout-gateway/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "orders.db")

	db, err := Open(ctx, config.Database{Driver: config.DriverSQLite, Path: path})
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n))
	assert.Equal(t, 0, n)
	require.NoError(t, db.Close())

	// reopening an existing file leaves the schema in place
	db, err = Open(ctx, config.Database{Driver: config.DriverSQLite, Path: path})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(ctx, db, config.DriverSQLite))
}

func TestHealth(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, config.Database{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "orders.db")})
	require.NoError(t, err)

	svc := New(db, config.DriverSQLite)
	stats := svc.Health(ctx)
	assert.Equal(t, "up", stats["status"])
	assert.Equal(t, config.DriverSQLite, stats["driver"])

	require.NoError(t, svc.Close())
	stats = svc.Health(ctx)
	assert.Equal(t, "down", stats["status"])
	assert.Contains(t, stats["error"], "db down")
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "file:orders.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", sqliteDSN("orders.db"))
	assert.Equal(t, "file:x.db?mode=ro", sqliteDSN("file:x.db?mode=ro"))
	assert.Equal(t, ":memory:", sqliteDSN(":memory:"))
}
