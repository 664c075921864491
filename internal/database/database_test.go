package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-catalog-service/config"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
)

func TestConnectAndMigrateSQLite(t *testing.T) {
	log := logger.NewNop()
	db, err := Connect(config.DatabaseConfig{Driver: DriverSQLite, SQLitePath: ":memory:"}, log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(db, log))
	// A second run is a no-op.
	require.NoError(t, Migrate(db, log))

	version, err := Version(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	var count int
	require.NoError(t, db.Get(&count, "SELECT count(*) FROM categories"))
	assert.Zero(t, count)
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect(config.DatabaseConfig{Driver: "oracle"}, logger.NewNop())
	assert.ErrorContains(t, err, "unsupported driver")
}

func TestDialect(t *testing.T) {
	d, err := Dialect(DriverPostgres)
	require.NoError(t, err)
	assert.Equal(t, "postgres", d)

	d, err = Dialect(DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", d)

	_, err = Dialect("mysql")
	assert.Error(t, err)
}
