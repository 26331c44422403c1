package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshare/internal/config"
	"github.com/mrlokans/bookshare/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(config.Database{
		Driver:   config.DriverSQLite,
		Path:     filepath.Join(t.TempDir(), "test.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDatabase_SeedsGenres(t *testing.T) {
	db := setupTestDB(t)

	var count int64
	require.NoError(t, db.DB.Model(&entities.Genre{}).Count(&count).Error)
	assert.Equal(t, int64(len(DefaultGenres)), count)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Migrate())
	require.NoError(t, db.Migrate())

	var count int64
	require.NoError(t, db.DB.Model(&entities.Genre{}).Count(&count).Error)
	assert.Equal(t, int64(len(DefaultGenres)), count)
}

func TestNewDatabase_CreatesTables(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{"users", "books", "genres", "books_genres", "publications", "requests", "audit_events"} {
		assert.True(t, db.DB.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestNewDatabase_DriverErrors(t *testing.T) {
	t.Run("postgres without dsn", func(t *testing.T) {
		_, err := NewDatabase(config.Database{Driver: config.DriverPostgres})
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := NewDatabase(config.Database{Driver: "oracle"})
		assert.ErrorContains(t, err, "unsupported database driver")
	})
}

func TestPing(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.Ping(context.Background()))

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "./a.db?_journal=WAL&_busy_timeout=5000&_txlock=immediate", sqliteDSN("./a.db"))
	assert.Equal(t, ":memory:", sqliteDSN(":memory:"))
	assert.Equal(t, "file:x.db?mode=ro", sqliteDSN("file:x.db?mode=ro"))
}
