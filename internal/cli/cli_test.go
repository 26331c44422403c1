package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshare/internal/config"
	"github.com/mrlokans/bookshare/internal/database"
	"github.com/mrlokans/bookshare/internal/entities"
	"github.com/mrlokans/bookshare/internal/entrypoint"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	t.Setenv("DATABASE_LOG_LEVEL", "silent")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func openTestApp(t *testing.T, path string) *entrypoint.App {
	t.Helper()
	app, err := entrypoint.Open(&config.Config{
		Database: config.Database{Driver: config.DriverSQLite, Path: path, LogLevel: "silent"},
	})
	require.NoError(t, err)
	return app
}

func TestMigrateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookshare.db")

	out := execute(t, "migrate", "--db-driver", "sqlite", "--db-path", path)
	assert.Contains(t, out, "Database migrated (sqlite)")

	// A second run must not duplicate the genre catalogue.
	execute(t, "migrate", "--db-driver", "sqlite", "--db-path", path)

	app := openTestApp(t, path)
	defer app.Close()

	var genres int64
	require.NoError(t, app.Database.DB.Model(&entities.Genre{}).Count(&genres).Error)
	assert.Equal(t, int64(len(database.DefaultGenres)), genres)
}

func TestCleanupOrphansCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookshare.db")

	app := openTestApp(t, path)
	orphan := &entities.Book{Name: "Huérfano", OwnerID: 1, State: entities.BookStateAvailable}
	require.NoError(t, app.Database.DB.Create(orphan).Error)
	require.NoError(t, app.Close())

	out := execute(t, "cleanup-orphans", "--db-driver", "sqlite", "--db-path", path)
	assert.Contains(t, out, "Deleted 1 orphan books")

	out = execute(t, "cleanup-orphans", "--db-driver", "sqlite", "--db-path", path)
	assert.Contains(t, out, "Deleted 0 orphan books")
}

func TestApplyDatabaseFlags(t *testing.T) {
	dbDriver, dbPath, dbDSN = "", "", ""
	t.Cleanup(func() { dbDriver, dbPath, dbDSN = "", "", "" })

	cfg := &config.Config{Database: config.Database{Driver: config.DriverSQLite, Path: "./bookshare.db"}}
	applyDatabaseFlags(cfg)
	assert.Equal(t, config.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "./bookshare.db", cfg.Database.Path)

	dbDriver, dbDSN = "postgres", "postgres://localhost/bookshare"
	applyDatabaseFlags(cfg)
	assert.Equal(t, config.DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/bookshare", cfg.Database.DSN)
	assert.Equal(t, "./bookshare.db", cfg.Database.Path)
}
