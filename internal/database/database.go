package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshare/internal/config"
	"github.com/mrlokans/bookshare/internal/database/genres"
	"github.com/mrlokans/bookshare/internal/entities"
)

// DefaultGenres is the static genre catalogue offered when publishing a book.
var DefaultGenres = []string{
	"Aventura",
	"Biografía",
	"Ciencia ficción",
	"Clásicos",
	"Cómic",
	"Ensayo",
	"Fantasía",
	"Historia",
	"Infantil",
	"Juvenil",
	"Misterio",
	"Novela",
	"Poesía",
	"Romance",
	"Terror",
	"Thriller",
}

type Database struct {
	DB *gorm.DB
}

func NewDatabase(cfg config.Database) (*Database, error) {
	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(parseLogLevel(cfg.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database := &Database{DB: db}

	if err := database.Migrate(); err != nil {
		return nil, err
	}

	log.Printf("Database initialized successfully (%s)", cfg.Driver)

	return database, nil
}

// Migrate creates or updates all tables and seeds the genre catalogue.
func (d *Database) Migrate() error {
	err := d.DB.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.Genre{},
		&entities.BookGenre{},
		&entities.Publication{},
		&entities.Request{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := d.seedGenres(); err != nil {
		return fmt.Errorf("failed to seed genres: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) seedGenres() error {
	created, err := genres.NewRepository(d.DB).Seed(context.Background(), DefaultGenres)
	if err != nil {
		return err
	}
	if created > 0 {
		log.Printf("Seeded %d genres", created)
	}
	return nil
}

func openDialector(cfg config.Database) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		return sqlite.Open(sqliteDSN(cfg.Path)), nil
	case config.DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres driver requires DATABASE_DSN")
		}
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// sqliteDSN enables WAL, a busy timeout and immediate write locks so concurrent
// transactions wait instead of failing with "database is locked". Paths that
// already carry options are kept.
func sqliteDSN(path string) string {
	if path == ":memory:" || strings.Contains(path, "?") {
		return path
	}
	return path + "?_journal=WAL&_busy_timeout=5000&_txlock=immediate"
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
