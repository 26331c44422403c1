package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseDriver string

const (
	DriverSQLite   DatabaseDriver = "sqlite"   // Single-file database (default)
	DriverPostgres DatabaseDriver = "postgres" // External PostgreSQL server, configured via DSN
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Storage
		Audit
		Tasks
		Maintenance
		Locale
	}

	HTTP struct {
		Port       int32
		Host       string
		HSTSMaxAge int // Seconds; 0 disables Strict-Transport-Security
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver   DatabaseDriver
		Path     string // SQLite file path
		DSN      string // PostgreSQL connection string
		LogLevel string // silent, error, warn, info
	}
	Auth struct {
		JWTSecret        string // Random per process if empty
		Issuer           string
		TokenExpiry      time.Duration
		BcryptCost       int
		LoginMaxAttempts int           // Failed logins per IP+login before lockout
		LoginWindow      time.Duration // Window in which failures are counted
		LoginLockout     time.Duration
	}
	Storage struct {
		PublicDir     string // Served under /public, photos live in <PublicDir>/usuarios/fotos
		MaxPhotoBytes int64
	}
	Audit struct {
		RetentionDays int // Days to keep audit events (default: 30)
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration // Stuck tasks are released back to the queue after this
		CleanupInterval time.Duration // How often completed tasks are purged
	}
	Maintenance struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Locale struct {
		Default string // "es" or "en"
	}
)

// NewConfig reads configuration from the environment, loading a .env file first if one exists.
func NewConfig() *Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("hsts_max_age", 0)
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("database_driver", string(DriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_log_level", "warn")

	// Auth defaults
	v.SetDefault("auth_jwt_secret", "")
	v.SetDefault("auth_issuer", "bookshare")
	v.SetDefault("auth_token_expiry", "24h")
	v.SetDefault("auth_bcrypt_cost", 10)
	v.SetDefault("auth_login_max_attempts", 5)
	v.SetDefault("auth_login_window", "15m")
	v.SetDefault("auth_login_lockout", "30m")

	v.SetDefault("public_dir", DefaultPublicDir)
	v.SetDefault("max_photo_bytes", 5<<20) // 5 MiB

	v.SetDefault("audit_retention_days", 30)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("maintenance_enabled", true)
	v.SetDefault("maintenance_schedule", "0 3 * * *")

	v.SetDefault("default_locale", "es")

	return &Config{
		HTTP: HTTP{
			Port:       v.GetInt32("PORT"),
			Host:       v.GetString("HOST"),
			HSTSMaxAge: v.GetInt("HSTS_MAX_AGE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver:   DatabaseDriver(v.GetString("DATABASE_DRIVER")),
			Path:     v.GetString("DATABASE_PATH"),
			DSN:      v.GetString("DATABASE_DSN"),
			LogLevel: v.GetString("DATABASE_LOG_LEVEL"),
		},
		Auth: Auth{
			JWTSecret:        v.GetString("AUTH_JWT_SECRET"),
			Issuer:           v.GetString("AUTH_ISSUER"),
			TokenExpiry:      v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			LoginMaxAttempts: v.GetInt("AUTH_LOGIN_MAX_ATTEMPTS"),
			LoginWindow:      v.GetDuration("AUTH_LOGIN_WINDOW"),
			LoginLockout:     v.GetDuration("AUTH_LOGIN_LOCKOUT"),
		},
		Storage: Storage{
			PublicDir:     v.GetString("PUBLIC_DIR"),
			MaxPhotoBytes: v.GetInt64("MAX_PHOTO_BYTES"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Maintenance: Maintenance{
			Enabled:  v.GetBool("MAINTENANCE_ENABLED"),
			Schedule: v.GetString("MAINTENANCE_SCHEDULE"),
		},
		Locale: Locale{
			Default: v.GetString("DEFAULT_LOCALE"),
		},
	}
}
