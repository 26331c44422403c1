package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshare/internal/apperror"
	"github.com/mrlokans/bookshare/internal/audit"
	"github.com/mrlokans/bookshare/internal/auth"
	"github.com/mrlokans/bookshare/internal/config"
	"github.com/mrlokans/bookshare/internal/database"
	auditrepo "github.com/mrlokans/bookshare/internal/database/audit"
	"github.com/mrlokans/bookshare/internal/database/books"
	"github.com/mrlokans/bookshare/internal/database/genres"
	"github.com/mrlokans/bookshare/internal/database/requests"
	"github.com/mrlokans/bookshare/internal/database/users"
	http_controllers "github.com/mrlokans/bookshare/internal/http"
	"github.com/mrlokans/bookshare/internal/photos"
	"github.com/mrlokans/bookshare/internal/scheduler"
	"github.com/mrlokans/bookshare/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill -9 cannot be caught, so only SIGINT and SIGTERM are handled.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop accepting requests before the background workers go away.
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

// App holds the long-lived components shared by the server and the CLI commands.
type App struct {
	Config   *config.Config
	Database *database.Database
	Users    *users.Repository
	Books    *books.Repository
	Genres   *genres.Repository
	Requests *requests.Repository
	Audit    *audit.Service
}

// Open connects to the database and builds the repositories. The caller must Close the app.
func Open(cfg *config.Config) (*App, error) {
	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &App{
		Config:   cfg,
		Database: db,
		Users:    users.NewRepository(db.DB),
		Books:    books.NewRepository(db.DB),
		Genres:   genres.NewRepository(db.DB),
		Requests: requests.NewRepository(db.DB),
		Audit:    audit.NewService(auditrepo.NewRepository(db.DB)),
	}, nil
}

// Close flushes pending audit writes and closes the database.
func (a *App) Close() error {
	a.Audit.Wait()
	return a.Database.Close()
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookshare v%s", version)

	app, err := Open(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	if cfg.Auth.JWTSecret == "" {
		secret, err := auth.GenerateSecret()
		if err != nil {
			log.Fatalf("Failed to generate JWT secret: %v", err)
		}
		cfg.Auth.JWTSecret = secret
		log.Printf("WARNING: AUTH_JWT_SECRET is not set. Generated a random secret, tokens will not survive a restart.")
	}

	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenExpiry)
	if err != nil {
		log.Fatalf("Failed to initialize token issuer: %v", err)
	}
	limiter := auth.NewLoginLimiter(cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow, cfg.Auth.LoginLockout)
	authService := auth.NewService(app.Users, tokens, limiter, cfg.Auth)

	photoStore, err := photos.NewStore(cfg.Storage.PublicDir, cfg.Storage.MaxPhotoBytes)
	if err != nil {
		log.Fatalf("Failed to initialize photo storage: %v", err)
	}
	log.Printf("Serving public files from %s", photoStore.PublicDir())

	routerCfg := http_controllers.RouterConfig{
		Users:          app.Users,
		Books:          app.Books,
		Genres:         app.Genres,
		Requests:       app.Requests,
		AuthService:    authService,
		AuthMiddleware: auth.NewMiddleware(tokens),
		Audit:          app.Audit,
		Photos:         photoStore,
		Database:       app.Database,
		Version:        version,
		Localizer:      apperror.NewLocalizer(cfg.Locale.Default),
		HSTSMaxAge:     cfg.HTTP.HSTSMaxAge,
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(tasksDBPath(cfg.Database), tasks.FromAppConfig(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewCleanupOrphanBooksQueue(app.Books),
			tasks.NewCleanupAuditEventsQueue(app.Audit),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		taskClient.Start(taskCtx)
		routerCfg.Tasks = taskClient
	}

	var maintenance *scheduler.MaintenanceScheduler
	var schedCancel context.CancelFunc = func() {}
	if cfg.Maintenance.Enabled {
		var enqueuer scheduler.Enqueuer
		if taskClient != nil {
			enqueuer = taskClient
		} else {
			log.Printf("Maintenance scheduler: task queue disabled, only pruning login attempts")
		}
		maintenance = scheduler.NewMaintenanceScheduler(enqueuer, limiter, cfg.Maintenance.Schedule, cfg.Audit.RetentionDays)

		var schedCtx context.Context
		schedCtx, schedCancel = context.WithCancel(context.Background())
		if err := maintenance.Start(schedCtx); err != nil {
			log.Fatalf("Failed to start maintenance scheduler: %v", err)
		}
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		schedCancel()
		if maintenance != nil {
			maintenance.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

// tasksDBPath places the task queue next to the SQLite database, or next to the
// default path when the main store is PostgreSQL.
func tasksDBPath(cfg config.Database) string {
	if cfg.Driver == config.DriverPostgres || cfg.Path == "" {
		return tasks.DBPath(config.DefaultDatabasePath)
	}
	return tasks.DBPath(cfg.Path)
}
