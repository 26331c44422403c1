// Package http exposes the bookshare REST API over gin.
//
// Handlers report failures through fail(), which attaches an *apperror.Error
// to the context; ErrorMiddleware renders it as {code, message, details}
// with the message localized from Accept-Language.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshare/internal/apperror"
	"github.com/mrlokans/bookshare/internal/auth"
	"github.com/mrlokans/bookshare/internal/entities"
	"github.com/mrlokans/bookshare/internal/photos"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	loc := cfg.Localizer
	if loc == nil {
		loc = apperror.NewLocalizer("es")
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(RequestIDMiddleware())
	router.Use(ErrorMiddleware(loc))
	router.Use(gin.CustomRecovery(recoverPanic))

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.HSTSMaxAge > 0 {
		router.Use(auth.StrictTransportSecurityMiddleware(cfg.HSTSMaxAge))
	}

	requireAuth := cfg.AuthMiddleware.RequireAuth()

	checks := map[string]HealthChecker{"database": cfg.Database}
	if pinger, ok := cfg.Tasks.(HealthChecker); ok {
		checks["tasks"] = pinger
	}
	health := NewHealthController(checks, cfg.Version)
	usersController := NewUsersController(cfg.Users, cfg.Requests, cfg.AuthService, cfg.Photos, cfg.Audit, loc)
	booksController := NewBooksController(cfg.Books, cfg.Genres, cfg.Audit, loc)
	requestsController := NewRequestsController(cfg.Requests, cfg.Audit)
	adminController := NewAdminController(cfg.Tasks, cfg.Books, cfg.Audit)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", Ping)

	// Users. Static segments are registered next to :id; gin prefers them.
	userRoutes := router.Group("/users")
	userRoutes.GET("/all", usersController.ListUsers)
	userRoutes.POST("/register", usersController.Register)
	userRoutes.POST("/login", usersController.Login)
	userRoutes.GET("/:id", requireAuth, cfg.AuthMiddleware.RequireSelfOrAdmin("id"), usersController.GetUser)
	userRoutes.PUT("/:id", requireAuth, cfg.AuthMiddleware.RequireSelfOrAdmin("id"), usersController.UpdateUser)
	userRoutes.GET("/:id/sent-requests", usersController.SentRequests)
	userRoutes.GET("/:id/received-requests", usersController.ReceivedRequests)

	// Profile photos
	if cfg.Photos != nil {
		userRoutes.PUT("/photo", requireAuth, usersController.UploadPhoto)
		router.Static(photos.URLPrefix, cfg.Photos.PublicDir())
	}

	// Books
	bookRoutes := router.Group("/books")
	bookRoutes.GET("", booksController.ListBooks)
	bookRoutes.GET("/genres", booksController.ListGenres)
	bookRoutes.GET("/my-books", requireAuth, booksController.MyBooks)
	bookRoutes.POST("/publish", requireAuth, booksController.Publish)
	bookRoutes.GET("/:id", booksController.GetBook)
	bookRoutes.DELETE("/:id", requireAuth, booksController.DeleteBook)

	// Lending requests
	router.POST("/requests", requireAuth, requestsController.Create)

	// Admin
	adminRoutes := router.Group("/admin", requireAuth, cfg.AuthMiddleware.RequireRole(entities.UserRoleAdmin))
	adminRoutes.POST("/maintenance/orphans", adminController.CleanupOrphans)
	adminRoutes.GET("/tasks/:id", adminController.GetTaskStatus)
	adminRoutes.GET("/audit", adminController.ListAuditEvents)

	return router
}
