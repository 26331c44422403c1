package http

import (
	"github.com/mrlokans/bookshare/internal/apperror"
	"github.com/mrlokans/bookshare/internal/auth"
)

// RouterConfig contains all dependencies needed to create the HTTP router.
type RouterConfig struct {
	// Stores
	Users    UserStore
	Books    BookStore
	Genres   GenreStore
	Requests RequestStore

	// Authentication
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware

	// Required. Use audit.NewService with the audit repository.
	Audit AuditLogger

	// Profile photos; the upload route and /public are disabled when nil
	Photos PhotoStore

	// Background tasks; admin maintenance runs inline when nil
	Tasks TaskQueue

	// Health checks
	Database HealthChecker
	Version  string

	// Error message catalog; defaults to Spanish when nil
	Localizer *apperror.Localizer

	// Strict-Transport-Security max-age in seconds; 0 disables the header
	HSTSMaxAge int
}
