package http

import (
	"context"
	"io"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookshare/internal/audit"
	"github.com/mrlokans/bookshare/internal/database/books"
	"github.com/mrlokans/bookshare/internal/database/genres"
	"github.com/mrlokans/bookshare/internal/database/requests"
	"github.com/mrlokans/bookshare/internal/database/users"
	"github.com/mrlokans/bookshare/internal/entities"
	"github.com/mrlokans/bookshare/internal/photos"
	"github.com/mrlokans/bookshare/internal/tasks"
)

// This file consolidates the store interfaces used by HTTP controllers.
// Each is satisfied by the matching repository in internal/database.

// UserStore provides user reads and partial updates.
type UserStore interface {
	GetByID(ctx context.Context, id uint) (*entities.User, error)
	List(ctx context.Context) ([]entities.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string, excludeID uint) (bool, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
}

// BookStore provides book listing, publishing and deletion.
type BookStore interface {
	List(ctx context.Context) ([]entities.Book, error)
	GetByID(ctx context.Context, id uint) (*entities.Book, error)
	ListPublishedBy(ctx context.Context, userID uint) ([]entities.Book, error)
	Publish(ctx context.Context, params books.PublishParams) (*entities.Book, error)
	DeleteOwned(ctx context.Context, bookID, userID uint) error
	DeleteOrphans(ctx context.Context) (int64, error)
}

// GenreStore lists the static genre catalogue.
type GenreStore interface {
	List(ctx context.Context) ([]entities.Genre, error)
}

// RequestStore reads and opens lending requests.
type RequestStore interface {
	ListSent(ctx context.Context, userID uint) ([]entities.Request, error)
	ListReceived(ctx context.Context, userID uint) ([]entities.Request, error)
	Create(ctx context.Context, requesterID, bookID uint) (*entities.Request, error)
}

// PhotoStore persists profile photos under the public directory.
type PhotoStore interface {
	Save(userID uint, r io.Reader) (int64, error)
	URL(userID uint) string
	PublicDir() string
}

// AuditLogger records security-relevant actions.
type AuditLogger interface {
	LogRegister(meta audit.Meta, userID uint, username string, err error)
	LogLogin(meta audit.Meta, userID uint, login string, err error)
	LogUpdate(meta audit.Meta, actorID, targetID uint, columns []string, err error)
	LogPublish(meta audit.Meta, userID, bookID uint, name string, genreIDs []uint, err error)
	LogDelete(meta audit.Meta, userID, bookID uint, err error)
	LogUpload(meta audit.Meta, actorID, targetID uint, size int64, err error)
	LogRequest(meta audit.Meta, userID, requestID, bookID uint, err error)
	GetEvents(ctx context.Context, userID uint, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// HealthChecker verifies that a backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

var (
	_ UserStore     = (*users.Repository)(nil)
	_ BookStore     = (*books.Repository)(nil)
	_ GenreStore    = (*genres.Repository)(nil)
	_ RequestStore  = (*requests.Repository)(nil)
	_ PhotoStore    = (*photos.Store)(nil)
	_ AuditLogger   = (*audit.Service)(nil)
	_ TaskQueue     = (*tasks.Client)(nil)
	_ HealthChecker = (*tasks.Client)(nil)
)
