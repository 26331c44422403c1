package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookshare/internal/apperror"
	"github.com/mrlokans/bookshare/internal/auth"
	"github.com/mrlokans/bookshare/internal/entities"
	"github.com/mrlokans/bookshare/internal/tasks"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

// AdminController exposes maintenance, task status and the audit trail.
type AdminController struct {
	tasks TaskQueue
	books BookStore
	audit AuditLogger
}

func NewAdminController(taskQueue TaskQueue, bookStore BookStore, auditLogger AuditLogger) *AdminController {
	return &AdminController{tasks: taskQueue, books: bookStore, audit: auditLogger}
}

// CleanupOrphans handles POST /admin/maintenance/orphans. With a task queue
// the repair is enqueued (202); without one it runs inline (200).
func (ac *AdminController) CleanupOrphans(c *gin.Context) {
	ctx := c.Request.Context()

	if ac.tasks == nil {
		deleted, err := ac.books.DeleteOrphans(ctx)
		if err != nil {
			failInternal(c, err, apperror.CodeInternal)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": deleted})
		return
	}

	id, err := ac.tasks.Enqueue(ctx, tasks.CleanupOrphanBooksTask{RequestedBy: auth.GetUserID(c)})
	if err != nil {
		failInternal(c, err, apperror.CodeInternal)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"task_id": id,
		"type":    tasks.QueueCleanupOrphanBooks,
	})
}

// GetTaskStatus handles GET /admin/tasks/:id.
func (ac *AdminController) GetTaskStatus(c *gin.Context) {
	if ac.tasks == nil {
		fail(c, apperror.NewNotFound(apperror.CodeTasksDisabled))
		return
	}

	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := ac.tasks.Status(ctx, taskID)
	if err != nil {
		failInternal(c, err, apperror.CodeInternal)
		return
	}
	if status == backlite.TaskStatusNotFound {
		fail(c, apperror.NewNotFound(apperror.CodeTaskNotFound))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": tasks.StatusString(status),
	})
}

// ListAuditEvents handles GET /admin/audit?user_id=&type=&limit=&offset=.
func (ac *AdminController) ListAuditEvents(c *gin.Context) {
	var userID uint
	if raw := c.Query("user_id"); raw != "" {
		id, ok := parseID(c, raw)
		if !ok {
			return
		}
		userID = id
	}

	limit := queryInt(c, "limit", defaultAuditLimit)
	if limit <= 0 || limit > maxAuditLimit {
		limit = defaultAuditLimit
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	events, total, err := ac.audit.GetEvents(c.Request.Context(), userID, entities.AuditEventType(c.Query("type")), limit, offset)
	if err != nil {
		failInternal(c, err, apperror.CodeInternal)
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    events,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(events)) < total,
	})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return v
}
