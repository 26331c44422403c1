package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshare/internal/apperror"
	"github.com/mrlokans/bookshare/internal/auth"
	"github.com/mrlokans/bookshare/internal/database/requests"
	"github.com/mrlokans/bookshare/internal/schemas"
)

// RequestsController opens lending requests.
type RequestsController struct {
	requests RequestStore
	audit    AuditLogger
}

func NewRequestsController(requestStore RequestStore, auditLogger AuditLogger) *RequestsController {
	return &RequestsController{requests: requestStore, audit: auditLogger}
}

// Create handles POST /requests. The receiver is the book's owner.
func (rc *RequestsController) Create(c *gin.Context) {
	var req schemas.RequestCreate
	if !bindJSON(c, &req) {
		return
	}

	userID := auth.GetUserID(c)
	created, err := rc.requests.Create(c.Request.Context(), userID, req.BookID)

	var requestID uint
	if created != nil {
		requestID = created.ID
	}
	rc.audit.LogRequest(auditMeta(c), userID, requestID, req.BookID, err)

	switch {
	case errors.Is(err, requests.ErrBookNotFound):
		fail(c, apperror.NewNotFound(apperror.CodeBookNotFound))
		return
	case errors.Is(err, requests.ErrOwnBook):
		fail(c, apperror.NewBadRequest(apperror.CodeRequestOwnBook, nil))
		return
	case errors.Is(err, requests.ErrDuplicateRequest):
		fail(c, apperror.NewConflict(apperror.CodeRequestDuplicate))
		return
	case err != nil:
		failInternal(c, err, apperror.CodeRequestCreateFailed)
		return
	}

	c.JSON(http.StatusCreated, created)
}
