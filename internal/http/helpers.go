package http

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshare/internal/apperror"
	"github.com/mrlokans/bookshare/internal/audit"
	"github.com/mrlokans/bookshare/internal/schemas"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Code    string `json:"code"`              // machine-readable error code
	Message string `json:"message"`           // localized, safe to show
	Details any    `json:"details,omitempty"` // validation errors
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data    any   `json:"data"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"has_more"`
}

// --- Error Response Helpers ---

// fail records err on the context and aborts. ErrorMiddleware renders it.
// The status is set without flushing headers; AbortWithError would write
// them and leave the body empty.
func fail(c *gin.Context, err error) {
	appErr := apperror.As(err)
	c.Status(appErr.Kind.Status())
	c.Abort()
	_ = c.Error(appErr)
}

// failInternal wraps an unexpected error with a route-specific code.
func failInternal(c *gin.Context, err error, code apperror.Code) {
	fail(c, apperror.Wrap(err, code))
}

// --- Parameter Parsing ---

// parseIDParam extracts a positive integer ID from URL parameters.
// On failure it aborts with 400 and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	return parseID(c, c.Param(paramName))
}

// parseQueryID is parseIDParam for query parameters and form fields.
func parseQueryID(c *gin.Context, paramName string) (uint, bool) {
	value := c.Query(paramName)
	if value == "" {
		value = c.PostForm(paramName)
	}
	return parseID(c, value)
}

func parseID(c *gin.Context, value string) (uint, bool) {
	id, err := strconv.ParseUint(value, 10, 32)
	if err != nil || id == 0 {
		fail(c, apperror.NewBadRequest(apperror.CodeInvalidID, err))
		return 0, false
	}
	return uint(id), true
}

// validatable is implemented by payloads with checks beyond the binding tags.
type validatable interface {
	Validate() error
}

// bindJSON decodes and validates the body into obj. Missing or blank required
// fields are reported as missing_fields, other rule failures as validation_failed.
func bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		v, ok := obj.(validatable)
		if !ok {
			return true
		}
		if err = v.Validate(); err == nil {
			return true
		}
	}
	switch {
	case schemas.IsMissingField(err), errors.Is(err, io.EOF), errors.Is(err, schemas.ErrEmptyField):
		fail(c, apperror.NewBadRequest(apperror.CodeMissingFields, err))
	default:
		fail(c, apperror.NewBadRequest(apperror.CodeValidationFailed, err))
	}
	return false
}

// message renders a localized success message.
func message(c *gin.Context, loc *apperror.Localizer, code apperror.Code) schemas.Message {
	return schemas.Message{Message: loc.Message(code, c.GetHeader("Accept-Language"))}
}

func auditMeta(c *gin.Context) audit.Meta {
	return audit.Meta{
		IPAddress: c.ClientIP(),
		RequestID: GetRequestID(c),
	}
}
