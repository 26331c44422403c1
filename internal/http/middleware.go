package http

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mrlokans/bookshare/internal/apperror"
	"github.com/mrlokans/bookshare/internal/schemas"
)

const (
	RequestIDHeader     = "X-Request-ID"
	contextKeyRequestID = "request_id"
)

// RequestIDMiddleware tags each request with a UUID. A well-formed incoming
// X-Request-ID is kept; anything else is replaced.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if parsed, err := uuid.Parse(id); err == nil {
			id = parsed.String()
		} else {
			id = uuid.NewString()
		}
		c.Set(contextKeyRequestID, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the request ID set by RequestIDMiddleware.
func GetRequestID(c *gin.Context) string {
	return c.GetString(contextKeyRequestID)
}

// ErrorMiddleware renders the last error attached to the context as
// {code, message, details} when the handler has not written a body.
// Internal causes are logged and never sent to the client.
func ErrorMiddleware(loc *apperror.Localizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := apperror.As(c.Errors.Last().Err)
		if appErr.Kind == apperror.Internal {
			log.Printf("Internal error (%s %s, request %s): %v",
				c.Request.Method, c.Request.URL.Path, GetRequestID(c), appErr)
		}

		resp := ErrorResponse{
			Code:    string(appErr.Code),
			Message: loc.Message(appErr.Code, c.GetHeader("Accept-Language")),
		}
		if appErr.Kind == apperror.BadRequest {
			if details := schemas.FieldErrors(appErr.Err); len(details) > 0 {
				resp.Details = details
			}
		}
		c.JSON(appErr.Kind.Status(), resp)
	}
}

// recoverPanic converts a panic into an internal error for ErrorMiddleware.
func recoverPanic(c *gin.Context, recovered any) {
	fail(c, apperror.Wrap(fmt.Errorf("panic: %v", recovered), apperror.CodeInternal))
}
