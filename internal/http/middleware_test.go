package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshare/internal/apperror"
	"github.com/mrlokans/bookshare/internal/schemas"
)

func newMiddlewareRouter(handler gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.Use(ErrorMiddleware(apperror.NewLocalizer("es")))
	router.Use(gin.CustomRecovery(recoverPanic))
	router.GET("/", handler)
	return router
}

func serveRoot(router *gin.Engine, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range header {
		req.Header.Set(k, v[0])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	router := newMiddlewareRouter(func(c *gin.Context) {
		seen = GetRequestID(c)
		c.Status(http.StatusNoContent)
	})

	t.Run("generates an id", func(t *testing.T) {
		w := serveRoot(router, nil)
		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})

	t.Run("keeps a valid incoming id", func(t *testing.T) {
		id := uuid.NewString()
		w := serveRoot(router, http.Header{RequestIDHeader: {id}})
		assert.Equal(t, id, seen)
		assert.Equal(t, id, w.Header().Get(RequestIDHeader))
	})

	t.Run("replaces a malformed id", func(t *testing.T) {
		serveRoot(router, http.Header{RequestIDHeader: {"<script>"}})
		assert.NotEqual(t, "<script>", seen)
		_, err := uuid.Parse(seen)
		assert.NoError(t, err)
	})
}

func TestErrorMiddleware(t *testing.T) {
	t.Run("renders kind status with code and message", func(t *testing.T) {
		router := newMiddlewareRouter(func(c *gin.Context) {
			fail(c, apperror.NewNotFound(apperror.CodeBookNotFound))
		})

		w := serveRoot(router, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
		assert.JSONEq(t, `{"code":"book_not_found","message":"Libro no encontrado"}`, w.Body.String())
	})

	t.Run("hides internal causes", func(t *testing.T) {
		router := newMiddlewareRouter(func(c *gin.Context) {
			fail(c, errors.New("pq: relation \"books\" does not exist"))
		})

		w := serveRoot(router, http.Header{"Accept-Language": {"en"}})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "relation")
		assert.JSONEq(t, `{"code":"internal_error","message":"Internal server error"}`, w.Body.String())
	})

	t.Run("includes validation details", func(t *testing.T) {
		router := newMiddlewareRouter(func(c *gin.Context) {
			var req schemas.UserCreate
			bindJSON(c, &req)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Body = http.NoBody
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "missing_fields", decodeError(t, w).Code)
	})

	t.Run("recovers panics as internal errors", func(t *testing.T) {
		router := newMiddlewareRouter(func(c *gin.Context) {
			panic("boom")
		})

		w := serveRoot(router, nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal_error", decodeError(t, w).Code)
		assert.NotContains(t, w.Body.String(), "boom")
	})

	t.Run("leaves written responses alone", func(t *testing.T) {
		router := newMiddlewareRouter(func(c *gin.Context) {
			c.JSON(http.StatusTeapot, gin.H{"ok": true})
			_ = c.Error(errors.New("late error"))
		})

		w := serveRoot(router, nil)
		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	})
}

func TestParseIDParam(t *testing.T) {
	cases := []struct {
		value string
		ok    bool
	}{
		{"123", true},
		{"abc", false},
		{"-1", false},
		{"0", false},
		{"99999999999", false},
	}

	for _, tc := range cases {
		t.Run(tc.value, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Params = gin.Params{{Key: "id", Value: tc.value}}

			id, ok := parseIDParam(c, "id")

			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, uint(123), id)
				assert.Empty(t, c.Errors)
			} else {
				assert.Zero(t, id)
				require.Len(t, c.Errors, 1)
				assert.Equal(t, apperror.CodeInvalidID, apperror.As(c.Errors.Last().Err).Code)
			}
		})
	}
}
