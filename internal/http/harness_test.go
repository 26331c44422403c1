package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/bookshare/internal/apperror"
	"github.com/mrlokans/bookshare/internal/audit"
	"github.com/mrlokans/bookshare/internal/auth"
	"github.com/mrlokans/bookshare/internal/config"
	"github.com/mrlokans/bookshare/internal/database"
	auditRepo "github.com/mrlokans/bookshare/internal/database/audit"
	"github.com/mrlokans/bookshare/internal/database/books"
	"github.com/mrlokans/bookshare/internal/database/genres"
	"github.com/mrlokans/bookshare/internal/database/requests"
	"github.com/mrlokans/bookshare/internal/database/users"
	"github.com/mrlokans/bookshare/internal/photos"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	db     *database.Database
	router *gin.Engine
	audit  *audit.Service
	photos *photos.Store
	issuer *auth.TokenIssuer
	tasks  *fakeQueue
}

type envOption func(*RouterConfig, *testEnv)

func withTasks(q *fakeQueue) envOption {
	return func(cfg *RouterConfig, env *testEnv) {
		cfg.Tasks = q
		env.tasks = q
	}
}

func withLimiter(limiter *auth.LoginLimiter) envOption {
	return func(cfg *RouterConfig, env *testEnv) {
		cfg.AuthService = auth.NewService(users.NewRepository(env.db.DB), env.issuer, limiter, testAuthConfig())
	}
}

func testAuthConfig() config.Auth {
	return config.Auth{BcryptCost: bcrypt.MinCost}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	dir := t.TempDir()
	db, err := database.NewDatabase(config.Database{
		Driver:   config.DriverSQLite,
		Path:     filepath.Join(dir, "test.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	photoStore, err := photos.NewStore(filepath.Join(dir, "public"), 1<<20)
	require.NoError(t, err)

	issuer, err := auth.NewTokenIssuer("test-secret", "bookshare-test", time.Hour)
	require.NoError(t, err)

	auditService := audit.NewService(auditRepo.NewRepository(db.DB))
	userRepo := users.NewRepository(db.DB)

	env := &testEnv{db: db, audit: auditService, photos: photoStore, issuer: issuer}
	cfg := RouterConfig{
		Users:          userRepo,
		Books:          books.NewRepository(db.DB),
		Genres:         genres.NewRepository(db.DB),
		Requests:       requests.NewRepository(db.DB),
		AuthService:    auth.NewService(userRepo, issuer, nil, testAuthConfig()),
		AuthMiddleware: auth.NewMiddleware(issuer),
		Audit:          auditService,
		Photos:         photoStore,
		Database:       db,
		Version:        "test",
		Localizer:      apperror.NewLocalizer("es"),
	}
	for _, opt := range opts {
		opt(&cfg, env)
	}
	env.router = NewRouter(cfg)

	t.Cleanup(auditService.Wait)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// register creates a user through the API and returns its id and a token.
func (e *testEnv) register(t *testing.T, username string, role string) (uint, string) {
	t.Helper()

	w := e.do(t, http.MethodPost, "/users/register", map[string]string{
		"name":     "Name " + username,
		"lastname": "Lastname",
		"username": username,
		"email":    username + "@example.com",
		"password": "secret-" + username,
		"role":     role,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = e.do(t, http.MethodPost, "/users/login", map[string]string{
		"username": username,
		"password": "secret-" + username,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	return created.ID, login.Token
}

// publish creates a book owned by the token's user and returns its id.
func (e *testEnv) publish(t *testing.T, token string, name string, genreIDs ...uint) uint {
	t.Helper()
	if len(genreIDs) == 0 {
		genreIDs = []uint{1}
	}

	w := e.do(t, http.MethodPost, "/books/publish", map[string]any{
		"name":        name,
		"description": "A book",
		"author":      "Someone",
		"location":    "Madrid",
		"genres":      genreIDs,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		BookID uint `json:"bookId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.BookID
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func count(t *testing.T, db *database.Database, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.DB.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

// fakeQueue records enqueued tasks and answers status lookups.
type fakeQueue struct {
	enqueued []backlite.Task
	statuses map[string]backlite.TaskStatus
}

func (q *fakeQueue) Enqueue(ctx context.Context, task backlite.Task) (string, error) {
	q.enqueued = append(q.enqueued, task)
	return "task-1", nil
}

func (q *fakeQueue) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	if status, ok := q.statuses[taskID]; ok {
		return status, nil
	}
	return backlite.TaskStatusNotFound, nil
}
