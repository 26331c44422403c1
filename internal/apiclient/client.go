// Package apiclient is a typed client for the Bookshare HTTP API. It is used by
// tooling and by end-to-end tests that run against a live server.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/bookshare/internal/entities"
	"github.com/mrlokans/bookshare/internal/schemas"
)

const userAgent = "BookshareClient/1.0"

// APIError is a non-2xx response decoded from the {code, message} error body.
type APIError struct {
	Status  int                  `json:"-"`
	Code    string               `json:"code"`
	Message string               `json:"message"`
	Details []schemas.FieldError `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

// IsCode reports whether err is an *APIError carrying code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// Client talks to one Bookshare server. It is safe for concurrent use once the
// token has been set.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	language   string
}

type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLanguage sets Accept-Language on every request.
func WithLanguage(lang string) Option {
	return func(c *Client) { c.language = lang }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken sets the bearer token used by authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Token() string {
	return c.token
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, user schemas.UserCreate) (*schemas.UserPublic, error) {
	var out schemas.UserPublic
	if err := c.doJSON(ctx, http.MethodPost, "/users/register", user, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates with a username or email and stores the returned token.
func (c *Client) Login(ctx context.Context, login, password string) (*schemas.LoginResponse, error) {
	var out schemas.LoginResponse
	body := schemas.Login{Username: login, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/users/login", body, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]entities.User, error) {
	var out []entities.User
	if err := c.doJSON(ctx, http.MethodGet, "/users/all", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetUser(ctx context.Context, id uint) (*entities.User, error) {
	var out entities.User
	if err := c.doJSON(ctx, http.MethodGet, "/users/"+idPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser applies a partial update and returns the server's confirmation message.
func (c *Client) UpdateUser(ctx context.Context, id uint, update schemas.UserUpdate) (string, error) {
	var out schemas.Message
	if err := c.doJSON(ctx, http.MethodPut, "/users/"+idPath(id), update, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// UploadPhoto replaces the profile photo of userID and returns its public URL.
func (c *Client) UploadPhoto(ctx context.Context, userID uint, filename string, photo io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("photo", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, photo); err != nil {
		return "", fmt.Errorf("copy photo: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	path := "/users/photo?" + url.Values{"id_user": {idPath(userID)}}.Encode()
	req, err := c.newRequest(ctx, http.MethodPut, path, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) SentRequests(ctx context.Context, userID uint) ([]entities.Request, error) {
	var out []entities.Request
	if err := c.doJSON(ctx, http.MethodGet, "/users/"+idPath(userID)+"/sent-requests", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ReceivedRequests(ctx context.Context, userID uint) ([]entities.Request, error) {
	var out []entities.Request
	if err := c.doJSON(ctx, http.MethodGet, "/users/"+idPath(userID)+"/received-requests", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListBooks(ctx context.Context) ([]entities.Book, error) {
	var out []entities.Book
	if err := c.doJSON(ctx, http.MethodGet, "/books", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetBook(ctx context.Context, id uint) (*entities.Book, error) {
	var out entities.Book
	if err := c.doJSON(ctx, http.MethodGet, "/books/"+idPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyBooks lists the books published by the logged-in user.
func (c *Client) MyBooks(ctx context.Context) ([]entities.Book, error) {
	var out []entities.Book
	if err := c.doJSON(ctx, http.MethodGet, "/books/my-books", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListGenres(ctx context.Context) ([]entities.Genre, error) {
	var out []entities.Genre
	if err := c.doJSON(ctx, http.MethodGet, "/books/genres", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Publish creates a book owned by the logged-in user and returns its id.
func (c *Client) Publish(ctx context.Context, book schemas.BookPublish) (uint, error) {
	var out schemas.BookPublished
	if err := c.doJSON(ctx, http.MethodPost, "/books/publish", book, &out); err != nil {
		return 0, err
	}
	return out.BookID, nil
}

func (c *Client) DeleteBook(ctx context.Context, id uint) error {
	return c.doJSON(ctx, http.MethodDelete, "/books/"+idPath(id), nil, nil)
}

// CreateRequest asks the owner of bookID to lend it.
func (c *Client) CreateRequest(ctx context.Context, bookID uint) (*entities.Request, error) {
	var out entities.Request
	if err := c.doJSON(ctx, http.MethodPost, "/requests", schemas.RequestCreate{BookID: bookID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health returns nil when the server and its database are reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if c.language != "" {
		req.Header.Set("Accept-Language", c.language)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		// Non-JSON bodies (e.g. a proxy error page) leave Code empty.
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func idPath(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
