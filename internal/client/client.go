// Package client is the HTTP client for the task-manager REST API. It attaches the session token to
// every request and turns error responses back into apperror kinds.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"task-manager/backend/internal/apperror"
	taskdomain "task-manager/backend/internal/task/domain"
	userdomain "task-manager/backend/internal/user/domain"
)

// DefaultBaseURL is the API root used when none is configured.
const DefaultBaseURL = "http://localhost:5000/api"

// Fallback messages used when an error response carries no message.
const (
	MsgRegisterFailed = "Registration failed"
	MsgLoginFailed    = "Login failed"
	MsgCreateFailed   = "Failed to create task"
	MsgListFailed     = "Failed to fetch tasks"
	MsgGetFailed      = "Failed to fetch task"
	MsgUpdateFailed   = "Failed to update task"
	MsgDeleteFailed   = "Failed to delete task"
)

// TokenSource supplies the bearer token for outgoing requests. An empty token sends no header.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// AuthResponse is the body of a successful register or login.
type AuthResponse struct {
	Token string                `json:"token"`
	User  userdomain.PublicUser `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Client calls the REST API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its transport is used as-is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource sets where the bearer token comes from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// New returns a Client rooted at baseURL (DefaultBaseURL when empty).
// The default transport is traced with otelhttp and has no timeout.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client: invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("client: base url must be http or https, got %q", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Register creates an account and returns its session.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &out, MsgRegisterFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out, MsgLoginFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTasks fetches one page of the caller's tasks.
func (c *Client) ListTasks(ctx context.Context, page, limit int) (*taskdomain.Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	var out taskdomain.Page
	if err := c.do(ctx, http.MethodGet, "/tasks?"+q.Encode(), nil, &out, MsgListFailed); err != nil {
		return nil, err
	}
	if out.Tasks == nil {
		out.Tasks = []*taskdomain.Task{}
	}
	return &out, nil
}

// GetTask fetches one task by id.
func (c *Client) GetTask(ctx context.Context, id string) (*taskdomain.Task, error) {
	var out taskdomain.Task
	if err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &out, MsgGetFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTask creates a task owned by the caller.
func (c *Client) CreateTask(ctx context.Context, in taskdomain.CreateInput) (*taskdomain.Task, error) {
	var out taskdomain.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", in, &out, MsgCreateFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTask applies a partial update and returns the stored task.
func (c *Client) UpdateTask(ctx context.Context, id string, in taskdomain.UpdateInput) (*taskdomain.Task, error) {
	var out taskdomain.Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), in, &out, MsgUpdateFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTask deletes a task. Deleting a task that no longer exists succeeds.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	var out messageResponse
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, &out, MsgDeleteFailed)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, fallback string) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return apperror.Server(fallback, err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return apperror.Server(fallback, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperror.Server(fallback, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperror.Server(fallback, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp.StatusCode, raw, fallback)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperror.Server(fallback, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// StatusError is the cause attached to errors built from a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string { return "http status " + strconv.Itoa(e.Code) }

// errorFromResponse rebuilds the server's error kind from the status code.
func errorFromResponse(code int, raw []byte, fallback string) error {
	msg := fallback
	var body messageResponse
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		msg = body.Message
	}
	var e *apperror.Error
	switch code {
	case http.StatusBadRequest:
		e = apperror.Validation(msg)
	case http.StatusUnauthorized:
		e = apperror.Auth(msg)
	case http.StatusNotFound:
		e = apperror.NotFound(msg)
	default:
		e = apperror.Server(msg, nil)
	}
	e.Err = &StatusError{Code: code}
	return e
}

// StatusCode returns the HTTP status carried by err, or 0 when err did not come from a response.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
