// Package client talks to the task API and maintains the dashboard's
// client-side view of the task collection.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"flowdash/internal/models"
)

// ErrNotFound reports that the server knows no task with the given id.
// Callers branch on it to show "task not found" instead of a generic
// failure.
var ErrNotFound = errors.New("task not found")

// APIError carries a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsValidation reports whether the server rejected the request body.
func (e *APIError) IsValidation() bool {
	return e.StatusCode == http.StatusBadRequest
}

// NewTask is the create payload. Priority and Status may be nil to accept
// the server defaults (medium, todo).
type NewTask struct {
	Title    string           `json:"title"`
	Content  string           `json:"content"`
	Priority *models.Priority `json:"priority,omitempty"`
	Status   *models.Status   `json:"status,omitempty"`
}

// TaskPatch is the partial-update payload. Nil fields are omitted from the
// request entirely, so the server leaves them unchanged.
type TaskPatch struct {
	Title    *string          `json:"title,omitempty"`
	Content  *string          `json:"content,omitempty"`
	Priority *models.Priority `json:"priority,omitempty"`
	Status   *models.Status   `json:"status,omitempty"`
}

// Client is a typed HTTP client for the task API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a client for the API rooted at baseURL (e.g.
// "http://localhost:8080").
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// ListTasks fetches the full collection, newest first.
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask submits a new task and returns the created record.
func (c *Client) CreateTask(ctx context.Context, draft NewTask) (models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", draft, &task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// UpdateTask applies a partial update and returns the updated record.
func (c *Client) UpdateTask(ctx context.Context, id string, patch TaskPatch) (models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+id, patch, &task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// DeleteTask removes a task. The server acknowledges deletes of ids that
// are already gone, so callers never see a not-found here.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+id, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		msg = body.Error
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
