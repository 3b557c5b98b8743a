// Package client is a typed HTTP client for the taskwell backend API. The
// chatbot tool layer talks to the backend exclusively through it and never
// touches the store directly.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/taskwell/taskwell/pkg/taskwell/models"
)

var (
	// ErrTimeout means the backend did not answer within the configured deadline
	ErrTimeout = errors.New("backend request timed out")
	// ErrUnavailable means the backend could not be reached
	ErrUnavailable = errors.New("backend unavailable")
)

// APIError carries a non-2xx backend response
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Client calls the backend REST API on behalf of an authenticated user
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client with a fixed per-request timeout
func New(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// do performs a request with the caller's bearer token and decodes the
// response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return ErrTimeout
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// CreateTaskInput holds the fields for creating a task through the API
type CreateTaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateTaskInput is a partial update; nil fields are omitted from the request
type UpdateTaskInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// ListTasksParams mirrors the backend listing filters
type ListTasksParams struct {
	Status   string
	Priority string
	Search   string
	Page     int
	Limit    int
}

// TaskPage is one page of tasks plus pagination metadata
type TaskPage struct {
	Items      []models.Task `json:"items"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
}

// CreateTask creates a task owned by the token's user
func (c *Client) CreateTask(ctx context.Context, token string, in CreateTaskInput) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", token, in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTasks returns a filtered page of the user's tasks
func (c *Client) ListTasks(ctx context.Context, token string, params ListTasksParams) (*TaskPage, error) {
	values := url.Values{}
	if params.Status != "" {
		values.Set("status", params.Status)
	}
	if params.Priority != "" {
		values.Set("priority", params.Priority)
	}
	if params.Search != "" {
		values.Set("search", params.Search)
	}
	if params.Page > 0 {
		values.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		values.Set("limit", strconv.Itoa(params.Limit))
	}

	path := "/api/tasks"
	if len(values) > 0 {
		path += "?" + values.Encode()
	}

	var page TaskPage
	if err := c.do(ctx, http.MethodGet, path, token, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdateTask applies a partial update to a task
func (c *Client) UpdateTask(ctx context.Context, token, taskID string, in UpdateTaskInput) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+taskID, token, in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task
func (c *Client) DeleteTask(ctx context.Context, token, taskID string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+taskID, token, nil, nil)
}
