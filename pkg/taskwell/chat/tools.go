package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/taskwell/taskwell/pkg/taskwell/client"
	"github.com/taskwell/taskwell/pkg/taskwell/models"
)

// Registry binds the five task tools to the backend API client. A tool call
// never touches the store directly; everything goes through the backend with
// the end user's own bearer token.
type Registry struct {
	api *client.Client
}

// NewRegistry creates a tool registry over the backend client
func NewRegistry(api *client.Client) *Registry {
	return &Registry{api: api}
}

// Definitions returns the provider-neutral tool declarations
func (r *Registry) Definitions() []ToolDef {
	return []ToolDef{
		{
			Name:        "create_task",
			Description: "Create a new task with title, description, priority, and optional due date",
			InputSchema: map[string]interface{}{
				"title":       map[string]interface{}{"type": "string", "description": "Task title"},
				"description": map[string]interface{}{"type": "string", "description": "Task description"},
				"priority":    map[string]interface{}{"type": "string", "enum": []string{"low", "medium", "high"}},
				"due_date":    map[string]interface{}{"type": "string", "description": "Due date, RFC 3339 or YYYY-MM-DD"},
			},
			Required: []string{"title"},
		},
		{
			Name:        "list_tasks",
			Description: "List the user's tasks with optional status/priority filters",
			InputSchema: map[string]interface{}{
				"status":   map[string]interface{}{"type": "string", "enum": []string{"pending", "in_progress", "completed"}},
				"priority": map[string]interface{}{"type": "string", "enum": []string{"low", "medium", "high"}},
				"limit":    map[string]interface{}{"type": "integer", "description": "Maximum number of tasks to return"},
			},
		},
		{
			Name:        "update_task",
			Description: "Update an existing task's title, description, priority, or status",
			InputSchema: map[string]interface{}{
				"task_id":     map[string]interface{}{"type": "string", "description": "Task id"},
				"title":       map[string]interface{}{"type": "string"},
				"description": map[string]interface{}{"type": "string"},
				"priority":    map[string]interface{}{"type": "string", "enum": []string{"low", "medium", "high"}},
				"status":      map[string]interface{}{"type": "string", "enum": []string{"pending", "in_progress", "completed"}},
			},
			Required: []string{"task_id"},
		},
		{
			Name:        "delete_task",
			Description: "Delete a task by id",
			InputSchema: map[string]interface{}{
				"task_id": map[string]interface{}{"type": "string", "description": "Task id"},
			},
			Required: []string{"task_id"},
		},
		{
			Name:        "search_tasks",
			Description: "Search tasks by keyword in title and description",
			InputSchema: map[string]interface{}{
				"query": map[string]interface{}{"type": "string", "description": "Search keyword"},
				"limit": map[string]interface{}{"type": "integer"},
			},
			Required: []string{"query"},
		},
	}
}

// Executor returns a ToolExecutor bound to the caller's bearer token. Tool
// failures are encoded as {"success": false, "error": ...} so the provider
// can relay them conversationally.
func (r *Registry) Executor(token string) ToolExecutor {
	return func(ctx context.Context, name string, params map[string]interface{}) (string, bool) {
		payload, err := r.dispatch(ctx, token, name, params)
		if err != nil {
			msg := userFacingError(err)
			out, _ := json.Marshal(map[string]interface{}{"success": false, "error": msg})
			return string(out), true
		}
		out, err := json.Marshal(payload)
		if err != nil {
			return `{"success": false, "error": "internal encoding error"}`, true
		}
		return string(out), false
	}
}

// userFacingError keeps upstream failures generic and parameter errors exact
func userFacingError(err error) string {
	switch {
	case errors.Is(err, client.ErrTimeout):
		return "the task service took too long to respond"
	case errors.Is(err, client.ErrUnavailable):
		return "the task service is unreachable right now"
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

func (r *Registry) dispatch(ctx context.Context, token, name string, params map[string]interface{}) (map[string]interface{}, error) {
	switch name {
	case "create_task":
		return r.createTask(ctx, token, params)
	case "list_tasks":
		return r.listTasks(ctx, token, params)
	case "update_task":
		return r.updateTask(ctx, token, params)
	case "delete_task":
		return r.deleteTask(ctx, token, params)
	case "search_tasks":
		return r.searchTasks(ctx, token, params)
	default:
		return nil, fmt.Errorf("unknown tool %q", name)
	}
}

func stringParam(params map[string]interface{}, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

func intParam(params map[string]interface{}, key string, def int) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

func (r *Registry) createTask(ctx context.Context, token string, params map[string]interface{}) (map[string]interface{}, error) {
	title := stringParam(params, "title")
	if title == "" {
		return nil, errors.New("task title is required")
	}

	in := client.CreateTaskInput{
		Title:       title,
		Description: stringParam(params, "description"),
		Priority:    stringParam(params, "priority"),
	}
	if raw := stringParam(params, "due_date"); raw != "" {
		due, err := parseDueDate(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid due date %q", raw)
		}
		in.DueDate = &due
	}

	task, err := r.api.CreateTask(ctx, token, in)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"message": fmt.Sprintf("Created task: %s", task.Title),
		"task":    task,
	}, nil
}

func (r *Registry) listTasks(ctx context.Context, token string, params map[string]interface{}) (map[string]interface{}, error) {
	page, err := r.api.ListTasks(ctx, token, client.ListTasksParams{
		Status:   stringParam(params, "status"),
		Priority: stringParam(params, "priority"),
		Limit:    intParam(params, "limit", 10),
	})
	if err != nil {
		return nil, err
	}

	if len(page.Items) == 0 {
		return map[string]interface{}{
			"message": "You have no tasks.",
			"tasks":   []models.Task{},
		}, nil
	}

	var pending, completed int
	for _, t := range page.Items {
		switch t.Status {
		case models.StatusPending:
			pending++
		case models.StatusCompleted:
			completed++
		}
	}

	msg := fmt.Sprintf("You have %d task(s)", page.Total)
	if status := stringParam(params, "status"); status != "" {
		msg += fmt.Sprintf(" with status '%s'", status)
	}
	if priority := stringParam(params, "priority"); priority != "" {
		msg += fmt.Sprintf(" and priority '%s'", priority)
	}

	return map[string]interface{}{
		"message": msg,
		"tasks":   page.Items,
		"summary": map[string]interface{}{
			"total":     page.Total,
			"pending":   pending,
			"completed": completed,
		},
	}, nil
}

func (r *Registry) updateTask(ctx context.Context, token string, params map[string]interface{}) (map[string]interface{}, error) {
	taskID := stringParam(params, "task_id")
	if taskID == "" {
		return nil, errors.New("task_id is required")
	}

	var in client.UpdateTaskInput
	for key, dst := range map[string]**string{
		"title": &in.Title, "description": &in.Description,
		"priority": &in.Priority, "status": &in.Status,
	} {
		if v := stringParam(params, key); v != "" {
			v := v
			*dst = &v
		}
	}

	task, err := r.api.UpdateTask(ctx, token, taskID, in)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"message": fmt.Sprintf("Updated task: %s", task.Title),
		"task":    task,
	}, nil
}

func (r *Registry) deleteTask(ctx context.Context, token string, params map[string]interface{}) (map[string]interface{}, error) {
	taskID := stringParam(params, "task_id")
	if taskID == "" {
		return nil, errors.New("task_id is required")
	}
	if err := r.api.DeleteTask(ctx, token, taskID); err != nil {
		return nil, err
	}
	return map[string]interface{}{"message": "Task deleted."}, nil
}

func (r *Registry) searchTasks(ctx context.Context, token string, params map[string]interface{}) (map[string]interface{}, error) {
	query := stringParam(params, "query")
	if query == "" {
		return nil, errors.New("search query is required")
	}

	page, err := r.api.ListTasks(ctx, token, client.ListTasksParams{
		Search: query,
		Limit:  intParam(params, "limit", 10),
	})
	if err != nil {
		return nil, err
	}

	if len(page.Items) == 0 {
		return map[string]interface{}{
			"message": fmt.Sprintf("No tasks matched %q.", query),
			"tasks":   []models.Task{},
		}, nil
	}
	return map[string]interface{}{
		"message": fmt.Sprintf("Found %d task(s) matching %q", page.Total, query),
		"tasks":   page.Items,
	}, nil
}

func parseDueDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
