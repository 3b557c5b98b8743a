package tasks

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskwell/taskwell/pkg/taskwell/auth"
	"github.com/taskwell/taskwell/pkg/taskwell/models"
	"github.com/taskwell/taskwell/pkg/taskwell/store"
)

// Handler handles task-related requests
type Handler struct {
	tasks *store.TaskStore
	tags  *store.TagStore
}

// NewHandler creates a new tasks handler
func NewHandler(tasks *store.TaskStore, tags *store.TagStore) *Handler {
	return &Handler{tasks: tasks, tags: tags}
}

// CreateTaskRequest represents the request to create a task
type CreateTaskRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	DueDate     *time.Time      `json:"due_date"`
}

// UpdateTaskRequest represents a partial task update. Description and due
// date accept an explicit null to clear the field; absent keys leave it
// untouched.
type UpdateTaskRequest struct {
	Title       *string                   `json:"title"`
	Description store.Optional[string]    `json:"description"`
	Priority    *models.Priority          `json:"priority"`
	Status      *models.Status            `json:"status"`
	DueDate     store.Optional[time.Time] `json:"due_date"`
}

// AssignTagRequest represents the request to assign a tag to a task
type AssignTagRequest struct {
	TagID string `json:"tag_id" binding:"required"`
}

// PaginatedTasks is the envelope for task listings
type PaginatedTasks struct {
	Items      []models.Task `json:"items"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
}

// parseQuery builds a store.TaskQuery from the request's query string.
// Unknown enum values are passed through for the store to reject so the
// error message is consistent across entry points.
func parseQuery(c *gin.Context) (store.TaskQuery, error) {
	var q store.TaskQuery

	if v := c.Query("status"); v != "" {
		s := models.Status(v)
		q.Status = &s
	}
	if v := c.Query("priority"); v != "" {
		p := models.Priority(v)
		q.Priority = &p
	}
	q.Search = c.Query("search")
	q.TagIDs = c.QueryArray("tag_ids")

	for name, dst := range map[string]**time.Time{"due_after": &q.DueAfter, "due_before": &q.DueBefore} {
		if v := c.Query(name); v != "" {
			t, err := parseTimestamp(v)
			if err != nil {
				return q, &store.ValidationError{Message: "invalid " + name + ": expected RFC 3339 or YYYY-MM-DD"}
			}
			*dst = &t
		}
	}

	q.SortBy = c.Query("sort_by")
	q.SortOrder = c.Query("sort_order")

	for name, dst := range map[string]*int{"page": &q.Page, "limit": &q.PageSize} {
		if v := c.Query(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return q, &store.ValidationError{Message: "invalid " + name + ": expected an integer"}
			}
			*dst = n
		}
	}
	return q, nil
}

func parseTimestamp(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

// List returns the caller's tasks, filtered, sorted, and paginated
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	q, err := parseQuery(c)
	if err != nil {
		writeStoreError(c, err)
		return
	}

	items, total, err := h.tasks.List(c.Request.Context(), userID, &q)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	if items == nil {
		items = []models.Task{}
	}

	c.JSON(http.StatusOK, PaginatedTasks{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		Limit:      q.PageSize,
		TotalPages: store.TotalPages(total, q.PageSize),
	})
}

// Create creates a new task owned by the caller
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), userID, store.TaskCreate{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// Get returns a single task by id
func (h *Handler) Get(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	task, err := h.tasks.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Update applies a partial update to a task
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), c.Param("id"), userID, store.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete removes a task and its tag links
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	if err := h.tasks.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleCompletion flips a task between completed and pending
func (h *Handler) ToggleCompletion(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	task, err := h.tasks.ToggleCompletion(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Stats summarizes the caller's tasks
func (h *Handler) Stats(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	stats, err := h.tasks.Stats(c.Request.Context(), userID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AssignTag links a tag to a task. Re-assigning an existing link succeeds.
func (h *Handler) AssignTag(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req AssignTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.tags.Assign(ctx, c.Param("id"), req.TagID, userID); err != nil {
		writeStoreError(c, err)
		return
	}

	tags, err := h.tags.ListForTask(ctx, c.Param("id"), userID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task_id": c.Param("id"), "tags": tags})
}

// UnassignTag removes a tag from a task. Removing a missing link succeeds.
func (h *Handler) UnassignTag(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	if err := h.tags.Unassign(c.Request.Context(), c.Param("id"), c.Param("tagId"), userID); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListTags returns all tags linked to a task
func (h *Handler) ListTags(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	tags, err := h.tags.ListForTask(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	c.JSON(http.StatusOK, tags)
}

// RegisterRoutes registers task routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tasks", h.List)
	rg.POST("/tasks", h.Create)
	rg.GET("/tasks/stats", h.Stats)
	rg.GET("/tasks/:id", h.Get)
	rg.PUT("/tasks/:id", h.Update)
	rg.DELETE("/tasks/:id", h.Delete)
	rg.PATCH("/tasks/:id/complete", h.ToggleCompletion)

	rg.POST("/tasks/:id/tags", h.AssignTag)
	rg.DELETE("/tasks/:id/tags/:tagId", h.UnassignTag)
	rg.GET("/tasks/:id/tags", h.ListTags)
}
