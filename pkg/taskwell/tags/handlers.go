package tags

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskwell/taskwell/pkg/taskwell/auth"
	"github.com/taskwell/taskwell/pkg/taskwell/store"
)

// Handler handles tag-related requests
type Handler struct {
	tags *store.TagStore
}

// NewHandler creates a new tags handler
func NewHandler(tags *store.TagStore) *Handler {
	return &Handler{tags: tags}
}

// CreateTagRequest represents the request to create a tag
type CreateTagRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

// UpdateTagRequest represents a partial tag update
type UpdateTagRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func writeStoreError(c *gin.Context, err error) {
	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Tag not found"})
	case errors.Is(err, store.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to access this tag"})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "A tag with this name already exists"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// List returns all of the caller's tags with task counts
func (h *Handler) List(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	tags, err := h.tags.List(c.Request.Context(), userID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	if tags == nil {
		tags = []store.TagWithCount{}
	}
	c.JSON(http.StatusOK, tags)
}

// Create creates a new tag owned by the caller
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag, err := h.tags.Create(c.Request.Context(), userID, req.Name, req.Color)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

// Get returns a single tag by id
func (h *Handler) Get(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	tag, err := h.tags.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// Update renames or recolors a tag
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag, err := h.tags.Update(c.Request.Context(), c.Param("id"), userID, store.TagUpdate{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// Delete removes a tag and unlinks it from every task
func (h *Handler) Delete(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	if err := h.tags.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers tag routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tags", h.List)
	rg.POST("/tags", h.Create)
	rg.GET("/tags/:id", h.Get)
	rg.PUT("/tags/:id", h.Update)
	rg.DELETE("/tags/:id", h.Delete)
}
