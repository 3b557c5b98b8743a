package tasks

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskwell/taskwell/pkg/taskwell/store"
)

// writeStoreError maps the store error taxonomy onto HTTP status codes. A
// missing record is 404 and a foreign one 403, matching the store's
// existence-before-ownership check order.
func writeStoreError(c *gin.Context, err error) {
	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, store.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to access this resource"})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Resource already exists"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
