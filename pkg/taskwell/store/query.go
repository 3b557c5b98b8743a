package store

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/taskwell/taskwell/pkg/taskwell/models"
)

const (
	// DefaultPageSize is used when no page size is requested
	DefaultPageSize = 20
	// MaxPageSize caps the number of items per page
	MaxPageSize = 100
)

// Sortable fields for task listings
const (
	SortByCreatedAt = "created_at"
	SortByDueDate   = "due_date"
	SortByPriority  = "priority"
	SortByTitle     = "title"
	SortByStatus    = "status"
)

// TaskQuery describes a filtered, sorted, paginated task listing. All filters
// combine conjunctively; TagIDs matches tasks carrying any of the listed tags.
// The zero value lists everything, newest first, 20 per page.
type TaskQuery struct {
	Status    *models.Status
	Priority  *models.Priority
	Search    string
	TagIDs    []string
	DueAfter  *time.Time
	DueBefore *time.Time
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// normalize applies defaults and validates the query parameters
func (q *TaskQuery) normalize() error {
	if q.Status != nil && !q.Status.Valid() {
		return &ValidationError{fmt.Sprintf("invalid status %q", *q.Status)}
	}
	if q.Priority != nil && !q.Priority.Valid() {
		return &ValidationError{fmt.Sprintf("invalid priority %q", *q.Priority)}
	}

	if q.SortBy == "" {
		q.SortBy = SortByCreatedAt
	}
	switch q.SortBy {
	case SortByCreatedAt, SortByDueDate, SortByPriority, SortByTitle, SortByStatus:
	default:
		return &ValidationError{fmt.Sprintf("invalid sort field %q", q.SortBy)}
	}

	if q.SortOrder == "" {
		q.SortOrder = "desc"
	}
	if q.SortOrder != "asc" && q.SortOrder != "desc" {
		return &ValidationError{fmt.Sprintf("invalid sort order %q", q.SortOrder)}
	}

	if q.Page == 0 {
		q.Page = 1
	}
	if q.Page < 1 {
		return &ValidationError{"page must be >= 1"}
	}
	if q.PageSize == 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize < 1 || q.PageSize > MaxPageSize {
		return &ValidationError{fmt.Sprintf("page size must be between 1 and %d", MaxPageSize)}
	}
	return nil
}

// apply adds the filter conditions to a query already scoped to the owner
func (q *TaskQuery) apply(db *gorm.DB) *gorm.DB {
	if q.Status != nil {
		db = db.Where("status = ?", *q.Status)
	}
	if q.Priority != nil {
		db = db.Where("priority = ?", *q.Priority)
	}
	if q.Search != "" {
		term := "%" + strings.ToLower(q.Search) + "%"
		db = db.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", term, term)
	}
	if len(q.TagIDs) > 0 {
		// Membership via subquery so a task linked to several of the
		// requested tags still appears exactly once.
		db = db.Where("id IN (SELECT task_id FROM task_tags WHERE tag_id IN ?)", q.TagIDs)
	}
	if q.DueAfter != nil {
		db = db.Where("due_date >= ?", *q.DueAfter)
	}
	if q.DueBefore != nil {
		db = db.Where("due_date <= ?", *q.DueBefore)
	}
	return db
}

// orderClause builds the ORDER BY expression. Priority sorts by urgency rank
// (high before medium before low when ascending), everything else by column
// value. A trailing id tie-break keeps the ordering stable across calls.
// Values interpolated here come only from the validated sort whitelist.
func (q *TaskQuery) orderClause() string {
	dir := strings.ToUpper(q.SortOrder)
	if q.SortBy == SortByPriority {
		return fmt.Sprintf(
			"CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END %s, id ASC", dir)
	}
	return fmt.Sprintf("%s %s, id ASC", q.SortBy, dir)
}

// offset returns the pagination offset for the normalized query
func (q *TaskQuery) offset() int {
	return (q.Page - 1) * q.PageSize
}

// TotalPages computes ceil(total/pageSize), 0 when total is 0
func TotalPages(total int64, pageSize int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
