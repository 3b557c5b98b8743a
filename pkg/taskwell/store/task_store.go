package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/taskwell/taskwell/pkg/taskwell/models"
)

const maxTitleLength = 255

// TaskStore owns persisted task records. Every single-record operation checks
// existence before ownership, so callers can rely on ErrNotFound / ErrForbidden
// being distinct.
type TaskStore struct {
	db *gorm.DB
}

// NewTaskStore creates a task store over the given database
func NewTaskStore(db *gorm.DB) *TaskStore {
	return &TaskStore{db: db}
}

// TaskCreate holds the fields accepted at creation time
type TaskCreate struct {
	Title       string
	Description string
	Priority    models.Priority
	DueDate     *time.Time
}

// TaskUpdate is a partial update. Nil pointer fields are left untouched;
// Description and DueDate use Optional so an explicit null clears them.
type TaskUpdate struct {
	Title       *string
	Description Optional[string]
	Priority    *models.Priority
	Status      *models.Status
	DueDate     Optional[time.Time]
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", &ValidationError{"title must not be empty"}
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", &ValidationError{fmt.Sprintf("title must be at most %d characters", maxTitleLength)}
	}
	return title, nil
}

// Create inserts a new task owned by ownerID. Status starts as pending and
// priority defaults to medium.
func (s *TaskStore) Create(ctx context.Context, ownerID string, in TaskCreate) (*models.Task, error) {
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}

	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, &ValidationError{fmt.Sprintf("invalid priority %q", priority)}
	}

	task := models.Task{
		OwnerID:     ownerID,
		Title:       title,
		Description: in.Description,
		Priority:    priority,
		Status:      models.StatusPending,
		DueDate:     in.DueDate,
	}

	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Get returns a task by id after the ownership check
func (s *TaskStore) Get(ctx context.Context, taskID, callerID string) (*models.Task, error) {
	return s.fetch(s.db.WithContext(ctx), taskID, callerID)
}

func (s *TaskStore) fetch(db *gorm.DB, taskID, callerID string) (*models.Task, error) {
	var task models.Task
	if err := db.Where("id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := authorize(task.OwnerID, callerID); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update applies a partial update. Only fields present in upd change; setting
// status to completed stamps completed_at, moving away from completed clears
// it. updated_at is refreshed on every call.
func (s *TaskStore) Update(ctx context.Context, taskID, callerID string, upd TaskUpdate) (*models.Task, error) {
	var task *models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = s.fetch(tx, taskID, callerID)
		if err != nil {
			return err
		}

		if upd.Title != nil {
			title, err := validateTitle(*upd.Title)
			if err != nil {
				return err
			}
			task.Title = title
		}
		if upd.Description.Set {
			if upd.Description.Value == nil {
				task.Description = ""
			} else {
				task.Description = *upd.Description.Value
			}
		}
		if upd.Priority != nil {
			if !upd.Priority.Valid() {
				return &ValidationError{fmt.Sprintf("invalid priority %q", *upd.Priority)}
			}
			task.Priority = *upd.Priority
		}
		if upd.Status != nil {
			if !upd.Status.Valid() {
				return &ValidationError{fmt.Sprintf("invalid status %q", *upd.Status)}
			}
			if *upd.Status == models.StatusCompleted && task.Status != models.StatusCompleted {
				now := time.Now().UTC()
				task.CompletedAt = &now
			} else if *upd.Status != models.StatusCompleted {
				task.CompletedAt = nil
			}
			task.Status = *upd.Status
		}
		if upd.DueDate.Set {
			task.DueDate = upd.DueDate.Value
		}

		task.UpdatedAt = time.Now().UTC()
		return tx.Save(task).Error
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes a task and all its tag links in one transaction
func (s *TaskStore) Delete(ctx context.Context, taskID, callerID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := s.fetch(tx, taskID, callerID)
		if err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskTagLink{}).Error; err != nil {
			return err
		}
		return tx.Delete(task).Error
	})
}

// ToggleCompletion flips a task between completed and pending. Two consecutive
// toggles return the task to its original status, with updated_at advancing
// both times.
func (s *TaskStore) ToggleCompletion(ctx context.Context, taskID, callerID string) (*models.Task, error) {
	var task *models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = s.fetch(tx, taskID, callerID)
		if err != nil {
			return err
		}
		if task.Status == models.StatusCompleted {
			task.MarkIncomplete()
		} else {
			task.MarkCompleted(time.Now().UTC())
		}
		task.UpdatedAt = time.Now().UTC()
		return tx.Save(task).Error
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// List returns one page of the owner's tasks plus the total match count.
// Results are always scoped to ownerID regardless of the filter values, and
// the ordering is deterministic for a fixed query and dataset. A page beyond
// the last returns an empty slice, not an error. The query is normalized in
// place so callers can read back the effective page and page size.
func (s *TaskStore) List(ctx context.Context, ownerID string, q *TaskQuery) ([]models.Task, int64, error) {
	if err := q.normalize(); err != nil {
		return nil, 0, err
	}

	base := q.apply(s.db.WithContext(ctx).Model(&models.Task{}).Where("owner_id = ?", ownerID))

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	err := base.
		Order(q.orderClause()).
		Offset(q.offset()).
		Limit(q.PageSize).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// Stats summarizes the owner's tasks
type Stats struct {
	Total          int64            `json:"total"`
	ByStatus       map[string]int64 `json:"by_status"`
	ByPriority     map[string]int64 `json:"by_priority"`
	Overdue        int64            `json:"overdue"`
	CompletionRate float64          `json:"completion_rate"`
}

// Stats computes task counts by status and priority, the number of overdue
// tasks, and the completion rate for the owner.
func (s *TaskStore) Stats(ctx context.Context, ownerID string) (*Stats, error) {
	db := s.db.WithContext(ctx)
	stats := &Stats{
		ByStatus:   make(map[string]int64),
		ByPriority: make(map[string]int64),
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var byStatus []bucket
	err := db.Model(&models.Task{}).
		Select("status AS key, COUNT(*) AS count").
		Where("owner_id = ?", ownerID).
		Group("status").
		Find(&byStatus).Error
	if err != nil {
		return nil, err
	}
	for _, b := range byStatus {
		stats.ByStatus[b.Key] = b.Count
		stats.Total += b.Count
	}

	var byPriority []bucket
	err = db.Model(&models.Task{}).
		Select("priority AS key, COUNT(*) AS count").
		Where("owner_id = ?", ownerID).
		Group("priority").
		Find(&byPriority).Error
	if err != nil {
		return nil, err
	}
	for _, b := range byPriority {
		stats.ByPriority[b.Key] = b.Count
	}

	err = db.Model(&models.Task{}).
		Where("owner_id = ? AND due_date < ? AND status != ?",
			ownerID, time.Now().UTC(), models.StatusCompleted).
		Count(&stats.Overdue).Error
	if err != nil {
		return nil, err
	}

	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.ByStatus[string(models.StatusCompleted)]) / float64(stats.Total)
	}
	return stats, nil
}
