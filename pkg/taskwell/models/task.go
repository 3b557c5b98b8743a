package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Priority represents a task priority level
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority value
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank returns the urgency rank used for priority sorting: high sorts first
// when ascending (high=0, medium=1, low=2).
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Status represents a task's workflow state. All transitions between states
// are permitted; there is no terminal state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is a known status value
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task represents a todo item owned by a single user
type Task struct {
	ID          string     `gorm:"primarykey;size:36" json:"id"`
	OwnerID     string     `gorm:"not null;index;size:36" json:"owner_id"`
	Title       string     `gorm:"not null;size:255" json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `gorm:"type:varchar(10);default:'medium';index" json:"priority"`
	Status      Status     `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	DueDate     *time.Time `gorm:"index" json:"due_date"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`

	// Relationships
	Owner User  `gorm:"foreignKey:OwnerID" json:"-"`
	Tags  []Tag `gorm:"many2many:task_tags;" json:"tags,omitempty"`
}

// BeforeCreate assigns a UUID primary key
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// MarkCompleted transitions the task to completed and stamps completed_at
func (t *Task) MarkCompleted(now time.Time) {
	t.Status = StatusCompleted
	t.CompletedAt = &now
}

// MarkIncomplete transitions the task back to pending and clears completed_at
func (t *Task) MarkIncomplete() {
	t.Status = StatusPending
	t.CompletedAt = nil
}
