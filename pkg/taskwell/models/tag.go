package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultTagColor is used when a tag is created without an explicit color
const DefaultTagColor = "#3B82F6"

// Tag represents a label that can be applied to tasks. Names are unique per
// owner; two users may each have a tag with the same name.
type Tag struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	OwnerID   string    `gorm:"not null;uniqueIndex:idx_tags_owner_name;size:36" json:"owner_id"`
	Name      string    `gorm:"not null;uniqueIndex:idx_tags_owner_name;size:100" json:"name"`
	Color     string    `gorm:"size:7;default:'#3B82F6'" json:"color"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Owner User   `gorm:"foreignKey:OwnerID" json:"-"`
	Tasks []Task `gorm:"many2many:task_tags;" json:"tasks,omitempty"`
}

// BeforeCreate assigns a UUID primary key
func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TaskTagLink is the join row between tasks and tags. At most one link exists
// per (task, tag) pair; deleting either side removes the link.
type TaskTagLink struct {
	TaskID    string    `gorm:"primaryKey;size:36" json:"task_id"`
	TagID     string    `gorm:"primaryKey;size:36" json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the join table name aligned with the many2many tag on Task/Tag
func (TaskTagLink) TableName() string {
	return "task_tags"
}
