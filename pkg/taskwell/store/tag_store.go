package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/taskwell/taskwell/pkg/taskwell/models"
)

const maxTagNameLength = 100

var colorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// TagStore owns tags and the task-tag association
type TagStore struct {
	db *gorm.DB
}

// NewTagStore creates a tag store over the given database
func NewTagStore(db *gorm.DB) *TagStore {
	return &TagStore{db: db}
}

// TagUpdate is a partial update of a tag
type TagUpdate struct {
	Name  *string
	Color *string
}

// TagWithCount is a tag together with the number of tasks carrying it
type TagWithCount struct {
	models.Tag
	TaskCount int64 `json:"task_count"`
}

func validateTagName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{"tag name must not be empty"}
	}
	if utf8.RuneCountInString(name) > maxTagNameLength {
		return "", &ValidationError{fmt.Sprintf("tag name must be at most %d characters", maxTagNameLength)}
	}
	return name, nil
}

func validateColor(color string) error {
	if !colorRegex.MatchString(color) {
		return &ValidationError{"color must match #RRGGBB"}
	}
	return nil
}

// Create inserts a tag for ownerID. Names are case-sensitively unique per
// owner; an empty color falls back to the default blue.
func (s *TagStore) Create(ctx context.Context, ownerID, name, color string) (*models.Tag, error) {
	name, err := validateTagName(name)
	if err != nil {
		return nil, err
	}
	if color == "" {
		color = models.DefaultTagColor
	}
	if err := validateColor(color); err != nil {
		return nil, err
	}

	tag := models.Tag{OwnerID: ownerID, Name: name, Color: color}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Tag
		if err := tx.Where("owner_id = ? AND name = ?", ownerID, name).First(&existing).Error; err == nil {
			return ErrConflict
		}
		return tx.Create(&tag).Error
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// Get returns a tag by id after the ownership check
func (s *TagStore) Get(ctx context.Context, tagID, callerID string) (*models.Tag, error) {
	return s.fetchTag(s.db.WithContext(ctx), tagID, callerID)
}

func (s *TagStore) fetchTag(db *gorm.DB, tagID, callerID string) (*models.Tag, error) {
	var tag models.Tag
	if err := db.Where("id = ?", tagID).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := authorize(tag.OwnerID, callerID); err != nil {
		return nil, err
	}
	return &tag, nil
}

func (s *TagStore) fetchTask(db *gorm.DB, taskID, callerID string) (*models.Task, error) {
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

// Update renames or recolors a tag. A rename re-checks uniqueness against the
// owner's other tags.
func (s *TagStore) Update(ctx context.Context, tagID, callerID string, upd TagUpdate) (*models.Tag, error) {
	var tag *models.Tag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		tag, err = s.fetchTag(tx, tagID, callerID)
		if err != nil {
			return err
		}

		if upd.Name != nil {
			name, err := validateTagName(*upd.Name)
			if err != nil {
				return err
			}
			if name != tag.Name {
				var existing models.Tag
				if err := tx.Where("owner_id = ? AND name = ? AND id != ?", tag.OwnerID, name, tag.ID).
					First(&existing).Error; err == nil {
					return ErrConflict
				}
			}
			tag.Name = name
		}
		if upd.Color != nil {
			if err := validateColor(*upd.Color); err != nil {
				return err
			}
			tag.Color = *upd.Color
		}
		return tx.Save(tag).Error
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// Delete removes a tag and every link referencing it
func (s *TagStore) Delete(ctx context.Context, tagID, callerID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tag, err := s.fetchTag(tx, tagID, callerID)
		if err != nil {
			return err
		}
		if err := tx.Where("tag_id = ?", tag.ID).Delete(&models.TaskTagLink{}).Error; err != nil {
			return err
		}
		return tx.Delete(tag).Error
	})
}

// Assign links a tag to a task. Task and tag must both belong to the caller,
// checked independently in that order. Assigning an existing link is a no-op.
func (s *TagStore) Assign(ctx context.Context, taskID, tagID, callerID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := s.fetchTask(tx, taskID, callerID)
		if err != nil {
			return err
		}
		tag, err := s.fetchTag(tx, tagID, callerID)
		if err != nil {
			return err
		}

		var existing models.TaskTagLink
		err = tx.Where("task_id = ? AND tag_id = ?", task.ID, tag.ID).First(&existing).Error
		if err == nil {
			return nil // already linked
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&models.TaskTagLink{TaskID: task.ID, TagID: tag.ID}).Error
	})
}

// Unassign removes the link between a task and a tag. Only the task is
// ownership-checked; removing a link that does not exist is a no-op.
func (s *TagStore) Unassign(ctx context.Context, taskID, tagID, callerID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := s.fetchTask(tx, taskID, callerID)
		if err != nil {
			return err
		}
		return tx.Where("task_id = ? AND tag_id = ?", task.ID, tagID).
			Delete(&models.TaskTagLink{}).Error
	})
}

// ListForTask returns all tags linked to the task, ordered by id so repeated
// calls see the same order.
func (s *TagStore) ListForTask(ctx context.Context, taskID, callerID string) ([]models.Tag, error) {
	db := s.db.WithContext(ctx)
	task, err := s.fetchTask(db, taskID, callerID)
	if err != nil {
		return nil, err
	}

	var tags []models.Tag
	err = db.
		Joins("JOIN task_tags ON task_tags.tag_id = tags.id").
		Where("task_tags.task_id = ?", task.ID).
		Order("tags.id ASC").
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// List returns all of the owner's tags with the number of tasks each is
// linked to, ordered by name.
func (s *TagStore) List(ctx context.Context, ownerID string) ([]TagWithCount, error) {
	var tags []models.Tag
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("name ASC").
		Find(&tags).Error
	if err != nil {
		return nil, err
	}

	out := make([]TagWithCount, len(tags))
	for i, tag := range tags {
		var count int64
		err := s.db.WithContext(ctx).Model(&models.TaskTagLink{}).
			Where("tag_id = ?", tag.ID).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		out[i] = TagWithCount{Tag: tag, TaskCount: count}
	}
	return out, nil
}
