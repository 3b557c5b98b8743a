package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskwell/taskwell/pkg/taskwell/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Active:   true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func TestCreateTaskDefaults(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	s := NewTaskStore(db)

	task, err := s.Create(context.Background(), user.ID, TaskCreate{Title: "  Buy milk  "})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if task.Title != "Buy milk" {
		t.Errorf("Expected trimmed title 'Buy milk', got %q", task.Title)
	}
	if task.Priority != models.PriorityMedium {
		t.Errorf("Expected default priority medium, got %s", task.Priority)
	}
	if task.Status != models.StatusPending {
		t.Errorf("Expected status pending, got %s", task.Status)
	}
	if task.ID == "" {
		t.Error("Expected a generated id")
	}
	if task.CompletedAt != nil {
		t.Error("Expected completed_at to be unset")
	}
}

func TestCreateTaskValidation(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	s := NewTaskStore(db)
	ctx := context.Background()

	if _, err := s.Create(ctx, user.ID, TaskCreate{Title: "   "}); !IsValidation(err) {
		t.Errorf("Expected validation error for blank title, got %v", err)
	}

	long := strings.Repeat("x", 256)
	if _, err := s.Create(ctx, user.ID, TaskCreate{Title: long}); !IsValidation(err) {
		t.Errorf("Expected validation error for long title, got %v", err)
	}

	if _, err := s.Create(ctx, user.ID, TaskCreate{Title: "ok", Priority: "urgent"}); !IsValidation(err) {
		t.Errorf("Expected validation error for bad priority, got %v", err)
	}
}

func TestGetTaskOwnership(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	s := NewTaskStore(db)
	ctx := context.Background()

	task, err := s.Create(ctx, alice.ID, TaskCreate{Title: "private"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := s.Get(ctx, task.ID, alice.ID); err != nil {
		t.Errorf("Owner should see the task, got %v", err)
	}
	if _, err := s.Get(ctx, task.ID, bob.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden for another user, got %v", err)
	}
	if _, err := s.Get(ctx, "no-such-id", alice.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing id, got %v", err)
	}
}

func TestUpdateTaskPartial(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	s := NewTaskStore(db)
	ctx := context.Background()

	due := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	task, err := s.Create(ctx, user.ID, TaskCreate{
		Title:       "Write report",
		Description: "quarterly numbers",
		DueDate:     &due,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	high := models.PriorityHigh
	updated, err := s.Update(ctx, task.ID, user.ID, TaskUpdate{Priority: &high})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Priority != models.PriorityHigh {
		t.Errorf("Expected priority high, got %s", updated.Priority)
	}
	if updated.Title != "Write report" || updated.Description != "quarterly numbers" {
		t.Error("Untouched fields should not change")
	}
	if updated.DueDate == nil {
		t.Error("Due date should survive an unrelated update")
	}
}

func TestUpdateTaskClearsFields(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	s := NewTaskStore(db)
	ctx := context.Background()

	due := time.Now().UTC().Add(24 * time.Hour)
	task, err := s.Create(ctx, user.ID, TaskCreate{
		Title:       "Call dentist",
		Description: "ask about friday",
		DueDate:     &due,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := s.Update(ctx, task.ID, user.ID, TaskUpdate{
		Description: Null[string](),
		DueDate:     Null[time.Time](),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Description != "" {
		t.Errorf("Expected description cleared, got %q", updated.Description)
	}
	if updated.DueDate != nil {
		t.Errorf("Expected due date cleared, got %v", updated.DueDate)
	}
}

func TestUpdateTaskCompletionTimestamps(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	s := NewTaskStore(db)
	ctx := context.Background()

	task, err := s.Create(ctx, user.ID, TaskCreate{Title: "Ship release"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	completed := models.StatusCompleted
	updated, err := s.Update(ctx, task.ID, user.ID, TaskUpdate{Status: &completed})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.CompletedAt == nil {
		t.Fatal("Expected completed_at to be stamped")
	}

	pending := models.StatusPending
	updated, err = s.Update(ctx, task.ID, user.ID, TaskUpdate{Status: &pending})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.CompletedAt != nil {
		t.Error("Expected completed_at to be cleared on reopen")
	}
}

func TestToggleCompletionRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	s := NewTaskStore(db)
	ctx := context.Background()

	task, err := s.Create(ctx, user.ID, TaskCreate{Title: "Water plants"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	toggled, err := s.ToggleCompletion(ctx, task.ID, user.ID)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if toggled.Status != models.StatusCompleted || toggled.CompletedAt == nil {
		t.Errorf("Expected completed with timestamp, got %s / %v", toggled.Status, toggled.CompletedAt)
	}

	toggled, err = s.ToggleCompletion(ctx, task.ID, user.ID)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if toggled.Status != models.StatusPending || toggled.CompletedAt != nil {
		t.Errorf("Expected pending with no timestamp, got %s / %v", toggled.Status, toggled.CompletedAt)
	}
}

func TestDeleteTaskCascadesLinks(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	tasks := NewTaskStore(db)
	tags := NewTagStore(db)
	ctx := context.Background()

	task, err := tasks.Create(ctx, user.ID, TaskCreate{Title: "Tagged task"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	tag, err := tags.Create(ctx, user.ID, "work", "")
	if err != nil {
		t.Fatalf("Tag create failed: %v", err)
	}
	if err := tags.Assign(ctx, task.ID, tag.ID, user.ID); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	if err := tasks.Delete(ctx, task.ID, user.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var links int64
	db.Model(&models.TaskTagLink{}).Where("task_id = ?", task.ID).Count(&links)
	if links != 0 {
		t.Errorf("Expected tag links removed, found %d", links)
	}
	if _, err := tasks.Get(ctx, task.ID, user.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteTaskOwnership(t *testing.T) {
	db := setupTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	s := NewTaskStore(db)
	ctx := context.Background()

	task, err := s.Create(ctx, alice.ID, TaskCreate{Title: "mine"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := s.Delete(ctx, task.ID, bob.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
	if _, err := s.Get(ctx, task.ID, alice.ID); err != nil {
		t.Errorf("Task should survive a forbidden delete, got %v", err)
	}
}

func TestStats(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice")
	s := NewTaskStore(db)
	ctx := context.Background()

	past := time.Now().UTC().Add(-48 * time.Hour)
	for i, in := range []TaskCreate{
		{Title: "one", Priority: models.PriorityHigh, DueDate: &past},
		{Title: "two", Priority: models.PriorityHigh},
		{Title: "three", Priority: models.PriorityLow},
		{Title: "four"},
	} {
		task, err := s.Create(ctx, user.ID, in)
		if err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
		if i == 3 {
			if _, err := s.ToggleCompletion(ctx, task.ID, user.ID); err != nil {
				t.Fatalf("Toggle failed: %v", err)
			}
		}
	}

	stats, err := s.Stats(ctx, user.ID)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	if stats.Total != 4 {
		t.Errorf("Expected total 4, got %d", stats.Total)
	}
	if stats.ByStatus[string(models.StatusPending)] != 3 {
		t.Errorf("Expected 3 pending, got %d", stats.ByStatus[string(models.StatusPending)])
	}
	if stats.ByStatus[string(models.StatusCompleted)] != 1 {
		t.Errorf("Expected 1 completed, got %d", stats.ByStatus[string(models.StatusCompleted)])
	}
	if stats.ByPriority[string(models.PriorityHigh)] != 2 {
		t.Errorf("Expected 2 high, got %d", stats.ByPriority[string(models.PriorityHigh)])
	}
	if stats.Overdue != 1 {
		t.Errorf("Expected 1 overdue, got %d", stats.Overdue)
	}
	if stats.CompletionRate != 0.25 {
		t.Errorf("Expected completion rate 0.25, got %f", stats.CompletionRate)
	}
}
