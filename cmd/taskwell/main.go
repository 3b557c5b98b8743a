// taskwell is the console client: a single-user todo list over a local
// SQLite database. The web backend and chatbot live in their own binaries.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/taskwell/taskwell/pkg/taskwell/database"
	"github.com/taskwell/taskwell/pkg/taskwell/models"
	"github.com/taskwell/taskwell/pkg/taskwell/store"
)

// localUsername identifies the implicit account that owns everything
// created through the console
const localUsername = "local"

var dbPath string

var rootCmd = &cobra.Command{
	Use:           "taskwell",
	Short:         "Manage your todo list from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// env bundles the open database and resolved owner for command handlers
type env struct {
	db      *gorm.DB
	ownerID string
	tasks   *store.TaskStore
	tags    *store.TagStore
}

func openEnv() (*env, error) {
	path := dbPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir := filepath.Join(home, ".taskwell")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "todo.db")
	}

	db, err := database.Connect(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	ownerID, err := ensureLocalUser(db)
	if err != nil {
		return nil, err
	}

	return &env{
		db:      db,
		ownerID: ownerID,
		tasks:   store.NewTaskStore(db),
		tags:    store.NewTagStore(db),
	}, nil
}

func ensureLocalUser(db *gorm.DB) (string, error) {
	var user models.User
	err := db.Where("username = ?", localUsername).First(&user).Error
	if err == nil {
		return user.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	user = models.User{
		Username: localUsername,
		Email:    "local@taskwell.invalid",
		Active:   true,
	}
	if err := db.Create(&user).Error; err != nil {
		return "", err
	}
	return user.ID, nil
}

// resolveTaskID expands a task id prefix (as printed in listings) to the full
// id, failing when the prefix is ambiguous or unknown.
func (e *env) resolveTaskID(prefix string) (string, error) {
	var ids []string
	err := e.db.Model(&models.Task{}).
		Where("owner_id = ? AND id LIKE ?", e.ownerID, prefix+"%").
		Limit(2).
		Pluck("id", &ids).Error
	if err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("no task matches %q", prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%q matches more than one task, use a longer prefix", prefix)
	}
}

// resolveTag finds a tag by exact name
func (e *env) resolveTag(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := e.db.WithContext(ctx).Where("owner_id = ? AND name = ?", e.ownerID, name).First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("no tag named %q", name)
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the database file (default ~/.taskwell/todo.db)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
