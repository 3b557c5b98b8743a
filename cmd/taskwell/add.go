package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskwell/taskwell/pkg/taskwell/cli"
	"github.com/taskwell/taskwell/pkg/taskwell/models"
	"github.com/taskwell/taskwell/pkg/taskwell/store"
)

var (
	addDescription string
	addPriority    string
	addDue         string
	addTags        []string
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a new task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		ctx := context.Background()

		in := store.TaskCreate{
			Title:       strings.Join(args, " "),
			Description: addDescription,
			Priority:    models.Priority(addPriority),
		}
		if addDue != "" {
			due, err := cli.ParseDueDate(addDue, time.Now())
			if err != nil {
				return err
			}
			in.DueDate = &due
		}

		task, err := e.tasks.Create(ctx, e.ownerID, in)
		if err != nil {
			return err
		}

		for _, name := range addTags {
			tag, err := e.resolveTag(ctx, name)
			if err != nil {
				return fmt.Errorf("task created, but %w", err)
			}
			if err := e.tags.Assign(ctx, task.ID, tag.ID, e.ownerID); err != nil {
				return fmt.Errorf("task created, but tagging failed: %w", err)
			}
		}

		fmt.Printf("Added task %s: %s\n", cli.ShortID(task.ID), task.Title)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Longer description")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "", "Priority (low, medium, high)")
	addCmd.Flags().StringVar(&addDue, "due", "", "Due date (2006-01-02 or natural language like 'next friday')")
	addCmd.Flags().StringSliceVarP(&addTags, "tag", "t", nil, "Tag name to attach (repeatable)")
	rootCmd.AddCommand(addCmd)
}
