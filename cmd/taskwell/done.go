package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskwell/taskwell/pkg/taskwell/cli"
	"github.com/taskwell/taskwell/pkg/taskwell/models"
)

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Toggle a task between completed and pending",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		ctx := context.Background()

		id, err := e.resolveTaskID(args[0])
		if err != nil {
			return err
		}
		task, err := e.tasks.ToggleCompletion(ctx, id, e.ownerID)
		if err != nil {
			return err
		}

		if task.Status == models.StatusCompleted {
			fmt.Printf("Completed task %s: %s\n", cli.ShortID(task.ID), task.Title)
		} else {
			fmt.Printf("Reopened task %s: %s\n", cli.ShortID(task.ID), task.Title)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doneCmd)
}
