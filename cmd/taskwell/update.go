package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskwell/taskwell/pkg/taskwell/cli"
	"github.com/taskwell/taskwell/pkg/taskwell/models"
	"github.com/taskwell/taskwell/pkg/taskwell/store"
)

var (
	updateTitle       string
	updateDescription string
	updatePriority    string
	updateStatus      string
	updateDue         string
	updateClearDue    bool
	updateClearDesc   bool
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields of a task",
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

		var upd store.TaskUpdate
		if cmd.Flags().Changed("title") {
			upd.Title = &updateTitle
		}
		if updateClearDesc {
			upd.Description = store.Null[string]()
		} else if cmd.Flags().Changed("description") {
			upd.Description = store.Some(updateDescription)
		}
		if cmd.Flags().Changed("priority") {
			p := models.Priority(updatePriority)
			upd.Priority = &p
		}
		if cmd.Flags().Changed("status") {
			st := models.Status(updateStatus)
			upd.Status = &st
		}
		if updateClearDue {
			upd.DueDate = store.Null[time.Time]()
		} else if updateDue != "" {
			due, err := cli.ParseDueDate(updateDue, time.Now())
			if err != nil {
				return err
			}
			upd.DueDate = store.Some(due)
		}

		task, err := e.tasks.Update(ctx, id, e.ownerID, upd)
		if err != nil {
			return err
		}
		fmt.Printf("Updated task %s: %s\n", cli.ShortID(task.ID), task.Title)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "New title")
	updateCmd.Flags().StringVarP(&updateDescription, "description", "d", "", "New description")
	updateCmd.Flags().StringVarP(&updatePriority, "priority", "p", "", "New priority (low, medium, high)")
	updateCmd.Flags().StringVarP(&updateStatus, "status", "s", "", "New status (pending, in_progress, completed)")
	updateCmd.Flags().StringVar(&updateDue, "due", "", "New due date")
	updateCmd.Flags().BoolVar(&updateClearDue, "clear-due", false, "Remove the due date")
	updateCmd.Flags().BoolVar(&updateClearDesc, "clear-description", false, "Remove the description")
	rootCmd.AddCommand(updateCmd)
}
