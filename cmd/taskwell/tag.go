package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskwell/taskwell/pkg/taskwell/cli"
)

var tagAddColor string

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
}

var tagAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		tag, err := e.tags.Create(context.Background(), e.ownerID, args[0], tagAddColor)
		if err != nil {
			return err
		}
		fmt.Printf("Created tag %s (%s)\n", tag.Name, tag.Color)
		return nil
	},
}

var tagListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tags with task counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		tags, err := e.tags.List(context.Background(), e.ownerID)
		if err != nil {
			return err
		}
		if len(tags) == 0 {
			fmt.Println("No tags yet.")
			return nil
		}
		for _, t := range tags {
			fmt.Printf("%-20s %s  %d task(s)\n", t.Name, t.Color, t.TaskCount)
		}
		return nil
	},
}

var tagRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a tag and detach it from every task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		ctx := context.Background()
		tag, err := e.resolveTag(ctx, args[0])
		if err != nil {
			return err
		}
		if err := e.tags.Delete(ctx, tag.ID, e.ownerID); err != nil {
			return err
		}
		fmt.Printf("Deleted tag %s\n", tag.Name)
		return nil
	},
}

var tagAssignCmd = &cobra.Command{
	Use:   "assign <task-id> <name>",
	Short: "Attach a tag to a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		ctx := context.Background()
		taskID, err := e.resolveTaskID(args[0])
		if err != nil {
			return err
		}
		tag, err := e.resolveTag(ctx, args[1])
		if err != nil {
			return err
		}
		if err := e.tags.Assign(ctx, taskID, tag.ID, e.ownerID); err != nil {
			return err
		}
		fmt.Printf("Tagged task %s with %s\n", cli.ShortID(taskID), tag.Name)
		return nil
	},
}

var tagUnassignCmd = &cobra.Command{
	Use:   "unassign <task-id> <name>",
	Short: "Detach a tag from a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		ctx := context.Background()
		taskID, err := e.resolveTaskID(args[0])
		if err != nil {
			return err
		}
		tag, err := e.resolveTag(ctx, args[1])
		if err != nil {
			return err
		}
		if err := e.tags.Unassign(ctx, taskID, tag.ID, e.ownerID); err != nil {
			return err
		}
		fmt.Printf("Removed tag %s from task %s\n", tag.Name, cli.ShortID(taskID))
		return nil
	},
}

func init() {
	tagAddCmd.Flags().StringVarP(&tagAddColor, "color", "c", "", "Hex color like #3B82F6")
	tagCmd.AddCommand(tagAddCmd, tagListCmd, tagRmCmd, tagAssignCmd, tagUnassignCmd)
	rootCmd.AddCommand(tagCmd)
}
