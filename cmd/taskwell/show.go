package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskwell/taskwell/pkg/taskwell/cli"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a task in detail",
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
		task, err := e.tasks.Get(ctx, id, e.ownerID)
		if err != nil {
			return err
		}
		tags, err := e.tags.ListForTask(ctx, id, e.ownerID)
		if err != nil {
			return err
		}

		fmt.Print(cli.RenderTaskDetail(task, tags))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
