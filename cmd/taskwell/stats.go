package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskwell/taskwell/pkg/taskwell/cli"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}

		stats, err := e.tasks.Stats(context.Background(), e.ownerID)
		if err != nil {
			return err
		}
		fmt.Print(cli.RenderStats(stats))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
