package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskwell/taskwell/pkg/taskwell/cli"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
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

		if !deleteForce {
			fmt.Printf("Delete task %s: %s? [y/N] ", cli.ShortID(task.ID), task.Title)
			line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		if err := e.tasks.Delete(ctx, id, e.ownerID); err != nil {
			return err
		}
		fmt.Printf("Deleted task %s\n", cli.ShortID(task.ID))
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}
