package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskwell/taskwell/pkg/taskwell/cli"
	"github.com/taskwell/taskwell/pkg/taskwell/models"
	"github.com/taskwell/taskwell/pkg/taskwell/store"
)

var (
	listStatus   string
	listPriority string
	listSearch   string
	listTags     []string
	listSort     string
	listOrder    string
	listPage     int
	listLimit    int
	listAll      bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		ctx := context.Background()

		q := store.TaskQuery{
			Search:    listSearch,
			SortBy:    listSort,
			SortOrder: listOrder,
			Page:      listPage,
			PageSize:  listLimit,
		}
		if listStatus != "" {
			st := models.Status(listStatus)
			q.Status = &st
		}
		if listPriority != "" {
			p := models.Priority(listPriority)
			q.Priority = &p
		}
		for _, name := range listTags {
			tag, err := e.resolveTag(ctx, name)
			if err != nil {
				return err
			}
			q.TagIDs = append(q.TagIDs, tag.ID)
		}
		if listAll {
			q.PageSize = store.MaxPageSize
		}

		tasks, total, err := e.tasks.List(ctx, e.ownerID, &q)
		if err != nil {
			return err
		}

		fmt.Print(cli.RenderTaskTable(tasks))
		if total > int64(len(tasks)) {
			fmt.Printf("Page %d of %d (%d tasks total, --page to see more)\n",
				q.Page, store.TotalPages(total, q.PageSize), total)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "Filter by status (pending, in_progress, completed)")
	listCmd.Flags().StringVarP(&listPriority, "priority", "p", "", "Filter by priority (low, medium, high)")
	listCmd.Flags().StringVar(&listSearch, "search", "", "Match text in title or description")
	listCmd.Flags().StringSliceVarP(&listTags, "tag", "t", nil, "Only tasks with this tag (repeatable, matches any)")
	listCmd.Flags().StringVar(&listSort, "sort", "", "Sort field (created_at, due_date, priority, title, status)")
	listCmd.Flags().StringVar(&listOrder, "order", "", "Sort direction (asc, desc)")
	listCmd.Flags().IntVar(&listPage, "page", 0, "Page number")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Tasks per page")
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Show as many tasks as one page allows")
	rootCmd.AddCommand(listCmd)
}
