// Package cli holds the rendering and parsing helpers shared by the console
// commands.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/taskwell/taskwell/pkg/taskwell/models"
	"github.com/taskwell/taskwell/pkg/taskwell/store"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	idStyle      = lipgloss.NewStyle().Faint(true)
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	doneStyle    = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	panelStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	priorityStyles = map[models.Priority]lipgloss.Style{
		models.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		models.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		models.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
)

func statusIcon(s models.Status) string {
	switch s {
	case models.StatusCompleted:
		return "✓"
	case models.StatusInProgress:
		return "◐"
	default:
		return "○"
	}
}

// ShortID returns the first eight characters of an id for display
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// RenderTaskTable formats tasks as an aligned table
func RenderTaskTable(tasks []models.Task) string {
	if len(tasks) == 0 {
		return "No tasks found.\n"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-10s %-2s %-40s %-8s %-12s", "ID", "", "TITLE", "PRIORITY", "DUE")))
	b.WriteString("\n")

	now := time.Now()
	for _, t := range tasks {
		title := t.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		if t.Status == models.StatusCompleted {
			title = doneStyle.Render(title)
		}

		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
			if t.DueDate.Before(now) && t.Status != models.StatusCompleted {
				due = overdueStyle.Render(due)
			}
		}

		b.WriteString(fmt.Sprintf("%-10s %-2s %-40s %-8s %-12s\n",
			idStyle.Render(ShortID(t.ID)),
			statusIcon(t.Status),
			title,
			priorityStyles[t.Priority].Render(string(t.Priority)),
			due,
		))
	}
	return b.String()
}

// RenderTaskDetail formats a single task with all its fields
func RenderTaskDetail(t *models.Task, tags []models.Tag) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", statusIcon(t.Status), headerStyle.Render(t.Title))
	fmt.Fprintf(&b, "ID:        %s\n", t.ID)
	fmt.Fprintf(&b, "Status:    %s\n", t.Status)
	fmt.Fprintf(&b, "Priority:  %s\n", priorityStyles[t.Priority].Render(string(t.Priority)))
	if t.Description != "" {
		fmt.Fprintf(&b, "Notes:     %s\n", t.Description)
	}
	if t.DueDate != nil {
		fmt.Fprintf(&b, "Due:       %s\n", t.DueDate.Format("2006-01-02 15:04"))
	}
	if t.CompletedAt != nil {
		fmt.Fprintf(&b, "Completed: %s\n", t.CompletedAt.Format("2006-01-02 15:04"))
	}
	if len(tags) > 0 {
		names := make([]string, len(tags))
		for i, tag := range tags {
			names[i] = tag.Name
		}
		fmt.Fprintf(&b, "Tags:      %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "Created:   %s\n", t.CreatedAt.Format("2006-01-02 15:04"))
	return panelStyle.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

// RenderStats formats the statistics panel
func RenderStats(s *store.Stats) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Task statistics"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total:       %d\n", s.Total)
	fmt.Fprintf(&b, "Pending:     %d\n", s.ByStatus[string(models.StatusPending)])
	fmt.Fprintf(&b, "In progress: %d\n", s.ByStatus[string(models.StatusInProgress)])
	fmt.Fprintf(&b, "Completed:   %d\n", s.ByStatus[string(models.StatusCompleted)])
	fmt.Fprintf(&b, "Overdue:     %d\n", s.Overdue)
	fmt.Fprintf(&b, "Done rate:   %.0f%%\n", s.CompletionRate*100)
	return panelStyle.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}
