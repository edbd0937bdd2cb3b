package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"priorityflow/internal/domain"
)

func renderTaskTable(tasks []*domain.Task) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Title", "Category", "Status", "Prio", "Score", "Due", "Tags"})

	for _, t := range tasks {
		due := t.DueDate
		if due == "" {
			due = "-"
		}
		tw.AppendRow(table.Row{
			t.ID,
			t.Title,
			string(t.Category),
			string(t.Status),
			string(t.PriorityLabel),
			fmt.Sprintf("%.0f", t.PriorityScore),
			due,
			strings.Join(t.Tags, ","),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	return tw.Render()
}
