package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"priorityflow/internal/domain"
	"priorityflow/internal/service"
)

func newTaskCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks from the command line",
	}
	cmd.AddCommand(
		newTaskAddCommand(configPath),
		newTaskListCommand(configPath),
		newTaskTopCommand(configPath),
		newTaskDoneCommand(configPath),
		newTaskDeleteCommand(configPath),
	)
	return cmd
}

func newTaskAddCommand(configPath *string) *cobra.Command {
	var (
		category string
		impact   string
		due      string
		effort   int
		info     []string
		deps     []int64
		tags     []string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task and print its computed priority",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			task := domain.NewTask(strings.Join(args, " "))
			if category != "" {
				task.Category = domain.ParseCategory(category)
			}
			if impact != "" {
				task.BusinessImpact = domain.ParseImpact(impact)
			}
			if due != "" {
				task.DueDate = due
			}
			if effort != 0 {
				task.Effort = effort
			}
			if len(info) > 0 {
				task.RequiredInfo = info
			}
			if len(deps) > 0 {
				task.Dependencies = deps
			}
			if len(tags) > 0 {
				task.Tags = tags
			}

			saved, err := a.tasks.Save(task)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created #%d → %s (score %.0f), status %s\n",
				saved.ID, saved.PriorityLabel, saved.PriorityScore, saved.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Escuela or Trabajo")
	cmd.Flags().StringVar(&impact, "impact", "", "Low, Medium, High or Critical")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&effort, "effort", 0, "effort 1-8")
	cmd.Flags().StringSliceVar(&info, "info", nil, "required information items")
	cmd.Flags().Int64SliceVar(&deps, "depends-on", nil, "ids of prerequisite tasks")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "free-text tags")
	return cmd
}

func newTaskListCommand(configPath *string) *cobra.Command {
	var (
		statuses   []string
		labels     []string
		categories []string
		query      string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally filtered",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			filter := domain.TaskFilter{Search: query}
			for _, s := range statuses {
				filter.Statuses = append(filter.Statuses, domain.ParseStatus(s))
			}
			for _, l := range labels {
				filter.Labels = append(filter.Labels, domain.ParseLabel(l))
			}
			for _, c := range categories {
				filter.Categories = append(filter.Categories, domain.ParseCategory(c))
			}

			tasks, err := a.tasks.List(filter)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTaskTable(tasks))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "filter by status")
	cmd.Flags().StringSliceVar(&labels, "label", nil, "filter by priority label")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "filter by category")
	cmd.Flags().StringVar(&query, "search", "", "substring match over title and tags")
	return cmd
}

func newTaskTopCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "top",
		Short: "Show the highest-priority pending tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.tasks.RescoreAll(); err != nil {
				return err
			}
			top, err := a.tasks.Top()
			if err != nil {
				return err
			}
			if len(top) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), service.FormatDigest(nil))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTaskTable(top))
			return nil
		},
	}
}

func newTaskDoneCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}

			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			task, err := a.tasks.SetStatus(id, domain.StatusDone)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Done #%d: %s\n", task.ID, task.Title)
			return nil
		},
	}
}

func newTaskDeleteCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}

			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.tasks.Delete(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d\n", id)
			return nil
		},
	}
}
