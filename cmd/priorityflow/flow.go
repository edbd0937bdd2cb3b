package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"priorityflow/internal/domain"
	"priorityflow/internal/render"
)

func newFlowCommand(configPath *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "flow",
		Short: "Print the task flow diagram source (DOT or Mermaid)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			tasks, err := a.tasks.List(domain.TaskFilter{})
			if err != nil {
				return err
			}

			switch format {
			case "dot":
				fmt.Fprintln(cmd.OutOrStdout(), render.DOT(tasks))
			case "mermaid":
				fmt.Fprintln(cmd.OutOrStdout(), render.Mermaid(tasks))
			default:
				return fmt.Errorf("unknown format %q (want dot or mermaid)", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "dot", "diagram format: dot or mermaid")
	return cmd
}
