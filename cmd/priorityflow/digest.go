package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newDigestCommand is the cron entry point: rescore everything, send the
// top-priority summary over WhatsApp.
func newDigestCommand(configPath *string) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Send the daily top-priority digest",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			if dryRun {
				if err := a.tasks.RescoreAll(); err != nil {
					return err
				}
				body, err := a.digest.Build()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), body)
				return nil
			}

			if err := a.digest.Send(cmd.Context()); err != nil {
				return err
			}
			a.logger.Info("digest sent")
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the digest instead of sending it")
	return cmd
}
