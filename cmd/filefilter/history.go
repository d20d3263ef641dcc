package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// createHistoryCommand creates the history command.
func createHistoryCommand(env environment) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List recorded manifests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd, env)
			if err != nil {
				return err
			}

			runs, err := s.newApp().History(s.ctx)
			if err != nil {
				return fmt.Errorf("history failed: %w", err)
			}

			if len(runs) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No manifests recorded")
				return nil
			}
			for _, run := range runs {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s %-10s %d entries\n",
					run.RecordedAt.Format("2006-01-02 15:04:05"), run.Module, run.Platform, run.Entries)
			}
			return nil
		},
	}
}
