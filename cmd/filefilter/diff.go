package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// createDiffCommand creates the diff command.
func createDiffCommand(env environment) *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Compare the current manifest with the last recorded one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd, env)
			if err != nil {
				return err
			}

			cliApp := s.newApp()
			result, err := cliApp.Run(s.ctx)
			if err != nil {
				return fmt.Errorf("diff failed: %w", err)
			}

			diff, err := cliApp.Diff(s.ctx, result)
			if err != nil {
				return fmt.Errorf("diff failed: %w", err)
			}

			if diff == "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No changes since the last recorded manifest")
				return nil
			}
			printDiff(cmd.OutOrStdout(), diff)
			return nil
		},
	}
}

func printDiff(w io.Writer, diff string) {
	for line := range strings.Lines(diff) {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			_, _ = fmt.Fprint(w, color.New(color.Bold).Sprint(line))
		case strings.HasPrefix(line, "+"):
			_, _ = fmt.Fprint(w, color.GreenString(line))
		case strings.HasPrefix(line, "-"):
			_, _ = fmt.Fprint(w, color.RedString(line))
		case strings.HasPrefix(line, "@@"):
			_, _ = fmt.Fprint(w, color.CyanString(line))
		default:
			_, _ = fmt.Fprint(w, line)
		}
	}
}
