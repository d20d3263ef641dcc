package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/wizzomafizzo/filefilter/internal/app"
	"github.com/wizzomafizzo/filefilter/internal/manifest"
)

// createApplyCommand creates the apply command.
func createApplyCommand(env environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply packaging rules and print the manifest",
		Long: "Enumerate the folder, apply the rules document for the target platform, " +
			"print the resulting manifest and record it in history.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd, env)
			if err != nil {
				return err
			}

			strict, _ := cmd.Flags().GetBool("strict")
			noHistory, _ := cmd.Flags().GetBool("no-history")
			s.opts.Strict = s.opts.Strict || strict
			s.opts.History = s.opts.History && !noHistory

			cliApp := s.newApp()
			result, err := cliApp.Run(s.ctx)
			if err != nil {
				return fmt.Errorf("apply failed: %w", err)
			}

			printManifest(cmd.OutOrStdout(), result)
			printConflicts(cmd.ErrOrStderr(), result.Manifest)

			if err := cliApp.Record(s.ctx, result); err != nil {
				return fmt.Errorf("apply failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().Bool("strict", false, "Fail when a pattern rule matches nothing")
	cmd.Flags().Bool("no-history", false, "Do not record the manifest")

	return cmd
}

// printManifest writes one line per entry followed by a summary.
func printManifest(w io.Writer, result *app.Result) {
	dirColor := color.New(color.FgBlue)
	for _, entry := range result.Manifest.Entries {
		destination := color.GreenString(entry.Destination)
		if manifest.IsDirectory(entry) {
			destination = dirColor.Sprint(entry.Destination)
		}
		_, _ = fmt.Fprintf(w, "%s -> %s\n", entry.Source, destination)
	}

	_, _ = fmt.Fprintf(w, "%s: %d files, %d directories\n",
		result.Name, len(result.Manifest.Files()), len(result.Manifest.Directories()))

	if noOps := result.Report.NoOps(); len(noOps) > 0 {
		_, _ = fmt.Fprintf(w, "%s %d rules matched nothing\n", color.YellowString("[!]"), len(noOps))
	}
}

func printConflicts(w io.Writer, m manifest.Manifest) {
	for _, conflict := range m.Conflicts() {
		_, _ = fmt.Fprintf(w, "%s %s is claimed by %v\n",
			color.YellowString("[!]"), conflict.Destination, conflict.Sources)
	}
}
