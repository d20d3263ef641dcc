package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wizzomafizzo/filefilter/internal/filter"
	"github.com/wizzomafizzo/filefilter/internal/patterns"
	"github.com/wizzomafizzo/filefilter/internal/rules"
)

// createRulesCommand creates the rules command with subcommands.
func createRulesCommand(env environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List packaging rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd, env)
			if err != nil {
				return err
			}

			doc, err := s.newApp().LoadRules()
			if err != nil {
				return fmt.Errorf("failed to list rules: %w", err)
			}

			_, _ = fmt.Fprint(cmd.OutOrStdout(), formatRules(doc))
			return nil
		},
	}

	cmd.AddCommand(
		createRulesGenerateCommand(),
		createRulesTestCommand(),
	)

	return cmd
}

// createRulesGenerateCommand creates the pattern generation subcommand.
func createRulesGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <path>",
		Short: "Generate a pattern matching a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, _ := cmd.Flags().GetString("kind")

			var pattern string
			switch kind {
			case "path":
				pattern = patterns.ForPath(args[0])
			case "extension":
				pattern = patterns.ForExtension(args[0])
			case "directory":
				pattern = patterns.ForDirectory(args[0])
			default:
				return fmt.Errorf("unknown pattern kind '%s'", kind)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), pattern)
			return nil
		},
	}

	cmd.Flags().String("kind", "path", "Pattern kind: path, extension or directory")
	return cmd
}

// createRulesTestCommand creates the pattern testing subcommand.
func createRulesTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test <pattern> <path>",
		Short: "Test if a pattern matches a path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("requires pattern and path arguments")
			}

			re, err := filter.Compile(args[0])
			if err != nil {
				return err //nolint:wrapcheck // already names the pattern
			}

			matched, err := re.MatchString(args[1])
			if err != nil {
				return fmt.Errorf("failed to match: %w", err)
			}

			if matched {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "[✓] Pattern matches!")
			} else {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "[✗] Pattern does not match")
			}
			return nil
		},
	}
}

// formatRules renders rules with their 1-based index.
func formatRules(doc *rules.Document) string {
	var b strings.Builder
	for i := range doc.Rules {
		rule := &doc.Rules[i]
		_, _ = fmt.Fprintf(&b, "[%d] %s", i+1, rule.Directive())

		switch rule.Directive() {
		case rules.DirectiveInclude:
			_, _ = fmt.Fprintf(&b, " %s", rule.Include)
		case rules.DirectiveExclude:
			_, _ = fmt.Fprintf(&b, " %s", rule.Exclude)
		case rules.DirectiveRewrite:
			_, _ = fmt.Fprintf(&b, " %s => %s", rule.Rewrite.Find, rule.Rewrite.Replace)
		case rules.DirectiveMap:
			_, _ = fmt.Fprintf(&b, " %s -> %s", rule.Map.Source, rule.Map.Destination)
		}

		if len(rule.Platforms) > 0 {
			_, _ = fmt.Fprintf(&b, " (%s)", strings.Join(rule.Platforms, ", "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
