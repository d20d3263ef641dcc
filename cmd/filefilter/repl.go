package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/wizzomafizzo/filefilter/internal/filter"
	"github.com/wizzomafizzo/filefilter/internal/logging"
	"github.com/wizzomafizzo/filefilter/internal/prompt"
)

var replCommands = []string{
	"autoproject", "exclude", "help", "imply", "include", "list", "map", "quit", "rewrite",
}

const replHelp = `include PATTERN        map matching candidates to themselves
exclude PATTERN        drop entries whose destination matches
rewrite PATTERN REPL   substitute in every destination
map SOURCE DEST        add one mapping
autoproject            run the project packager
imply                  add entries for destination directories
list                   print the current mappings
quit                   leave
`

// errQuit ends the interactive session.
var errQuit = errors.New("quit")

// createReplCommand creates the interactive directive shell.
func createReplCommand(env environment) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Apply directives interactively to the folder's candidates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(cmd, env)
			if err != nil {
				return err
			}

			f, err := s.newApp().NewFilter(s.ctx)
			if err != nil {
				return fmt.Errorf("failed to start repl: %w", err)
			}

			prompter := prompt.NewLinerPrompter(replCommands)
			defer func() { _ = prompter.Close() }()

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d candidates for %s. Type help for commands.\n",
				len(f.Candidates()), f.Platform())
			return runRepl(s.ctx, f, prompter, cmd.OutOrStdout())
		},
	}
}

// runRepl reads directives until quit or end of input. Directive errors are
// reported and leave the mappings unchanged.
func runRepl(ctx context.Context, f *filter.Filter, prompter prompt.Prompter, out io.Writer) error {
	logger := logging.Get(ctx)

	for {
		line, err := prompt.ReadLine(prompter, "filefilter>")
		if errors.Is(err, prompt.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err //nolint:wrapcheck // already describes the failure
		}
		if line == "" {
			continue
		}

		fields, err := prompt.Fields(line)
		if err == nil {
			err = runDirective(f, fields, out)
		}
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			logger.Debug().Err(err).Str("line", line).Msg("Directive failed")
			_, _ = fmt.Fprintf(out, "%s %v\n", color.RedString("[✗]"), err)
		}
	}
}

func runDirective(f *filter.Filter, fields []string, out io.Writer) error {
	name, args := fields[0], fields[1:]

	want := map[string]int{
		"include": 1, "exclude": 1, "rewrite": 2, "map": 2,
		"autoproject": 0, "imply": 0, "list": 0, "help": 0, "quit": 0,
	}
	count, ok := want[name]
	if !ok {
		return fmt.Errorf("unknown command '%s'", name)
	}
	if len(args) != count {
		return fmt.Errorf("%s takes %d arguments, got %d", name, count, len(args))
	}

	var matched bool
	var err error

	switch name {
	case "include":
		matched, err = f.ApplyInclude(args[0])
	case "exclude":
		matched, err = f.ApplyExclude(args[0])
	case "rewrite":
		matched, err = f.ApplyRewrite(args[0], args[1])
	case "map":
		matched, err = true, f.AddManualMapping(args[0], args[1])
	case "autoproject":
		matched, err = true, f.ApplyAutoProject()
	case "imply":
		matched, err = true, f.ImplyDirectories()
	case "list":
		for _, entry := range f.Entries() {
			_, _ = fmt.Fprintf(out, "%s -> %s\n", entry.Source, entry.Destination)
		}
		_, _ = fmt.Fprintf(out, "%d mappings\n", f.Len())
		return nil
	case "help":
		_, _ = fmt.Fprint(out, replHelp)
		return nil
	case "quit":
		return errQuit
	}

	if err != nil {
		return err //nolint:wrapcheck // filter errors name the pattern or key
	}

	if matched {
		_, _ = fmt.Fprintf(out, "%s %d mappings\n", color.GreenString("[✓]"), f.Len())
	} else {
		_, _ = fmt.Fprintf(out, "%s matched nothing\n", color.YellowString("[!]"))
	}
	return nil
}
