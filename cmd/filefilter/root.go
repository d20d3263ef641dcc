package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/wizzomafizzo/filefilter/internal/app"
	"github.com/wizzomafizzo/filefilter/internal/config"
	"github.com/wizzomafizzo/filefilter/internal/constants"
	"github.com/wizzomafizzo/filefilter/internal/logging"
)

// environment holds what commands touch outside the process.
type environment struct {
	fs afero.Fs
	// logWriter replaces the rotating log file when set.
	logWriter io.Writer
	// databasePath replaces the XDG history database when set.
	databasePath string
}

// session carries the logger context and the app options derived from config.
type session struct {
	ctx  context.Context
	fs   afero.Fs
	opts app.AppOptions
}

// createRootCommand creates the main root command that shows help by default.
func createRootCommand() *cobra.Command {
	return newRootCommand(environment{fs: afero.NewOsFs()})
}

func newRootCommand(env environment) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "filefilter",
		Short:        "Rule-driven file packaging",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", constants.ConfigFilename, "Path to config file")
	flags.StringP("dir", "d", ".", "Folder to package")
	flags.StringP("rules", "r", "", "Rules document, relative to --dir (default from config)")
	flags.StringP("platform", "p", "", "Target platform (default from config)")
	flags.String("log-level", "", "Log level (default from config)")
	flags.BoolP("verbose", "v", false, "Also write log records to stderr")

	rootCmd.AddCommand(
		createApplyCommand(env),
		createDiffCommand(env),
		createHistoryCommand(env),
		createReplCommand(env),
		createRulesCommand(env),
		createValidateCommand(env),
	)

	return rootCmd
}

// newSession loads config, applies flag overrides and attaches a logger.
func newSession(cmd *cobra.Command, env environment) (*session, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	cfg, err := config.Load(env.fs, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := applyFlagOverrides(cmd, cfg); err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err //nolint:wrapcheck // already names the level
	}

	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return nil, fmt.Errorf("failed to get dir flag: %w", err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	var console io.Writer
	if verbose {
		console = cmd.ErrOrStderr()
	}

	ctx, err := logging.New(cmd.Context(), env.fs, logging.Config{
		Writer:   env.logWriter,
		Console:  console,
		Module:   moduleLabel(dir),
		Platform: cfg.Platform,
		Level:    level,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	opts := app.OptionsFromConfig(cfg, dir)
	opts.DatabasePath = env.databasePath

	return &session{ctx: ctx, fs: env.fs, opts: opts}, nil
}

func (s *session) newApp() *app.App {
	return app.NewApp(s.fs, s.opts)
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	overrides := map[string]*string{
		"rules":     &cfg.Rules,
		"platform":  &cfg.Platform,
		"log-level": &cfg.Log.Level,
	}

	for name, target := range overrides {
		if !cmd.Flags().Changed(name) {
			continue
		}
		value, err := cmd.Flags().GetString(name)
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", name, err)
		}
		*target = value
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func moduleLabel(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir
	}
	return filepath.Base(abs)
}
