// Package app wires enumeration, rules, the filter and manifest history together.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/wizzomafizzo/filefilter/internal/autoproject"
	"github.com/wizzomafizzo/filefilter/internal/candidates"
	"github.com/wizzomafizzo/filefilter/internal/database"
	"github.com/wizzomafizzo/filefilter/internal/filter"
	"github.com/wizzomafizzo/filefilter/internal/logging"
	"github.com/wizzomafizzo/filefilter/internal/manifest"
	"github.com/wizzomafizzo/filefilter/internal/module"
	"github.com/wizzomafizzo/filefilter/internal/rules"
	"github.com/wizzomafizzo/filefilter/internal/storage"
)

// App runs packaging rules for one folder and platform.
type App struct {
	fs      afero.Fs
	storage *storage.Manager
	opts    AppOptions
}

// Result is the outcome of applying the rules.
type Result struct {
	Module   *module.Module
	Report   *rules.Report
	Name     string
	Manifest manifest.Manifest
}

// NewApp creates an App over fs.
func NewApp(fs afero.Fs, opts AppOptions) *App {
	return &App{fs: fs, storage: storage.New(fs), opts: opts}
}

// Platform returns the target platform.
func (a *App) Platform() string {
	return a.opts.Platform
}

// RulesPath returns the resolved rules document path.
func (a *App) RulesPath() string {
	return a.opts.rulesPath()
}

// NewFilter enumerates candidates and discovers the owning module.
func (a *App) NewFilter(ctx context.Context) (*filter.Filter, error) {
	dir := a.opts.dir()

	paths, err := candidates.Walk(a.fs, dir, candidates.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate candidates: %w", err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	mod, err := module.Discover(a.fs, absDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load module: %w", err)
	}

	logger := logging.Get(ctx)
	event := logger.Debug().Int("candidates", len(paths)).Str("dir", dir)
	if mod != nil {
		event = event.Str("module", mod.Name)
	}
	event.Msg("Enumerated candidates")

	packager := autoproject.New(a.fs, *logger)
	return filter.New(packager, mod, a.opts.Platform, paths), nil
}

// LoadRules reads and validates the rules document.
func (a *App) LoadRules() (*rules.Document, error) {
	doc, err := rules.Load(a.fs, a.RulesPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	return doc, nil
}

// Run applies the rules document and builds the manifest.
func (a *App) Run(ctx context.Context) (*Result, error) {
	doc, err := a.LoadRules()
	if err != nil {
		return nil, err
	}

	f, err := a.NewFilter(ctx)
	if err != nil {
		return nil, err
	}

	report, err := rules.Apply(ctx, f, doc, rules.Options{Strict: a.opts.Strict})
	if err != nil {
		return nil, fmt.Errorf("failed to apply rules: %w", err)
	}

	result := &Result{
		Module:   f.Module(),
		Report:   report,
		Name:     a.name(f.Module()),
		Manifest: manifest.FromFilter(f),
	}

	for _, conflict := range result.Manifest.Conflicts() {
		logging.Get(ctx).Warn().
			Str("destination", conflict.Destination).
			Strs("sources", conflict.Sources).
			Msg("Destination claimed by multiple sources")
	}

	return result, nil
}

// Record stores the manifest in history when history is enabled.
func (a *App) Record(ctx context.Context, result *Result) error {
	if !a.opts.History {
		return nil
	}

	db, err := a.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.SaveManifest(ctx, result.Name, a.opts.Platform, result.Manifest); err != nil {
		return fmt.Errorf("failed to record manifest: %w", err)
	}

	logging.Get(ctx).Info().
		Str("name", result.Name).
		Int("entries", len(result.Manifest.Entries)).
		Msg("Recorded manifest")
	return nil
}

// Diff compares result with the recorded manifest.
func (a *App) Diff(ctx context.Context, result *Result) (string, error) {
	db, err := a.openDatabase(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = db.Close() }()

	recorded, err := db.LoadManifest(ctx, result.Name, a.opts.Platform)
	if err != nil {
		return "", fmt.Errorf("failed to load recorded manifest: %w", err)
	}

	label := fmt.Sprintf("%s/%s", result.Name, a.opts.Platform)
	return manifest.Diff("recorded "+label, "current "+label, recorded, result.Manifest)
}

// History lists the recorded manifests, most recent first.
func (a *App) History(ctx context.Context) ([]database.Run, error) {
	db, err := a.openDatabase(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	runs, err := db.Runs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return runs, nil
}

// ValidateRules loads the rules document and summarizes it.
func (a *App) ValidateRules() (string, error) {
	doc, err := a.LoadRules()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Rules are valid: %d rules in %s\n", len(doc.Rules), a.RulesPath()), nil
}

func (a *App) openDatabase(ctx context.Context) (*database.Manager, error) {
	path := a.opts.DatabasePath
	if path == "" {
		var err error
		path, err = a.storage.GetDatabasePath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
	}

	db, err := database.NewManager(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("manifest history unavailable: %w", err)
	}
	return db, nil
}

// name identifies the packaged folder in history.
func (a *App) name(mod *module.Module) string {
	if mod != nil {
		return mod.Name
	}
	abs, err := filepath.Abs(a.opts.dir())
	if err != nil {
		return a.opts.dir()
	}
	return filepath.Base(abs)
}
