package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wizzomafizzo/filefilter/internal/filter"
	"github.com/wizzomafizzo/filefilter/internal/manifest"
)

// Run describes the last recorded manifest for a module and platform.
type Run struct {
	RecordedAt time.Time
	Module     string
	Platform   string
	Entries    int
}

// SaveManifest replaces the recorded manifest for module and platform.
func (m *Manager) SaveManifest(ctx context.Context, module, platform string, man manifest.Manifest) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM manifests WHERE module = ? AND platform = ?", module, platform); err != nil {
		return fmt.Errorf("failed to clear manifest: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO manifests (module, platform, source, destination) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, entry := range man.Entries {
		if _, err := stmt.ExecContext(ctx, module, platform, entry.Source, entry.Destination); err != nil {
			return fmt.Errorf("failed to record %s: %w", entry.Source, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (module, platform, entries, recorded_at) VALUES (?, ?, ?, unixepoch())
		ON CONFLICT (module, platform) DO UPDATE SET entries = excluded.entries, recorded_at = excluded.recorded_at`,
		module, platform, len(man.Entries)); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit manifest: %w", err)
	}
	return nil
}

// LoadManifest returns the recorded manifest, empty when none was recorded.
func (m *Manager) LoadManifest(ctx context.Context, module, platform string) (manifest.Manifest, error) {
	rows, err := m.db.QueryContext(ctx,
		"SELECT source, destination FROM manifests WHERE module = ? AND platform = ? ORDER BY source",
		module, platform)
	if err != nil {
		return manifest.Manifest{}, fmt.Errorf("failed to query manifest: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []filter.Entry
	for rows.Next() {
		var entry filter.Entry
		if err := rows.Scan(&entry.Source, &entry.Destination); err != nil {
			return manifest.Manifest{}, fmt.Errorf("failed to scan manifest entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return manifest.Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
	}

	return manifest.New(entries), nil
}

// LastRun returns the last recorded run, or nil when none exists.
func (m *Manager) LastRun(ctx context.Context, module, platform string) (*Run, error) {
	run := Run{Module: module, Platform: platform}
	var recordedAt int64

	err := m.db.QueryRowContext(ctx,
		"SELECT entries, recorded_at FROM runs WHERE module = ? AND platform = ?",
		module, platform).Scan(&run.Entries, &recordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	run.RecordedAt = time.Unix(recordedAt, 0)
	return &run, nil
}

// Runs lists every recorded run, most recent first.
func (m *Manager) Runs(ctx context.Context) ([]Run, error) {
	rows, err := m.db.QueryContext(ctx,
		"SELECT module, platform, entries, recorded_at FROM runs ORDER BY recorded_at DESC, module, platform")
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var run Run
		var recordedAt int64
		if err := rows.Scan(&run.Module, &run.Platform, &run.Entries, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.RecordedAt = time.Unix(recordedAt, 0)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}

	return runs, nil
}
