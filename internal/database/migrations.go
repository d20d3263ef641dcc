package database

import (
	"context"
	"fmt"
)

// schema holds one statement batch per version; schema[i] upgrades
// user_version i to i+1.
var schema = []string{
	`CREATE TABLE manifests (
		module TEXT NOT NULL,
		platform TEXT NOT NULL,
		source TEXT NOT NULL,
		destination TEXT NOT NULL,
		PRIMARY KEY (module, platform, source)
	);

	CREATE TABLE runs (
		module TEXT NOT NULL,
		platform TEXT NOT NULL,
		entries INTEGER NOT NULL,
		recorded_at INTEGER NOT NULL DEFAULT (unixepoch()),
		PRIMARY KEY (module, platform)
	);`,

	`CREATE INDEX manifests_by_destination ON manifests (module, platform, destination);`,
}

// SchemaVersion returns the applied schema version.
func (m *Manager) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := m.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func (m *Manager) migrate(ctx context.Context) error {
	version, err := m.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if version > len(schema) {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, len(schema))
	}

	for next := version + 1; next <= len(schema); next++ {
		if err := m.upgrade(ctx, next, schema[next-1]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) upgrade(ctx context.Context, version int, statements string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, statements); err != nil {
		return fmt.Errorf("failed to apply migration %d: %w", version, err)
	}

	// PRAGMA does not accept bound parameters
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("failed to record schema version %d: %w", version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", version, err)
	}
	return nil
}
