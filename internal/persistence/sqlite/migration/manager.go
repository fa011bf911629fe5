package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Migration is a single schema step. Versions are applied in ascending order
// and recorded in schema_migrations so each step runs exactly once.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// Migrations returns the schema steps for the booking database.
func Migrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "create rooms table",
			SQL: `
				CREATE TABLE IF NOT EXISTS rooms (
					id            TEXT PRIMARY KEY,
					name          TEXT NOT NULL UNIQUE,
					room_type     TEXT NOT NULL DEFAULT 'comum',
					capacity      INTEGER NOT NULL DEFAULT 30 CHECK (capacity > 0),
					open_minutes  INTEGER NOT NULL DEFAULT 480,
					close_minutes INTEGER NOT NULL DEFAULT 1080 CHECK (close_minutes > open_minutes),
					created_at    TEXT NOT NULL,
					updated_at    TEXT NOT NULL
				)`,
		},
		{
			Version:     2,
			Description: "create reservations table",
			SQL: `
				CREATE TABLE IF NOT EXISTS reservations (
					id         TEXT PRIMARY KEY,
					room_id    TEXT NOT NULL REFERENCES rooms(id),
					user_id    TEXT,
					start_at   TEXT NOT NULL,
					end_at     TEXT NOT NULL CHECK (end_at > start_at),
					party_size INTEGER NOT NULL DEFAULT 1 CHECK (party_size > 0),
					checked_in INTEGER NOT NULL DEFAULT 0,
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL
				)`,
		},
		{
			Version:     3,
			Description: "index reservations for interval and reminder scans",
			SQL: `
				CREATE INDEX IF NOT EXISTS idx_reservations_room_interval
					ON reservations (room_id, start_at, end_at);
				CREATE INDEX IF NOT EXISTS idx_reservations_user_end
					ON reservations (user_id, end_at)`,
		},
	}
}

// Manager applies pending schema migrations.
type Manager struct {
	db *sql.DB
}

// NewManager creates a migration manager bound to the database.
func NewManager(db *sql.DB) *Manager {
	return &Manager{db: db}
}

// Apply runs every migration not yet recorded, each inside its own
// transaction. It is safe to call on every startup.
func (m *Manager) Apply(ctx context.Context) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("migration manager not configured")
	}

	if _, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  TEXT NOT NULL
		)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, step := range Migrations() {
		if _, ok := applied[step.Version]; ok {
			continue
		}
		if err := m.applyStep(ctx, step); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", step.Version, step.Description, err)
		}
	}
	return nil
}

// AppliedVersions lists the recorded migration versions in ascending order.
func (m *Manager) AppliedVersions(ctx context.Context) ([]int, error) {
	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}
	versions := make([]int, 0, len(applied))
	for _, step := range Migrations() {
		if _, ok := applied[step.Version]; ok {
			versions = append(versions, step.Version)
		}
	}
	return versions, nil
}

func (m *Manager) appliedVersions(ctx context.Context) (map[int]struct{}, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]struct{})
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schema_migrations: %w", err)
	}
	return applied, nil
}

func (m *Manager) applyStep(ctx context.Context, step Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
		tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)",
		step.Version, step.Description, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
