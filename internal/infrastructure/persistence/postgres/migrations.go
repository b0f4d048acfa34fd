package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION SUPPORT
// Migrations create the schema only. Reference data comes through the
// catalog commands, not through seeds.
// ══════════════════════════════════════════════════════════════════════════════

// Migration represents a database migration.
type Migration struct {
	Version   int
	Name      string
	UpSQL     string
	DownSQL   string
	AppliedAt time.Time
	IsApplied bool
}

// Migrator handles database migrations.
type Migrator struct {
	conn       *Connection
	migrations []Migration
	tableName  string
}

// NewMigrator creates a new migrator with embedded migrations.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{
		conn:       conn,
		migrations: GetMigrations(),
		tableName:  "schema_migrations",
	}
}

// EnsureMigrationTable creates the migration tracking table if it
// doesn't exist.
func (m *Migrator) EnsureMigrationTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`, m.tableName)

	if _, err := m.conn.Pool().Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	return nil
}

// GetAppliedMigrations returns all applied migrations.
func (m *Migrator) GetAppliedMigrations(ctx context.Context) (map[int]time.Time, error) {
	query := fmt.Sprintf("SELECT version, applied_at FROM %s ORDER BY version", m.tableName)

	rows, err := m.conn.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var appliedAt time.Time

		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}

		applied[version] = appliedAt
	}

	return applied, rows.Err()
}

// Migrate applies all pending migrations.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if _, isApplied := applied[mig.Version]; isApplied {
			continue
		}

		if mig.UpSQL == "" {
			return fmt.Errorf("%w: missing up SQL for migration %d", ErrMigrationFailed, mig.Version)
		}

		err := m.conn.WithTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return fmt.Errorf("failed to execute migration %d: %w", mig.Version, err)
			}

			insertQuery := fmt.Sprintf(
				"INSERT INTO %s (version, name) VALUES ($1, $2)",
				m.tableName,
			)
			_, err := tx.Exec(ctx, insertQuery, mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: version %d: %v", ErrMigrationFailed, mig.Version, err)
		}
	}

	return nil
}

// Rollback rolls back the last applied migration.
func (m *Migrator) Rollback(ctx context.Context) error {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	var lastVersion int
	for v := range applied {
		if v > lastVersion {
			lastVersion = v
		}
	}

	if lastVersion == 0 {
		return nil // Nothing to rollback
	}

	var migration *Migration
	for i := range m.migrations {
		if m.migrations[i].Version == lastVersion {
			migration = &m.migrations[i]
			break
		}
	}

	if migration == nil || migration.DownSQL == "" {
		return fmt.Errorf("%w: missing down SQL for migration %d", ErrMigrationFailed, lastVersion)
	}

	return m.conn.WithTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, migration.DownSQL); err != nil {
			return fmt.Errorf("failed to rollback migration %d: %w", lastVersion, err)
		}

		deleteQuery := fmt.Sprintf("DELETE FROM %s WHERE version = $1", m.tableName)
		_, err := tx.Exec(ctx, deleteQuery, lastVersion)
		return err
	})
}

// Status returns the migration status.
func (m *Migrator) Status(ctx context.Context) ([]Migration, error) {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return nil, err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]Migration, len(m.migrations))
	copy(result, m.migrations)

	for i := range result {
		if appliedAt, ok := applied[result[i].Version]; ok {
			result[i].IsApplied = true
			result[i].AppliedAt = appliedAt
		}
	}

	return result, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_periods",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_scoring",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_audit_and_users",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}

const migration001Up = `
CREATE TABLE school_years (
	id     TEXT PRIMARY KEY,
	name   TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'OPEN',
	seq    BIGSERIAL
);

CREATE TABLE months (
	id             TEXT PRIMARY KEY,
	school_year_id TEXT NOT NULL REFERENCES school_years(id) ON DELETE CASCADE,
	name           TEXT NOT NULL,
	ordinal        INTEGER NOT NULL,
	status         TEXT NOT NULL DEFAULT 'OPEN',
	seq            BIGSERIAL
);

CREATE TABLE weeks (
	id       TEXT PRIMARY KEY,
	month_id TEXT NOT NULL REFERENCES months(id) ON DELETE CASCADE,
	name     TEXT NOT NULL,
	ordinal  INTEGER NOT NULL,
	status   TEXT NOT NULL DEFAULT 'OPEN',
	seq      BIGSERIAL
);

CREATE TABLE settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE INDEX idx_months_school_year ON months(school_year_id);
CREATE INDEX idx_weeks_month ON weeks(month_id);
`

const migration001Down = `
DROP TABLE IF EXISTS settings;
DROP TABLE IF EXISTS weeks;
DROP TABLE IF EXISTS months;
DROP TABLE IF EXISTS school_years;
`

const migration002Up = `
CREATE TABLE classes (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	grade_level INTEGER NOT NULL,
	seq         BIGSERIAL
);

CREATE TABLE violation_categories (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	base_points DOUBLE PRECISION NOT NULL,
	seq         BIGSERIAL
);

CREATE TABLE score_entries (
	id            TEXT PRIMARY KEY,
	week_id       TEXT NOT NULL,
	class_id      TEXT NOT NULL,
	violation_id  TEXT NOT NULL,
	student_count INTEGER NOT NULL CHECK (student_count > 0),
	points        DOUBLE PRECISION NOT NULL,
	note          TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMP WITH TIME ZONE NOT NULL,
	created_by    TEXT NOT NULL,
	seq           BIGSERIAL
);

CREATE INDEX idx_score_entries_week ON score_entries(week_id);
CREATE INDEX idx_score_entries_class ON score_entries(class_id);
CREATE INDEX idx_score_entries_violation ON score_entries(violation_id);
`

const migration002Down = `
DROP TABLE IF EXISTS score_entries;
DROP TABLE IF EXISTS violation_categories;
DROP TABLE IF EXISTS classes;
`

const migration003Up = `
CREATE TABLE audit_log (
	id          TEXT PRIMARY KEY,
	ts          TIMESTAMP WITH TIME ZONE NOT NULL,
	actor_id    TEXT NOT NULL,
	actor_name  TEXT NOT NULL,
	action      TEXT NOT NULL,
	target_type TEXT NOT NULL,
	target_id   TEXT NOT NULL,
	details     TEXT NOT NULL DEFAULT '',
	reason      TEXT NOT NULL DEFAULT '',
	seq         BIGSERIAL
);

CREATE INDEX idx_audit_log_seq ON audit_log(seq DESC);
CREATE INDEX idx_audit_log_actor ON audit_log(actor_id);

CREATE TABLE users (
	id             TEXT PRIMARY KEY,
	display_name   TEXT NOT NULL,
	role           TEXT NOT NULL,
	username       TEXT NOT NULL UNIQUE,
	password       TEXT NOT NULL,
	is_first_login BOOLEAN NOT NULL DEFAULT TRUE,
	phone          TEXT NOT NULL DEFAULT '',
	email          TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMP WITH TIME ZONE NOT NULL,
	seq            BIGSERIAL
);
`

const migration003Down = `
DROP TABLE IF EXISTS users;
DROP TABLE IF EXISTS audit_log;
`
