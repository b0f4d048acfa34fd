package postgres

import (
	"context"
	"fmt"

	"github.com/thidua-hub/school-merit-hub/internal/domain/scoring"
	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCORING REPOSITORIES
// ══════════════════════════════════════════════════════════════════════════════

// ScoringRepository implements scoring.ClassRepository,
// scoring.ViolationRepository and scoring.EntryRepository on PostgreSQL.
type ScoringRepository struct {
	conn *Connection
}

// NewScoringRepository creates a new ScoringRepository.
func NewScoringRepository(conn *Connection) *ScoringRepository {
	return &ScoringRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Classes
// ─────────────────────────────────────────────────────────────────────────────

// GetClass loads one class.
func (r *ScoringRepository) GetClass(ctx context.Context, id string) (*scoring.ClassRoom, error) {
	row := r.conn.querier(ctx).QueryRow(ctx,
		`SELECT id, name, grade_level FROM classes WHERE id = $1`, id)

	var c scoring.ClassRoom
	if err := row.Scan(&c.ID, &c.Name, &c.GradeLevel); err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("postgres", "GetClass", shared.ErrNotFound, "class "+id)
		}
		return nil, fmt.Errorf("postgres: get class: %w", err)
	}
	return &c, nil
}

// ListClasses lists all classes in creation order.
func (r *ScoringRepository) ListClasses(ctx context.Context) ([]*scoring.ClassRoom, error) {
	rows, err := r.conn.querier(ctx).Query(ctx,
		`SELECT id, name, grade_level FROM classes ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list classes: %w", err)
	}
	defer rows.Close()

	var out []*scoring.ClassRoom
	for rows.Next() {
		var c scoring.ClassRoom
		if err := rows.Scan(&c.ID, &c.Name, &c.GradeLevel); err != nil {
			return nil, fmt.Errorf("postgres: scan class: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// SaveClass upserts a class.
func (r *ScoringRepository) SaveClass(ctx context.Context, class *scoring.ClassRoom) error {
	_, err := r.conn.querier(ctx).Exec(ctx, `
		INSERT INTO classes (id, name, grade_level) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, grade_level = EXCLUDED.grade_level`,
		class.ID, class.Name, class.GradeLevel)
	if err != nil {
		return fmt.Errorf("postgres: save class: %w", err)
	}
	return nil
}

// DeleteClass deletes a class.
func (r *ScoringRepository) DeleteClass(ctx context.Context, id string) error {
	tag, err := r.conn.querier(ctx).Exec(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete class: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("postgres", "DeleteClass", shared.ErrNotFound, "class "+id)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Violation categories
// ─────────────────────────────────────────────────────────────────────────────

// GetViolation loads one violation category.
func (r *ScoringRepository) GetViolation(ctx context.Context, id string) (*scoring.ViolationCategory, error) {
	row := r.conn.querier(ctx).QueryRow(ctx,
		`SELECT id, name, base_points FROM violation_categories WHERE id = $1`, id)

	var v scoring.ViolationCategory
	if err := row.Scan(&v.ID, &v.Name, &v.BasePoints); err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("postgres", "GetViolation", shared.ErrNotFound, "violation category "+id)
		}
		return nil, fmt.Errorf("postgres: get violation: %w", err)
	}
	return &v, nil
}

// ListViolations lists all violation categories in creation order.
func (r *ScoringRepository) ListViolations(ctx context.Context) ([]*scoring.ViolationCategory, error) {
	rows, err := r.conn.querier(ctx).Query(ctx,
		`SELECT id, name, base_points FROM violation_categories ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list violations: %w", err)
	}
	defer rows.Close()

	var out []*scoring.ViolationCategory
	for rows.Next() {
		var v scoring.ViolationCategory
		if err := rows.Scan(&v.ID, &v.Name, &v.BasePoints); err != nil {
			return nil, fmt.Errorf("postgres: scan violation: %w", err)
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

// SaveViolation upserts a violation category. Existing score entries
// keep the points they were computed with.
func (r *ScoringRepository) SaveViolation(ctx context.Context, violation *scoring.ViolationCategory) error {
	_, err := r.conn.querier(ctx).Exec(ctx, `
		INSERT INTO violation_categories (id, name, base_points) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, base_points = EXCLUDED.base_points`,
		violation.ID, violation.Name, violation.BasePoints)
	if err != nil {
		return fmt.Errorf("postgres: save violation: %w", err)
	}
	return nil
}

// DeleteViolation deletes a violation category.
func (r *ScoringRepository) DeleteViolation(ctx context.Context, id string) error {
	tag, err := r.conn.querier(ctx).Exec(ctx, `DELETE FROM violation_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete violation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("postgres", "DeleteViolation", shared.ErrNotFound, "violation category "+id)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Score entries
// ─────────────────────────────────────────────────────────────────────────────

const entryColumns = `id, week_id, class_id, violation_id, student_count, points, note, created_at, created_by`

// GetEntry loads one score entry.
func (r *ScoringRepository) GetEntry(ctx context.Context, id string) (*scoring.ScoreEntry, error) {
	row := r.conn.querier(ctx).QueryRow(ctx,
		`SELECT `+entryColumns+` FROM score_entries WHERE id = $1`, id)

	e, err := scanEntry(row)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("postgres", "GetEntry", shared.ErrNotFound, "score entry "+id)
		}
		return nil, fmt.Errorf("postgres: get entry: %w", err)
	}
	return e, nil
}

// ListEntries lists all score entries in creation order.
func (r *ScoringRepository) ListEntries(ctx context.Context) ([]*scoring.ScoreEntry, error) {
	rows, err := r.conn.querier(ctx).Query(ctx,
		`SELECT `+entryColumns+` FROM score_entries ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list entries: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// ListEntriesByWeek lists the score entries of one week.
func (r *ScoringRepository) ListEntriesByWeek(ctx context.Context, weekID string) ([]*scoring.ScoreEntry, error) {
	rows, err := r.conn.querier(ctx).Query(ctx,
		`SELECT `+entryColumns+` FROM score_entries WHERE week_id = $1 ORDER BY seq`, weekID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list entries by week: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// SaveEntry inserts a score entry. Entries are immutable, so a second
// insert with the same id fails.
func (r *ScoringRepository) SaveEntry(ctx context.Context, entry *scoring.ScoreEntry) error {
	_, err := r.conn.querier(ctx).Exec(ctx, `
		INSERT INTO score_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID, entry.WeekID, entry.ClassID, entry.ViolationID,
		entry.StudentCount, entry.Points, entry.Note, entry.CreatedAt, entry.CreatedBy)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.NewDomainError("postgres", "SaveEntry", shared.ErrAlreadyExists, "score entry "+entry.ID)
		}
		return fmt.Errorf("postgres: save entry: %w", err)
	}
	return nil
}

// DeleteEntry deletes a score entry.
func (r *ScoringRepository) DeleteEntry(ctx context.Context, id string) error {
	tag, err := r.conn.querier(ctx).Exec(ctx, `DELETE FROM score_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("postgres", "DeleteEntry", shared.ErrNotFound, "score entry "+id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*scoring.ScoreEntry, error) {
	var e scoring.ScoreEntry
	err := row.Scan(
		&e.ID, &e.WeekID, &e.ClassID, &e.ViolationID,
		&e.StudentCount, &e.Points, &e.Note, &e.CreatedAt, &e.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEntries(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]*scoring.ScoreEntry, error) {
	var out []*scoring.ScoreEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
