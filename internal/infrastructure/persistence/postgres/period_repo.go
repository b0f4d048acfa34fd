package postgres

import (
	"context"
	"fmt"

	"github.com/thidua-hub/school-merit-hub/internal/domain/period"
	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PERIOD REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// PeriodRepository implements period.Repository and
// period.SettingsRepository on PostgreSQL.
type PeriodRepository struct {
	conn *Connection
}

// NewPeriodRepository creates a new PeriodRepository.
func NewPeriodRepository(conn *Connection) *PeriodRepository {
	return &PeriodRepository{conn: conn}
}

const activeYearKey = "active_year_id"

// ─────────────────────────────────────────────────────────────────────────────
// School years
// ─────────────────────────────────────────────────────────────────────────────

// GetSchoolYear loads one school year.
func (r *PeriodRepository) GetSchoolYear(ctx context.Context, id string) (*period.SchoolYear, error) {
	row := r.conn.querier(ctx).QueryRow(ctx,
		`SELECT id, name, status FROM school_years WHERE id = $1`, id)

	var y period.SchoolYear
	if err := row.Scan(&y.ID, &y.Name, &y.Status); err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("postgres", "GetSchoolYear", shared.ErrNotFound, "school year "+id)
		}
		return nil, fmt.Errorf("postgres: get school year: %w", err)
	}
	return &y, nil
}

// ListSchoolYears lists school years in creation order.
func (r *PeriodRepository) ListSchoolYears(ctx context.Context) ([]*period.SchoolYear, error) {
	rows, err := r.conn.querier(ctx).Query(ctx,
		`SELECT id, name, status FROM school_years ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list school years: %w", err)
	}
	defer rows.Close()

	var out []*period.SchoolYear
	for rows.Next() {
		var y period.SchoolYear
		if err := rows.Scan(&y.ID, &y.Name, &y.Status); err != nil {
			return nil, fmt.Errorf("postgres: scan school year: %w", err)
		}
		out = append(out, &y)
	}
	return out, rows.Err()
}

// SaveSchoolYear upserts a school year.
func (r *PeriodRepository) SaveSchoolYear(ctx context.Context, year *period.SchoolYear) error {
	_, err := r.conn.querier(ctx).Exec(ctx, `
		INSERT INTO school_years (id, name, status) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, status = EXCLUDED.status`,
		year.ID, year.Name, year.Status)
	if err != nil {
		return fmt.Errorf("postgres: save school year: %w", err)
	}
	return nil
}

// DeleteSchoolYear deletes a school year and, via cascade, its months
// and weeks.
func (r *PeriodRepository) DeleteSchoolYear(ctx context.Context, id string) error {
	tag, err := r.conn.querier(ctx).Exec(ctx, `DELETE FROM school_years WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete school year: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("postgres", "DeleteSchoolYear", shared.ErrNotFound, "school year "+id)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Months
// ─────────────────────────────────────────────────────────────────────────────

// GetMonth loads one month.
func (r *PeriodRepository) GetMonth(ctx context.Context, id string) (*period.Month, error) {
	row := r.conn.querier(ctx).QueryRow(ctx,
		`SELECT id, school_year_id, name, ordinal, status FROM months WHERE id = $1`, id)

	var m period.Month
	if err := row.Scan(&m.ID, &m.SchoolYearID, &m.Name, &m.Ordinal, &m.Status); err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("postgres", "GetMonth", shared.ErrNotFound, "month "+id)
		}
		return nil, fmt.Errorf("postgres: get month: %w", err)
	}
	return &m, nil
}

// ListMonthsByYear lists the months of one school year.
func (r *PeriodRepository) ListMonthsByYear(ctx context.Context, schoolYearID string) ([]*period.Month, error) {
	rows, err := r.conn.querier(ctx).Query(ctx,
		`SELECT id, school_year_id, name, ordinal, status FROM months WHERE school_year_id = $1 ORDER BY seq`,
		schoolYearID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list months: %w", err)
	}
	defer rows.Close()

	var out []*period.Month
	for rows.Next() {
		var m period.Month
		if err := rows.Scan(&m.ID, &m.SchoolYearID, &m.Name, &m.Ordinal, &m.Status); err != nil {
			return nil, fmt.Errorf("postgres: scan month: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// SaveMonth upserts a month.
func (r *PeriodRepository) SaveMonth(ctx context.Context, month *period.Month) error {
	_, err := r.conn.querier(ctx).Exec(ctx, `
		INSERT INTO months (id, school_year_id, name, ordinal, status) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, ordinal = EXCLUDED.ordinal, status = EXCLUDED.status`,
		month.ID, month.SchoolYearID, month.Name, month.Ordinal, month.Status)
	if err != nil {
		return fmt.Errorf("postgres: save month: %w", err)
	}
	return nil
}

// DeleteMonth deletes a month and, via cascade, its weeks.
func (r *PeriodRepository) DeleteMonth(ctx context.Context, id string) error {
	tag, err := r.conn.querier(ctx).Exec(ctx, `DELETE FROM months WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete month: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("postgres", "DeleteMonth", shared.ErrNotFound, "month "+id)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Weeks
// ─────────────────────────────────────────────────────────────────────────────

// GetWeek loads one week.
func (r *PeriodRepository) GetWeek(ctx context.Context, id string) (*period.Week, error) {
	row := r.conn.querier(ctx).QueryRow(ctx,
		`SELECT id, month_id, name, ordinal, status FROM weeks WHERE id = $1`, id)

	var w period.Week
	if err := row.Scan(&w.ID, &w.MonthID, &w.Name, &w.Ordinal, &w.Status); err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("postgres", "GetWeek", shared.ErrNotFound, "week "+id)
		}
		return nil, fmt.Errorf("postgres: get week: %w", err)
	}
	return &w, nil
}

// ListWeeksByMonth lists the weeks of one month.
func (r *PeriodRepository) ListWeeksByMonth(ctx context.Context, monthID string) ([]*period.Week, error) {
	rows, err := r.conn.querier(ctx).Query(ctx,
		`SELECT id, month_id, name, ordinal, status FROM weeks WHERE month_id = $1 ORDER BY seq`,
		monthID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list weeks: %w", err)
	}
	defer rows.Close()

	var out []*period.Week
	for rows.Next() {
		var w period.Week
		if err := rows.Scan(&w.ID, &w.MonthID, &w.Name, &w.Ordinal, &w.Status); err != nil {
			return nil, fmt.Errorf("postgres: scan week: %w", err)
		}
		out = append(out, &w)
	}
	return out, rows.Err()
}

// SaveWeek upserts a week.
func (r *PeriodRepository) SaveWeek(ctx context.Context, week *period.Week) error {
	_, err := r.conn.querier(ctx).Exec(ctx, `
		INSERT INTO weeks (id, month_id, name, ordinal, status) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, ordinal = EXCLUDED.ordinal, status = EXCLUDED.status`,
		week.ID, week.MonthID, week.Name, week.Ordinal, week.Status)
	if err != nil {
		return fmt.Errorf("postgres: save week: %w", err)
	}
	return nil
}

// DeleteWeek deletes a week.
func (r *PeriodRepository) DeleteWeek(ctx context.Context, id string) error {
	tag, err := r.conn.querier(ctx).Exec(ctx, `DELETE FROM weeks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete week: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewDomainError("postgres", "DeleteWeek", shared.ErrNotFound, "week "+id)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Settings
// ─────────────────────────────────────────────────────────────────────────────

// GetActiveYearID returns the active school year id.
func (r *PeriodRepository) GetActiveYearID(ctx context.Context) (string, error) {
	row := r.conn.querier(ctx).QueryRow(ctx,
		`SELECT value FROM settings WHERE key = $1`, activeYearKey)

	var id string
	if err := row.Scan(&id); err != nil {
		if IsNoRows(err) {
			return "", shared.NewDomainError("postgres", "GetActiveYearID", shared.ErrNotFound, "active year is not set")
		}
		return "", fmt.Errorf("postgres: get active year: %w", err)
	}
	return id, nil
}

// SetActiveYearID records the active school year id.
func (r *PeriodRepository) SetActiveYearID(ctx context.Context, yearID string) error {
	_, err := r.conn.querier(ctx).Exec(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		activeYearKey, yearID)
	if err != nil {
		return fmt.Errorf("postgres: set active year: %w", err)
	}
	return nil
}
