package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/thidua-hub/school-merit-hub/internal/domain/period"
	"github.com/thidua-hub/school-merit-hub/internal/domain/ranking"
	"github.com/thidua-hub/school-merit-hub/internal/domain/scoring"
)

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT READER
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotReader loads everything aggregation needs in one repeatable
// read transaction, so the calculator never sees a half-applied write.
type SnapshotReader struct {
	conn *Connection
}

// NewSnapshotReader creates a new SnapshotReader.
func NewSnapshotReader(conn *Connection) *SnapshotReader {
	return &SnapshotReader{conn: conn}
}

// LoadSnapshot reads months, weeks, classes, violation categories and
// score entries as one consistent view.
func (r *SnapshotReader) LoadSnapshot(ctx context.Context) (*ranking.Snapshot, error) {
	var snap *ranking.Snapshot

	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	err := r.conn.WithTx(ctx, opts, func(tx pgx.Tx) error {
		var err error
		snap, err = loadSnapshotTx(ctx, tx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: load snapshot: %w", err)
	}
	return snap, nil
}

func loadSnapshotTx(ctx context.Context, tx pgx.Tx) (*ranking.Snapshot, error) {
	snap := &ranking.Snapshot{}

	rows, err := tx.Query(ctx, `SELECT id, school_year_id, name, ordinal, status FROM months ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var m period.Month
		if err := rows.Scan(&m.ID, &m.SchoolYearID, &m.Name, &m.Ordinal, &m.Status); err != nil {
			rows.Close()
			return nil, err
		}
		snap.Months = append(snap.Months, &m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx, `SELECT id, month_id, name, ordinal, status FROM weeks ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var w period.Week
		if err := rows.Scan(&w.ID, &w.MonthID, &w.Name, &w.Ordinal, &w.Status); err != nil {
			rows.Close()
			return nil, err
		}
		snap.Weeks = append(snap.Weeks, &w)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx, `SELECT id, name, grade_level FROM classes ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var c scoring.ClassRoom
		if err := rows.Scan(&c.ID, &c.Name, &c.GradeLevel); err != nil {
			rows.Close()
			return nil, err
		}
		snap.Classes = append(snap.Classes, &c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx, `SELECT id, name, base_points FROM violation_categories ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var v scoring.ViolationCategory
		if err := rows.Scan(&v.ID, &v.Name, &v.BasePoints); err != nil {
			rows.Close()
			return nil, err
		}
		snap.Violations = append(snap.Violations, &v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = tx.Query(ctx, `SELECT `+entryColumns+` FROM score_entries ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		snap.Entries = append(snap.Entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return snap, nil
}
