package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/thidua-hub/school-merit-hub/internal/domain/audit"
)

// ══════════════════════════════════════════════════════════════════════════════
// AUDIT REPOSITORY
// Append-only. There is no update or delete path for audit rows.
// ══════════════════════════════════════════════════════════════════════════════

// AuditRepository implements audit.Repository on PostgreSQL.
type AuditRepository struct {
	conn *Connection
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(conn *Connection) *AuditRepository {
	return &AuditRepository{conn: conn}
}

// Append records one audit entry.
func (r *AuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	_, err := r.conn.querier(ctx).Exec(ctx, `
		INSERT INTO audit_log (id, ts, actor_id, actor_name, action, target_type, target_id, details, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID, entry.Timestamp, entry.ActorID, entry.ActorName,
		entry.Action, entry.TargetType, entry.TargetID, entry.Details, entry.Reason)
	if err != nil {
		return fmt.Errorf("postgres: append audit entry: %w", err)
	}
	return nil
}

// List returns audit entries newest first, filtered and paged.
func (r *AuditRepository) List(ctx context.Context, filter audit.Filter) ([]*audit.Entry, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.ActorID != "" {
		where = append(where, "actor_id = "+arg(filter.ActorID))
	}
	if filter.Action != "" {
		where = append(where, "action = "+arg(string(filter.Action)))
	}
	if filter.TargetType != "" {
		where = append(where, "target_type = "+arg(filter.TargetType))
	}

	query := `SELECT id, ts, actor_id, actor_name, action, target_type, target_id, details, reason FROM audit_log`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := r.conn.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list audit entries: %w", err)
	}
	defer rows.Close()

	var out []*audit.Entry
	for rows.Next() {
		var e audit.Entry
		err := rows.Scan(
			&e.ID, &e.Timestamp, &e.ActorID, &e.ActorName,
			&e.Action, &e.TargetType, &e.TargetID, &e.Details, &e.Reason,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan audit entry: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
