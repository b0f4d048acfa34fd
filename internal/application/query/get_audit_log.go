package query

import (
	"context"
	"fmt"

	"github.com/thidua-hub/school-merit-hub/internal/domain/audit"
	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET AUDIT LOG QUERY
// ══════════════════════════════════════════════════════════════════════════════

// DefaultAuditPageSize caps unpaged audit listings.
const DefaultAuditPageSize = 50

// GetAuditLogQuery filters the audit trail. Entries come back newest
// first.
type GetAuditLogQuery struct {
	ActorID    string
	Action     audit.Action
	TargetType string
	Limit      int
	Offset     int
}

// Validate validates the query.
func (q GetAuditLogQuery) Validate() error {
	if q.Action != "" && !q.Action.IsValid() {
		return shared.NewDomainError("audit", "GetAuditLog", shared.ErrValidation, "unknown action")
	}
	if q.Limit < 0 || q.Offset < 0 {
		return shared.NewDomainError("audit", "GetAuditLog", shared.ErrValidation, "limit and offset must be non-negative")
	}
	return nil
}

// GetAuditLogHandler handles the GetAuditLogQuery.
type GetAuditLogHandler struct {
	auditLog audit.Repository
}

// NewGetAuditLogHandler creates a new GetAuditLogHandler.
func NewGetAuditLogHandler(auditLog audit.Repository) *GetAuditLogHandler {
	return &GetAuditLogHandler{auditLog: auditLog}
}

// Handle lists audit entries.
func (h *GetAuditLogHandler) Handle(ctx context.Context, q GetAuditLogQuery) ([]*audit.Entry, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit == 0 {
		limit = DefaultAuditPageSize
	}

	entries, err := h.auditLog.List(ctx, audit.Filter{
		ActorID:    q.ActorID,
		Action:     q.Action,
		TargetType: q.TargetType,
		Limit:      limit,
		Offset:     q.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("get_audit_log: %w", err)
	}
	return entries, nil
}
