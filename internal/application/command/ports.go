// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"

	"github.com/google/uuid"

	"github.com/thidua-hub/school-merit-hub/internal/domain/audit"
	"github.com/thidua-hub/school-merit-hub/internal/domain/user"
)

// Atomic runs a mutation together with its audit append as one unit.
// The postgres implementation opens a transaction; the in-memory store
// runs the function directly under its single-writer assumption.
type Atomic interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// newAuditEntry builds an audit entry attributed to the given actor.
func newAuditEntry(actor *user.User, action audit.Action, targetType, targetID, details, reason string) (*audit.Entry, error) {
	return audit.NewEntry(audit.NewEntryParams{
		ID:         uuid.NewString(),
		ActorID:    actor.ID,
		ActorName:  actor.DisplayName,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		Reason:     reason,
	})
}
