// Package audit contains the append-only audit trail. Entries are
// written as a side effect of every mutating action and never modified
// or deleted afterwards.
package audit

import (
	"strings"
	"time"

	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
)

// Action is the kind of mutation an audit entry records.
type Action string

const (
	// ActionCreate - an entity was created.
	ActionCreate Action = "CREATE"
	// ActionUpdate - an entity was updated.
	ActionUpdate Action = "UPDATE"
	// ActionDelete - an entity was deleted.
	ActionDelete Action = "DELETE"
	// ActionLock - a period was locked.
	ActionLock Action = "LOCK"
	// ActionUnlock - a period was re-opened.
	ActionUnlock Action = "UNLOCK"
)

// IsValid reports whether the action is one of the known values.
func (a Action) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionLock, ActionUnlock:
		return true
	default:
		return false
	}
}

// Target types recorded in audit entries.
const (
	TargetScoreEntry = "SCORE_ENTRY"
	TargetSchoolYear = "SCHOOL_YEAR"
	TargetMonth      = "MONTH"
	TargetWeek       = "WEEK"
	TargetClass      = "CLASS"
	TargetViolation  = "VIOLATION"
	TargetUser       = "USER"
)

// Entry is one immutable audit record.
type Entry struct {
	ID         string
	Timestamp  time.Time
	ActorID    string
	ActorName  string
	Action     Action
	TargetType string
	TargetID   string
	// Details is a human-readable summary of the mutation.
	Details string
	// Reason carries the override justification when the action bypassed
	// a lock or re-opened a period. Empty for ordinary actions.
	Reason string
}

// NewEntryParams contains parameters for creating an audit entry.
type NewEntryParams struct {
	ID         string
	ActorID    string
	ActorName  string
	Action     Action
	TargetType string
	TargetID   string
	Details    string
	Reason     string
}

// NewEntry creates an audit entry stamped with the current time.
func NewEntry(params NewEntryParams) (*Entry, error) {
	if params.ID == "" {
		return nil, shared.NewDomainError("audit", "NewEntry", shared.ErrInvalidID, "entry id is required")
	}
	if params.ActorID == "" {
		return nil, shared.NewDomainError("audit", "NewEntry", shared.ErrInvalidID, "actor id is required")
	}
	if !params.Action.IsValid() {
		return nil, shared.NewDomainError("audit", "NewEntry", shared.ErrInvalidInput, "unknown audit action")
	}
	if params.TargetType == "" {
		return nil, shared.NewDomainError("audit", "NewEntry", shared.ErrEmptyValue, "target type is required")
	}

	return &Entry{
		ID:         params.ID,
		Timestamp:  time.Now().UTC(),
		ActorID:    params.ActorID,
		ActorName:  params.ActorName,
		Action:     params.Action,
		TargetType: params.TargetType,
		TargetID:   params.TargetID,
		Details:    strings.TrimSpace(params.Details),
		Reason:     strings.TrimSpace(params.Reason),
	}, nil
}
