package command

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/thidua-hub/school-merit-hub/internal/domain/scoring"
	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
	"github.com/thidua-hub/school-merit-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// OVERRIDE WORKFLOW
// Two-phase commit for privileged actions: an admin action that bypasses
// a lock, or any unlock, is parked as a pending action until a reason of
// at least MinReasonLength characters is confirmed. Pending actions are
// tagged data, not closures, so they can be inspected and dispatched by
// kind.
// ══════════════════════════════════════════════════════════════════════════════

// MinReasonLength is the minimum accepted override reason length.
const MinReasonLength = 10

// PendingKind tags a pending action with the operation it defers.
type PendingKind string

const (
	// PendingKindCreateEntry - a score entry creation on a locked week.
	PendingKindCreateEntry PendingKind = "CREATE_ENTRY"
	// PendingKindDeleteEntry - a score entry deletion on a locked week.
	PendingKindDeleteEntry PendingKind = "DELETE_ENTRY"
	// PendingKindLockChange - an unlock of a week, month, or year.
	PendingKindLockChange PendingKind = "LOCK_CHANGE"
)

// PendingAction is a parked privileged action. Exactly one of the
// command fields is set, matching Kind.
type PendingAction struct {
	ID          string
	Kind        PendingKind
	Create      *CreateScoreEntryCommand
	Delete      *DeleteScoreEntryCommand
	LockChange  *SetLockStatusCommand
	RequestedAt time.Time
}

// NewPendingCreate parks a create command.
func NewPendingCreate(cmd CreateScoreEntryCommand) *PendingAction {
	return &PendingAction{
		ID:          uuid.NewString(),
		Kind:        PendingKindCreateEntry,
		Create:      &cmd,
		RequestedAt: time.Now().UTC(),
	}
}

// NewPendingDelete parks a delete command.
func NewPendingDelete(cmd DeleteScoreEntryCommand) *PendingAction {
	return &PendingAction{
		ID:          uuid.NewString(),
		Kind:        PendingKindDeleteEntry,
		Delete:      &cmd,
		RequestedAt: time.Now().UTC(),
	}
}

// NewPendingLockChange parks a lock status command.
func NewPendingLockChange(cmd SetLockStatusCommand) *PendingAction {
	return &PendingAction{
		ID:          uuid.NewString(),
		Kind:        PendingKindLockChange,
		LockChange:  &cmd,
		RequestedAt: time.Now().UTC(),
	}
}

// ValidateReason checks an override justification.
func ValidateReason(reason string) error {
	if utf8.RuneCountInString(strings.TrimSpace(reason)) < MinReasonLength {
		return shared.NewDomainError("override", "Confirm", shared.ErrValidation, "override reason must be at least 10 characters")
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// COORDINATOR
// ══════════════════════════════════════════════════════════════════════════════

// OverrideResult carries what the confirmed action produced.
type OverrideResult struct {
	Kind PendingKind

	// Entry is set when a parked creation was confirmed.
	Entry *scoring.ScoreEntry

	// Deleted is set when a parked deletion was confirmed. False means
	// the entry disappeared between park and confirm; still a success.
	Deleted bool

	// LockChanged is set when a parked unlock was confirmed.
	LockChanged bool
}

// OverrideCoordinator holds the single pending-action slot and executes
// confirmed actions through the owning handlers. One slot mirrors the
// one-confirmation-dialog-at-a-time flow of the admin surface: parking a
// new action replaces an unconfirmed one.
type OverrideCoordinator struct {
	mu      sync.Mutex
	pending *PendingAction

	create *CreateScoreEntryHandler
	remove *DeleteScoreEntryHandler
	lock   *SetLockStatusHandler
	log    *logger.Logger
}

// NewOverrideCoordinator creates an OverrideCoordinator.
func NewOverrideCoordinator(
	create *CreateScoreEntryHandler,
	remove *DeleteScoreEntryHandler,
	lock *SetLockStatusHandler,
	log *logger.Logger,
) *OverrideCoordinator {
	return &OverrideCoordinator{
		create: create,
		remove: remove,
		lock:   lock,
		log:    log,
	}
}

// Park stores a pending action, replacing any unconfirmed one.
func (c *OverrideCoordinator) Park(action *PendingAction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = action
}

// Pending returns the currently parked action, or nil.
func (c *OverrideCoordinator) Pending() *PendingAction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Confirm validates the reason and executes the parked action. On a
// too-short reason the action stays parked so the caller may retry.
func (c *OverrideCoordinator) Confirm(ctx context.Context, reason string) (*OverrideResult, error) {
	c.mu.Lock()
	action := c.pending
	c.mu.Unlock()

	if action == nil {
		return nil, shared.NewDomainError("override", "Confirm", shared.ErrNotFound, "no action awaiting confirmation")
	}
	if err := ValidateReason(reason); err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	result := &OverrideResult{Kind: action.Kind}

	switch action.Kind {
	case PendingKindCreateEntry:
		entry, err := c.create.execute(ctx, *action.Create, reason)
		if err != nil {
			return nil, err
		}
		result.Entry = entry

	case PendingKindDeleteEntry:
		deleted, err := c.remove.execute(ctx, *action.Delete, reason)
		if err != nil {
			return nil, err
		}
		result.Deleted = deleted

	case PendingKindLockChange:
		if err := c.lock.execute(ctx, *action.LockChange, reason); err != nil {
			return nil, err
		}
		result.LockChanged = true

	default:
		return nil, shared.NewDomainError("override", "Confirm", shared.ErrInvalidInput, "unknown pending action kind")
	}

	c.mu.Lock()
	if c.pending == action {
		c.pending = nil
	}
	c.mu.Unlock()

	c.log.Info("override confirmed",
		logger.String("pending_id", action.ID),
		logger.String("kind", string(action.Kind)),
	)

	return result, nil
}

// Cancel discards the parked action without executing it and without
// writing any audit entry.
func (c *OverrideCoordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
}
