package command

import (
	"context"
	"fmt"

	"github.com/thidua-hub/school-merit-hub/internal/domain/audit"
	"github.com/thidua-hub/school-merit-hub/internal/domain/period"
	"github.com/thidua-hub/school-merit-hub/internal/domain/scoring"
	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
	"github.com/thidua-hub/school-merit-hub/internal/domain/user"
	"github.com/thidua-hub/school-merit-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// DELETE SCORE ENTRY COMMAND
// Entries have no update path: correcting a mistake is delete then
// recreate, producing two audit records. Deleting a missing entry is a
// silent no-op.
// ══════════════════════════════════════════════════════════════════════════════

// DeleteScoreEntryCommand contains the data to delete a score entry.
type DeleteScoreEntryCommand struct {
	EntryID string
	ActorID string
}

// Validate validates the command.
func (c DeleteScoreEntryCommand) Validate() error {
	if c.EntryID == "" {
		return shared.NewDomainError("scoring", "DeleteScoreEntry", shared.ErrValidation, "entry_id is required")
	}
	if c.ActorID == "" {
		return shared.NewDomainError("scoring", "DeleteScoreEntry", shared.ErrUnauthorized, "actor is required")
	}
	return nil
}

// DeleteScoreEntryResult contains the result of the command. Deleted is
// false when the entry did not exist or when the deletion is parked
// behind an override.
type DeleteScoreEntryResult struct {
	Deleted bool
	Pending *PendingAction
}

// DeleteScoreEntryHandler handles the DeleteScoreEntryCommand.
type DeleteScoreEntryHandler struct {
	users    user.Repository
	classes  scoring.ClassRepository
	entries  scoring.EntryRepository
	auditLog audit.Repository
	resolver *period.Resolver
	atomic   Atomic
	events   shared.EventPublisher
	log      *logger.Logger
}

// NewDeleteScoreEntryHandler creates a new DeleteScoreEntryHandler.
func NewDeleteScoreEntryHandler(
	users user.Repository,
	classes scoring.ClassRepository,
	entries scoring.EntryRepository,
	auditLog audit.Repository,
	resolver *period.Resolver,
	atomic Atomic,
	events shared.EventPublisher,
	log *logger.Logger,
) *DeleteScoreEntryHandler {
	return &DeleteScoreEntryHandler{
		users:    users,
		classes:  classes,
		entries:  entries,
		auditLog: auditLog,
		resolver: resolver,
		atomic:   atomic,
		events:   events,
		log:      log,
	}
}

// Handle executes the delete score entry command.
func (h *DeleteScoreEntryHandler) Handle(ctx context.Context, cmd DeleteScoreEntryCommand) (*DeleteScoreEntryResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	actor, err := h.users.GetByID(ctx, cmd.ActorID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("scoring", "DeleteScoreEntry", shared.ErrUnauthorized, "unknown actor")
		}
		return nil, fmt.Errorf("delete_score_entry: load actor: %w", err)
	}

	entry, err := h.entries.GetEntry(ctx, cmd.EntryID)
	if err != nil {
		if shared.IsNotFound(err) {
			// Already gone, nothing to do and nothing to report.
			return &DeleteScoreEntryResult{Deleted: false}, nil
		}
		return nil, fmt.Errorf("delete_score_entry: load entry: %w", err)
	}

	// The lock check runs against the entry's own week.
	locked, err := h.resolver.IsLocked(ctx, entry.WeekID)
	if err != nil {
		return nil, fmt.Errorf("delete_score_entry: resolve lock: %w", err)
	}

	// On a locked period every non-admin gets the lock error; the role
	// check only decides the unlocked case.
	if !actor.Role.CanEditScore(locked) {
		if locked {
			return nil, shared.NewDomainError("scoring", "DeleteScoreEntry", shared.ErrLocked, "the period is locked")
		}
		return nil, shared.NewDomainError("scoring", "DeleteScoreEntry", shared.ErrForbidden, "role may not delete scores")
	}

	if locked && actor.Role == user.RoleAdmin {
		h.log.Info("score entry delete parked for override",
			logger.ActorID(actor.ID),
			logger.EntryID(entry.ID),
			logger.WeekID(entry.WeekID),
		)
		return &DeleteScoreEntryResult{Pending: NewPendingDelete(cmd)}, nil
	}

	deleted, err := h.execute(ctx, cmd, "")
	if err != nil {
		return nil, err
	}
	return &DeleteScoreEntryResult{Deleted: deleted}, nil
}

// execute removes the entry and appends its audit record together.
func (h *DeleteScoreEntryHandler) execute(ctx context.Context, cmd DeleteScoreEntryCommand, reason string) (bool, error) {
	actor, err := h.users.GetByID(ctx, cmd.ActorID)
	if err != nil {
		return false, fmt.Errorf("delete_score_entry: load actor: %w", err)
	}

	entry, err := h.entries.GetEntry(ctx, cmd.EntryID)
	if err != nil {
		if shared.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("delete_score_entry: load entry: %w", err)
	}

	className := entry.ClassID
	if class, cerr := h.classes.GetClass(ctx, entry.ClassID); cerr == nil {
		className = class.Name
	} else if !shared.IsNotFound(cerr) {
		return false, fmt.Errorf("delete_score_entry: load class: %w", cerr)
	}

	details := fmt.Sprintf("removed %+.2f points, class %s", entry.Points, className)
	auditEntry, err := newAuditEntry(actor, audit.ActionDelete, audit.TargetScoreEntry, entry.ID, details, reason)
	if err != nil {
		return false, err
	}

	err = h.atomic.WithinTx(ctx, func(ctx context.Context) error {
		if err := h.entries.DeleteEntry(ctx, entry.ID); err != nil {
			return fmt.Errorf("delete entry: %w", err)
		}
		if err := h.auditLog.Append(ctx, auditEntry); err != nil {
			return fmt.Errorf("append audit: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete_score_entry: %w", err)
	}

	_ = h.events.Publish(shared.NewScoreEntryDeletedEvent(entry.ID, entry.WeekID, entry.ClassID, entry.Points))

	h.log.Info("score entry deleted",
		logger.ActorID(actor.ID),
		logger.EntryID(entry.ID),
		logger.WeekID(entry.WeekID),
		logger.ClassID(entry.ClassID),
		logger.PointsDelta(-entry.Points),
	)

	return true, nil
}
