package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/thidua-hub/school-merit-hub/internal/domain/audit"
	"github.com/thidua-hub/school-merit-hub/internal/domain/period"
	"github.com/thidua-hub/school-merit-hub/internal/domain/scoring"
	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
	"github.com/thidua-hub/school-merit-hub/internal/domain/user"
	"github.com/thidua-hub/school-merit-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE SCORE ENTRY COMMAND
// Records one violation/merit occurrence against a class in a week.
// A locked week rejects teachers outright and parks admins behind the
// override workflow.
// ══════════════════════════════════════════════════════════════════════════════

// CreateScoreEntryCommand contains the data to create a score entry.
type CreateScoreEntryCommand struct {
	// WeekID is the target week.
	WeekID string

	// ClassID is the class receiving the points.
	ClassID string

	// ViolationID is the violation/merit category applied.
	ViolationID string

	// StudentCount is the number of students involved, at least 1.
	StudentCount int

	// Note is an optional free-text remark.
	Note string

	// ActorID identifies the authenticated staff member.
	ActorID string
}

// Validate validates the command.
func (c CreateScoreEntryCommand) Validate() error {
	if c.WeekID == "" {
		return shared.NewDomainError("scoring", "CreateScoreEntry", shared.ErrValidation, "week_id is required")
	}
	if c.ClassID == "" {
		return shared.NewDomainError("scoring", "CreateScoreEntry", shared.ErrValidation, "class_id is required")
	}
	if c.ViolationID == "" {
		return shared.NewDomainError("scoring", "CreateScoreEntry", shared.ErrValidation, "violation_id is required")
	}
	if c.StudentCount < 1 {
		return shared.NewDomainError("scoring", "CreateScoreEntry", shared.ErrValidation, "student_count must be at least 1")
	}
	if c.ActorID == "" {
		return shared.NewDomainError("scoring", "CreateScoreEntry", shared.ErrUnauthorized, "actor is required")
	}
	return nil
}

// CreateScoreEntryResult contains the result of the command. Exactly one
// of Entry and Pending is set: Pending means the week is locked and the
// admin actor must confirm an override reason before the entry exists.
type CreateScoreEntryResult struct {
	Entry   *scoring.ScoreEntry
	Pending *PendingAction
}

// CreateScoreEntryHandler handles the CreateScoreEntryCommand.
type CreateScoreEntryHandler struct {
	users      user.Repository
	classes    scoring.ClassRepository
	violations scoring.ViolationRepository
	entries    scoring.EntryRepository
	auditLog   audit.Repository
	resolver   *period.Resolver
	atomic     Atomic
	events     shared.EventPublisher
	log        *logger.Logger
}

// NewCreateScoreEntryHandler creates a new CreateScoreEntryHandler.
func NewCreateScoreEntryHandler(
	users user.Repository,
	classes scoring.ClassRepository,
	violations scoring.ViolationRepository,
	entries scoring.EntryRepository,
	auditLog audit.Repository,
	resolver *period.Resolver,
	atomic Atomic,
	events shared.EventPublisher,
	log *logger.Logger,
) *CreateScoreEntryHandler {
	return &CreateScoreEntryHandler{
		users:      users,
		classes:    classes,
		violations: violations,
		entries:    entries,
		auditLog:   auditLog,
		resolver:   resolver,
		atomic:     atomic,
		events:     events,
		log:        log,
	}
}

// Handle executes the create score entry command.
func (h *CreateScoreEntryHandler) Handle(ctx context.Context, cmd CreateScoreEntryCommand) (*CreateScoreEntryResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	actor, err := h.users.GetByID(ctx, cmd.ActorID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("scoring", "CreateScoreEntry", shared.ErrUnauthorized, "unknown actor")
		}
		return nil, fmt.Errorf("create_score_entry: load actor: %w", err)
	}

	locked, err := h.resolver.IsLocked(ctx, cmd.WeekID)
	if err != nil {
		return nil, fmt.Errorf("create_score_entry: resolve lock: %w", err)
	}

	// On a locked period every non-admin gets the lock error; the role
	// check only decides the unlocked case.
	if !actor.Role.CanEditScore(locked) {
		if locked {
			return nil, shared.NewDomainError("scoring", "CreateScoreEntry", shared.ErrLocked, "the period is locked")
		}
		return nil, shared.NewDomainError("scoring", "CreateScoreEntry", shared.ErrForbidden, "role may not record scores")
	}

	// An admin hitting a locked week goes through the override workflow.
	// Nothing is persisted until the reason is confirmed.
	if locked && actor.Role == user.RoleAdmin {
		h.log.Info("score entry create parked for override",
			logger.ActorID(actor.ID),
			logger.WeekID(cmd.WeekID),
			logger.ClassID(cmd.ClassID),
		)
		return &CreateScoreEntryResult{Pending: NewPendingCreate(cmd)}, nil
	}

	entry, err := h.execute(ctx, cmd, "")
	if err != nil {
		return nil, err
	}
	return &CreateScoreEntryResult{Entry: entry}, nil
}

// execute persists the entry and its audit record together. Called
// directly for open weeks and by the override coordinator on confirm.
func (h *CreateScoreEntryHandler) execute(ctx context.Context, cmd CreateScoreEntryCommand, reason string) (*scoring.ScoreEntry, error) {
	actor, err := h.users.GetByID(ctx, cmd.ActorID)
	if err != nil {
		return nil, fmt.Errorf("create_score_entry: load actor: %w", err)
	}

	// Missing category falls back to 0 points. A defensive default, not
	// a path callers should rely on.
	basePoints := 0.0
	if violation, verr := h.violations.GetViolation(ctx, cmd.ViolationID); verr == nil {
		basePoints = violation.BasePoints
	} else if !shared.IsNotFound(verr) {
		return nil, fmt.Errorf("create_score_entry: load violation: %w", verr)
	}

	className := cmd.ClassID
	if class, cerr := h.classes.GetClass(ctx, cmd.ClassID); cerr == nil {
		className = class.Name
	} else if !shared.IsNotFound(cerr) {
		return nil, fmt.Errorf("create_score_entry: load class: %w", cerr)
	}

	entry, err := scoring.NewScoreEntry(scoring.NewScoreEntryParams{
		ID:           uuid.NewString(),
		WeekID:       cmd.WeekID,
		ClassID:      cmd.ClassID,
		ViolationID:  cmd.ViolationID,
		StudentCount: cmd.StudentCount,
		BasePoints:   basePoints,
		Note:         cmd.Note,
		CreatedBy:    actor.DisplayName,
	})
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("%+.2f points, %d students, class %s", entry.Points, entry.StudentCount, className)
	auditEntry, err := newAuditEntry(actor, audit.ActionCreate, audit.TargetScoreEntry, entry.ID, details, reason)
	if err != nil {
		return nil, err
	}

	err = h.atomic.WithinTx(ctx, func(ctx context.Context) error {
		if err := h.entries.SaveEntry(ctx, entry); err != nil {
			return fmt.Errorf("save entry: %w", err)
		}
		if err := h.auditLog.Append(ctx, auditEntry); err != nil {
			return fmt.Errorf("append audit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create_score_entry: %w", err)
	}

	_ = h.events.Publish(shared.NewScoreEntryCreatedEvent(entry.ID, entry.WeekID, entry.ClassID, entry.Points))

	h.log.Info("score entry created",
		logger.ActorID(actor.ID),
		logger.EntryID(entry.ID),
		logger.WeekID(entry.WeekID),
		logger.ClassID(entry.ClassID),
		logger.PointsDelta(entry.Points),
		logger.StudentCount(entry.StudentCount),
	)

	return entry, nil
}
