package command

import (
	"context"
	"fmt"

	"github.com/thidua-hub/school-merit-hub/internal/domain/audit"
	"github.com/thidua-hub/school-merit-hub/internal/domain/period"
	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
	"github.com/thidua-hub/school-merit-hub/internal/domain/user"
	"github.com/thidua-hub/school-merit-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SET LOCK STATUS COMMAND
// Locking takes effect immediately. Unlocking always goes through the
// override workflow, even for admins: re-opening a closed period is the
// highest-risk operation in the system.
// ══════════════════════════════════════════════════════════════════════════════

// SetLockStatusCommand contains the data to toggle a period lock.
type SetLockStatusCommand struct {
	TargetType period.Type
	TargetID   string
	NewStatus  period.Status
	ActorID    string
}

// Validate validates the command.
func (c SetLockStatusCommand) Validate() error {
	if !c.TargetType.IsValid() {
		return shared.NewDomainError("period", "SetLockStatus", shared.ErrValidation, "unknown target type")
	}
	if c.TargetID == "" {
		return shared.NewDomainError("period", "SetLockStatus", shared.ErrValidation, "target_id is required")
	}
	if !c.NewStatus.IsValid() {
		return shared.NewDomainError("period", "SetLockStatus", shared.ErrValidation, "unknown status")
	}
	if c.ActorID == "" {
		return shared.NewDomainError("period", "SetLockStatus", shared.ErrUnauthorized, "actor is required")
	}
	return nil
}

// SetLockStatusResult contains the result of the command.
type SetLockStatusResult struct {
	Applied bool
	Pending *PendingAction
}

// SetLockStatusHandler handles the SetLockStatusCommand.
type SetLockStatusHandler struct {
	users    user.Repository
	periods  period.Repository
	auditLog audit.Repository
	atomic   Atomic
	events   shared.EventPublisher
	log      *logger.Logger
}

// NewSetLockStatusHandler creates a new SetLockStatusHandler.
func NewSetLockStatusHandler(
	users user.Repository,
	periods period.Repository,
	auditLog audit.Repository,
	atomic Atomic,
	events shared.EventPublisher,
	log *logger.Logger,
) *SetLockStatusHandler {
	return &SetLockStatusHandler{
		users:    users,
		periods:  periods,
		auditLog: auditLog,
		atomic:   atomic,
		events:   events,
		log:      log,
	}
}

// Handle executes the set lock status command.
func (h *SetLockStatusHandler) Handle(ctx context.Context, cmd SetLockStatusCommand) (*SetLockStatusResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	actor, err := h.users.GetByID(ctx, cmd.ActorID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("period", "SetLockStatus", shared.ErrUnauthorized, "unknown actor")
		}
		return nil, fmt.Errorf("set_lock_status: load actor: %w", err)
	}
	if actor.Role != user.RoleAdmin {
		return nil, shared.NewDomainError("period", "SetLockStatus", shared.ErrForbidden, "only admins manage period locks")
	}

	if cmd.NewStatus == period.StatusOpen {
		h.log.Info("period unlock parked for override",
			logger.ActorID(actor.ID),
			logger.LockTarget(string(cmd.TargetType), cmd.TargetID),
		)
		return &SetLockStatusResult{Pending: NewPendingLockChange(cmd)}, nil
	}

	if err := h.execute(ctx, cmd, ""); err != nil {
		return nil, err
	}
	return &SetLockStatusResult{Applied: true}, nil
}

// execute applies the status change and appends its audit record
// together.
func (h *SetLockStatusHandler) execute(ctx context.Context, cmd SetLockStatusCommand, reason string) error {
	actor, err := h.users.GetByID(ctx, cmd.ActorID)
	if err != nil {
		return fmt.Errorf("set_lock_status: load actor: %w", err)
	}

	targetName, save, err := h.prepare(ctx, cmd)
	if err != nil {
		return err
	}

	action := audit.ActionLock
	if cmd.NewStatus == period.StatusOpen {
		action = audit.ActionUnlock
	}

	details := fmt.Sprintf("%s %s set to %s", targetTypeLabel(cmd.TargetType), targetName, cmd.NewStatus)
	auditEntry, err := newAuditEntry(actor, action, auditTargetType(cmd.TargetType), cmd.TargetID, details, reason)
	if err != nil {
		return err
	}

	err = h.atomic.WithinTx(ctx, func(ctx context.Context) error {
		if err := save(ctx); err != nil {
			return fmt.Errorf("save period: %w", err)
		}
		if err := h.auditLog.Append(ctx, auditEntry); err != nil {
			return fmt.Errorf("append audit: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("set_lock_status: %w", err)
	}

	_ = h.events.Publish(shared.NewPeriodLockChangedEvent(string(cmd.TargetType), cmd.TargetID, string(cmd.NewStatus)))

	h.log.Info("period lock changed",
		logger.ActorID(actor.ID),
		logger.LockTarget(string(cmd.TargetType), cmd.TargetID),
		logger.String("new_status", string(cmd.NewStatus)),
	)

	return nil
}

// prepare loads the target, applies the new status in memory, and
// returns its display name with a deferred save.
func (h *SetLockStatusHandler) prepare(ctx context.Context, cmd SetLockStatusCommand) (string, func(context.Context) error, error) {
	switch cmd.TargetType {
	case period.TypeWeek:
		week, err := h.periods.GetWeek(ctx, cmd.TargetID)
		if err != nil {
			return "", nil, fmt.Errorf("set_lock_status: load week: %w", err)
		}
		week.Status = cmd.NewStatus
		return week.Name, func(ctx context.Context) error { return h.periods.SaveWeek(ctx, week) }, nil

	case period.TypeMonth:
		month, err := h.periods.GetMonth(ctx, cmd.TargetID)
		if err != nil {
			return "", nil, fmt.Errorf("set_lock_status: load month: %w", err)
		}
		month.Status = cmd.NewStatus
		return month.Name, func(ctx context.Context) error { return h.periods.SaveMonth(ctx, month) }, nil

	case period.TypeYear:
		year, err := h.periods.GetSchoolYear(ctx, cmd.TargetID)
		if err != nil {
			return "", nil, fmt.Errorf("set_lock_status: load school year: %w", err)
		}
		year.Status = cmd.NewStatus
		return year.Name, func(ctx context.Context) error { return h.periods.SaveSchoolYear(ctx, year) }, nil

	default:
		return "", nil, shared.NewDomainError("period", "SetLockStatus", shared.ErrValidation, "unknown target type")
	}
}

func targetTypeLabel(t period.Type) string {
	switch t {
	case period.TypeWeek:
		return "week"
	case period.TypeMonth:
		return "month"
	case period.TypeYear:
		return "school year"
	default:
		return string(t)
	}
}

func auditTargetType(t period.Type) string {
	switch t {
	case period.TypeWeek:
		return audit.TargetWeek
	case period.TypeMonth:
		return audit.TargetMonth
	case period.TypeYear:
		return audit.TargetSchoolYear
	default:
		return string(t)
	}
}
