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
// CATALOG COMMANDS
// Admin management of the reference data: school years, months, weeks,
// classes, and violation categories. Every mutation writes an audit
// entry. At least one school year must exist at all times; deleting the
// active year moves the active selection to a remaining one.
// ══════════════════════════════════════════════════════════════════════════════

// CatalogHandler handles catalog mutations.
type CatalogHandler struct {
	users      user.Repository
	periods    period.Repository
	settings   period.SettingsRepository
	classes    scoring.ClassRepository
	violations scoring.ViolationRepository
	auditLog   audit.Repository
	atomic     Atomic
	log        *logger.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(
	users user.Repository,
	periods period.Repository,
	settings period.SettingsRepository,
	classes scoring.ClassRepository,
	violations scoring.ViolationRepository,
	auditLog audit.Repository,
	atomic Atomic,
	log *logger.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		users:      users,
		periods:    periods,
		settings:   settings,
		classes:    classes,
		violations: violations,
		auditLog:   auditLog,
		atomic:     atomic,
		log:        log,
	}
}

// requireAdmin loads the actor and rejects non-admins.
func (h *CatalogHandler) requireAdmin(ctx context.Context, actorID string) (*user.User, error) {
	if actorID == "" {
		return nil, shared.NewDomainError("catalog", "requireAdmin", shared.ErrUnauthorized, "actor is required")
	}
	actor, err := h.users.GetByID(ctx, actorID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("catalog", "requireAdmin", shared.ErrUnauthorized, "unknown actor")
		}
		return nil, fmt.Errorf("catalog: load actor: %w", err)
	}
	if actor.Role != user.RoleAdmin {
		return nil, shared.NewDomainError("catalog", "requireAdmin", shared.ErrForbidden, "only admins manage the catalog")
	}
	return actor, nil
}

// mutate runs a save and its audit append as one unit.
func (h *CatalogHandler) mutate(ctx context.Context, save func(context.Context) error, auditEntry *audit.Entry) error {
	return h.atomic.WithinTx(ctx, func(ctx context.Context) error {
		if err := save(ctx); err != nil {
			return err
		}
		return h.auditLog.Append(ctx, auditEntry)
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// School years
// ─────────────────────────────────────────────────────────────────────────────

// CreateSchoolYearCommand contains the data to create a school year.
type CreateSchoolYearCommand struct {
	Name    string
	ActorID string
}

// CreateSchoolYear creates a school year. The first year created also
// becomes the active one.
func (h *CatalogHandler) CreateSchoolYear(ctx context.Context, cmd CreateSchoolYearCommand) (*period.SchoolYear, error) {
	actor, err := h.requireAdmin(ctx, cmd.ActorID)
	if err != nil {
		return nil, err
	}

	year, err := period.NewSchoolYear(uuid.NewString(), cmd.Name)
	if err != nil {
		return nil, err
	}

	auditEntry, err := newAuditEntry(actor, audit.ActionCreate, audit.TargetSchoolYear, year.ID, "school year "+year.Name, "")
	if err != nil {
		return nil, err
	}
	if err := h.mutate(ctx, func(ctx context.Context) error {
		return h.periods.SaveSchoolYear(ctx, year)
	}, auditEntry); err != nil {
		return nil, fmt.Errorf("catalog: create school year: %w", err)
	}

	if _, aerr := h.settings.GetActiveYearID(ctx); shared.IsNotFound(aerr) {
		if err := h.settings.SetActiveYearID(ctx, year.ID); err != nil {
			return nil, fmt.Errorf("catalog: set active year: %w", err)
		}
	}

	return year, nil
}

// UpdateSchoolYearCommand contains the data to rename a school year.
type UpdateSchoolYearCommand struct {
	ID      string
	Name    string
	ActorID string
}

// UpdateSchoolYear renames a school year.
func (h *CatalogHandler) UpdateSchoolYear(ctx context.Context, cmd UpdateSchoolYearCommand) (*period.SchoolYear, error) {
	actor, err := h.requireAdmin(ctx, cmd.ActorID)
	if err != nil {
		return nil, err
	}

	year, err := h.periods.GetSchoolYear(ctx, cmd.ID)
	if err != nil {
		return nil, fmt.Errorf("catalog: load school year: %w", err)
	}
	updated, err := period.NewSchoolYear(year.ID, cmd.Name)
	if err != nil {
		return nil, err
	}
	updated.Status = year.Status

	auditEntry, err := newAuditEntry(actor, audit.ActionUpdate, audit.TargetSchoolYear, year.ID, "school year renamed to "+updated.Name, "")
	if err != nil {
		return nil, err
	}
	if err := h.mutate(ctx, func(ctx context.Context) error {
		return h.periods.SaveSchoolYear(ctx, updated)
	}, auditEntry); err != nil {
		return nil, fmt.Errorf("catalog: update school year: %w", err)
	}
	return updated, nil
}

// DeleteSchoolYearCommand contains the data to delete a school year.
type DeleteSchoolYearCommand struct {
	ID      string
	ActorID string
}

// DeleteSchoolYear deletes a school year. The last remaining year is
// undeletable; deleting the active year falls back to a remaining one.
func (h *CatalogHandler) DeleteSchoolYear(ctx context.Context, cmd DeleteSchoolYearCommand) error {
	actor, err := h.requireAdmin(ctx, cmd.ActorID)
	if err != nil {
		return err
	}

	years, err := h.periods.ListSchoolYears(ctx)
	if err != nil {
		return fmt.Errorf("catalog: list school years: %w", err)
	}
	if len(years) <= 1 {
		return shared.NewDomainError("catalog", "DeleteSchoolYear", shared.ErrLastRemaining, "at least one school year must exist")
	}

	year, err := h.periods.GetSchoolYear(ctx, cmd.ID)
	if err != nil {
		return fmt.Errorf("catalog: load school year: %w", err)
	}

	auditEntry, err := newAuditEntry(actor, audit.ActionDelete, audit.TargetSchoolYear, year.ID, "school year "+year.Name, "")
	if err != nil {
		return err
	}
	if err := h.mutate(ctx, func(ctx context.Context) error {
		return h.periods.DeleteSchoolYear(ctx, year.ID)
	}, auditEntry); err != nil {
		return fmt.Errorf("catalog: delete school year: %w", err)
	}

	activeID, aerr := h.settings.GetActiveYearID(ctx)
	if aerr == nil && activeID == year.ID {
		for _, remaining := range years {
			if remaining.ID != year.ID {
				if err := h.settings.SetActiveYearID(ctx, remaining.ID); err != nil {
					return fmt.Errorf("catalog: move active year: %w", err)
				}
				break
			}
		}
	}

	return nil
}

// SetActiveYearCommand contains the data to select the active year.
type SetActiveYearCommand struct {
	ID      string
	ActorID string
}

// SetActiveYear selects the school year that year-scoped views use.
func (h *CatalogHandler) SetActiveYear(ctx context.Context, cmd SetActiveYearCommand) error {
	if _, err := h.requireAdmin(ctx, cmd.ActorID); err != nil {
		return err
	}
	if _, err := h.periods.GetSchoolYear(ctx, cmd.ID); err != nil {
		return fmt.Errorf("catalog: load school year: %w", err)
	}
	return h.settings.SetActiveYearID(ctx, cmd.ID)
}

// ─────────────────────────────────────────────────────────────────────────────
// Months
// ─────────────────────────────────────────────────────────────────────────────

// CreateMonthCommand contains the data to create a month.
type CreateMonthCommand struct {
	SchoolYearID string
	Name         string
	Ordinal      int
	ActorID      string
}

// CreateMonth creates a month under an existing school year.
func (h *CatalogHandler) CreateMonth(ctx context.Context, cmd CreateMonthCommand) (*period.Month, error) {
	actor, err := h.requireAdmin(ctx, cmd.ActorID)
	if err != nil {
		return nil, err
	}

	// Dangling references are not permitted: the owning year must exist.
	if _, err := h.periods.GetSchoolYear(ctx, cmd.SchoolYearID); err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("catalog", "CreateMonth", shared.ErrDanglingReference, "owning school year does not exist")
		}
		return nil, fmt.Errorf("catalog: load school year: %w", err)
	}

	month, err := period.NewMonth(uuid.NewString(), cmd.SchoolYearID, cmd.Name, cmd.Ordinal)
	if err != nil {
		return nil, err
	}

	auditEntry, err := newAuditEntry(actor, audit.ActionCreate, audit.TargetMonth, month.ID, "month "+month.Name, "")
	if err != nil {
		return nil, err
	}
	if err := h.mutate(ctx, func(ctx context.Context) error {
		return h.periods.SaveMonth(ctx, month)
	}, auditEntry); err != nil {
		return nil, fmt.Errorf("catalog: create month: %w", err)
	}
	return month, nil
}

// UpdateMonthCommand contains the data to update a month.
type UpdateMonthCommand struct {
	ID      string
	Name    string
	Ordinal int
	ActorID string
}

// UpdateMonth renames or renumbers a month.
func (h *CatalogHandler) UpdateMonth(ctx context.Context, cmd UpdateMonthCommand) (*period.Month, error) {
	actor, err := h.requireAdmin(ctx, cmd.ActorID)
	if err != nil {
		return nil, err
	}

	month, err := h.periods.GetMonth(ctx, cmd.ID)
	if err != nil {
		return nil, fmt.Errorf("catalog: load month: %w", err)
	}
	updated, err := period.NewMonth(month.ID, month.SchoolYearID, cmd.Name, cmd.Ordinal)
	if err != nil {
		return nil, err
	}
	updated.Status = month.Status

	auditEntry, err := newAuditEntry(actor, audit.ActionUpdate, audit.TargetMonth, month.ID, "month updated: "+updated.Name, "")
	if err != nil {
		return nil, err
	}
	if err := h.mutate(ctx, func(ctx context.Context) error {
		return h.periods.SaveMonth(ctx, updated)
	}, auditEntry); err != nil {
		return nil, fmt.Errorf("catalog: update month: %w", err)
	}
	return updated, nil
}

// DeleteMonthCommand contains the data to delete a month.
type DeleteMonthCommand struct {
	ID      string
	ActorID string
}

// DeleteMonth deletes a month.
func (h *CatalogHandler) DeleteMonth(ctx context.Context, cmd DeleteMonthCommand) error {
	actor, err := h.requireAdmin(ctx, cmd.ActorID)
	if err != nil {
		return err
	}

	month, err := h.periods.GetMonth(ctx, cmd.ID)
	if err != nil {
		return fmt.Errorf("catalog: load month: %w", err)
	}

	auditEntry, err := newAuditEntry(actor, audit.ActionDelete, audit.TargetMonth, month.ID, "month "+month.Name, "")
	if err != nil {
		return err
	}
	if err := h.mutate(ctx, func(ctx context.Context) error {
		return h.periods.DeleteMonth(ctx, month.ID)
	}, auditEntry); err != nil {
		return fmt.Errorf("catalog: delete month: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Weeks
// ─────────────────────────────────────────────────────────────────────────────

// CreateWeekCommand contains the data to create a week.
type CreateWeekCommand struct {
	MonthID string
	Name    string
	Ordinal int
	ActorID string
}

// CreateWeek creates a week under an existing month.
func (h *CatalogHandler) CreateWeek(ctx context.Context, cmd CreateWeekCommand) (*period.Week, error) {
	actor, err := h.requireAdmin(ctx, cmd.ActorID)
	if err != nil {
		return nil, err
	}

	if _, err := h.periods.GetMonth(ctx, cmd.MonthID); err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("catalog", "CreateWeek", shared.ErrDanglingReference, "owning month does not exist")
		}
		return nil, fmt.Errorf("catalog: load month: %w", err)
	}

	week, err := period.NewWeek(uuid.NewString(), cmd.MonthID, cmd.Name, cmd.Ordinal)
	if err != nil {
		return nil, err
	}

	auditEntry, err := newAuditEntry(actor, audit.ActionCreate, audit.TargetWeek, week.ID, "week "+week.Name, "")
	if err != nil {
		return nil, err
	}
	if err := h.mutate(ctx, func(ctx context.Context) error {
		return h.periods.SaveWeek(ctx, week)
	}, auditEntry); err != nil {
		return nil, fmt.Errorf("catalog: create week: %w", err)
	}
	return week, nil
}

// UpdateWeekCommand contains the data to update a week.
type UpdateWeekCommand struct {
	ID      string
	Name    string
	Ordinal int
	ActorID string
}

// UpdateWeek renames or renumbers a week.
func (h *CatalogHandler) UpdateWeek(ctx context.Context, cmd UpdateWeekCommand) (*period.Week, error) {
	actor, err := h.requireAdmin(ctx, cmd.ActorID)
	if err != nil {
		return nil, err
	}

	week, err := h.periods.GetWeek(ctx, cmd.ID)
	if err != nil {
		return nil, fmt.Errorf("catalog: load week: %w", err)
	}
	updated, err := period.NewWeek(week.ID, week.MonthID, cmd.Name, cmd.Ordinal)
	if err != nil {
		return nil, err
	}
	updated.Status = week.Status

	auditEntry, err := newAuditEntry(actor, audit.ActionUpdate, audit.TargetWeek, week.ID, "week updated: "+updated.Name, "")
	if err != nil {
		return nil, err
	}
	if err := h.mutate(ctx, func(ctx context.Context) error {
		return h.periods.SaveWeek(ctx, updated)
	}, auditEntry); err != nil {
		return nil, fmt.Errorf("catalog: update week: %w", err)
	}
	return updated, nil
}

// DeleteWeekCommand contains the data to delete a week.
type DeleteWeekCommand struct {
	ID      string
	ActorID string
}

// DeleteWeek deletes a week.
func (h *CatalogHandler) DeleteWeek(ctx context.Context, cmd DeleteWeekCommand) error {
	actor, err := h.requireAdmin(ctx, cmd.ActorID)
	if err != nil {
		return err
	}

	week, err := h.periods.GetWeek(ctx, cmd.ID)
	if err != nil {
		return fmt.Errorf("catalog: load week: %w", err)
	}

	auditEntry, err := newAuditEntry(actor, audit.ActionDelete, audit.TargetWeek, week.ID, "week "+week.Name, "")
	if err != nil {
		return err
	}
	if err := h.mutate(ctx, func(ctx context.Context) error {
		return h.periods.DeleteWeek(ctx, week.ID)
	}, auditEntry); err != nil {
		return fmt.Errorf("catalog: delete week: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Classes
// ─────────────────────────────────────────────────────────────────────────────

// CreateClassCommand contains the data to create a class.
type CreateClassCommand struct {
	Name       string
	GradeLevel int
	ActorID    string
}

// CreateClass creates a class.
func (h *CatalogHandler) CreateClass(ctx context.Context, cmd CreateClassCommand) (*scoring.ClassRoom, error) {
	actor, err := h.requireAdmin(ctx, cmd.ActorID)
	if err != nil {
		return nil, err
	}

	class, err := scoring.NewClassRoom(uuid.NewString(), cmd.Name, cmd.GradeLevel)
	if err != nil {
		return nil, err
	}

	auditEntry, err := newAuditEntry(actor, audit.ActionCreate, audit.TargetClass, class.ID, "class "+class.Name, "")
	if err != nil {
		return nil, err
	}
	if err := h.mutate(ctx, func(ctx context.Context) error {
		return h.classes.SaveClass(ctx, class)
	}, auditEntry); err != nil {
		return nil, fmt.Errorf("catalog: create class: %w", err)
	}
	return class, nil
}

// UpdateClassCommand contains the data to update a class.
type UpdateClassCommand struct {
	ID         string
	Name       string
	GradeLevel int
	ActorID    string
}

// UpdateClass renames or regrades a class.
func (h *CatalogHandler) UpdateClass(ctx context.Context, cmd UpdateClassCommand) (*scoring.ClassRoom, error) {
	actor, err := h.requireAdmin(ctx, cmd.ActorID)
	if err != nil {
		return nil, err
	}

	class, err := h.classes.GetClass(ctx, cmd.ID)
	if err != nil {
		return nil, fmt.Errorf("catalog: load class: %w", err)
	}
	updated, err := scoring.NewClassRoom(class.ID, cmd.Name, cmd.GradeLevel)
	if err != nil {
		return nil, err
	}

	auditEntry, err := newAuditEntry(actor, audit.ActionUpdate, audit.TargetClass, class.ID, "class updated: "+updated.Name, "")
	if err != nil {
		return nil, err
	}
	if err := h.mutate(ctx, func(ctx context.Context) error {
		return h.classes.SaveClass(ctx, updated)
	}, auditEntry); err != nil {
		return nil, fmt.Errorf("catalog: update class: %w", err)
	}
	return updated, nil
}

// DeleteClassCommand contains the data to delete a class.
type DeleteClassCommand struct {
	ID      string
	ActorID string
}

// DeleteClass deletes a class.
func (h *CatalogHandler) DeleteClass(ctx context.Context, cmd DeleteClassCommand) error {
	actor, err := h.requireAdmin(ctx, cmd.ActorID)
	if err != nil {
		return err
	}

	class, err := h.classes.GetClass(ctx, cmd.ID)
	if err != nil {
		return fmt.Errorf("catalog: load class: %w", err)
	}

	auditEntry, err := newAuditEntry(actor, audit.ActionDelete, audit.TargetClass, class.ID, "class "+class.Name, "")
	if err != nil {
		return err
	}
	if err := h.mutate(ctx, func(ctx context.Context) error {
		return h.classes.DeleteClass(ctx, class.ID)
	}, auditEntry); err != nil {
		return fmt.Errorf("catalog: delete class: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Violation categories
// ─────────────────────────────────────────────────────────────────────────────

// CreateViolationCommand contains the data to create a violation
// category.
type CreateViolationCommand struct {
	Name       string
	BasePoints float64
	ActorID    string
}

// CreateViolation creates a violation category.
func (h *CatalogHandler) CreateViolation(ctx context.Context, cmd CreateViolationCommand) (*scoring.ViolationCategory, error) {
	actor, err := h.requireAdmin(ctx, cmd.ActorID)
	if err != nil {
		return nil, err
	}

	category, err := scoring.NewViolationCategory(uuid.NewString(), cmd.Name, cmd.BasePoints)
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("category %s (%+.2f points)", category.Name, category.BasePoints)
	auditEntry, err := newAuditEntry(actor, audit.ActionCreate, audit.TargetViolation, category.ID, details, "")
	if err != nil {
		return nil, err
	}
	if err := h.mutate(ctx, func(ctx context.Context) error {
		return h.violations.SaveViolation(ctx, category)
	}, auditEntry); err != nil {
		return nil, fmt.Errorf("catalog: create violation: %w", err)
	}
	return category, nil
}

// UpdateViolationCommand contains the data to update a violation
// category.
type UpdateViolationCommand struct {
	ID         string
	Name       string
	BasePoints float64
	ActorID    string
}

// UpdateViolation updates a category. Existing score entries keep their
// already-computed points; only future entries see the new base value.
func (h *CatalogHandler) UpdateViolation(ctx context.Context, cmd UpdateViolationCommand) (*scoring.ViolationCategory, error) {
	actor, err := h.requireAdmin(ctx, cmd.ActorID)
	if err != nil {
		return nil, err
	}

	category, err := h.violations.GetViolation(ctx, cmd.ID)
	if err != nil {
		return nil, fmt.Errorf("catalog: load violation: %w", err)
	}
	updated, err := scoring.NewViolationCategory(category.ID, cmd.Name, cmd.BasePoints)
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("category updated: %s (%+.2f points)", updated.Name, updated.BasePoints)
	auditEntry, err := newAuditEntry(actor, audit.ActionUpdate, audit.TargetViolation, category.ID, details, "")
	if err != nil {
		return nil, err
	}
	if err := h.mutate(ctx, func(ctx context.Context) error {
		return h.violations.SaveViolation(ctx, updated)
	}, auditEntry); err != nil {
		return nil, fmt.Errorf("catalog: update violation: %w", err)
	}
	return updated, nil
}

// DeleteViolationCommand contains the data to delete a violation
// category.
type DeleteViolationCommand struct {
	ID      string
	ActorID string
}

// DeleteViolation deletes a violation category.
func (h *CatalogHandler) DeleteViolation(ctx context.Context, cmd DeleteViolationCommand) error {
	actor, err := h.requireAdmin(ctx, cmd.ActorID)
	if err != nil {
		return err
	}

	category, err := h.violations.GetViolation(ctx, cmd.ID)
	if err != nil {
		return fmt.Errorf("catalog: load violation: %w", err)
	}

	auditEntry, err := newAuditEntry(actor, audit.ActionDelete, audit.TargetViolation, category.ID, "category "+category.Name, "")
	if err != nil {
		return err
	}
	if err := h.mutate(ctx, func(ctx context.Context) error {
		return h.violations.DeleteViolation(ctx, category.ID)
	}, auditEntry); err != nil {
		return fmt.Errorf("catalog: delete violation: %w", err)
	}
	return nil
}
