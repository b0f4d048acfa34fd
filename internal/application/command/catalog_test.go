package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thidua-hub/school-merit-hub/internal/domain/audit"
	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
)

func TestCatalog_CreateSchoolYear(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	year, err := e.catalog.CreateSchoolYear(ctx, CreateSchoolYearCommand{
		Name: "2025-2026", ActorID: adminID,
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-2026", year.Name)

	// The fixture year stays active; only the first year ever created
	// claims the active slot automatically.
	activeID, err := e.store.GetActiveYearID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sy-2024-2025", activeID)

	entries := e.auditEntries(t)
	require.NotEmpty(t, entries)
	assert.Equal(t, audit.ActionCreate, entries[0].Action)
	assert.Equal(t, audit.TargetSchoolYear, entries[0].TargetType)
}

func TestCatalog_DeleteLastSchoolYearRejected(t *testing.T) {
	e := newEnv(t)

	err := e.catalog.DeleteSchoolYear(context.Background(), DeleteSchoolYearCommand{
		ID: "sy-2024-2025", ActorID: adminID,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrLastRemaining))
}

func TestCatalog_DeleteActiveYearMovesActiveSelection(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	replacement, err := e.catalog.CreateSchoolYear(ctx, CreateSchoolYearCommand{
		Name: "2025-2026", ActorID: adminID,
	})
	require.NoError(t, err)

	require.NoError(t, e.catalog.DeleteSchoolYear(ctx, DeleteSchoolYearCommand{
		ID: "sy-2024-2025", ActorID: adminID,
	}))

	activeID, err := e.store.GetActiveYearID(ctx)
	require.NoError(t, err)
	assert.Equal(t, replacement.ID, activeID)
}

func TestCatalog_SetActiveYear(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	year, err := e.catalog.CreateSchoolYear(ctx, CreateSchoolYearCommand{
		Name: "2025-2026", ActorID: adminID,
	})
	require.NoError(t, err)

	require.NoError(t, e.catalog.SetActiveYear(ctx, SetActiveYearCommand{ID: year.ID, ActorID: adminID}))

	activeID, err := e.store.GetActiveYearID(ctx)
	require.NoError(t, err)
	assert.Equal(t, year.ID, activeID)

	// Selecting a year that does not exist fails.
	err = e.catalog.SetActiveYear(ctx, SetActiveYearCommand{ID: "sy-gone", ActorID: adminID})
	assert.True(t, shared.IsNotFound(err))
}

func TestCatalog_CreateMonth_DanglingYearRejected(t *testing.T) {
	e := newEnv(t)

	_, err := e.catalog.CreateMonth(context.Background(), CreateMonthCommand{
		SchoolYearID: "sy-gone", Name: "October", Ordinal: 10, ActorID: adminID,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrDanglingReference))
}

func TestCatalog_CreateWeek_DanglingMonthRejected(t *testing.T) {
	e := newEnv(t)

	_, err := e.catalog.CreateWeek(context.Background(), CreateWeekCommand{
		MonthID: "m-gone", Name: "Week 5", Ordinal: 5, ActorID: adminID,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrDanglingReference))
}

func TestCatalog_MonthAndWeekRoundTrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	month, err := e.catalog.CreateMonth(ctx, CreateMonthCommand{
		SchoolYearID: "sy-2024-2025", Name: "October", Ordinal: 10, ActorID: adminID,
	})
	require.NoError(t, err)

	week, err := e.catalog.CreateWeek(ctx, CreateWeekCommand{
		MonthID: month.ID, Name: "Week 5", Ordinal: 5, ActorID: adminID,
	})
	require.NoError(t, err)

	renamed, err := e.catalog.UpdateWeek(ctx, UpdateWeekCommand{
		ID: week.ID, Name: "Week 5 (revised)", Ordinal: 5, ActorID: adminID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Week 5 (revised)", renamed.Name)
	assert.Equal(t, week.Status, renamed.Status, "renaming keeps the lock status")

	require.NoError(t, e.catalog.DeleteWeek(ctx, DeleteWeekCommand{ID: week.ID, ActorID: adminID}))
	require.NoError(t, e.catalog.DeleteMonth(ctx, DeleteMonthCommand{ID: month.ID, ActorID: adminID}))

	_, err = e.store.GetMonth(ctx, month.ID)
	assert.True(t, shared.IsNotFound(err))
}

func TestCatalog_ClassRoundTrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	class, err := e.catalog.CreateClass(ctx, CreateClassCommand{
		Name: "9A1", GradeLevel: 9, ActorID: adminID,
	})
	require.NoError(t, err)

	updated, err := e.catalog.UpdateClass(ctx, UpdateClassCommand{
		ID: class.ID, Name: "9A2", GradeLevel: 9, ActorID: adminID,
	})
	require.NoError(t, err)
	assert.Equal(t, "9A2", updated.Name)

	require.NoError(t, e.catalog.DeleteClass(ctx, DeleteClassCommand{ID: class.ID, ActorID: adminID}))

	// Create, update, delete: three audit records, newest first.
	entries := e.auditEntries(t)
	require.Len(t, entries, 3)
	assert.Equal(t, audit.ActionDelete, entries[0].Action)
	assert.Equal(t, audit.ActionUpdate, entries[1].Action)
	assert.Equal(t, audit.ActionCreate, entries[2].Action)
	for _, entry := range entries {
		assert.Equal(t, audit.TargetClass, entry.TargetType)
	}
}

func TestCatalog_UpdateViolationIsNotRetroactive(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	before, err := e.create.Handle(ctx, CreateScoreEntryCommand{
		WeekID: weekID, ClassID: classID, ViolationID: violationID, StudentCount: 3, ActorID: dutyTeacherID,
	})
	require.NoError(t, err)
	require.InDelta(t, -7.5, before.Entry.Points, 1e-9)

	_, err = e.catalog.UpdateViolation(ctx, UpdateViolationCommand{
		ID: violationID, Name: "Đi học muộn", BasePoints: -5, ActorID: adminID,
	})
	require.NoError(t, err)

	// The stored entry keeps its points as computed at creation time.
	stored, err := e.store.GetEntry(ctx, before.Entry.ID)
	require.NoError(t, err)
	assert.InDelta(t, -7.5, stored.Points, 1e-9)

	// New entries pick up the new base value.
	after, err := e.create.Handle(ctx, CreateScoreEntryCommand{
		WeekID: weekID, ClassID: classID, ViolationID: violationID, StudentCount: 2, ActorID: dutyTeacherID,
	})
	require.NoError(t, err)
	assert.InDelta(t, -10.0, after.Entry.Points, 1e-9)
}

func TestCatalog_ViolationRoundTrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	category, err := e.catalog.CreateViolation(ctx, CreateViolationCommand{
		Name: "Không đồng phục", BasePoints: -1.5, ActorID: adminID,
	})
	require.NoError(t, err)
	assert.InDelta(t, -1.5, category.BasePoints, 1e-9)

	require.NoError(t, e.catalog.DeleteViolation(ctx, DeleteViolationCommand{ID: category.ID, ActorID: adminID}))

	_, err = e.store.GetViolation(ctx, category.ID)
	assert.True(t, shared.IsNotFound(err))
}

func TestCatalog_NonAdminForbidden(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for _, actor := range []string{dutyTeacherID, teacherID, ""} {
		_, err := e.catalog.CreateSchoolYear(ctx, CreateSchoolYearCommand{Name: "X", ActorID: actor})
		assert.True(t, shared.IsForbidden(err), "actor %q", actor)

		_, err = e.catalog.CreateViolation(ctx, CreateViolationCommand{Name: "X", BasePoints: -1, ActorID: actor})
		assert.True(t, shared.IsForbidden(err), "actor %q", actor)
	}
}
