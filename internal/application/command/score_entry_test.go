package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thidua-hub/school-merit-hub/internal/domain/audit"
	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
)

func TestCreateScoreEntry_OpenWeek(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	result, err := e.create.Handle(ctx, CreateScoreEntryCommand{
		WeekID:       weekID,
		ClassID:      classID,
		ViolationID:  violationID,
		StudentCount: 3,
		Note:         "late after break",
		ActorID:      dutyTeacherID,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Entry)
	assert.Nil(t, result.Pending)

	assert.InDelta(t, -7.5, result.Entry.Points, 1e-9)
	assert.Equal(t, "Duty Teacher", result.Entry.CreatedBy)

	stored, err := e.store.GetEntry(ctx, result.Entry.ID)
	require.NoError(t, err)
	assert.InDelta(t, -7.5, stored.Points, 1e-9)

	// The audit record lands together with the write.
	entries := e.auditEntries(t)
	require.NotEmpty(t, entries)
	assert.Equal(t, audit.ActionCreate, entries[0].Action)
	assert.Equal(t, audit.TargetScoreEntry, entries[0].TargetType)
	assert.Equal(t, result.Entry.ID, entries[0].TargetID)
	assert.Empty(t, entries[0].Reason)

	require.Len(t, e.events.events, 1)
	assert.Equal(t, "score_entry.created", e.events.events[0].EventName())
}

func TestCreateScoreEntry_LockedWeekByRole(t *testing.T) {
	t.Run("teacher is forbidden on an open week", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.create.Handle(context.Background(), CreateScoreEntryCommand{
			WeekID: weekID, ClassID: classID, ViolationID: violationID, StudentCount: 1, ActorID: teacherID,
		})
		assert.True(t, shared.IsForbidden(err))
	})

	t.Run("teacher hits the lock first on a locked week", func(t *testing.T) {
		e := newEnv(t)
		e.lockWeek(t, weekID)
		_, err := e.create.Handle(context.Background(), CreateScoreEntryCommand{
			WeekID: weekID, ClassID: classID, ViolationID: violationID, StudentCount: 1, ActorID: teacherID,
		})
		assert.True(t, shared.IsLocked(err), "the lock outranks the role check")
	})

	t.Run("duty teacher hits the lock", func(t *testing.T) {
		e := newEnv(t)
		e.lockWeek(t, weekID)
		_, err := e.create.Handle(context.Background(), CreateScoreEntryCommand{
			WeekID: weekID, ClassID: classID, ViolationID: violationID, StudentCount: 1, ActorID: dutyTeacherID,
		})
		assert.True(t, shared.IsLocked(err))
	})

	t.Run("admin is parked for override", func(t *testing.T) {
		e := newEnv(t)
		e.lockWeek(t, weekID)
		result, err := e.create.Handle(context.Background(), CreateScoreEntryCommand{
			WeekID: weekID, ClassID: classID, ViolationID: violationID, StudentCount: 2, ActorID: adminID,
		})
		require.NoError(t, err)
		assert.Nil(t, result.Entry)
		require.NotNil(t, result.Pending)
		assert.Equal(t, PendingKindCreateEntry, result.Pending.Kind)

		// Nothing is persisted until the reason is confirmed.
		stored, err := e.store.ListEntries(context.Background())
		require.NoError(t, err)
		assert.Empty(t, stored)
		assert.Empty(t, e.auditEntries(t))
		assert.Empty(t, e.events.events)
	})
}

func TestCreateScoreEntry_MonthLockCascades(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	month, err := e.store.GetMonth(ctx, "m-sep")
	require.NoError(t, err)
	month.Status = "LOCKED"
	require.NoError(t, e.store.SaveMonth(ctx, month))

	_, err = e.create.Handle(ctx, CreateScoreEntryCommand{
		WeekID: weekID, ClassID: classID, ViolationID: violationID, StudentCount: 1, ActorID: dutyTeacherID,
	})
	assert.True(t, shared.IsLocked(err), "a locked month must lock its weeks")
}

func TestCreateScoreEntry_MissingCategoryScoresZero(t *testing.T) {
	e := newEnv(t)

	result, err := e.create.Handle(context.Background(), CreateScoreEntryCommand{
		WeekID: weekID, ClassID: classID, ViolationID: "v-gone", StudentCount: 5, ActorID: dutyTeacherID,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Entry)
	assert.InDelta(t, 0.0, result.Entry.Points, 1e-9)
}

func TestCreateScoreEntry_UnknownActor(t *testing.T) {
	e := newEnv(t)

	_, err := e.create.Handle(context.Background(), CreateScoreEntryCommand{
		WeekID: weekID, ClassID: classID, ViolationID: violationID, StudentCount: 1, ActorID: "ghost",
	})
	assert.True(t, shared.IsForbidden(err))
}

func TestCreateScoreEntry_Validation(t *testing.T) {
	e := newEnv(t)

	_, err := e.create.Handle(context.Background(), CreateScoreEntryCommand{
		WeekID: weekID, ClassID: classID, ViolationID: violationID, StudentCount: 0, ActorID: dutyTeacherID,
	})
	assert.True(t, shared.IsValidation(err))
}

func TestDeleteScoreEntry_RoundTrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created, err := e.create.Handle(ctx, CreateScoreEntryCommand{
		WeekID: weekID, ClassID: classID, ViolationID: violationID, StudentCount: 3, ActorID: dutyTeacherID,
	})
	require.NoError(t, err)

	result, err := e.remove.Handle(ctx, DeleteScoreEntryCommand{
		EntryID: created.Entry.ID,
		ActorID: dutyTeacherID,
	})
	require.NoError(t, err)
	assert.True(t, result.Deleted)

	_, err = e.store.GetEntry(ctx, created.Entry.ID)
	assert.True(t, shared.IsNotFound(err))

	// Create then delete leaves two audit records, newest first.
	entries := e.auditEntries(t)
	require.Len(t, entries, 2)
	assert.Equal(t, audit.ActionDelete, entries[0].Action)
	assert.Equal(t, audit.ActionCreate, entries[1].Action)
}

func TestDeleteScoreEntry_MissingIsSilentNoop(t *testing.T) {
	e := newEnv(t)

	result, err := e.remove.Handle(context.Background(), DeleteScoreEntryCommand{
		EntryID: "never-existed",
		ActorID: dutyTeacherID,
	})
	require.NoError(t, err)
	assert.False(t, result.Deleted)
	assert.Nil(t, result.Pending)
	assert.Empty(t, e.auditEntries(t), "a no-op delete is not audited")
}

func TestDeleteScoreEntry_LockedWeek(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	created, err := e.create.Handle(ctx, CreateScoreEntryCommand{
		WeekID: weekID, ClassID: classID, ViolationID: violationID, StudentCount: 1, ActorID: dutyTeacherID,
	})
	require.NoError(t, err)
	e.lockWeek(t, weekID)

	_, err = e.remove.Handle(ctx, DeleteScoreEntryCommand{EntryID: created.Entry.ID, ActorID: dutyTeacherID})
	assert.True(t, shared.IsLocked(err))

	_, err = e.remove.Handle(ctx, DeleteScoreEntryCommand{EntryID: created.Entry.ID, ActorID: teacherID})
	assert.True(t, shared.IsLocked(err), "the lock outranks the role check")

	result, err := e.remove.Handle(ctx, DeleteScoreEntryCommand{EntryID: created.Entry.ID, ActorID: adminID})
	require.NoError(t, err)
	require.NotNil(t, result.Pending)
	assert.Equal(t, PendingKindDeleteEntry, result.Pending.Kind)

	// Still present until the override is confirmed.
	_, err = e.store.GetEntry(ctx, created.Entry.ID)
	assert.NoError(t, err)
}
