package period_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thidua-hub/school-merit-hub/internal/domain/period"
	"github.com/thidua-hub/school-merit-hub/internal/infrastructure/persistence/memory"
)

func seedHierarchy(t *testing.T, yearStatus, monthStatus, weekStatus period.Status) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	year, err := period.NewSchoolYear("y1", "2024-2025")
	require.NoError(t, err)
	year.Status = yearStatus
	require.NoError(t, store.SaveSchoolYear(ctx, year))

	month, err := period.NewMonth("m1", "y1", "September", 9)
	require.NoError(t, err)
	month.Status = monthStatus
	require.NoError(t, store.SaveMonth(ctx, month))

	week, err := period.NewWeek("w1", "m1", "Week 1", 1)
	require.NoError(t, err)
	week.Status = weekStatus
	require.NoError(t, store.SaveWeek(ctx, week))

	return store
}

func TestResolver_IsLocked_Cascade(t *testing.T) {
	tests := []struct {
		name   string
		year   period.Status
		month  period.Status
		week   period.Status
		locked bool
	}{
		{"all open", period.StatusOpen, period.StatusOpen, period.StatusOpen, false},
		{"week locked", period.StatusOpen, period.StatusOpen, period.StatusLocked, true},
		{"month locked", period.StatusOpen, period.StatusLocked, period.StatusOpen, true},
		{"year locked", period.StatusLocked, period.StatusOpen, period.StatusOpen, true},
		{"month and week locked", period.StatusOpen, period.StatusLocked, period.StatusLocked, true},
		{"everything locked", period.StatusLocked, period.StatusLocked, period.StatusLocked, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seedHierarchy(t, tt.year, tt.month, tt.week)
			resolver := period.NewResolver(store)

			locked, err := resolver.IsLocked(context.Background(), "w1")
			require.NoError(t, err)
			assert.Equal(t, tt.locked, locked)
		})
	}
}

func TestResolver_IsLocked_MissingWeek(t *testing.T) {
	store := memory.NewStore()
	resolver := period.NewResolver(store)

	locked, err := resolver.IsLocked(context.Background(), "no-such-week")
	require.NoError(t, err)
	assert.True(t, locked, "a missing week must resolve as locked")
}

func TestResolver_IsLocked_DanglingMonth(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	week, err := period.NewWeek("w1", "m-gone", "Week 1", 1)
	require.NoError(t, err)
	require.NoError(t, store.SaveWeek(ctx, week))

	resolver := period.NewResolver(store)
	locked, err := resolver.IsLocked(ctx, "w1")
	require.NoError(t, err)
	assert.True(t, locked, "a week whose month is gone must resolve as locked")
}

func TestResolver_IsLocked_DanglingYear(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	month, err := period.NewMonth("m1", "y-gone", "September", 9)
	require.NoError(t, err)
	require.NoError(t, store.SaveMonth(ctx, month))

	week, err := period.NewWeek("w1", "m1", "Week 1", 1)
	require.NoError(t, err)
	require.NoError(t, store.SaveWeek(ctx, week))

	resolver := period.NewResolver(store)
	locked, err := resolver.IsLocked(ctx, "w1")
	require.NoError(t, err)
	assert.True(t, locked, "a month whose year is gone must resolve as locked")
}

func TestPeriodFactories_Validation(t *testing.T) {
	_, err := period.NewSchoolYear("", "2024-2025")
	assert.Error(t, err)

	_, err = period.NewSchoolYear("y1", "   ")
	assert.Error(t, err)

	_, err = period.NewMonth("m1", "y1", "September", 13)
	assert.Error(t, err)

	_, err = period.NewWeek("w1", "m1", "Week 36", 36)
	assert.Error(t, err)

	year, err := period.NewSchoolYear("y1", "2024-2025")
	require.NoError(t, err)
	assert.Equal(t, period.StatusOpen, year.Status)
}
