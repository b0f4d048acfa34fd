package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thidua-hub/school-merit-hub/internal/domain/period"
	"github.com/thidua-hub/school-merit-hub/internal/domain/scoring"
	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
)

func week(id, monthID string) *period.Week {
	w, _ := period.NewWeek(id, monthID, id, 1)
	return w
}

func month(id, yearID string) *period.Month {
	m, _ := period.NewMonth(id, yearID, id, 9)
	return m
}

func class(id, name string) *scoring.ClassRoom {
	c, _ := scoring.NewClassRoom(id, name, 6)
	return c
}

func violation(id, name string, basePoints float64) *scoring.ViolationCategory {
	v, _ := scoring.NewViolationCategory(id, name, basePoints)
	return v
}

func entry(id, weekID, classID, violationID string, students int, basePoints float64) *scoring.ScoreEntry {
	e, _ := scoring.NewScoreEntry(scoring.NewScoreEntryParams{
		ID:           id,
		WeekID:       weekID,
		ClassID:      classID,
		ViolationID:  violationID,
		StudentCount: students,
		BasePoints:   basePoints,
	})
	return e
}

func TestRankings_WeekWindow(t *testing.T) {
	snap := &Snapshot{
		Weeks:   []*period.Week{week("w1", "m1")},
		Classes: []*scoring.ClassRoom{class("c1", "6A1"), class("c2", "7A1")},
		Entries: []*scoring.ScoreEntry{
			entry("e1", "w1", "c1", "v1", 3, -2.5), // -7.5
		},
	}

	items, err := NewCalculator().Rankings(snap, period.TypeWeek, "w1")
	require.NoError(t, err)
	require.Len(t, items, 2)

	// c2 untouched at 100 ranks first, c1 at 92.5 second.
	assert.Equal(t, "c2", items[0].ClassID)
	assert.InDelta(t, 100.0, items[0].TotalPoints, 1e-9)
	assert.Equal(t, 1, items[0].Rank)

	assert.Equal(t, "c1", items[1].ClassID)
	assert.InDelta(t, 92.5, items[1].TotalPoints, 1e-9)
	assert.Equal(t, 2, items[1].Rank)
}

func TestRankings_MonthWindowAddsBasePerWeek(t *testing.T) {
	snap := &Snapshot{
		Weeks:   []*period.Week{week("w1", "m1"), week("w2", "m1"), week("w3", "other")},
		Classes: []*scoring.ClassRoom{class("c1", "6A1")},
		Entries: []*scoring.ScoreEntry{
			entry("e1", "w1", "c1", "v1", 2, -2.5), // -5
			entry("e2", "w2", "c1", "v1", 1, -2.5), // -2.5
			entry("e3", "w3", "c1", "v1", 5, -2.5), // out of scope
		},
	}

	items, err := NewCalculator().Rankings(snap, period.TypeMonth, "m1")
	require.NoError(t, err)
	require.Len(t, items, 1)

	// Two weeks in scope: 2*100 - 5 - 2.5 = 192.5.
	assert.InDelta(t, 192.5, items[0].TotalPoints, 1e-9)
}

func TestRankings_YearWindowSpansMonths(t *testing.T) {
	snap := &Snapshot{
		Months:  []*period.Month{month("m1", "y1"), month("m2", "y1"), month("m3", "y2")},
		Weeks:   []*period.Week{week("w1", "m1"), week("w2", "m2"), week("w3", "m3")},
		Classes: []*scoring.ClassRoom{class("c1", "6A1")},
		Entries: []*scoring.ScoreEntry{
			entry("e1", "w1", "c1", "v1", 4, -2.5),  // -10
			entry("e2", "w2", "c1", "v2", 2, 1.5),   // +3
			entry("e3", "w3", "c1", "v1", 10, -2.5), // other year, out of scope
		},
	}

	items, err := NewCalculator().Rankings(snap, period.TypeYear, "y1")
	require.NoError(t, err)
	require.Len(t, items, 1)

	// Two weeks across the year: 2*100 - 10 + 3 = 193.
	assert.InDelta(t, 193.0, items[0].TotalPoints, 1e-9)
}

func TestRankings_TiesKeepSnapshotOrder(t *testing.T) {
	snap := &Snapshot{
		Weeks:   []*period.Week{week("w1", "m1")},
		Classes: []*scoring.ClassRoom{class("c1", "6A1"), class("c2", "7A1"), class("c3", "8A1")},
		Entries: []*scoring.ScoreEntry{
			entry("e1", "w1", "c2", "v1", 2, -2.5),
		},
	}

	items, err := NewCalculator().Rankings(snap, period.TypeWeek, "w1")
	require.NoError(t, err)
	require.Len(t, items, 3)

	// c1 and c3 tie at 100; snapshot order breaks the tie.
	assert.Equal(t, []string{"c1", "c3", "c2"}, []string{items[0].ClassID, items[1].ClassID, items[2].ClassID})
	assert.Equal(t, 1, items[0].Rank)
	assert.Equal(t, 2, items[1].Rank)
	assert.Equal(t, 3, items[2].Rank)
}

func TestRankings_EmptyScopeYieldsZeroTotals(t *testing.T) {
	snap := &Snapshot{
		Classes: []*scoring.ClassRoom{class("c1", "6A1")},
	}

	items, err := NewCalculator().Rankings(snap, period.TypeMonth, "m-unknown")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.InDelta(t, 0.0, items[0].TotalPoints, 1e-9)
}

func TestRankings_InvalidWindow(t *testing.T) {
	calc := NewCalculator()
	snap := &Snapshot{}

	_, err := calc.Rankings(snap, period.Type("DECADE"), "x")
	assert.True(t, shared.IsValidation(err))

	_, err = calc.Rankings(snap, period.TypeWeek, "")
	assert.True(t, shared.IsValidation(err))
}

func TestViolationStats_SortAndZeroRows(t *testing.T) {
	snap := &Snapshot{
		Weeks: []*period.Week{week("w1", "m1")},
		Violations: []*scoring.ViolationCategory{
			violation("v1", "Late", -2.5),
			violation("v2", "Littering", -5),
			violation("v3", "Helping", 3),
		},
		Entries: []*scoring.ScoreEntry{
			entry("e1", "w1", "c1", "v1", 2, -2.5), // v1: freq 1, -5
			entry("e2", "w1", "c2", "v2", 1, -5),   // v2: freq 2, -10 in total
			entry("e3", "w1", "c1", "v2", 1, -5),
		},
	}

	stats, err := NewCalculator().ViolationStats(snap, period.TypeWeek, "w1")
	require.NoError(t, err)
	require.Len(t, stats, 3)

	// v2 has the highest frequency; v1 follows; v3 with zero entries is
	// retained last.
	assert.Equal(t, "v2", stats[0].ID)
	assert.Equal(t, 2, stats[0].Frequency)
	assert.Equal(t, 2, stats[0].TotalStudents)
	assert.InDelta(t, -10.0, stats[0].TotalPoints, 1e-9)

	assert.Equal(t, "v1", stats[1].ID)
	assert.Equal(t, 1, stats[1].Frequency)

	assert.Equal(t, "v3", stats[2].ID)
	assert.Equal(t, 0, stats[2].Frequency)
	assert.Equal(t, 0, stats[2].TotalStudents)
	assert.InDelta(t, 0.0, stats[2].TotalPoints, 1e-9)
}

func TestViolationStats_FrequencyTieBrokenByPointsAscending(t *testing.T) {
	snap := &Snapshot{
		Weeks: []*period.Week{week("w1", "m1")},
		Violations: []*scoring.ViolationCategory{
			violation("small", "Small", -1),
			violation("big", "Big", -10),
		},
		Entries: []*scoring.ScoreEntry{
			entry("e1", "w1", "c1", "small", 1, -1),
			entry("e2", "w1", "c1", "big", 1, -10),
		},
	}

	stats, err := NewCalculator().ViolationStats(snap, period.TypeWeek, "w1")
	require.NoError(t, err)
	require.Len(t, stats, 2)

	// Equal frequency: the larger penalty (-10 < -1) sorts first.
	assert.Equal(t, "big", stats[0].ID)
	assert.Equal(t, "small", stats[1].ID)
}
