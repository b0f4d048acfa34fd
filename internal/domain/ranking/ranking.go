// Package ranking computes class rankings and violation statistics over
// week, month, and year windows. Pure derivation: the calculator reads a
// consistent snapshot and mutates nothing.
package ranking

import (
	"sort"

	"github.com/thidua-hub/school-merit-hub/internal/domain/period"
	"github.com/thidua-hub/school-merit-hub/internal/domain/scoring"
	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
)

// BaseWeeklyPoints is the fixed starting allowance every class receives
// once per week in scope.
const BaseWeeklyPoints = 100.0

// ══════════════════════════════════════════════════════════════════════════════
// RESULT SHAPES
// ══════════════════════════════════════════════════════════════════════════════

// Item is one row of a ranking table.
type Item struct {
	ClassID     string
	ClassName   string
	TotalPoints float64
	Rank        int
}

// ViolationStat is one row of a violation statistics table. Categories
// with no matching entries still appear with zero values.
type ViolationStat struct {
	ID            string
	Name          string
	BasePoints    float64
	Frequency     int
	TotalStudents int
	TotalPoints   float64
}

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT
// ══════════════════════════════════════════════════════════════════════════════

// Snapshot is a consistent read of everything aggregation needs. Callers
// assemble it inside a single read transaction (or from the in-memory
// store under its lock) so that no mutation interleaves mid-computation.
type Snapshot struct {
	Months     []*period.Month
	Weeks      []*period.Week
	Classes    []*scoring.ClassRoom
	Violations []*scoring.ViolationCategory
	Entries    []*scoring.ScoreEntry
}

// weekIDsInScope selects the week ids covered by the requested window.
// YEAR windows always take an explicit school-year id; there is no
// ambient "active year" inside the calculator.
func (s *Snapshot) weekIDsInScope(periodType period.Type, targetID string) map[string]bool {
	scope := make(map[string]bool)

	switch periodType {
	case period.TypeWeek:
		scope[targetID] = true
	case period.TypeMonth:
		for _, w := range s.Weeks {
			if w.MonthID == targetID {
				scope[w.ID] = true
			}
		}
	case period.TypeYear:
		monthsOfYear := make(map[string]bool)
		for _, m := range s.Months {
			if m.SchoolYearID == targetID {
				monthsOfYear[m.ID] = true
			}
		}
		for _, w := range s.Weeks {
			if monthsOfYear[w.MonthID] {
				scope[w.ID] = true
			}
		}
	}

	return scope
}

// ══════════════════════════════════════════════════════════════════════════════
// CALCULATOR
// ══════════════════════════════════════════════════════════════════════════════

// Calculator derives rankings and statistics from a snapshot.
type Calculator struct{}

// NewCalculator creates a Calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Rankings computes the per-class ranking table for the window.
//
// Each class starts from BaseWeeklyPoints once per week in scope and
// adds its entries' points for those weeks. Totals are rounded to 2
// decimals independently before sorting. Sort is descending by total
// with ties kept in snapshot class order; rank is the 1-based position
// after sorting.
func (c *Calculator) Rankings(snap *Snapshot, periodType period.Type, targetID string) ([]Item, error) {
	if !periodType.IsValid() {
		return nil, shared.NewDomainError("ranking", "Rankings", shared.ErrInvalidInput, "unknown period type")
	}
	if targetID == "" {
		return nil, shared.NewDomainError("ranking", "Rankings", shared.ErrInvalidID, "target id is required")
	}

	scope := snap.weekIDsInScope(periodType, targetID)

	// Points per class per week in scope.
	perClassWeek := make(map[string]map[string]float64, len(snap.Classes))
	for _, e := range snap.Entries {
		if !scope[e.WeekID] {
			continue
		}
		byWeek := perClassWeek[e.ClassID]
		if byWeek == nil {
			byWeek = make(map[string]float64)
			perClassWeek[e.ClassID] = byWeek
		}
		byWeek[e.WeekID] += e.Points
	}

	items := make([]Item, 0, len(snap.Classes))
	for _, class := range snap.Classes {
		total := 0.0
		for weekID := range scope {
			total += BaseWeeklyPoints + perClassWeek[class.ID][weekID]
		}
		items = append(items, Item{
			ClassID:     class.ID,
			ClassName:   class.Name,
			TotalPoints: scoring.Round2(total),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TotalPoints > items[j].TotalPoints
	})
	for i := range items {
		items[i].Rank = i + 1
	}

	return items, nil
}

// ViolationStats computes per-category frequency and point statistics
// for the window.
//
// Frequency counts entries, not students. Sort is frequency descending
// with ties broken by total points ascending, so among equally frequent
// categories the larger penalty sorts first. Categories with zero
// matching entries are retained with zero values.
func (c *Calculator) ViolationStats(snap *Snapshot, periodType period.Type, targetID string) ([]ViolationStat, error) {
	if !periodType.IsValid() {
		return nil, shared.NewDomainError("ranking", "ViolationStats", shared.ErrInvalidInput, "unknown period type")
	}
	if targetID == "" {
		return nil, shared.NewDomainError("ranking", "ViolationStats", shared.ErrInvalidID, "target id is required")
	}

	scope := snap.weekIDsInScope(periodType, targetID)

	type acc struct {
		frequency     int
		totalStudents int
		totalPoints   float64
	}
	byViolation := make(map[string]*acc, len(snap.Violations))
	for _, e := range snap.Entries {
		if !scope[e.WeekID] {
			continue
		}
		a := byViolation[e.ViolationID]
		if a == nil {
			a = &acc{}
			byViolation[e.ViolationID] = a
		}
		a.frequency++
		a.totalStudents += e.StudentCount
		a.totalPoints += e.Points
	}

	stats := make([]ViolationStat, 0, len(snap.Violations))
	for _, v := range snap.Violations {
		stat := ViolationStat{
			ID:         v.ID,
			Name:       v.Name,
			BasePoints: v.BasePoints,
		}
		if a := byViolation[v.ID]; a != nil {
			stat.Frequency = a.frequency
			stat.TotalStudents = a.totalStudents
			stat.TotalPoints = scoring.Round2(a.totalPoints)
		}
		stats = append(stats, stat)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Frequency != stats[j].Frequency {
			return stats[i].Frequency > stats[j].Frequency
		}
		return stats[i].TotalPoints < stats[j].TotalPoints
	})

	return stats, nil
}
