package period

import (
	"context"
	"fmt"

	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOCK RESOLVER
// A week's effective lock state is the OR of its own status, its month's
// status, and its year's status. Locking a year therefore locks every
// month and week beneath it without touching their stored status fields.
// ══════════════════════════════════════════════════════════════════════════════

// Resolver computes effective lock state for weeks.
type Resolver struct {
	repo Repository
}

// NewResolver creates a lock resolver backed by the given repository.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// IsLocked reports whether the week with the given id is effectively
// locked. A dangling reference anywhere along the week -> month -> year
// chain counts as locked (fail safe). The returned error is non-nil only
// for infrastructure failures; even then locked=true is reported so a
// caller that ignores the error cannot accidentally open a period.
func (r *Resolver) IsLocked(ctx context.Context, weekID string) (bool, error) {
	week, err := r.repo.GetWeek(ctx, weekID)
	if err != nil {
		if shared.IsNotFound(err) {
			return true, nil
		}
		return true, fmt.Errorf("lock resolver: get week %s: %w", weekID, err)
	}

	month, err := r.repo.GetMonth(ctx, week.MonthID)
	if err != nil {
		if shared.IsNotFound(err) {
			return true, nil
		}
		return true, fmt.Errorf("lock resolver: get month %s: %w", week.MonthID, err)
	}

	year, err := r.repo.GetSchoolYear(ctx, month.SchoolYearID)
	if err != nil {
		if shared.IsNotFound(err) {
			return true, nil
		}
		return true, fmt.Errorf("lock resolver: get school year %s: %w", month.SchoolYearID, err)
	}

	locked := week.Status == StatusLocked ||
		month.Status == StatusLocked ||
		year.Status == StatusLocked

	return locked, nil
}
