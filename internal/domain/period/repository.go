package period

import "context"

// Repository provides access to the period hierarchy. Implementations
// must return shared.ErrNotFound (wrapped or bare) for missing records.
type Repository interface {
	// School years
	GetSchoolYear(ctx context.Context, id string) (*SchoolYear, error)
	ListSchoolYears(ctx context.Context) ([]*SchoolYear, error)
	SaveSchoolYear(ctx context.Context, year *SchoolYear) error
	DeleteSchoolYear(ctx context.Context, id string) error

	// Months
	GetMonth(ctx context.Context, id string) (*Month, error)
	ListMonthsByYear(ctx context.Context, schoolYearID string) ([]*Month, error)
	SaveMonth(ctx context.Context, month *Month) error
	DeleteMonth(ctx context.Context, id string) error

	// Weeks
	GetWeek(ctx context.Context, id string) (*Week, error)
	ListWeeksByMonth(ctx context.Context, monthID string) ([]*Week, error)
	SaveWeek(ctx context.Context, week *Week) error
	DeleteWeek(ctx context.Context, id string) error
}

// SettingsRepository holds the school-wide active year selection.
// Year-scoped views resolve "active" to a concrete id through this
// repository so that every caller sees the same year.
type SettingsRepository interface {
	GetActiveYearID(ctx context.Context) (string, error)
	SetActiveYearID(ctx context.Context, yearID string) error
}
