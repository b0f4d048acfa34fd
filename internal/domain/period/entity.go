// Package period contains the school calendar hierarchy (year, month, week)
// and the cascading lock policy applied to it. No external dependencies.
package period

import (
	"strings"

	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Status is the stored lock status of a single period record.
// The effective lock state of a week also depends on its ancestors,
// see Resolver.
type Status string

const (
	// StatusOpen - the period accepts score mutations.
	StatusOpen Status = "OPEN"
	// StatusLocked - the period rejects score mutations for non-admins.
	StatusLocked Status = "LOCKED"
)

// IsValid reports whether the status is one of the known values.
func (s Status) IsValid() bool {
	return s == StatusOpen || s == StatusLocked
}

// Type identifies a level of the period hierarchy. It doubles as the
// scope selector for aggregation queries and lock toggles.
type Type string

const (
	// TypeWeek - a single week.
	TypeWeek Type = "WEEK"
	// TypeMonth - a month and all weeks under it.
	TypeMonth Type = "MONTH"
	// TypeYear - a school year and everything under it.
	TypeYear Type = "YEAR"
)

// IsValid reports whether the type is one of the known values.
func (t Type) IsValid() bool {
	return t == TypeWeek || t == TypeMonth || t == TypeYear
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// MaxWeekOrdinal bounds the week ordinal within a school year.
const MaxWeekOrdinal = 35

// SchoolYear is the top of the lock hierarchy. At least one school year
// must exist at all times; deletion of the last one is rejected upstream.
type SchoolYear struct {
	ID     string
	Name   string
	Status Status
}

// Month belongs to exactly one school year.
type Month struct {
	ID           string
	SchoolYearID string
	Name         string
	Ordinal      int
	Status       Status
}

// Week belongs to exactly one month. Score entries reference weeks.
type Week struct {
	ID      string
	MonthID string
	Name    string
	Ordinal int
	Status  Status
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORIES
// ══════════════════════════════════════════════════════════════════════════════

// NewSchoolYear creates a school year in the OPEN state.
func NewSchoolYear(id, name string) (*SchoolYear, error) {
	if id == "" {
		return nil, shared.NewDomainError("period", "NewSchoolYear", shared.ErrInvalidID, "school year id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("period", "NewSchoolYear", shared.ErrEmptyValue, "school year name is required")
	}
	return &SchoolYear{ID: id, Name: name, Status: StatusOpen}, nil
}

// NewMonth creates a month in the OPEN state.
func NewMonth(id, schoolYearID, name string, ordinal int) (*Month, error) {
	if id == "" {
		return nil, shared.NewDomainError("period", "NewMonth", shared.ErrInvalidID, "month id is required")
	}
	if schoolYearID == "" {
		return nil, shared.NewDomainError("period", "NewMonth", shared.ErrInvalidID, "owning school year id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("period", "NewMonth", shared.ErrEmptyValue, "month name is required")
	}
	if ordinal < 1 || ordinal > 12 {
		return nil, shared.NewDomainError("period", "NewMonth", shared.ErrValueOutOfRange, "month ordinal must be within 1..12")
	}
	return &Month{ID: id, SchoolYearID: schoolYearID, Name: name, Ordinal: ordinal, Status: StatusOpen}, nil
}

// NewWeek creates a week in the OPEN state.
func NewWeek(id, monthID, name string, ordinal int) (*Week, error) {
	if id == "" {
		return nil, shared.NewDomainError("period", "NewWeek", shared.ErrInvalidID, "week id is required")
	}
	if monthID == "" {
		return nil, shared.NewDomainError("period", "NewWeek", shared.ErrInvalidID, "owning month id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("period", "NewWeek", shared.ErrEmptyValue, "week name is required")
	}
	if ordinal < 1 || ordinal > MaxWeekOrdinal {
		return nil, shared.NewDomainError("period", "NewWeek", shared.ErrValueOutOfRange, "week ordinal must be within 1..35")
	}
	return &Week{ID: id, MonthID: monthID, Name: name, Ordinal: ordinal, Status: StatusOpen}, nil
}
