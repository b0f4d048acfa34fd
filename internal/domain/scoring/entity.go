// Package scoring contains classes, violation categories, and score
// entries together with the point computation rules.
package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// POINT ARITHMETIC
// ══════════════════════════════════════════════════════════════════════════════

// Round2 rounds to 2 decimal places, halves away from zero. Every derived
// point value (per-entry, per-period sum) passes through this function
// before it is stored, compared, or displayed.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// ClassRoom is a competing class. Classes are independent of the period
// hierarchy and persist across school years.
type ClassRoom struct {
	ID         string
	Name       string
	GradeLevel int
}

// ViolationCategory is a named violation or merit with a signed base
// point value. Negative = penalty, positive = merit. Editing the base
// value never touches already-created entries.
type ViolationCategory struct {
	ID         string
	Name       string
	BasePoints float64
}

// ScoreEntry is one recorded occurrence of a category against a class in
// a specific week. Immutable once created; the only mutation is deletion.
type ScoreEntry struct {
	ID           string
	WeekID       string
	ClassID      string
	ViolationID  string
	StudentCount int
	Points       float64
	Note         string
	CreatedAt    time.Time
	CreatedBy    string
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORIES
// ══════════════════════════════════════════════════════════════════════════════

// NewClassRoom creates a class with a validated name and grade level.
func NewClassRoom(id, name string, gradeLevel int) (*ClassRoom, error) {
	if id == "" {
		return nil, shared.NewDomainError("scoring", "NewClassRoom", shared.ErrInvalidID, "class id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("scoring", "NewClassRoom", shared.ErrEmptyValue, "class name is required")
	}
	if gradeLevel < 1 || gradeLevel > 12 {
		return nil, shared.NewDomainError("scoring", "NewClassRoom", shared.ErrValueOutOfRange, "grade level must be within 1..12")
	}
	return &ClassRoom{ID: id, Name: name, GradeLevel: gradeLevel}, nil
}

// NewViolationCategory creates a category. The base point value is
// rounded on write so stored values are always 2-decimal exact.
func NewViolationCategory(id, name string, basePoints float64) (*ViolationCategory, error) {
	if id == "" {
		return nil, shared.NewDomainError("scoring", "NewViolationCategory", shared.ErrInvalidID, "category id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("scoring", "NewViolationCategory", shared.ErrEmptyValue, "category name is required")
	}
	return &ViolationCategory{ID: id, Name: name, BasePoints: Round2(basePoints)}, nil
}

// NewScoreEntryParams contains parameters for creating a score entry.
type NewScoreEntryParams struct {
	ID           string
	WeekID       string
	ClassID      string
	ViolationID  string
	StudentCount int
	BasePoints   float64
	Note         string
	CreatedBy    string
}

// NewScoreEntry creates a score entry, computing the point total from the
// category's base points at creation time. The computed value is a
// snapshot: later category edits never recompute it.
func NewScoreEntry(params NewScoreEntryParams) (*ScoreEntry, error) {
	if params.ID == "" {
		return nil, shared.NewDomainError("scoring", "NewScoreEntry", shared.ErrInvalidID, "entry id is required")
	}
	if params.WeekID == "" {
		return nil, shared.NewDomainError("scoring", "NewScoreEntry", shared.ErrInvalidID, "week id is required")
	}
	if params.ClassID == "" {
		return nil, shared.NewDomainError("scoring", "NewScoreEntry", shared.ErrInvalidID, "class id is required")
	}
	if params.ViolationID == "" {
		return nil, shared.NewDomainError("scoring", "NewScoreEntry", shared.ErrInvalidID, "violation id is required")
	}
	if params.StudentCount < 1 {
		return nil, shared.NewDomainError("scoring", "NewScoreEntry", shared.ErrValueOutOfRange, "student count must be a positive integer")
	}

	return &ScoreEntry{
		ID:           params.ID,
		WeekID:       params.WeekID,
		ClassID:      params.ClassID,
		ViolationID:  params.ViolationID,
		StudentCount: params.StudentCount,
		Points:       Round2(params.BasePoints * float64(params.StudentCount)),
		Note:         strings.TrimSpace(params.Note),
		CreatedAt:    time.Now().UTC(),
		CreatedBy:    params.CreatedBy,
	}, nil
}
