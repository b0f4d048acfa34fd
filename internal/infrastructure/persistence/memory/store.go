// Package memory provides an in-memory implementation of every
// repository interface. It backs tests and the standalone dev mode;
// the postgres package provides the durable equivalent.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/thidua-hub/school-merit-hub/internal/domain/audit"
	"github.com/thidua-hub/school-merit-hub/internal/domain/period"
	"github.com/thidua-hub/school-merit-hub/internal/domain/ranking"
	"github.com/thidua-hub/school-merit-hub/internal/domain/scoring"
	"github.com/thidua-hub/school-merit-hub/internal/domain/shared"
	"github.com/thidua-hub/school-merit-hub/internal/domain/user"
)

// Store holds all collections behind one RWMutex. Insertion order is
// preserved per collection so listings (and therefore ranking tie
// breaks) are deterministic.
type Store struct {
	mu sync.RWMutex

	years     map[string]*period.SchoolYear
	yearOrder []string

	months     map[string]*period.Month
	monthOrder []string

	weeks     map[string]*period.Week
	weekOrder []string

	classes    map[string]*scoring.ClassRoom
	classOrder []string

	violations     map[string]*scoring.ViolationCategory
	violationOrder []string

	entries    map[string]*scoring.ScoreEntry
	entryOrder []string

	users     map[string]*user.User
	userOrder []string

	// auditLog is kept newest first.
	auditLog []*audit.Entry

	activeYearID string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		years:      make(map[string]*period.SchoolYear),
		months:     make(map[string]*period.Month),
		weeks:      make(map[string]*period.Week),
		classes:    make(map[string]*scoring.ClassRoom),
		violations: make(map[string]*scoring.ViolationCategory),
		entries:    make(map[string]*scoring.ScoreEntry),
		users:      make(map[string]*user.User),
	}
}

func notFound(op, message string) error {
	return shared.NewDomainError("memory", op, shared.ErrNotFound, message)
}

func removeID(order []string, id string) []string {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}

// ══════════════════════════════════════════════════════════════════════════════
// PERIOD REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// GetSchoolYear returns a copy of the school year with the given id.
func (s *Store) GetSchoolYear(_ context.Context, id string) (*period.SchoolYear, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	y, ok := s.years[id]
	if !ok {
		return nil, notFound("GetSchoolYear", "school year "+id)
	}
	copied := *y
	return &copied, nil
}

// ListSchoolYears returns all school years in insertion order.
func (s *Store) ListSchoolYears(_ context.Context) ([]*period.SchoolYear, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*period.SchoolYear, 0, len(s.yearOrder))
	for _, id := range s.yearOrder {
		copied := *s.years[id]
		out = append(out, &copied)
	}
	return out, nil
}

// SaveSchoolYear inserts or replaces a school year.
func (s *Store) SaveSchoolYear(_ context.Context, year *period.SchoolYear) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.years[year.ID]; !ok {
		s.yearOrder = append(s.yearOrder, year.ID)
	}
	copied := *year
	s.years[year.ID] = &copied
	return nil
}

// DeleteSchoolYear removes a school year.
func (s *Store) DeleteSchoolYear(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.years[id]; !ok {
		return notFound("DeleteSchoolYear", "school year "+id)
	}
	delete(s.years, id)
	s.yearOrder = removeID(s.yearOrder, id)
	return nil
}

// GetMonth returns a copy of the month with the given id.
func (s *Store) GetMonth(_ context.Context, id string) (*period.Month, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.months[id]
	if !ok {
		return nil, notFound("GetMonth", "month "+id)
	}
	copied := *m
	return &copied, nil
}

// ListMonthsByYear returns the months of one school year in insertion order.
func (s *Store) ListMonthsByYear(_ context.Context, schoolYearID string) ([]*period.Month, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*period.Month
	for _, id := range s.monthOrder {
		if m := s.months[id]; m.SchoolYearID == schoolYearID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

// SaveMonth inserts or replaces a month.
func (s *Store) SaveMonth(_ context.Context, month *period.Month) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.months[month.ID]; !ok {
		s.monthOrder = append(s.monthOrder, month.ID)
	}
	copied := *month
	s.months[month.ID] = &copied
	return nil
}

// DeleteMonth removes a month.
func (s *Store) DeleteMonth(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.months[id]; !ok {
		return notFound("DeleteMonth", "month "+id)
	}
	delete(s.months, id)
	s.monthOrder = removeID(s.monthOrder, id)
	return nil
}

// GetWeek returns a copy of the week with the given id.
func (s *Store) GetWeek(_ context.Context, id string) (*period.Week, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.weeks[id]
	if !ok {
		return nil, notFound("GetWeek", "week "+id)
	}
	copied := *w
	return &copied, nil
}

// ListWeeksByMonth returns the weeks of one month in insertion order.
func (s *Store) ListWeeksByMonth(_ context.Context, monthID string) ([]*period.Week, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*period.Week
	for _, id := range s.weekOrder {
		if w := s.weeks[id]; w.MonthID == monthID {
			copied := *w
			out = append(out, &copied)
		}
	}
	return out, nil
}

// SaveWeek inserts or replaces a week.
func (s *Store) SaveWeek(_ context.Context, week *period.Week) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.weeks[week.ID]; !ok {
		s.weekOrder = append(s.weekOrder, week.ID)
	}
	copied := *week
	s.weeks[week.ID] = &copied
	return nil
}

// DeleteWeek removes a week.
func (s *Store) DeleteWeek(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.weeks[id]; !ok {
		return notFound("DeleteWeek", "week "+id)
	}
	delete(s.weeks, id)
	s.weekOrder = removeID(s.weekOrder, id)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SETTINGS REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// GetActiveYearID returns the active school year id.
func (s *Store) GetActiveYearID(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.activeYearID == "" {
		return "", notFound("GetActiveYearID", "active year is not set")
	}
	return s.activeYearID, nil
}

// SetActiveYearID records the active school year id.
func (s *Store) SetActiveYearID(_ context.Context, yearID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeYearID = yearID
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CLASS REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// GetClass returns a copy of the class with the given id.
func (s *Store) GetClass(_ context.Context, id string) (*scoring.ClassRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.classes[id]
	if !ok {
		return nil, notFound("GetClass", "class "+id)
	}
	copied := *c
	return &copied, nil
}

// ListClasses returns all classes in insertion order.
func (s *Store) ListClasses(_ context.Context) ([]*scoring.ClassRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*scoring.ClassRoom, 0, len(s.classOrder))
	for _, id := range s.classOrder {
		copied := *s.classes[id]
		out = append(out, &copied)
	}
	return out, nil
}

// SaveClass inserts or replaces a class.
func (s *Store) SaveClass(_ context.Context, class *scoring.ClassRoom) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.classes[class.ID]; !ok {
		s.classOrder = append(s.classOrder, class.ID)
	}
	copied := *class
	s.classes[class.ID] = &copied
	return nil
}

// DeleteClass removes a class.
func (s *Store) DeleteClass(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.classes[id]; !ok {
		return notFound("DeleteClass", "class "+id)
	}
	delete(s.classes, id)
	s.classOrder = removeID(s.classOrder, id)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// VIOLATION REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// GetViolation returns a copy of the violation category with the given id.
func (s *Store) GetViolation(_ context.Context, id string) (*scoring.ViolationCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.violations[id]
	if !ok {
		return nil, notFound("GetViolation", "violation category "+id)
	}
	copied := *v
	return &copied, nil
}

// ListViolations returns all violation categories in insertion order.
func (s *Store) ListViolations(_ context.Context) ([]*scoring.ViolationCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*scoring.ViolationCategory, 0, len(s.violationOrder))
	for _, id := range s.violationOrder {
		copied := *s.violations[id]
		out = append(out, &copied)
	}
	return out, nil
}

// SaveViolation inserts or replaces a violation category.
func (s *Store) SaveViolation(_ context.Context, category *scoring.ViolationCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.violations[category.ID]; !ok {
		s.violationOrder = append(s.violationOrder, category.ID)
	}
	copied := *category
	s.violations[category.ID] = &copied
	return nil
}

// DeleteViolation removes a violation category.
func (s *Store) DeleteViolation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.violations[id]; !ok {
		return notFound("DeleteViolation", "violation category "+id)
	}
	delete(s.violations, id)
	s.violationOrder = removeID(s.violationOrder, id)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTRY REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// GetEntry returns a copy of the score entry with the given id.
func (s *Store) GetEntry(_ context.Context, id string) (*scoring.ScoreEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, notFound("GetEntry", "score entry "+id)
	}
	copied := *e
	return &copied, nil
}

// ListEntries returns all score entries in insertion order.
func (s *Store) ListEntries(_ context.Context) ([]*scoring.ScoreEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*scoring.ScoreEntry, 0, len(s.entryOrder))
	for _, id := range s.entryOrder {
		copied := *s.entries[id]
		out = append(out, &copied)
	}
	return out, nil
}

// ListEntriesByWeek returns the entries of one week in insertion order.
func (s *Store) ListEntriesByWeek(_ context.Context, weekID string) ([]*scoring.ScoreEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*scoring.ScoreEntry
	for _, id := range s.entryOrder {
		if e := s.entries[id]; e.WeekID == weekID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

// SaveEntry inserts a score entry. Entries are immutable, so replacing
// an existing id is not supported.
func (s *Store) SaveEntry(_ context.Context, entry *scoring.ScoreEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[entry.ID]; ok {
		return shared.NewDomainError("memory", "SaveEntry", shared.ErrAlreadyExists, "score entry "+entry.ID)
	}
	copied := *entry
	s.entries[entry.ID] = &copied
	s.entryOrder = append(s.entryOrder, entry.ID)
	return nil
}

// DeleteEntry removes a score entry.
func (s *Store) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return notFound("DeleteEntry", "score entry "+id)
	}
	delete(s.entries, id)
	s.entryOrder = removeID(s.entryOrder, id)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// AUDIT REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// Append prepends an audit entry, keeping the log newest first.
func (s *Store) Append(_ context.Context, entry *audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *entry
	s.auditLog = append([]*audit.Entry{&copied}, s.auditLog...)
	return nil
}

// List returns audit entries newest first, applying the filter.
func (s *Store) List(_ context.Context, filter audit.Filter) ([]*audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*audit.Entry
	for _, e := range s.auditLog {
		if filter.ActorID != "" && e.ActorID != filter.ActorID {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.TargetType != "" && e.TargetType != filter.TargetType {
			continue
		}
		copied := *e
		matched = append(matched, &copied)
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// GetByID returns a copy of the user with the given id.
func (s *Store) GetByID(_ context.Context, id string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, notFound("GetByID", "user "+id)
	}
	copied := *u
	return &copied, nil
}

// GetByUsername returns the user with the given username,
// case-insensitive.
func (s *Store) GetByUsername(_ context.Context, username string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.userOrder {
		if strings.EqualFold(s.users[id].Username, username) {
			copied := *s.users[id]
			return &copied, nil
		}
	}
	return nil, notFound("GetByUsername", "user "+username)
}

// ListUsers returns all users in insertion order.
func (s *Store) ListUsers(_ context.Context) ([]*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*user.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		copied := *s.users[id]
		out = append(out, &copied)
	}
	return out, nil
}

// Count returns the number of users.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.users), nil
}

// Save inserts or replaces a user.
func (s *Store) Save(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; !ok {
		s.userOrder = append(s.userOrder, u.ID)
	}
	copied := *u
	s.users[u.ID] = &copied
	return nil
}

// Delete removes a user.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return notFound("Delete", "user "+id)
	}
	delete(s.users, id)
	s.userOrder = removeID(s.userOrder, id)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ATOMICITY
// ══════════════════════════════════════════════════════════════════════════════

// WithinTx runs fn directly. The store assumes a single logical writer
// at a time, so each operation is already applied atomically under the
// mutex; there is no partial-application window to protect against.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT
// ══════════════════════════════════════════════════════════════════════════════

// LoadSnapshot assembles a consistent read of everything aggregation
// needs under a single read lock.
func (s *Store) LoadSnapshot(_ context.Context) (*ranking.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &ranking.Snapshot{
		Months:     make([]*period.Month, 0, len(s.monthOrder)),
		Weeks:      make([]*period.Week, 0, len(s.weekOrder)),
		Classes:    make([]*scoring.ClassRoom, 0, len(s.classOrder)),
		Violations: make([]*scoring.ViolationCategory, 0, len(s.violationOrder)),
		Entries:    make([]*scoring.ScoreEntry, 0, len(s.entryOrder)),
	}
	for _, id := range s.monthOrder {
		copied := *s.months[id]
		snap.Months = append(snap.Months, &copied)
	}
	for _, id := range s.weekOrder {
		copied := *s.weeks[id]
		snap.Weeks = append(snap.Weeks, &copied)
	}
	for _, id := range s.classOrder {
		copied := *s.classes[id]
		snap.Classes = append(snap.Classes, &copied)
	}
	for _, id := range s.violationOrder {
		copied := *s.violations[id]
		snap.Violations = append(snap.Violations, &copied)
	}
	for _, id := range s.entryOrder {
		copied := *s.entries[id]
		snap.Entries = append(snap.Entries, &copied)
	}
	return snap, nil
}
