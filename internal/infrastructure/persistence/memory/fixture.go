package memory

import (
	"context"

	"github.com/thidua-hub/school-merit-hub/internal/domain/period"
	"github.com/thidua-hub/school-merit-hub/internal/domain/scoring"
	"github.com/thidua-hub/school-merit-hub/internal/domain/user"
)

// Fixture seeds a store with a small working calendar, classes,
// categories, and accounts. Intended for tests and local dev; production
// data comes through the catalog commands.
func Fixture() *Store {
	ctx := context.Background()
	s := NewStore()

	year, _ := period.NewSchoolYear("sy-2024-2025", "2024-2025")
	_ = s.SaveSchoolYear(ctx, year)
	_ = s.SetActiveYearID(ctx, year.ID)

	month, _ := period.NewMonth("m-sep", year.ID, "September", 9)
	_ = s.SaveMonth(ctx, month)

	weeks := []struct {
		id, name string
		ordinal  int
	}{
		{"w1", "Week 1", 1},
		{"w2", "Week 2", 2},
		{"w3", "Week 3", 3},
		{"w4", "Week 4", 4},
	}
	for _, w := range weeks {
		week, _ := period.NewWeek(w.id, month.ID, w.name, w.ordinal)
		_ = s.SaveWeek(ctx, week)
	}

	classes := []struct {
		id, name string
		grade    int
	}{
		{"c1", "6A1", 6},
		{"c2", "7A1", 7},
		{"c3", "8A1", 8},
	}
	for _, c := range classes {
		class, _ := scoring.NewClassRoom(c.id, c.name, c.grade)
		_ = s.SaveClass(ctx, class)
	}

	late, _ := scoring.NewViolationCategory("v1", "Đi học muộn", -2.5)
	_ = s.SaveViolation(ctx, late)

	accounts := []user.NewUserParams{
		{ID: "u1", DisplayName: "Administrator", Role: user.RoleAdmin, Username: "admin", Password: "Demo@123"},
		{ID: "u2", DisplayName: "Duty Teacher", Role: user.RoleDutyTeacher, Username: "gvtt1", Password: "123"},
		{ID: "u3", DisplayName: "Teacher", Role: user.RoleTeacher, Username: "gv1", Password: "123"},
	}
	for _, params := range accounts {
		account, _ := user.NewUser(params)
		_ = s.Save(ctx, account)
	}

	return s
}
