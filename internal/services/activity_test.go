package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/courseplanner-backend/internal/types"
)

type activityFixture struct {
	env     *testEnv
	ctx     context.Context
	course  *types.Course
	grid    []*types.HalfDay
	morning *types.HalfDay // week 1 slot 0
	noon    *types.HalfDay // week 1 slot 1
}

func newActivityFixture(t *testing.T) *activityFixture {
	t.Helper()
	env := newTestEnv(t)
	teacher, ctx := env.createTeacher(t)
	course := env.createCourse(t, teacher.ID, datePtr(2024, time.January, 1), types.PeriodMorning)

	grid, err := env.scheduleService.EnsureHalfDays(ctx, nil, course.ID)
	if err != nil {
		t.Fatalf("EnsureHalfDays: %v", err)
	}
	return &activityFixture{
		env:     env,
		ctx:     ctx,
		course:  course,
		grid:    grid,
		morning: findHalfDay(t, grid, 1, 0),
		noon:    findHalfDay(t, grid, 1, 1),
	}
}

func (f *activityFixture) append(t *testing.T, halfDayID uuid.UUID, objective string) *types.Activity {
	t.Helper()
	activity, err := f.env.activityService.Append(f.ctx, nil, halfDayID, CreateActivityInput{
		Objective:       objective,
		DurationMinutes: 30,
		Format:          types.FormatPlenary,
	})
	if err != nil {
		t.Fatalf("Append(%s): %v", objective, err)
	}
	return activity
}

// orderedIDs reads the half-day's activities back in canonical order and
// checks the positions are contiguous from 1.
func (f *activityFixture) orderedIDs(t *testing.T, halfDayID uuid.UUID) []uuid.UUID {
	t.Helper()
	list, err := f.env.activityRepo.ListByHalfDayID(f.ctx, nil, halfDayID, false)
	if err != nil {
		t.Fatalf("list activities: %v", err)
	}
	ids := make([]uuid.UUID, 0, len(list))
	for i, a := range list {
		if a.Position == nil || *a.Position != i+1 {
			t.Errorf("activity %s has position %v at rank %d", a.Objective, a.Position, i+1)
		}
		ids = append(ids, a.ID)
	}
	return ids
}

func intPtr(v int) *int { return &v }

func assertOrder(t *testing.T, got []uuid.UUID, want ...uuid.UUID) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d activities, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch at index %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestAppendAssignsSequentialPositions(t *testing.T) {
	f := newActivityFixture(t)

	x := f.append(t, f.morning.ID, "warmup")
	y := f.append(t, f.morning.ID, "lecture")
	z := f.append(t, f.morning.ID, "recap")

	if x.Position == nil || *x.Position != 1 {
		t.Errorf("first append position = %v, want 1", x.Position)
	}
	if z.Position == nil || *z.Position != 3 {
		t.Errorf("third append position = %v, want 3", z.Position)
	}
	assertOrder(t, f.orderedIDs(t, f.morning.ID), x.ID, y.ID, z.ID)
}

func TestAppendValidatesInput(t *testing.T) {
	f := newActivityFixture(t)

	cases := []struct {
		name  string
		input CreateActivityInput
	}{
		{"missing objective", CreateActivityInput{DurationMinutes: 30, Format: types.FormatPlenary}},
		{"blank objective", CreateActivityInput{Objective: "   ", DurationMinutes: 30, Format: types.FormatPlenary}},
		{"zero duration", CreateActivityInput{Objective: "x", DurationMinutes: 0, Format: types.FormatPlenary}},
		{"negative duration", CreateActivityInput{Objective: "x", DurationMinutes: -5, Format: types.FormatPlenary}},
		{"unknown format", CreateActivityInput{Objective: "x", DurationMinutes: 30, Format: "karaoke"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.env.activityService.Append(f.ctx, nil, f.morning.ID, tc.input); err == nil {
				t.Error("Append accepted invalid input")
			}
		})
	}
}

func TestMoveWithinHalfDayToFront(t *testing.T) {
	f := newActivityFixture(t)
	x := f.append(t, f.morning.ID, "x")
	y := f.append(t, f.morning.ID, "y")
	z := f.append(t, f.morning.ID, "z")

	pos, err := f.env.activityService.Move(f.ctx, nil, y.ID, f.morning.ID, intPtr(0))
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if pos != 1 {
		t.Errorf("Move returned position %d, want 1", pos)
	}
	assertOrder(t, f.orderedIDs(t, f.morning.ID), y.ID, x.ID, z.ID)
}

func TestMoveAcrossHalfDaysDefaultsToAppend(t *testing.T) {
	f := newActivityFixture(t)
	x := f.append(t, f.morning.ID, "x")
	y := f.append(t, f.morning.ID, "y")
	a := f.append(t, f.noon.ID, "a")

	pos, err := f.env.activityService.Move(f.ctx, nil, x.ID, f.noon.ID, nil)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if pos != 2 {
		t.Errorf("Move returned position %d, want 2", pos)
	}
	assertOrder(t, f.orderedIDs(t, f.noon.ID), a.ID, x.ID)
	assertOrder(t, f.orderedIDs(t, f.morning.ID), y.ID)
}

func TestMoveClampsRequestedPosition(t *testing.T) {
	f := newActivityFixture(t)
	x := f.append(t, f.morning.ID, "x")
	a := f.append(t, f.noon.ID, "a")
	b := f.append(t, f.noon.ID, "b")

	pos, err := f.env.activityService.Move(f.ctx, nil, x.ID, f.noon.ID, intPtr(99))
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if pos != 3 {
		t.Errorf("over-large index clamped to %d, want 3", pos)
	}
	assertOrder(t, f.orderedIDs(t, f.noon.ID), a.ID, b.ID, x.ID)

	pos, err = f.env.activityService.Move(f.ctx, nil, x.ID, f.noon.ID, intPtr(-4))
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if pos != 1 {
		t.Errorf("negative index clamped to %d, want 1", pos)
	}
	assertOrder(t, f.orderedIDs(t, f.noon.ID), x.ID, a.ID, b.ID)
}

func TestDeleteClosesGap(t *testing.T) {
	f := newActivityFixture(t)
	x := f.append(t, f.morning.ID, "x")
	y := f.append(t, f.morning.ID, "y")
	z := f.append(t, f.morning.ID, "z")

	if err := f.env.activityService.Delete(f.ctx, nil, y.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	assertOrder(t, f.orderedIDs(t, f.morning.ID), x.ID, z.ID)
}

func TestEditContentKeepsOrdering(t *testing.T) {
	f := newActivityFixture(t)
	x := f.append(t, f.morning.ID, "x")
	y := f.append(t, f.morning.ID, "y")

	updated, err := f.env.activityService.Edit(f.ctx, nil, x.ID, UpdateActivityInput{
		Objective:       strPtr("sharpened objective"),
		DurationMinutes: intPtr(45),
	})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if updated.Objective != "sharpened objective" || updated.DurationMinutes != 45 {
		t.Errorf("edit not applied: %q %d", updated.Objective, updated.DurationMinutes)
	}
	if updated.Position == nil || *updated.Position != 1 {
		t.Errorf("content edit moved position to %v", updated.Position)
	}
	assertOrder(t, f.orderedIDs(t, f.morning.ID), x.ID, y.ID)
}

func TestEditWithNewSlotMovesActivity(t *testing.T) {
	f := newActivityFixture(t)
	x := f.append(t, f.morning.ID, "x")
	y := f.append(t, f.morning.ID, "y")
	a := f.append(t, f.noon.ID, "a")

	updated, err := f.env.activityService.Edit(f.ctx, nil, x.ID, UpdateActivityInput{
		WeekNumber: intPtr(1),
		SlotIndex:  intPtr(1),
	})
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if updated.HalfDayID != f.noon.ID {
		t.Errorf("activity stayed on half-day %s", updated.HalfDayID)
	}
	assertOrder(t, f.orderedIDs(t, f.noon.ID), a.ID, x.ID)
	assertOrder(t, f.orderedIDs(t, f.morning.ID), y.ID)
}

func TestEditWithSameSlotKeepsPosition(t *testing.T) {
	f := newActivityFixture(t)
	x := f.append(t, f.morning.ID, "x")
	y := f.append(t, f.morning.ID, "y")

	if _, err := f.env.activityService.Edit(f.ctx, nil, x.ID, UpdateActivityInput{
		WeekNumber: intPtr(1),
		SlotIndex:  intPtr(0),
	}); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	assertOrder(t, f.orderedIDs(t, f.morning.ID), x.ID, y.ID)
}

func TestEditRejectsPartialSlotKey(t *testing.T) {
	f := newActivityFixture(t)
	x := f.append(t, f.morning.ID, "x")

	if _, err := f.env.activityService.Edit(f.ctx, nil, x.ID, UpdateActivityInput{WeekNumber: intPtr(2)}); err == nil {
		t.Error("Edit accepted a week number without a slot index")
	}
	if _, err := f.env.activityService.Edit(f.ctx, nil, x.ID, UpdateActivityInput{SlotIndex: intPtr(1)}); err == nil {
		t.Error("Edit accepted a slot index without a week number")
	}
	if _, err := f.env.activityService.Edit(f.ctx, nil, x.ID, UpdateActivityInput{
		WeekNumber: intPtr(9),
		SlotIndex:  intPtr(0),
	}); err == nil {
		t.Error("Edit accepted an out-of-range week number")
	}
}

func TestMoveRejectsForeignTarget(t *testing.T) {
	f := newActivityFixture(t)
	x := f.append(t, f.morning.ID, "x")

	other, otherCtx := f.env.createTeacher(t)
	otherCourse := f.env.createCourse(t, other.ID, datePtr(2024, time.January, 1), types.PeriodMorning)
	otherGrid, err := f.env.scheduleService.EnsureHalfDays(otherCtx, nil, otherCourse.ID)
	if err != nil {
		t.Fatalf("EnsureHalfDays: %v", err)
	}

	if _, err := f.env.activityService.Move(f.ctx, nil, x.ID, otherGrid[0].ID, nil); err == nil {
		t.Error("Move crossed into another teacher's course")
	}
}

func strPtr(s string) *string { return &s }
