package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/courseplanner-backend/internal/requestdata"
	"github.com/yungbote/courseplanner-backend/internal/types"
)

func TestEnsureHalfDaysCreatesFullGrid(t *testing.T) {
	env := newTestEnv(t)
	teacher, ctx := env.createTeacher(t)
	course := env.createCourse(t, teacher.ID, datePtr(2024, time.January, 1), types.PeriodMorning)

	halfDays, err := env.scheduleService.EnsureHalfDays(ctx, nil, course.ID)
	if err != nil {
		t.Fatalf("EnsureHalfDays: %v", err)
	}
	if len(halfDays) != types.CourseWeeks*types.SlotsPerWeek {
		t.Fatalf("got %d half-days, want %d", len(halfDays), types.CourseWeeks*types.SlotsPerWeek)
	}

	first := findHalfDay(t, halfDays, 1, 0)
	if !sameDay(first.SessionDate, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)) || first.Period != types.PeriodMorning {
		t.Errorf("slot (1,0) = %v %v, want Jan 1 morning", first.SessionDate, first.Period)
	}
	third := findHalfDay(t, halfDays, 1, 2)
	if !sameDay(third.SessionDate, time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)) || third.Period != types.PeriodMorning {
		t.Errorf("slot (1,2) = %v %v, want Jan 2 morning", third.SessionDate, third.Period)
	}
	week2 := findHalfDay(t, halfDays, 2, 0)
	if !sameDay(week2.SessionDate, time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("slot (2,0) = %v, want Jan 8", week2.SessionDate)
	}
}

func TestEnsureHalfDaysIdempotent(t *testing.T) {
	env := newTestEnv(t)
	teacher, ctx := env.createTeacher(t)
	course := env.createCourse(t, teacher.ID, datePtr(2024, time.March, 4), types.PeriodAfternoon)

	first, err := env.scheduleService.EnsureHalfDays(ctx, nil, course.ID)
	if err != nil {
		t.Fatalf("first EnsureHalfDays: %v", err)
	}
	second, err := env.scheduleService.EnsureHalfDays(ctx, nil, course.ID)
	if err != nil {
		t.Fatalf("second EnsureHalfDays: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("row count changed: %d then %d", len(first), len(second))
	}

	ids := make(map[uuid.UUID]bool, len(first))
	for _, hd := range first {
		ids[hd.ID] = true
	}
	for _, hd := range second {
		if !ids[hd.ID] {
			t.Errorf("second call produced new half-day %s (%d,%d)", hd.ID, hd.WeekNumber, hd.SlotIndex)
		}
	}
}

func TestEnsureHalfDaysWithoutStartDate(t *testing.T) {
	env := newTestEnv(t)
	teacher, ctx := env.createTeacher(t)
	course := env.createCourse(t, teacher.ID, nil, types.PeriodMorning)

	halfDays, err := env.scheduleService.EnsureHalfDays(ctx, nil, course.ID)
	if err != nil {
		t.Fatalf("EnsureHalfDays: %v", err)
	}
	if len(halfDays) != 0 {
		t.Errorf("got %d half-days for an unanchored course, want 0", len(halfDays))
	}
}

func TestEnsureHalfDaysPreservesExistingRows(t *testing.T) {
	env := newTestEnv(t)
	teacher, ctx := env.createTeacher(t)
	course := env.createCourse(t, teacher.ID, datePtr(2024, time.January, 1), types.PeriodMorning)

	// Seed one slot with a hand-edited date; materialization must not touch it.
	custom := &types.HalfDay{
		ID:          uuid.New(),
		CourseID:    course.ID,
		WeekNumber:  1,
		SlotIndex:   0,
		SessionDate: time.Date(2024, time.February, 14, 0, 0, 0, 0, time.UTC),
		Period:      types.PeriodAfternoon,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := env.halfDayRepo.CreateIgnoreConflicts(ctx, nil, []*types.HalfDay{custom}); err != nil {
		t.Fatalf("seed half-day: %v", err)
	}

	halfDays, err := env.scheduleService.EnsureHalfDays(ctx, nil, course.ID)
	if err != nil {
		t.Fatalf("EnsureHalfDays: %v", err)
	}
	if len(halfDays) != types.CourseWeeks*types.SlotsPerWeek {
		t.Fatalf("got %d half-days, want %d", len(halfDays), types.CourseWeeks*types.SlotsPerWeek)
	}

	got := findHalfDay(t, halfDays, 1, 0)
	if got.ID != custom.ID {
		t.Errorf("slot (1,0) was replaced: id %s, want %s", got.ID, custom.ID)
	}
	if !sameDay(got.SessionDate, custom.SessionDate) || got.Period != types.PeriodAfternoon {
		t.Errorf("slot (1,0) was rewritten to %v %v", got.SessionDate, got.Period)
	}
}

func TestRescheduleFromMidCourse(t *testing.T) {
	env := newTestEnv(t)
	teacher, ctx := env.createTeacher(t)
	course := env.createCourse(t, teacher.ID, datePtr(2024, time.January, 1), types.PeriodMorning)

	before, err := env.scheduleService.EnsureHalfDays(ctx, nil, course.ID)
	if err != nil {
		t.Fatalf("EnsureHalfDays: %v", err)
	}

	newStart := time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC)
	after, err := env.scheduleService.Reschedule(ctx, nil, course.ID, 3, newStart)
	if err != nil {
		t.Fatalf("Reschedule: %v", err)
	}

	// Weeks 1 and 2 keep their original dates and identities.
	for week := 1; week <= 2; week++ {
		for slot := 0; slot < types.SlotsPerWeek; slot++ {
			was := findHalfDay(t, before, week, slot)
			now := findHalfDay(t, after, week, slot)
			if now.ID != was.ID || !sameDay(now.SessionDate, was.SessionDate) {
				t.Errorf("slot (%d,%d) changed by mid-course reschedule", week, slot)
			}
		}
	}

	// Week 3 restarts at the new date, later weeks follow at 7-day strides.
	w3 := findHalfDay(t, after, 3, 0)
	if !sameDay(w3.SessionDate, newStart) || w3.Period != types.PeriodMorning {
		t.Errorf("slot (3,0) = %v %v, want Feb 5 morning", w3.SessionDate, w3.Period)
	}
	w4 := findHalfDay(t, after, 4, 0)
	if !sameDay(w4.SessionDate, time.Date(2024, time.February, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("slot (4,0) = %v, want Feb 12", w4.SessionDate)
	}

	// The start anchor only moves on a week-1 reschedule.
	courses, err := env.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{course.ID})
	if err != nil || len(courses) == 0 {
		t.Fatalf("reload course: %v", err)
	}
	if !sameDay(*courses[0].StartDate, *course.StartDate) {
		t.Errorf("course start date moved to %v on a mid-course reschedule", courses[0].StartDate)
	}
}

func TestRescheduleWeekOneMovesAnchor(t *testing.T) {
	env := newTestEnv(t)
	teacher, ctx := env.createTeacher(t)
	course := env.createCourse(t, teacher.ID, datePtr(2024, time.January, 1), types.PeriodMorning)

	if _, err := env.scheduleService.EnsureHalfDays(ctx, nil, course.ID); err != nil {
		t.Fatalf("EnsureHalfDays: %v", err)
	}

	newStart := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	after, err := env.scheduleService.Reschedule(ctx, nil, course.ID, 1, newStart)
	if err != nil {
		t.Fatalf("Reschedule: %v", err)
	}

	first := findHalfDay(t, after, 1, 0)
	if !sameDay(first.SessionDate, newStart) {
		t.Errorf("slot (1,0) = %v, want %v", first.SessionDate, newStart)
	}

	courses, err := env.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{course.ID})
	if err != nil || len(courses) == 0 {
		t.Fatalf("reload course: %v", err)
	}
	if courses[0].StartDate == nil || !sameDay(*courses[0].StartDate, newStart) {
		t.Errorf("course start date = %v, want %v", courses[0].StartDate, newStart)
	}
}

func TestRescheduleRejectsBadWeek(t *testing.T) {
	env := newTestEnv(t)
	teacher, ctx := env.createTeacher(t)
	course := env.createCourse(t, teacher.ID, datePtr(2024, time.January, 1), types.PeriodMorning)

	for _, week := range []int{0, -1, 6} {
		if _, err := env.scheduleService.Reschedule(ctx, nil, course.ID, week, time.Now()); err == nil {
			t.Errorf("Reschedule accepted week %d", week)
		}
	}
}

func TestScheduleHidesForeignCourses(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := env.createTeacher(t)
	course := env.createCourse(t, owner.ID, datePtr(2024, time.January, 1), types.PeriodMorning)

	_, strangerCtx := env.createTeacher(t)
	if _, err := env.scheduleService.EnsureHalfDays(strangerCtx, nil, course.ID); err == nil {
		t.Error("EnsureHalfDays exposed another teacher's course")
	}

	anonCtx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{})
	if _, err := env.scheduleService.EnsureHalfDays(anonCtx, nil, course.ID); err == nil {
		t.Error("EnsureHalfDays worked without authentication")
	}
}
