package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/courseplanner-backend/internal/types"
)

func TestCreateCourseRequiresName(t *testing.T) {
	env := newTestEnv(t)
	_, ctx := env.createTeacher(t)

	if _, err := env.courseService.CreateCourse(ctx, nil, CreateCourseInput{Name: "   "}); err == nil {
		t.Error("CreateCourse accepted a blank name")
	}
	if _, err := env.courseService.CreateCourse(ctx, nil, CreateCourseInput{
		Name:        "Pottery",
		StartPeriod: "midnight",
	}); err == nil {
		t.Error("CreateCourse accepted an unknown start period")
	}
}

func TestCreateCourseNormalizesStartDate(t *testing.T) {
	env := newTestEnv(t)
	_, ctx := env.createTeacher(t)

	noon := time.Date(2024, time.May, 6, 13, 45, 0, 0, time.UTC)
	course, err := env.courseService.CreateCourse(ctx, nil, CreateCourseInput{
		Name:      "Pottery",
		StartDate: &noon,
	})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if course.StartPeriod != types.PeriodMorning {
		t.Errorf("default start period = %v, want morning", course.StartPeriod)
	}
	if course.StartDate == nil || !course.StartDate.Equal(time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start date not normalized to midnight: %v", course.StartDate)
	}
}

func TestUpdateCourseIgnoresStartDate(t *testing.T) {
	env := newTestEnv(t)
	_, ctx := env.createTeacher(t)
	course, err := env.courseService.CreateCourse(ctx, nil, CreateCourseInput{
		Name:      "Pottery",
		StartDate: datePtr(2024, time.January, 1),
	})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	updated, err := env.courseService.UpdateCourse(ctx, nil, course.ID, UpdateCourseInput{
		Name: strPtr("Advanced Pottery"),
		Room: strPtr("B12"),
	})
	if err != nil {
		t.Fatalf("UpdateCourse: %v", err)
	}
	if updated.Name != "Advanced Pottery" || updated.Room != "B12" {
		t.Errorf("update not applied: %q %q", updated.Name, updated.Room)
	}
	if updated.StartDate == nil || !sameDay(*updated.StartDate, *course.StartDate) {
		t.Errorf("descriptive update moved the start date: %v", updated.StartDate)
	}
}

func TestDeleteCourseCascades(t *testing.T) {
	env := newTestEnv(t)
	teacher, ctx := env.createTeacher(t)
	course := env.createCourse(t, teacher.ID, datePtr(2024, time.January, 1), types.PeriodMorning)

	grid, err := env.scheduleService.EnsureHalfDays(ctx, nil, course.ID)
	if err != nil {
		t.Fatalf("EnsureHalfDays: %v", err)
	}
	if _, err := env.activityService.Append(ctx, nil, grid[0].ID, CreateActivityInput{
		Objective:       "doomed",
		DurationMinutes: 10,
		Format:          types.FormatDiscussion,
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := env.courseService.DeleteCourse(ctx, nil, course.ID); err != nil {
		t.Fatalf("DeleteCourse: %v", err)
	}

	if courses, _ := env.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{course.ID}); len(courses) != 0 {
		t.Error("course still visible after delete")
	}
	if halfDays, _ := env.halfDayRepo.GetByCourseIDs(ctx, nil, []uuid.UUID{course.ID}); len(halfDays) != 0 {
		t.Error("half-days still visible after course delete")
	}
	if activities, _ := env.activityRepo.ListByHalfDayID(ctx, nil, grid[0].ID, false); len(activities) != 0 {
		t.Error("activities still visible after course delete")
	}
}
