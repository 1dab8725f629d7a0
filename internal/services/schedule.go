package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/courseplanner-backend/internal/calendar"
	"github.com/yungbote/courseplanner-backend/internal/logger"
	"github.com/yungbote/courseplanner-backend/internal/repos"
	"github.com/yungbote/courseplanner-backend/internal/requestdata"
	"github.com/yungbote/courseplanner-backend/internal/sse"
	"github.com/yungbote/courseplanner-backend/internal/types"
)

type ScheduleService interface {
	EnsureHalfDays(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.HalfDay, error)
	Reschedule(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, fromWeek int, newStartDate time.Time) ([]*types.HalfDay, error)
}

type scheduleService struct {
	db          *gorm.DB
	log         *logger.Logger
	courseRepo  repos.CourseRepo
	halfDayRepo repos.HalfDayRepo
}

func NewScheduleService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	halfDayRepo repos.HalfDayRepo,
) ScheduleService {
	return &scheduleService{
		db:          db,
		log:         baseLog.With("service", "ScheduleService"),
		courseRepo:  courseRepo,
		halfDayRepo: halfDayRepo,
	}
}

func (s *scheduleService) loadOwnedCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TeacherID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}
	if courseID == uuid.Nil {
		return nil, fmt.Errorf("missing course id")
	}

	courses, err := s.courseRepo.GetByIDs(ctx, tx, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if len(courses) == 0 || courses[0] == nil || courses[0].TeacherID != rd.TeacherID {
		return nil, fmt.Errorf("course not found")
	}
	return courses[0], nil
}

// EnsureHalfDays lazily materializes the course's full 5x3 half-day grid and
// returns it ordered by (week, slot). Idempotent: half-days that already
// exist are never touched here, whatever their dates say. Only the
// reschedule path may rewrite a populated half-day.
func (s *scheduleService) EnsureHalfDays(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.HalfDay, error) {
	course, err := s.loadOwnedCourse(ctx, tx, courseID)
	if err != nil {
		return nil, err
	}

	// A course without a start anchor has nothing to derive from.
	if course.StartDate == nil || !course.StartPeriod.Valid() {
		return []*types.HalfDay{}, nil
	}

	existing, err := s.halfDayRepo.GetByCourseIDs(ctx, tx, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("load half-days: %w", err)
	}
	if len(existing) == types.CourseWeeks*types.SlotsPerWeek {
		return existing, nil
	}

	have := make(map[[2]int]bool, len(existing))
	for _, hd := range existing {
		have[[2]int{hd.WeekNumber, hd.SlotIndex}] = true
	}

	startSlot := course.StartPeriod.SlotIndex()
	now := time.Now()
	var missing []*types.HalfDay
	for week := 1; week <= types.CourseWeeks; week++ {
		for slot := 0; slot < types.SlotsPerWeek; slot++ {
			if have[[2]int{week, slot}] {
				continue
			}
			sessionDate, period := calendar.MapSlot(*course.StartDate, startSlot, week, slot)
			missing = append(missing, &types.HalfDay{
				ID:          uuid.New(),
				CourseID:    course.ID,
				WeekNumber:  week,
				SlotIndex:   slot,
				SessionDate: sessionDate,
				Period:      period,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
	}

	err = runInTransaction(ctx, s.db, tx, func(txx *gorm.DB) error {
		return s.halfDayRepo.CreateIgnoreConflicts(ctx, txx, missing)
	})
	if err != nil {
		s.log.Error("EnsureHalfDays: materialization failed", "error", err, "course_id", courseID)
		return nil, fmt.Errorf("materialize half-days: %w", err)
	}

	// Re-read so a concurrent materializer's winners are included too.
	all, err := s.halfDayRepo.GetByCourseIDs(ctx, tx, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("reload half-days: %w", err)
	}
	return all, nil
}

// Reschedule shifts the course timeline from fromWeek onward, treating
// newStartDate as the first day of that week while keeping the original
// start period. Weeks before fromWeek are never touched. Rescheduling week 1
// also moves the course's start anchor.
func (s *scheduleService) Reschedule(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, fromWeek int, newStartDate time.Time) ([]*types.HalfDay, error) {
	if fromWeek < 1 || fromWeek > types.CourseWeeks {
		return nil, fmt.Errorf("week number must be between 1 and %d", types.CourseWeeks)
	}

	course, err := s.loadOwnedCourse(ctx, tx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.StartPeriod.Valid() {
		return nil, fmt.Errorf("course has no start period")
	}

	startSlot := course.StartPeriod.SlotIndex()
	newStart := calendar.Midnight(newStartDate)
	now := time.Now()

	var recomputed []*types.HalfDay
	for week := fromWeek; week <= types.CourseWeeks; week++ {
		for slot := 0; slot < types.SlotsPerWeek; slot++ {
			sessionDate, period := calendar.MapSlot(newStart, startSlot, week-fromWeek+1, slot)
			recomputed = append(recomputed, &types.HalfDay{
				ID:          uuid.New(),
				CourseID:    course.ID,
				WeekNumber:  week,
				SlotIndex:   slot,
				SessionDate: sessionDate,
				Period:      period,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
	}

	err = runInTransaction(ctx, s.db, tx, func(txx *gorm.DB) error {
		if err := s.halfDayRepo.UpsertSchedule(ctx, txx, recomputed); err != nil {
			return fmt.Errorf("upsert half-days: %w", err)
		}
		if fromWeek == 1 {
			if err := s.courseRepo.UpdateStartDate(ctx, txx, course.ID, newStart); err != nil {
				return fmt.Errorf("update course start date: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("Reschedule failed", "error", err, "course_id", courseID, "from_week", fromWeek)
		return nil, err
	}

	all, err := s.halfDayRepo.GetByCourseIDs(ctx, tx, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("reload half-days: %w", err)
	}

	queueSSE(ctx, course.TeacherID, sse.SSEEventCourseRescheduled, map[string]interface{}{
		"course_id": course.ID,
		"from_week": fromWeek,
	})
	return all, nil
}
