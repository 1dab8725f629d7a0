package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/courseplanner-backend/internal/calendar"
	"github.com/yungbote/courseplanner-backend/internal/logger"
	"github.com/yungbote/courseplanner-backend/internal/normalization"
	"github.com/yungbote/courseplanner-backend/internal/repos"
	"github.com/yungbote/courseplanner-backend/internal/requestdata"
	"github.com/yungbote/courseplanner-backend/internal/sse"
	"github.com/yungbote/courseplanner-backend/internal/types"
)

type CreateCourseInput struct {
	Name        string         `json:"name"`
	Room        string         `json:"room"`
	ModuleRefs  datatypes.JSON `json:"module_refs"`
	StartDate   *time.Time     `json:"start_date"`
	StartPeriod types.Period   `json:"start_period"`
}

// UpdateCourseInput covers descriptive fields only. The start anchor moves
// exclusively through ScheduleService.Reschedule so the half-day grid can
// never drift from it.
type UpdateCourseInput struct {
	Name       *string         `json:"name,omitempty"`
	Room       *string         `json:"room,omitempty"`
	ModuleRefs *datatypes.JSON `json:"module_refs,omitempty"`
}

type CourseService interface {
	CreateCourse(ctx context.Context, tx *gorm.DB, input CreateCourseInput) (*types.Course, error)
	GetTeacherCourses(ctx context.Context, tx *gorm.DB) ([]*types.Course, error)
	GetCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error)
	UpdateCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, input UpdateCourseInput) (*types.Course, error)
	DeleteCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error
}

type courseService struct {
	db           *gorm.DB
	log          *logger.Logger
	courseRepo   repos.CourseRepo
	halfDayRepo  repos.HalfDayRepo
	activityRepo repos.ActivityRepo
}

func NewCourseService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	halfDayRepo repos.HalfDayRepo,
	activityRepo repos.ActivityRepo,
) CourseService {
	return &courseService{
		db:           db,
		log:          baseLog.With("service", "CourseService"),
		courseRepo:   courseRepo,
		halfDayRepo:  halfDayRepo,
		activityRepo: activityRepo,
	}
}

func (s *courseService) loadOwnedCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error) {
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

func (s *courseService) CreateCourse(ctx context.Context, tx *gorm.DB, input CreateCourseInput) (*types.Course, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TeacherID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}

	input.Name = normalization.TrimInputString(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("a course name is required")
	}
	if input.StartPeriod == "" {
		input.StartPeriod = types.PeriodMorning
	}
	if !input.StartPeriod.Valid() {
		return nil, fmt.Errorf("unknown start period %q", input.StartPeriod)
	}

	var startDate *time.Time
	if input.StartDate != nil {
		d := calendar.Midnight(*input.StartDate)
		startDate = &d
	}

	now := time.Now()
	course := &types.Course{
		ID:          uuid.New(),
		TeacherID:   rd.TeacherID,
		Name:        input.Name,
		Room:        normalization.TrimInputString(input.Room),
		ModuleRefs:  input.ModuleRefs,
		StartDate:   startDate,
		StartPeriod: input.StartPeriod,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := runInTransaction(ctx, s.db, tx, func(txx *gorm.DB) error {
		_, err := s.courseRepo.Create(ctx, txx, []*types.Course{course})
		return err
	})
	if err != nil {
		s.log.Error("CreateCourse failed", "error", err, "teacher_id", rd.TeacherID)
		return nil, fmt.Errorf("create course: %w", err)
	}

	queueSSE(ctx, rd.TeacherID, sse.SSEEventCourseCreated, map[string]interface{}{
		"course": course,
	})
	return course, nil
}

func (s *courseService) GetTeacherCourses(ctx context.Context, tx *gorm.DB) ([]*types.Course, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TeacherID == uuid.Nil {
		return nil, fmt.Errorf("not authenticated")
	}
	return s.courseRepo.GetByTeacherIDs(ctx, tx, []uuid.UUID{rd.TeacherID})
}

func (s *courseService) GetCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Course, error) {
	return s.loadOwnedCourse(ctx, tx, courseID)
}

func (s *courseService) UpdateCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, input UpdateCourseInput) (*types.Course, error) {
	course, err := s.loadOwnedCourse(ctx, tx, courseID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.Name != nil {
		name := normalization.TrimInputString(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("a course name is required")
		}
		fields["name"] = name
	}
	if input.Room != nil {
		fields["room"] = normalization.TrimInputString(*input.Room)
	}
	if input.ModuleRefs != nil {
		fields["module_refs"] = *input.ModuleRefs
	}
	if len(fields) == 0 {
		return course, nil
	}
	fields["updated_at"] = time.Now()

	err = runInTransaction(ctx, s.db, tx, func(txx *gorm.DB) error {
		return s.courseRepo.UpdateFields(ctx, txx, course.ID, fields)
	})
	if err != nil {
		s.log.Error("UpdateCourse failed", "error", err, "course_id", courseID)
		return nil, fmt.Errorf("update course: %w", err)
	}

	updated, err := s.courseRepo.GetByIDs(ctx, tx, []uuid.UUID{course.ID})
	if err != nil || len(updated) == 0 {
		return nil, fmt.Errorf("reload course: %w", err)
	}

	queueSSE(ctx, course.TeacherID, sse.SSEEventCourseUpdated, map[string]interface{}{
		"course": updated[0],
	})
	return updated[0], nil
}

// DeleteCourse soft-deletes the course and everything hanging off it. Soft
// deletes bypass the database's ON DELETE CASCADE, so the children go
// explicitly, leaves first.
func (s *courseService) DeleteCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error {
	course, err := s.loadOwnedCourse(ctx, tx, courseID)
	if err != nil {
		return err
	}

	err = runInTransaction(ctx, s.db, tx, func(txx *gorm.DB) error {
		halfDays, err := s.halfDayRepo.GetByCourseIDs(ctx, txx, []uuid.UUID{course.ID})
		if err != nil {
			return fmt.Errorf("load half-days: %w", err)
		}
		halfDayIDs := make([]uuid.UUID, 0, len(halfDays))
		for _, hd := range halfDays {
			halfDayIDs = append(halfDayIDs, hd.ID)
		}

		if err := s.activityRepo.SoftDeleteByHalfDayIDs(ctx, txx, halfDayIDs); err != nil {
			return fmt.Errorf("delete activities: %w", err)
		}
		if err := s.halfDayRepo.SoftDeleteByCourseIDs(ctx, txx, []uuid.UUID{course.ID}); err != nil {
			return fmt.Errorf("delete half-days: %w", err)
		}
		if err := s.courseRepo.SoftDeleteByIDs(ctx, txx, []uuid.UUID{course.ID}); err != nil {
			return fmt.Errorf("delete course: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Error("DeleteCourse failed", "error", err, "course_id", courseID)
		return err
	}

	queueSSE(ctx, course.TeacherID, sse.SSEEventCourseDeleted, map[string]interface{}{
		"course_id": course.ID,
	})
	return nil
}
