package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/courseplanner-backend/internal/logger"
	"github.com/yungbote/courseplanner-backend/internal/repos"
	"github.com/yungbote/courseplanner-backend/internal/requestdata"
	"github.com/yungbote/courseplanner-backend/internal/types"
)

// newTestDB opens an in-memory sqlite database pinned to a single connection
// so every query sees the same schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(
		&types.Teacher{},
		&types.TeacherToken{},
		&types.Course{},
		&types.HalfDay{},
		&types.Activity{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

type testEnv struct {
	db              *gorm.DB
	log             *logger.Logger
	teacherRepo     repos.TeacherRepo
	courseRepo      repos.CourseRepo
	halfDayRepo     repos.HalfDayRepo
	activityRepo    repos.ActivityRepo
	scheduleService ScheduleService
	activityService ActivityService
	courseService   CourseService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)

	teacherRepo := repos.NewTeacherRepo(db, log)
	courseRepo := repos.NewCourseRepo(db, log)
	halfDayRepo := repos.NewHalfDayRepo(db, log)
	activityRepo := repos.NewActivityRepo(db, log)
	scheduleService := NewScheduleService(db, log, courseRepo, halfDayRepo)

	return &testEnv{
		db:              db,
		log:             log,
		teacherRepo:     teacherRepo,
		courseRepo:      courseRepo,
		halfDayRepo:     halfDayRepo,
		activityRepo:    activityRepo,
		scheduleService: scheduleService,
		activityService: NewActivityService(db, log, courseRepo, halfDayRepo, activityRepo, scheduleService),
		courseService:   NewCourseService(db, log, courseRepo, halfDayRepo, activityRepo),
	}
}

func (e *testEnv) createTeacher(t *testing.T) (*types.Teacher, context.Context) {
	t.Helper()

	now := time.Now()
	teacher := &types.Teacher{
		ID:        uuid.New(),
		Email:     uuid.NewString() + "@example.com",
		Password:  "hashed",
		FirstName: "Test",
		LastName:  "Teacher",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := e.teacherRepo.Create(context.Background(), nil, []*types.Teacher{teacher}); err != nil {
		t.Fatalf("create teacher: %v", err)
	}
	ctx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{TeacherID: teacher.ID})
	return teacher, ctx
}

func (e *testEnv) createCourse(t *testing.T, teacherID uuid.UUID, startDate *time.Time, startPeriod types.Period) *types.Course {
	t.Helper()

	now := time.Now()
	course := &types.Course{
		ID:          uuid.New(),
		TeacherID:   teacherID,
		Name:        "Intro to Gardening",
		StartDate:   startDate,
		StartPeriod: startPeriod,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := e.courseRepo.Create(context.Background(), nil, []*types.Course{course}); err != nil {
		t.Fatalf("create course: %v", err)
	}
	return course
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func findHalfDay(t *testing.T, halfDays []*types.HalfDay, week, slot int) *types.HalfDay {
	t.Helper()
	for _, hd := range halfDays {
		if hd.WeekNumber == week && hd.SlotIndex == slot {
			return hd
		}
	}
	t.Fatalf("half-day (%d, %d) not found among %d rows", week, slot, len(halfDays))
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
