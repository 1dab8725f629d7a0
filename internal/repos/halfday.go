package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/courseplanner-backend/internal/logger"
	"github.com/yungbote/courseplanner-backend/internal/types"
)

type HalfDayRepo interface {
	GetByIDs(ctx context.Context, tx *gorm.DB, halfDayIDs []uuid.UUID) ([]*types.HalfDay, error)
	GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.HalfDay, error)
	GetByCourseWeekSlot(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, weekNumber, slotIndex int) (*types.HalfDay, error)
	CreateIgnoreConflicts(ctx context.Context, tx *gorm.DB, halfDays []*types.HalfDay) error
	UpsertSchedule(ctx context.Context, tx *gorm.DB, halfDays []*types.HalfDay) error
	SoftDeleteByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error
}

type halfDayRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHalfDayRepo(db *gorm.DB, baseLog *logger.Logger) HalfDayRepo {
	repoLog := baseLog.With("repo", "HalfDayRepo")
	return &halfDayRepo{db: db, log: repoLog}
}

func (r *halfDayRepo) GetByIDs(ctx context.Context, tx *gorm.DB, halfDayIDs []uuid.UUID) ([]*types.HalfDay, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.HalfDay
	if len(halfDayIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", halfDayIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *halfDayRepo) GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.HalfDay, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.HalfDay
	if len(courseIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("course_id IN ?", courseIDs).
		Order("week_number ASC, slot_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *halfDayRepo) GetByCourseWeekSlot(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, weekNumber, slotIndex int) (*types.HalfDay, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.HalfDay
	if err := transaction.WithContext(ctx).
		Where("course_id = ? AND week_number = ? AND slot_index = ?", courseID, weekNumber, slotIndex).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// CreateIgnoreConflicts inserts half-days, skipping rows whose
// (course_id, week_number, slot_index) key already exists. Concurrent first
// access to a course's schedule can race on these inserts; the unique index
// plus DO NOTHING makes the loser a no-op instead of a failure.
func (r *halfDayRepo) CreateIgnoreConflicts(ctx context.Context, tx *gorm.DB, halfDays []*types.HalfDay) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(halfDays) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "course_id"}, {Name: "week_number"}, {Name: "slot_index"}},
			DoNothing: true,
		}).
		Create(&halfDays).Error; err != nil {
		return err
	}
	return nil
}

// UpsertSchedule writes session_date/period for the given half-days,
// overwriting existing rows. This is the reschedule path, the only writer
// allowed to touch an already-populated half-day's derived calendar.
func (r *halfDayRepo) UpsertSchedule(ctx context.Context, tx *gorm.DB, halfDays []*types.HalfDay) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(halfDays) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "course_id"}, {Name: "week_number"}, {Name: "slot_index"}},
			DoUpdates: clause.AssignmentColumns([]string{"session_date", "period", "updated_at"}),
		}).
		Create(&halfDays).Error; err != nil {
		return err
	}
	return nil
}

func (r *halfDayRepo) SoftDeleteByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(courseIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("course_id IN ?", courseIDs).
		Delete(&types.HalfDay{}).Error; err != nil {
		return err
	}
	return nil
}
