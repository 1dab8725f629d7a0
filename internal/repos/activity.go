package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/courseplanner-backend/internal/logger"
	"github.com/yungbote/courseplanner-backend/internal/types"
)

// activityOrder is the canonical total order inside a half-day: contiguous
// positions first, legacy NULL-position rows last in creation order, id as
// the final stable tie-break.
const activityOrder = "position ASC NULLS LAST, created_at ASC, id ASC"

type ActivityRepo interface {
	Create(ctx context.Context, tx *gorm.DB, activities []*types.Activity) ([]*types.Activity, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, activityIDs []uuid.UUID) ([]*types.Activity, error)
	ListByHalfDayID(ctx context.Context, tx *gorm.DB, halfDayID uuid.UUID, lock bool) ([]*types.Activity, error)
	ListByHalfDayIDs(ctx context.Context, tx *gorm.DB, halfDayIDs []uuid.UUID) ([]*types.Activity, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, fields map[string]interface{}) error
	UpdatePosition(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, position int) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, activityIDs []uuid.UUID) error
	SoftDeleteByHalfDayIDs(ctx context.Context, tx *gorm.DB, halfDayIDs []uuid.UUID) error
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	repoLog := baseLog.With("repo", "ActivityRepo")
	return &activityRepo{db: db, log: repoLog}
}

// lockForUpdate adds a transaction-scoped row lock on postgres. sqlite (the
// test dialect) has no SELECT ... FOR UPDATE; its single-writer model stands in.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func (r *activityRepo) Create(ctx context.Context, tx *gorm.DB, activities []*types.Activity) ([]*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(activities) == 0 {
		return []*types.Activity{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *activityRepo) GetByIDs(ctx context.Context, tx *gorm.DB, activityIDs []uuid.UUID) ([]*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Activity
	if len(activityIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", activityIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListByHalfDayID returns the half-day's activities in canonical order. With
// lock set, the rows are locked for the duration of the surrounding
// transaction so a concurrent resequence cannot interleave.
func (r *activityRepo) ListByHalfDayID(ctx context.Context, tx *gorm.DB, halfDayID uuid.UUID, lock bool) ([]*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx)
	if lock {
		q = lockForUpdate(q)
	}

	var results []*types.Activity
	if err := q.
		Where("half_day_id = ?", halfDayID).
		Order(activityOrder).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *activityRepo) ListByHalfDayIDs(ctx context.Context, tx *gorm.DB, halfDayIDs []uuid.UUID) ([]*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Activity
	if len(halfDayIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("half_day_id IN ?", halfDayIDs).
		Order(activityOrder).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *activityRepo) UpdateFields(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Activity{}).
		Where("id = ?", activityID).
		Updates(fields).Error; err != nil {
		return err
	}
	return nil
}

func (r *activityRepo) UpdatePosition(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, position int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Activity{}).
		Where("id = ?", activityID).
		Update("position", position).Error; err != nil {
		return err
	}
	return nil
}

func (r *activityRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, activityIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(activityIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", activityIDs).
		Delete(&types.Activity{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *activityRepo) SoftDeleteByHalfDayIDs(ctx context.Context, tx *gorm.DB, halfDayIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(halfDayIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("half_day_id IN ?", halfDayIDs).
		Delete(&types.Activity{}).Error; err != nil {
		return err
	}
	return nil
}
