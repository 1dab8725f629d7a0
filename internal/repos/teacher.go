package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/courseplanner-backend/internal/logger"
	"github.com/yungbote/courseplanner-backend/internal/types"
)

type TeacherRepo interface {
	Create(ctx context.Context, tx *gorm.DB, teachers []*types.Teacher) ([]*types.Teacher, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, teacherIDs []uuid.UUID) ([]*types.Teacher, error)
	GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.Teacher, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

type teacherRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTeacherRepo(db *gorm.DB, baseLog *logger.Logger) TeacherRepo {
	repoLog := baseLog.With("repo", "TeacherRepo")
	return &teacherRepo{db: db, log: repoLog}
}

func (r *teacherRepo) Create(ctx context.Context, tx *gorm.DB, teachers []*types.Teacher) ([]*types.Teacher, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(teachers) == 0 {
		return []*types.Teacher{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&teachers).Error; err != nil {
		return nil, err
	}
	return teachers, nil
}

func (r *teacherRepo) GetByIDs(ctx context.Context, tx *gorm.DB, teacherIDs []uuid.UUID) ([]*types.Teacher, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Teacher
	if len(teacherIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", teacherIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *teacherRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.Teacher, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Teacher
	if len(emails) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("email IN ?", emails).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *teacherRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Teacher{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
