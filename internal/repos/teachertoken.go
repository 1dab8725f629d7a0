package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/courseplanner-backend/internal/logger"
	"github.com/yungbote/courseplanner-backend/internal/types"
)

type TeacherTokenRepo interface {
	Create(ctx context.Context, tx *gorm.DB, tokens []*types.TeacherToken) ([]*types.TeacherToken, error)
	GetByTeacherIDs(ctx context.Context, tx *gorm.DB, teacherIDs []uuid.UUID) ([]*types.TeacherToken, error)
	GetByAccessTokens(ctx context.Context, tx *gorm.DB, accessTokens []string) ([]*types.TeacherToken, error)
	GetByRefreshTokens(ctx context.Context, tx *gorm.DB, refreshTokens []string) ([]*types.TeacherToken, error)
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, tokenIDs []uuid.UUID) error
}

type teacherTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTeacherTokenRepo(db *gorm.DB, baseLog *logger.Logger) TeacherTokenRepo {
	repoLog := baseLog.With("repo", "TeacherTokenRepo")
	return &teacherTokenRepo{db: db, log: repoLog}
}

func (r *teacherTokenRepo) Create(ctx context.Context, tx *gorm.DB, tokens []*types.TeacherToken) ([]*types.TeacherToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(tokens) == 0 {
		return []*types.TeacherToken{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *teacherTokenRepo) GetByTeacherIDs(ctx context.Context, tx *gorm.DB, teacherIDs []uuid.UUID) ([]*types.TeacherToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TeacherToken
	if len(teacherIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("teacher_id IN ?", teacherIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *teacherTokenRepo) GetByAccessTokens(ctx context.Context, tx *gorm.DB, accessTokens []string) ([]*types.TeacherToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TeacherToken
	if len(accessTokens) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("access_token IN ?", accessTokens).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *teacherTokenRepo) GetByRefreshTokens(ctx context.Context, tx *gorm.DB, refreshTokens []string) ([]*types.TeacherToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.TeacherToken
	if len(refreshTokens) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("refresh_token IN ?", refreshTokens).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *teacherTokenRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, tokenIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(tokenIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", tokenIDs).
		Delete(&types.TeacherToken{}).Error; err != nil {
		return err
	}
	return nil
}
