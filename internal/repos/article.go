package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/synthese-backend/internal/logger"
	"github.com/yungbote/synthese-backend/internal/types"
)

type ArticleRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, articleID uuid.UUID) (*types.Article, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, articleIDs []uuid.UUID) ([]*types.Article, error)
	GetByTitle(ctx context.Context, tx *gorm.DB, title string) (*types.Article, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Article, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Article, error)
	TitleExists(ctx context.Context, tx *gorm.DB, title string) (bool, error)
	CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
}

type articleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewArticleRepo(db *gorm.DB, baseLog *logger.Logger) ArticleRepo {
	repoLog := baseLog.With("repo", "ArticleRepo")
	return &articleRepo{db: db, log: repoLog}
}

func (ar *articleRepo) GetByID(ctx context.Context, tx *gorm.DB, articleID uuid.UUID) (*types.Article, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var result types.Article
	err := transaction.WithContext(ctx).
		Preload("References").
		Where("id = ?", articleID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (ar *articleRepo) GetByIDs(ctx context.Context, tx *gorm.DB, articleIDs []uuid.UUID) ([]*types.Article, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.Article
	if len(articleIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("References").
		Where("id IN ?", articleIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *articleRepo) GetByTitle(ctx context.Context, tx *gorm.DB, title string) (*types.Article, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var result types.Article
	err := transaction.WithContext(ctx).
		Preload("References").
		Where("title = ?", title).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (ar *articleRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Article, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.Article
	if err := transaction.WithContext(ctx).
		Preload("References").
		Where("user_id = ?", userID).
		Order("creation_date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *articleRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Article, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.Article
	if err := transaction.WithContext(ctx).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *articleRepo) TitleExists(ctx context.Context, tx *gorm.DB, title string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Article{}).
		Where("title = ?", title).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ar *articleRepo) CountByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Article{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
