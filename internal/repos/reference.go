package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/synthese-backend/internal/logger"
	"github.com/yungbote/synthese-backend/internal/types"
)

type ReferenceRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, referenceID uuid.UUID) (*types.Reference, error)
	GetByArticleID(ctx context.Context, tx *gorm.DB, articleID uuid.UUID) ([]*types.Reference, error)
}

type referenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReferenceRepo(db *gorm.DB, baseLog *logger.Logger) ReferenceRepo {
	repoLog := baseLog.With("repo", "ReferenceRepo")
	return &referenceRepo{db: db, log: repoLog}
}

func (rr *referenceRepo) GetByID(ctx context.Context, tx *gorm.DB, referenceID uuid.UUID) (*types.Reference, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var result types.Reference
	err := transaction.WithContext(ctx).Where("id = ?", referenceID).First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (rr *referenceRepo) GetByArticleID(ctx context.Context, tx *gorm.DB, articleID uuid.UUID) ([]*types.Reference, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var results []*types.Reference
	if err := transaction.WithContext(ctx).
		Where("article_id = ?", articleID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
