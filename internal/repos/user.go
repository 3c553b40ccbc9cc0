package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/synthese-backend/internal/logger"
	"github.com/yungbote/synthese-backend/internal/types"
)

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error)
	GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*types.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error)
	GetByExternalLogin(ctx context.Context, tx *gorm.DB, externalLogin string) (*types.User, error)
	GetByToken(ctx context.Context, tx *gorm.DB, token string) (*types.User, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.User, error)
	UsernameExists(ctx context.Context, tx *gorm.DB, username string) (bool, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	ExternalLoginExists(ctx context.Context, tx *gorm.DB, externalLogin string) (bool, error)
	Save(ctx context.Context, tx *gorm.DB, user *types.User) error
	Delete(ctx context.Context, tx *gorm.DB, user *types.User) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	if len(users) == 0 {
		return []*types.User{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func (ur *userRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
	return ur.getOne(ctx, tx, "id = ?", userID)
}

func (ur *userRepo) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*types.User, error) {
	return ur.getOne(ctx, tx, "username = ?", username)
}

func (ur *userRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error) {
	return ur.getOne(ctx, tx, "email = ?", email)
}

func (ur *userRepo) GetByExternalLogin(ctx context.Context, tx *gorm.DB, externalLogin string) (*types.User, error) {
	return ur.getOne(ctx, tx, "external_login = ?", externalLogin)
}

func (ur *userRepo) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*types.User, error) {
	return ur.getOne(ctx, tx, "token = ?", token)
}

func (ur *userRepo) getOne(ctx context.Context, tx *gorm.DB, query string, arg interface{}) (*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var result types.User
	err := transaction.WithContext(ctx).Where(query, arg).First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (ur *userRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var results []*types.User
	if err := transaction.WithContext(ctx).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) UsernameExists(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
	return ur.exists(ctx, tx, "username = ?", username)
}

func (ur *userRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	return ur.exists(ctx, tx, "email = ?", email)
}

func (ur *userRepo) ExternalLoginExists(ctx context.Context, tx *gorm.DB, externalLogin string) (bool, error) {
	return ur.exists(ctx, tx, "external_login = ?", externalLogin)
}

func (ur *userRepo) exists(ctx context.Context, tx *gorm.DB, query string, arg interface{}) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.User{}).
		Where(query, arg).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ur *userRepo) Save(ctx context.Context, tx *gorm.DB, user *types.User) error {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	return transaction.WithContext(ctx).Save(user).Error
}

func (ur *userRepo) Delete(ctx context.Context, tx *gorm.DB, user *types.User) error {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	return transaction.WithContext(ctx).Delete(user).Error
}
