package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/synthese-backend/internal/apierr"
	"github.com/yungbote/synthese-backend/internal/logger"
	"github.com/yungbote/synthese-backend/internal/repos"
	"github.com/yungbote/synthese-backend/internal/types"
	"github.com/yungbote/synthese-backend/internal/utils"
)

const (
	duplicateUsernameMessage      = "Please use a different username"
	duplicateEmailMessage         = "Please use a different email address"
	duplicateExternalLoginMessage = "Please use a different external login"
	missingUserFieldsHint         = "Must include username, email and password fields"
)

type UserService interface {
	Get(ctx context.Context, userID uuid.UUID) (*types.User, error)
	List(ctx context.Context) ([]*types.User, error)
	Create(ctx context.Context, data map[string]interface{}) (*types.User, error)
	Update(ctx context.Context, userID uuid.UUID, data map[string]interface{}) (*types.User, error)
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(baseLog *logger.Logger, userRepo repos.UserRepo) UserService {
	serviceLog := baseLog.With("service", "UserService")
	return &userService{log: serviceLog, userRepo: userRepo}
}

func (us *userService) Get(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	return us.userRepo.GetByID(ctx, nil, userID)
}

func (us *userService) List(ctx context.Context) ([]*types.User, error) {
	return us.userRepo.GetAll(ctx, nil)
}

func (us *userService) Create(ctx context.Context, data map[string]interface{}) (*types.User, error) {
	username, usernameOK := data["username"].(string)
	email, emailOK := data["email"].(string)
	password, passwordOK := data["password"].(string)
	if !usernameOK || !emailOK || !passwordOK || username == "" || email == "" || password == "" {
		return nil, apierr.BadRequest(missingUserFieldsHint)
	}
	if err := us.checkDuplicates(ctx, nil, data); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &types.User{ID: uuid.New(), PasswordHash: hashed}
	user.FromDict(data)
	if user.ExternalLogin == nil {
		// Placeholder so the unique column always has a value to link
		// a later OAuth sign-in against.
		placeholder := fmt.Sprintf("local:%s", user.ID)
		user.ExternalLogin = &placeholder
	}
	if _, err := us.userRepo.Create(ctx, nil, []*types.User{user}); err != nil {
		return nil, fmt.Errorf("Failed to create user: %w", err)
	}
	return user, nil
}

func (us *userService) Update(ctx context.Context, userID uuid.UUID, data map[string]interface{}) (*types.User, error) {
	user, err := us.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to load user: %w", err)
	}
	if user == nil {
		return nil, apierr.NotFound()
	}
	if err := us.checkDuplicates(ctx, user, data); err != nil {
		return nil, err
	}
	user.FromDict(data)
	if password, ok := data["password"].(string); ok && password != "" {
		hashed, err := utils.HashPassword(password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}
	if err := us.userRepo.Save(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("Failed to update user: %w", err)
	}
	return user, nil
}

// checkDuplicates rejects values already taken by another user. current is
// nil on create.
func (us *userService) checkDuplicates(ctx context.Context, current *types.User, data map[string]interface{}) error {
	if username, ok := data["username"].(string); ok && username != "" {
		if current == nil || username != current.Username {
			taken, err := us.userRepo.UsernameExists(ctx, nil, username)
			if err != nil {
				return fmt.Errorf("Failed to check username: %w", err)
			}
			if taken {
				return apierr.BadRequest(duplicateUsernameMessage)
			}
		}
	}
	if email, ok := data["email"].(string); ok && email != "" {
		if current == nil || email != current.Email {
			taken, err := us.userRepo.EmailExists(ctx, nil, email)
			if err != nil {
				return fmt.Errorf("Failed to check email: %w", err)
			}
			if taken {
				return apierr.BadRequest(duplicateEmailMessage)
			}
		}
	}
	if externalLogin, ok := data["external_login"].(string); ok && externalLogin != "" {
		if current == nil || current.ExternalLogin == nil || externalLogin != *current.ExternalLogin {
			taken, err := us.userRepo.ExternalLoginExists(ctx, nil, externalLogin)
			if err != nil {
				return fmt.Errorf("Failed to check external login: %w", err)
			}
			if taken {
				return apierr.BadRequest(duplicateExternalLoginMessage)
			}
		}
	}
	return nil
}
