package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/synthese-backend/internal/logger"
	"github.com/yungbote/synthese-backend/internal/repos"
	"github.com/yungbote/synthese-backend/internal/types"
	"github.com/yungbote/synthese-backend/internal/utils"
)

const (
	// DefaultTokenTTL is applied when a caller does not specify an expiry.
	DefaultTokenTTL = 3600 * time.Second

	// tokenReuseWindow: an existing token with more than this much validity
	// left is returned unchanged instead of minting a new one.
	tokenReuseWindow = 60 * time.Second

	tokenRandomBytes = 24
)

// TokenService owns the opaque bearer-token lifecycle of the JSON API.
type TokenService interface {
	GetToken(ctx context.Context, user *types.User, expiresIn time.Duration) (string, error)
	RevokeToken(ctx context.Context, user *types.User) error
	CheckToken(ctx context.Context, token string) (*types.User, error)
}

type tokenService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewTokenService(baseLog *logger.Logger, userRepo repos.UserRepo) TokenService {
	serviceLog := baseLog.With("service", "TokenService")
	return &tokenService{log: serviceLog, userRepo: userRepo}
}

func (ts *tokenService) GetToken(ctx context.Context, user *types.User, expiresIn time.Duration) (string, error) {
	if expiresIn <= 0 {
		expiresIn = DefaultTokenTTL
	}
	now := time.Now()
	if user.Token != nil && user.TokenExpiration != nil && user.TokenExpiration.After(now.Add(tokenReuseWindow)) {
		return *user.Token, nil
	}

	token, err := utils.RandomToken(tokenRandomBytes)
	if err != nil {
		return "", fmt.Errorf("Failed to generate token: %w", err)
	}
	expiration := now.Add(expiresIn)
	user.Token = &token
	user.TokenExpiration = &expiration

	if err := ts.userRepo.Save(ctx, nil, user); err != nil {
		return "", fmt.Errorf("Failed to persist token: %w", err)
	}
	return token, nil
}

// RevokeToken backdates the expiration rather than clearing the token, so a
// revoke-then-check sequence stays idempotent.
func (ts *tokenService) RevokeToken(ctx context.Context, user *types.User) error {
	if user.Token == nil {
		return nil
	}
	expiration := time.Now().Add(-time.Second)
	user.TokenExpiration = &expiration
	if err := ts.userRepo.Save(ctx, nil, user); err != nil {
		return fmt.Errorf("Failed to persist token revocation: %w", err)
	}
	return nil
}

// CheckToken returns the owning user, or nil when the token is unknown or
// not strictly within its validity window at call time.
func (ts *tokenService) CheckToken(ctx context.Context, token string) (*types.User, error) {
	if token == "" {
		return nil, nil
	}
	user, err := ts.userRepo.GetByToken(ctx, nil, token)
	if err != nil {
		return nil, fmt.Errorf("Failed to look up token: %w", err)
	}
	if user == nil || user.TokenExpiration == nil || !user.TokenExpiration.After(time.Now()) {
		return nil, nil
	}
	return user, nil
}
