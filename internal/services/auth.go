package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/synthese-backend/internal/apierr"
	"github.com/yungbote/synthese-backend/internal/logger"
	"github.com/yungbote/synthese-backend/internal/repos"
	"github.com/yungbote/synthese-backend/internal/requestdata"
	"github.com/yungbote/synthese-backend/internal/types"
	"github.com/yungbote/synthese-backend/internal/utils"
)

const (
	guestUsernameLength   = 8
	guestUsernameAttempts = 5

	// DefaultResetTokenTTL bounds the signed password-reset link.
	DefaultResetTokenTTL = 600 * time.Second
)

// OAuthProvider is the opaque third-party handshake: everything before
// "exchange the callback code for a remote login name" happens outside this
// repository.
type OAuthProvider interface {
	Exchange(ctx context.Context, code string) (string, error)
}

type SessionClaims struct {
	jwt.RegisteredClaims
}

type resetClaims struct {
	ResetPassword string `json:"reset_password"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*types.User, error)
	Login(ctx context.Context, username, password string) (*types.User, string, error)
	StartGuestSession(ctx context.Context) (*types.User, string, error)
	OAuthLogin(ctx context.Context, code string) (*types.User, string, error)
	Logout(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	SessionToken(user *types.User) (string, error)
	GetResetPasswordToken(user *types.User, expiresIn time.Duration) (string, error)
	VerifyResetPasswordToken(ctx context.Context, token string) (*types.User, error)
	RequestPasswordReset(ctx context.Context, email string)
	ResetPassword(ctx context.Context, token, newPassword string) error
	SessionTTL() time.Duration
}

type authService struct {
	log            *logger.Logger
	userRepo       repos.UserRepo
	articleService ArticleService
	mailService    MailService
	oauthProvider  OAuthProvider
	jwtSecretKey   string
	sessionTTL     time.Duration
}

func NewAuthService(
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	articleService ArticleService,
	mailService MailService,
	oauthProvider OAuthProvider,
	jwtSecretKey string,
	sessionTTL time.Duration,
) AuthService {
	serviceLog := baseLog.With("service", "AuthService")
	return &authService{
		log:            serviceLog,
		userRepo:       userRepo,
		articleService: articleService,
		mailService:    mailService,
		oauthProvider:  oauthProvider,
		jwtSecretKey:   jwtSecretKey,
		sessionTTL:     sessionTTL,
	}
}

// Authenticate never reports whether the username or the password was
// wrong; both failures are the same generic unauthorized error.
func (as *authService) Authenticate(ctx context.Context, username, password string) (*types.User, error) {
	user, err := as.userRepo.GetByUsername(ctx, nil, username)
	if err != nil {
		return nil, fmt.Errorf("Failed to look up user: %w", err)
	}
	if user == nil || !utils.CheckPassword(user.PasswordHash, password) {
		return nil, apierr.Unauthorized()
	}
	return user, nil
}

func (as *authService) Login(ctx context.Context, username, password string) (*types.User, string, error) {
	user, err := as.Authenticate(ctx, username, password)
	if err != nil {
		return nil, "", err
	}
	token, err := as.SessionToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (as *authService) StartGuestSession(ctx context.Context) (*types.User, string, error) {
	var user *types.User
	// Check-then-create: the unique constraint on username is the backstop
	// if two guests draw the same name concurrently.
	for attempt := 0; attempt < guestUsernameAttempts; attempt++ {
		username, err := utils.RandomGuestUsername(guestUsernameLength)
		if err != nil {
			return nil, "", err
		}
		exists, err := as.userRepo.UsernameExists(ctx, nil, username)
		if err != nil {
			return nil, "", fmt.Errorf("Failed to check guest username: %w", err)
		}
		if exists {
			continue
		}
		candidate := &types.User{
			ID:           uuid.New(),
			Username:     username,
			Email:        fmt.Sprintf("%s@guest.invalid", username),
			PasswordHash: "!",
			IsGuest:      true,
		}
		created, err := as.userRepo.Create(ctx, nil, []*types.User{candidate})
		if err != nil {
			as.log.Warn("Guest user creation failed, retrying", "username", username, "error", err)
			continue
		}
		user = created[0]
		break
	}
	if user == nil {
		return nil, "", fmt.Errorf("Failed to allocate a guest username")
	}
	token, err := as.SessionToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (as *authService) OAuthLogin(ctx context.Context, code string) (*types.User, string, error) {
	if as.oauthProvider == nil {
		return nil, "", apierr.New(http.StatusNotImplemented, "OAuth sign-in is not configured", nil)
	}
	externalLogin, err := as.oauthProvider.Exchange(ctx, code)
	if err != nil {
		as.log.Warn("OAuth code exchange failed", "error", err)
		return nil, "", apierr.Unauthorized()
	}
	user, err := as.userRepo.GetByExternalLogin(ctx, nil, externalLogin)
	if err != nil {
		return nil, "", fmt.Errorf("Failed to look up external login: %w", err)
	}
	if user == nil {
		placeholder, err := utils.RandomGuestUsername(guestUsernameLength)
		if err != nil {
			return nil, "", err
		}
		user = &types.User{
			ID:            uuid.New(),
			Username:      fmt.Sprintf("ext_%s", placeholder),
			Email:         fmt.Sprintf("%s@external.invalid", placeholder),
			ExternalLogin: &externalLogin,
			PasswordHash:  "!",
		}
		if _, err := as.userRepo.Create(ctx, nil, []*types.User{user}); err != nil {
			return nil, "", fmt.Errorf("Failed to create user for external login: %w", err)
		}
	}
	token, err := as.SessionToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout tears the session down. Guest accounts are ephemeral: their row
// (and, via cascade, their articles and references) is deleted here.
func (as *authService) Logout(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return apierr.Unauthorized()
	}
	if err := as.articleService.CleanupScratch(ctx, rd.UserID); err != nil {
		as.log.Warn("Failed to clean up scratch article on logout", "error", err)
	}
	if !rd.IsGuest {
		return nil
	}
	user, err := as.userRepo.GetByID(ctx, nil, rd.UserID)
	if err != nil {
		return fmt.Errorf("Failed to load guest user: %w", err)
	}
	if user == nil {
		return nil
	}
	return as.articleService.DeleteUserWithArticles(ctx, user)
}

func (as *authService) SessionToken(user *types.User) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("Failed to sign session token: %w", err)
	}
	return signed, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("Failed to parse session token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*SessionClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("Invalid or expired session token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("Invalid user id in session token: %w", err)
	}
	user, err := as.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return ctx, fmt.Errorf("Failed to load session user: %w", err)
	}
	if user == nil {
		return ctx, fmt.Errorf("No user for session token")
	}
	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      user.ID,
		IsGuest:     user.IsGuest,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetResetPasswordToken(user *types.User, expiresIn time.Duration) (string, error) {
	if expiresIn <= 0 {
		expiresIn = DefaultResetTokenTTL
	}
	claims := resetClaims{
		ResetPassword: user.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("Failed to sign reset token: %w", err)
	}
	return signed, nil
}

// VerifyResetPasswordToken returns nil when the token cannot be validated
// or has expired.
func (as *authService) VerifyResetPasswordToken(ctx context.Context, token string) (*types.User, error) {
	parsedToken, err := jwt.ParseWithClaims(token, &resetClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return nil, nil
	}
	claims, ok := parsedToken.Claims.(*resetClaims)
	if !ok || !parsedToken.Valid {
		return nil, nil
	}
	userID, err := uuid.Parse(claims.ResetPassword)
	if err != nil {
		return nil, nil
	}
	return as.userRepo.GetByID(ctx, nil, userID)
}

// RequestPasswordReset sends the reset email fire-and-forget. It reveals
// nothing about whether the email exists.
func (as *authService) RequestPasswordReset(ctx context.Context, email string) {
	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		as.log.Warn("Failed to look up email for password reset", "error", err)
		return
	}
	if user == nil {
		return
	}
	token, err := as.GetResetPasswordToken(user, DefaultResetTokenTTL)
	if err != nil {
		as.log.Warn("Failed to build reset token", "error", err)
		return
	}
	as.mailService.SendPasswordResetEmail(user, token)
}

func (as *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := as.VerifyResetPasswordToken(ctx, token)
	if err != nil {
		return fmt.Errorf("Failed to verify reset token: %w", err)
	}
	if user == nil {
		return apierr.Unauthorized()
	}
	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	if err := as.userRepo.Save(ctx, nil, user); err != nil {
		return fmt.Errorf("Failed to persist new password: %w", err)
	}
	return nil
}

func (as *authService) SessionTTL() time.Duration {
	return as.sessionTTL
}
