package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/synthese-backend/internal/logger"
	"github.com/yungbote/synthese-backend/internal/mailer"
	"github.com/yungbote/synthese-backend/internal/types"
)

const mailSendTimeout = 60 * time.Second

type MailService interface {
	SendPasswordResetEmail(user *types.User, token string)
}

type mailService struct {
	log     *logger.Logger
	client  mailer.Client
	baseURL string
}

func NewMailService(baseLog *logger.Logger, client mailer.Client, baseURL string) MailService {
	serviceLog := baseLog.With("service", "MailService")
	return &mailService{log: serviceLog, client: client, baseURL: baseURL}
}

// SendPasswordResetEmail dispatches on a background goroutine. The caller
// never blocks on, retries, or observes the outcome of the send.
func (ms *mailService) SendPasswordResetEmail(user *types.User, token string) {
	if ms.client == nil {
		ms.log.Warn("Password reset email skipped, no mail client configured", "username", user.Username)
		return
	}
	resetURL := fmt.Sprintf("%s/auth/reset_password/%s", ms.baseURL, token)
	req := mailer.SendEmailRequest{
		ToEmail: user.Email,
		ToName:  user.Username,
		Subject: "[Synthese] Reset your password",
		TextBody: fmt.Sprintf(
			"Hello %s,\n\nTo reset your password, visit the following link:\n\n%s\n\nIf you did not request a password reset, simply ignore this message.\n",
			user.Username, resetURL,
		),
		HTMLBody: fmt.Sprintf(
			"<p>Hello %s,</p><p>To reset your password, <a href=%q>click here</a>.</p><p>If you did not request a password reset, simply ignore this message.</p>",
			user.Username, resetURL,
		),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailSendTimeout)
		defer cancel()
		if err := ms.client.Send(ctx, req); err != nil {
			ms.log.Warn("Password reset email failed", "username", user.Username, "error", err)
		}
	}()
}
