package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/synthese-backend/internal/logger"
	"github.com/yungbote/synthese-backend/internal/utils"
)

const maxErrorBodyBytes = 1024

type Client interface {
	Send(ctx context.Context, req SendEmailRequest) error
}

type Config struct {
	APIKey     string
	BaseURL    string
	FromEmail  string
	FromName   string
	Timeout    time.Duration
	MaxRetries int
}

func ConfigFromEnv(log *logger.Logger) Config {
	timeoutSec := utils.GetEnvAsInt("MAIL_TIMEOUT_SECONDS", 30, log)
	maxRetries := utils.GetEnvAsInt("MAIL_MAX_RETRIES", 4, log)
	return Config{
		APIKey:     strings.TrimSpace(utils.GetEnv("MAIL_API_KEY", "", log)),
		BaseURL:    strings.TrimSpace(utils.GetEnv("MAIL_BASE_URL", "", log)),
		FromEmail:  strings.TrimSpace(utils.GetEnv("MAIL_FROM_EMAIL", "no-reply@synthese.local", log)),
		FromName:   strings.TrimSpace(utils.GetEnv("MAIL_FROM_NAME", "Synthese", log)),
		Timeout:    time.Duration(timeoutSec) * time.Second,
		MaxRetries: maxRetries,
	}
}

// NewFromEnv returns nil when no mail endpoint is configured; callers skip
// sending in that case.
func NewFromEnv(log *logger.Logger) Client {
	cfg := ConfigFromEnv(log)
	if cfg.BaseURL == "" {
		log.Warn("No mail endpoint configured, outbound email disabled")
		return nil
	}
	return New(log, cfg)
}

func New(log *logger.Logger, cfg Config) Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &client{
		log:        log.With("client", "MailClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

type SendEmailRequest struct {
	ToEmail  string
	ToName   string
	Subject  string
	TextBody string
	HTMLBody string
}

type sendPayload struct {
	From    emailAddress   `json:"from"`
	To      []emailAddress `json:"to"`
	Subject string         `json:"subject"`
	Content []emailContent `json:"content"`
}

type emailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type emailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (c *client) Send(ctx context.Context, req SendEmailRequest) error {
	if strings.TrimSpace(req.ToEmail) == "" {
		return fmt.Errorf("Recipient email required")
	}
	payload := sendPayload{
		From:    emailAddress{Email: c.cfg.FromEmail, Name: c.cfg.FromName},
		To:      []emailAddress{{Email: req.ToEmail, Name: req.ToName}},
		Subject: req.Subject,
	}
	if req.TextBody != "" {
		payload.Content = append(payload.Content, emailContent{Type: "text/plain", Value: req.TextBody})
	}
	if req.HTMLBody != "" {
		payload.Content = append(payload.Content, emailContent{Type: "text/html", Value: req.HTMLBody})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("Failed to encode mail payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
		retryable, err := c.post(ctx, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
		c.log.Warn("Mail send attempt failed, retrying", "attempt", attempt, "error", err)
	}
	return lastErr
}

func (c *client) post(ctx context.Context, body []byte) (bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("Failed to build mail request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return true, fmt.Errorf("Mail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return false, nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
	return retryable, fmt.Errorf("Mail send failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(snippet)))
}
