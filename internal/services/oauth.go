package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yungbote/synthese-backend/internal/logger"
	"github.com/yungbote/synthese-backend/internal/utils"
)

type OAuthConfig struct {
	TokenURL     string
	UserInfoURL  string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Timeout      time.Duration
}

type httpOAuthProvider struct {
	log        *logger.Logger
	cfg        OAuthConfig
	httpClient *http.Client
}

// NewOAuthProviderFromEnv returns nil when no provider is configured; the
// auth service treats a nil provider as "OAuth disabled".
func NewOAuthProviderFromEnv(log *logger.Logger) OAuthProvider {
	tokenURL := utils.GetEnv("OAUTH_TOKEN_URL", "", log)
	userInfoURL := utils.GetEnv("OAUTH_USERINFO_URL", "", log)
	if tokenURL == "" || userInfoURL == "" {
		return nil
	}
	timeoutSeconds := utils.GetEnvAsInt("OAUTH_TIMEOUT_SECONDS", 10, log)
	return NewOAuthProvider(log, OAuthConfig{
		TokenURL:     tokenURL,
		UserInfoURL:  userInfoURL,
		ClientID:     utils.GetEnv("OAUTH_CLIENT_ID", "", log),
		ClientSecret: utils.GetEnv("OAUTH_CLIENT_SECRET", "", log),
		RedirectURL:  utils.GetEnv("OAUTH_REDIRECT_URL", "", log),
		Timeout:      time.Duration(timeoutSeconds) * time.Second,
	})
}

func NewOAuthProvider(baseLog *logger.Logger, cfg OAuthConfig) OAuthProvider {
	providerLog := baseLog.With("service", "OAuthProvider")
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpOAuthProvider{
		log:        providerLog,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Exchange trades the authorization code for an access token and resolves
// the provider's stable user id into an external login identity.
func (p *httpOAuthProvider) Exchange(ctx context.Context, code string) (string, error) {
	accessToken, err := p.exchangeCode(ctx, code)
	if err != nil {
		return "", err
	}
	subject, err := p.fetchSubject(ctx, accessToken)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("oauth:%s", subject), nil
}

func (p *httpOAuthProvider) exchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", p.cfg.ClientID)
	form.Set("client_secret", p.cfg.ClientSecret)
	if p.cfg.RedirectURL != "" {
		form.Set("redirect_uri", p.cfg.RedirectURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("Failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("Failed to exchange authorization code: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("Token endpoint returned status %d: %s", resp.StatusCode, string(body))
	}
	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("Failed to decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("Token endpoint returned no access token")
	}
	return payload.AccessToken, nil
}

func (p *httpOAuthProvider) fetchSubject(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.UserInfoURL, nil)
	if err != nil {
		return "", fmt.Errorf("Failed to build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("Failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("Userinfo endpoint returned status %d: %s", resp.StatusCode, string(body))
	}
	var payload struct {
		Sub string `json:"sub"`
		ID  string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("Failed to decode userinfo response: %w", err)
	}
	subject := payload.Sub
	if subject == "" {
		subject = payload.ID
	}
	if subject == "" {
		return "", fmt.Errorf("Userinfo endpoint returned no subject")
	}
	return subject, nil
}
