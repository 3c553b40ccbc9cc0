package app

import (
	"time"

	"github.com/yungbote/synthese-backend/internal/logger"
	"github.com/yungbote/synthese-backend/internal/utils"
)

type Config struct {
	JWTSecretKey string
	SessionTTL   time.Duration
	AppBaseURL   string
	Port         string
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	sessionTTLSeconds := utils.GetEnvAsInt("SESSION_TTL", 86400, log)
	appBaseURL := utils.GetEnv("APP_BASE_URL", "http://localhost:8080", log)
	port := utils.GetEnv("PORT", "8080", log)
	return Config{
		JWTSecretKey: jwtSecretKey,
		SessionTTL:   time.Duration(sessionTTLSeconds) * time.Second,
		AppBaseURL:   appBaseURL,
		Port:         port,
	}
}
