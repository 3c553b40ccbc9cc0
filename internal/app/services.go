package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/synthese-backend/internal/logger"
	"github.com/yungbote/synthese-backend/internal/mailer"
	"github.com/yungbote/synthese-backend/internal/search"
	"github.com/yungbote/synthese-backend/internal/services"
	"github.com/yungbote/synthese-backend/internal/store"
)

type Services struct {
	Token   services.TokenService
	User    services.UserService
	Article services.ArticleService
	Search  services.SearchService
	Mail    services.MailService
	Auth    services.AuthService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos) Services {
	log.Info("Wiring services...")

	st := store.New(db, log)
	searchClient := search.NewFromEnv(log)
	if searchClient == nil {
		log.Warn("Search backend not configured, running without full-text search")
	}
	syncer := search.NewSyncer(log, searchClient)

	mailClient := mailer.NewFromEnv(log)
	if mailClient == nil {
		log.Warn("Mail backend not configured, password reset emails disabled")
	}

	tokenService := services.NewTokenService(log, reposet.User)
	userService := services.NewUserService(log, reposet.User)
	articleService := services.NewArticleService(log, st, syncer, reposet.User, reposet.Article, reposet.Reference)
	searchService := services.NewSearchService(log, searchClient, reposet.Article)
	mailService := services.NewMailService(log, mailClient, cfg.AppBaseURL)
	oauthProvider := services.NewOAuthProviderFromEnv(log)
	if oauthProvider == nil {
		log.Warn("OAuth provider not configured, external sign-in disabled")
	}
	authService := services.NewAuthService(log, reposet.User, articleService, mailService, oauthProvider, cfg.JWTSecretKey, cfg.SessionTTL)

	return Services{
		Token:   tokenService,
		User:    userService,
		Article: articleService,
		Search:  searchService,
		Mail:    mailService,
		Auth:    authService,
	}
}
