package app

import (
	"github.com/yungbote/synthese-backend/internal/handlers"
	"github.com/yungbote/synthese-backend/internal/logger"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	User    *handlers.UserHandler
	Token   *handlers.TokenHandler
	Article *handlers.ArticleHandler
	Browse  *handlers.BrowseHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:    handlers.NewAuthHandler(services.Auth),
		User:    handlers.NewUserHandler(services.User),
		Token:   handlers.NewTokenHandler(services.Token, services.User),
		Article: handlers.NewArticleHandler(services.Article),
		Browse:  handlers.NewBrowseHandler(log, services.Article, services.Search),
	}
}
