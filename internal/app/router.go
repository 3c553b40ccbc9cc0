package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/synthese-backend/internal/server"
)

func wireRouter(handlerset Handlers, middlewareset Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthHandler:    handlerset.Auth,
		AuthMiddleware: middlewareset.Auth,
		UserHandler:    handlerset.User,
		TokenHandler:   handlerset.Token,
		ArticleHandler: handlerset.Article,
		BrowseHandler:  handlerset.Browse,
	})
}
