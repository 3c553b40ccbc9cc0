package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/synthese-backend/internal/handlers"
	"github.com/yungbote/synthese-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	UserHandler    *handlers.UserHandler
	TokenHandler   *handlers.TokenHandler
	ArticleHandler *handlers.ArticleHandler
	BrowseHandler  *handlers.BrowseHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/auth/login", cfg.AuthHandler.Login)
	router.POST("/auth/guest", cfg.AuthHandler.Guest)
	router.GET("/auth/oauth/callback", cfg.AuthHandler.OAuthCallback)
	router.POST("/auth/reset_password_request", cfg.AuthHandler.ResetPasswordRequest)
	router.POST("/auth/reset_password/:token", cfg.AuthHandler.ResetPassword)

	// ===============
	// || Token API ||
	// ===============
	api := router.Group("/api")
	api.POST("/users", cfg.UserHandler.CreateUser)
	api.POST("/tokens", cfg.AuthMiddleware.RequireBasicAuth(), cfg.TokenHandler.GetToken)

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireToken())
	// Tokens
	protected.DELETE("/tokens", cfg.TokenHandler.RevokeToken)
	// Users
	protected.GET("/users", cfg.UserHandler.ListUsers)
	protected.GET("/users/:user_id", cfg.UserHandler.GetUser)
	protected.PUT("/users/:user_id", cfg.UserHandler.UpdateUser)
	// Articles
	protected.GET("/articles/:user_id", cfg.ArticleHandler.ListArticles)
	protected.POST("/articles/:user_id", cfg.ArticleHandler.CreateArticle)
	protected.PUT("/articles/:user_id/:article_id", cfg.ArticleHandler.UpdateArticle)

	// ===============
	// || Session   ||
	// ===============
	session := router.Group("/")
	session.Use(cfg.AuthMiddleware.RequireSession())
	// Auth
	session.POST("/auth/logout", cfg.AuthHandler.Logout)
	// Articles
	session.GET("/articles", cfg.BrowseHandler.ListArticles)
	session.POST("/articles", cfg.BrowseHandler.SubmitArticle)
	session.GET("/articles/:article_id", cfg.BrowseHandler.GetArticle)
	session.PUT("/articles/:article_id", cfg.BrowseHandler.UpdateArticle)
	session.DELETE("/articles/:article_id", cfg.BrowseHandler.DeleteArticle)
	// References
	session.POST("/articles/:article_id/references", cfg.BrowseHandler.AddReference)
	session.POST("/references", cfg.BrowseHandler.AddReference)
	session.DELETE("/references/:reference_id", cfg.BrowseHandler.DeleteReference)
	// Editor helpers
	session.POST("/check_article_title", cfg.BrowseHandler.CheckArticleTitle)
	// Search
	session.GET("/search", cfg.BrowseHandler.Search)

	return router
}
