package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/synthese-backend/internal/logger"
	"github.com/yungbote/synthese-backend/internal/repos"
)

type Repos struct {
	User      repos.UserRepo
	Article   repos.ArticleRepo
	Reference repos.ReferenceRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:      repos.NewUserRepo(db, log),
		Article:   repos.NewArticleRepo(db, log),
		Reference: repos.NewReferenceRepo(db, log),
	}
}
