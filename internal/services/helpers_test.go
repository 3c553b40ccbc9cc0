package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/synthese-backend/internal/logger"
	"github.com/yungbote/synthese-backend/internal/repos"
	"github.com/yungbote/synthese-backend/internal/store"
	"github.com/yungbote/synthese-backend/internal/types"
)

type testEnv struct {
	db            *gorm.DB
	store         *store.Store
	userRepo      repos.UserRepo
	articleRepo   repos.ArticleRepo
	referenceRepo repos.ReferenceRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&types.User{}, &types.Article{}, &types.Reference{}))

	log := logger.NewNop()
	return &testEnv{
		db:            db,
		store:         store.New(db, log),
		userRepo:      repos.NewUserRepo(db, log),
		articleRepo:   repos.NewArticleRepo(db, log),
		referenceRepo: repos.NewReferenceRepo(db, log),
	}
}

func (e *testEnv) seedUser(t *testing.T, username string, guest bool) *types.User {
	t.Helper()
	user := &types.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "!",
		IsGuest:      guest,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) seedArticle(t *testing.T, user *types.User, title string) *types.Article {
	t.Helper()
	article := &types.Article{
		ID:     uuid.New(),
		Title:  title,
		UserID: user.ID,
	}
	require.NoError(t, e.db.Create(article).Error)
	return article
}
