package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/synthese-backend/internal/apierr"
	"github.com/yungbote/synthese-backend/internal/logger"
	"github.com/yungbote/synthese-backend/internal/repos"
	"github.com/yungbote/synthese-backend/internal/search"
	"github.com/yungbote/synthese-backend/internal/store"
	"github.com/yungbote/synthese-backend/internal/types"
)

const (
	duplicateTitleMessage    = "Please use a different title"
	referencesFormatHint     = "Error in the references definition: must be a sequence of strings separated with semicolons"
	guestArticleLimit        = 5
	guestArticleLimitHint    = "Guest accounts are limited to 5 articles"
	missingArticleFieldsHint = "Must include title and synthesis fields"
)

type ArticleService interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Article, error)
	Get(ctx context.Context, articleID uuid.UUID) (*types.Article, error)
	Create(ctx context.Context, userID uuid.UUID, data map[string]interface{}) (*types.Article, error)
	FinalizeScratch(ctx context.Context, userID uuid.UUID, title, synthesis string) (*types.Article, error)
	Update(ctx context.Context, articleID uuid.UUID, data map[string]interface{}) (*types.Article, error)
	Delete(ctx context.Context, articleID uuid.UUID) error
	AddReference(ctx context.Context, userID uuid.UUID, articleID *uuid.UUID, description string) (*types.Reference, *types.Article, error)
	DeleteReference(ctx context.Context, userID, referenceID uuid.UUID) error
	TitleTaken(ctx context.Context, title string) (bool, error)
	CleanupScratch(ctx context.Context, userID uuid.UUID) error
	DeleteUserWithArticles(ctx context.Context, user *types.User) error
	ReindexAll(ctx context.Context) error
}

type articleService struct {
	log           *logger.Logger
	store         *store.Store
	syncer        *search.Syncer
	userRepo      repos.UserRepo
	articleRepo   repos.ArticleRepo
	referenceRepo repos.ReferenceRepo
}

func NewArticleService(
	baseLog *logger.Logger,
	st *store.Store,
	syncer *search.Syncer,
	userRepo repos.UserRepo,
	articleRepo repos.ArticleRepo,
	referenceRepo repos.ReferenceRepo,
) ArticleService {
	serviceLog := baseLog.With("service", "ArticleService")
	return &articleService{
		log:           serviceLog,
		store:         st,
		syncer:        syncer,
		userRepo:      userRepo,
		articleRepo:   articleRepo,
		referenceRepo: referenceRepo,
	}
}

func (s *articleService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Article, error) {
	return s.articleRepo.GetByUserID(ctx, nil, userID)
}

func (s *articleService) Get(ctx context.Context, articleID uuid.UUID) (*types.Article, error) {
	return s.articleRepo.GetByID(ctx, nil, articleID)
}

// Create is the API path: a fresh article, never the scratch buffer.
func (s *articleService) Create(ctx context.Context, userID uuid.UUID, data map[string]interface{}) (*types.Article, error) {
	title, titleOK := data["title"].(string)
	synthesis, synthesisOK := data["synthesis"].(string)
	if !titleOK || !synthesisOK || title == "" || synthesis == "" {
		return nil, apierr.BadRequest(missingArticleFieldsHint)
	}
	references, err := parseReferences(data)
	if err != nil {
		return nil, err
	}
	taken, err := s.articleRepo.TitleExists(ctx, nil, title)
	if err != nil {
		return nil, fmt.Errorf("Failed to check title: %w", err)
	}
	if taken {
		return nil, apierr.BadRequest(duplicateTitleMessage)
	}
	if err := s.checkGuestLimit(ctx, userID); err != nil {
		return nil, err
	}

	article := &types.Article{ID: uuid.New(), UserID: userID}
	article.FromDict(data, true)

	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	s.syncer.Hook(ctx, uow)
	if err := uow.Create(article); err != nil {
		uow.Rollback()
		return nil, fmt.Errorf("Failed to create article: %w", err)
	}
	for _, description := range references {
		reference := &types.Reference{ID: uuid.New(), Description: description, ArticleID: article.ID}
		if err := uow.Create(reference); err != nil {
			uow.Rollback()
			return nil, fmt.Errorf("Failed to create reference: %w", err)
		}
		article.References = append(article.References, reference)
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return article, nil
}

// FinalizeScratch is the browser submit: the TMP scratch article, if one
// exists for this user, becomes the real article and keeps the references
// attached while composing. Check-then-act on the scratch row is racy under
// concurrent tabs; that behavior is inherited deliberately.
func (s *articleService) FinalizeScratch(ctx context.Context, userID uuid.UUID, title, synthesis string) (*types.Article, error) {
	if title == "" || synthesis == "" {
		return nil, apierr.BadRequest(missingArticleFieldsHint)
	}
	taken, err := s.articleRepo.TitleExists(ctx, nil, title)
	if err != nil {
		return nil, fmt.Errorf("Failed to check title: %w", err)
	}
	if taken {
		return nil, apierr.BadRequest(duplicateTitleMessage)
	}
	if err := s.checkGuestLimit(ctx, userID); err != nil {
		return nil, err
	}

	scratch, err := s.scratchFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	s.syncer.Hook(ctx, uow)
	data := map[string]interface{}{"title": title, "synthesis": synthesis}
	if scratch != nil {
		scratch.FromDict(data, false)
		if err := uow.Save(scratch); err != nil {
			uow.Rollback()
			return nil, fmt.Errorf("Failed to finalize scratch article: %w", err)
		}
		if err := uow.Commit(); err != nil {
			return nil, err
		}
		return scratch, nil
	}
	article := &types.Article{ID: uuid.New(), UserID: userID}
	article.FromDict(data, true)
	if err := uow.Create(article); err != nil {
		uow.Rollback()
		return nil, fmt.Errorf("Failed to create article: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return article, nil
}

func (s *articleService) Update(ctx context.Context, articleID uuid.UUID, data map[string]interface{}) (*types.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, nil, articleID)
	if err != nil {
		return nil, fmt.Errorf("Failed to load article: %w", err)
	}
	if article == nil {
		return nil, apierr.NotFound()
	}
	if title, ok := data["title"].(string); ok && title != article.Title {
		taken, err := s.articleRepo.TitleExists(ctx, nil, title)
		if err != nil {
			return nil, fmt.Errorf("Failed to check title: %w", err)
		}
		if taken {
			return nil, apierr.BadRequest(duplicateTitleMessage)
		}
	}
	references, err := parseReferences(data)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]bool, len(article.References))
	for _, reference := range article.References {
		existing[reference.Description] = true
	}

	article.FromDict(data, false)

	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	s.syncer.Hook(ctx, uow)
	if err := uow.Save(article); err != nil {
		uow.Rollback()
		return nil, fmt.Errorf("Failed to update article: %w", err)
	}
	// Merge: only references whose description is new get a row.
	for _, description := range references {
		if existing[description] {
			continue
		}
		reference := &types.Reference{ID: uuid.New(), Description: description, ArticleID: article.ID}
		if err := uow.Create(reference); err != nil {
			uow.Rollback()
			return nil, fmt.Errorf("Failed to create reference: %w", err)
		}
		article.References = append(article.References, reference)
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return article, nil
}

func (s *articleService) Delete(ctx context.Context, articleID uuid.UUID) error {
	article, err := s.articleRepo.GetByID(ctx, nil, articleID)
	if err != nil {
		return fmt.Errorf("Failed to load article: %w", err)
	}
	if article == nil {
		return apierr.NotFound()
	}
	return s.deleteArticles(ctx, []*types.Article{article}, nil)
}

func (s *articleService) AddReference(ctx context.Context, userID uuid.UUID, articleID *uuid.UUID, description string) (*types.Reference, *types.Article, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, nil, apierr.BadRequest("Reference description required")
	}

	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	s.syncer.Hook(ctx, uow)

	var article *types.Article
	if articleID != nil {
		article, err = s.articleRepo.GetByID(ctx, uow.Tx(), *articleID)
		if err != nil {
			uow.Rollback()
			return nil, nil, fmt.Errorf("Failed to load article: %w", err)
		}
		if article == nil {
			uow.Rollback()
			return nil, nil, apierr.NotFound()
		}
	} else {
		// No article yet: anchor the reference on the scratch buffer,
		// creating it on first use.
		article, err = s.scratchFor(ctx, userID)
		if err != nil {
			uow.Rollback()
			return nil, nil, err
		}
		if article == nil {
			now := time.Now().UTC()
			article = &types.Article{
				ID:           uuid.New(),
				Title:        types.ScratchTitle,
				UserID:       userID,
				CreationDate: now,
				UpdateDate:   now,
			}
			if err := uow.Create(article); err != nil {
				uow.Rollback()
				return nil, nil, fmt.Errorf("Failed to create scratch article: %w", err)
			}
		}
	}

	reference := &types.Reference{ID: uuid.New(), Description: description, ArticleID: article.ID}
	if err := uow.Create(reference); err != nil {
		uow.Rollback()
		return nil, nil, fmt.Errorf("Failed to create reference: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, nil, err
	}
	return reference, article, nil
}

func (s *articleService) DeleteReference(ctx context.Context, userID, referenceID uuid.UUID) error {
	reference, err := s.referenceRepo.GetByID(ctx, nil, referenceID)
	if err != nil {
		return fmt.Errorf("Failed to load reference: %w", err)
	}
	if reference == nil {
		return apierr.NotFound()
	}
	owner, err := s.articleRepo.GetByID(ctx, nil, reference.ArticleID)
	if err != nil {
		return fmt.Errorf("Failed to load article: %w", err)
	}
	if owner == nil {
		return apierr.NotFound()
	}
	if owner.UserID != userID {
		return apierr.Forbidden()
	}
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	if err := uow.Delete(reference); err != nil {
		uow.Rollback()
		return fmt.Errorf("Failed to delete reference: %w", err)
	}
	return uow.Commit()
}

func (s *articleService) TitleTaken(ctx context.Context, title string) (bool, error) {
	return s.articleRepo.TitleExists(ctx, nil, title)
}

// CleanupScratch drops the user's TMP article, if any. Navigational
// handlers call this opportunistically.
func (s *articleService) CleanupScratch(ctx context.Context, userID uuid.UUID) error {
	scratch, err := s.scratchFor(ctx, userID)
	if err != nil {
		return err
	}
	if scratch == nil {
		return nil
	}
	return s.deleteArticles(ctx, []*types.Article{scratch}, nil)
}

// DeleteUserWithArticles removes the user row and every owned article in
// one unit of work so the search index sees each removed document.
func (s *articleService) DeleteUserWithArticles(ctx context.Context, user *types.User) error {
	articles, err := s.articleRepo.GetByUserID(ctx, nil, user.ID)
	if err != nil {
		return fmt.Errorf("Failed to load user articles: %w", err)
	}
	return s.deleteArticles(ctx, articles, user)
}

// ReindexAll repairs a stale index by upserting every article.
func (s *articleService) ReindexAll(ctx context.Context) error {
	articles, err := s.articleRepo.GetAll(ctx, nil)
	if err != nil {
		return fmt.Errorf("Failed to load articles for reindex: %w", err)
	}
	entities := make([]interface{}, 0, len(articles))
	for _, article := range articles {
		entities = append(entities, article)
	}
	s.syncer.ReindexAll(ctx, entities)
	return nil
}

func (s *articleService) deleteArticles(ctx context.Context, articles []*types.Article, user *types.User) error {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	s.syncer.Hook(ctx, uow)
	for _, article := range articles {
		if err := uow.Delete(article); err != nil {
			uow.Rollback()
			return fmt.Errorf("Failed to delete article: %w", err)
		}
	}
	if user != nil {
		if err := uow.Delete(user); err != nil {
			uow.Rollback()
			return fmt.Errorf("Failed to delete user: %w", err)
		}
	}
	return uow.Commit()
}

func (s *articleService) scratchFor(ctx context.Context, userID uuid.UUID) (*types.Article, error) {
	scratch, err := s.articleRepo.GetByTitle(ctx, nil, types.ScratchTitle)
	if err != nil {
		return nil, fmt.Errorf("Failed to load scratch article: %w", err)
	}
	if scratch == nil || scratch.UserID != userID {
		return nil, nil
	}
	return scratch, nil
}

func (s *articleService) checkGuestLimit(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return fmt.Errorf("Failed to load user: %w", err)
	}
	if user == nil || !user.IsGuest {
		return nil
	}
	count, err := s.articleRepo.CountByUserID(ctx, nil, userID)
	if err != nil {
		return fmt.Errorf("Failed to count articles: %w", err)
	}
	if count >= guestArticleLimit {
		return apierr.New(http.StatusForbidden, guestArticleLimitHint, nil)
	}
	return nil
}

// parseReferences pulls the optional semicolon-separated reference list out
// of an API payload. A present-but-non-string value is a client error.
func parseReferences(data map[string]interface{}) ([]string, error) {
	raw, present := data["references"]
	if !present {
		return nil, nil
	}
	str, ok := raw.(string)
	if !ok {
		return nil, apierr.BadRequest(referencesFormatHint)
	}
	parts := strings.Split(str, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, nil
}
