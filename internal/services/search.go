package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/synthese-backend/internal/logger"
	"github.com/yungbote/synthese-backend/internal/repos"
	"github.com/yungbote/synthese-backend/internal/search"
	"github.com/yungbote/synthese-backend/internal/types"
)

const articlesIndex = "articles"

// SearchService translates a free-text query into fully hydrated articles,
// preserving the index's relevance order.
type SearchService interface {
	SearchArticles(ctx context.Context, query string, page, perPage int) ([]*types.Article, int, error)
}

type searchService struct {
	log         *logger.Logger
	client      search.Client
	articleRepo repos.ArticleRepo
}

func NewSearchService(baseLog *logger.Logger, client search.Client, articleRepo repos.ArticleRepo) SearchService {
	serviceLog := baseLog.With("service", "SearchService")
	return &searchService{log: serviceLog, client: client, articleRepo: articleRepo}
}

func (ss *searchService) SearchArticles(ctx context.Context, query string, page, perPage int) ([]*types.Article, int, error) {
	if ss.client == nil {
		// Degraded mode: no index bound, search yields nothing.
		return []*types.Article{}, 0, nil
	}
	ids, total, err := ss.client.Query(ctx, articlesIndex, query, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("Failed to query search index: %w", err)
	}
	if total == 0 {
		return []*types.Article{}, 0, nil
	}

	rank := make(map[uuid.UUID]int, len(ids))
	articleIDs := make([]uuid.UUID, 0, len(ids))
	for position, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			ss.log.Warn("Search index returned a malformed id", "id", id, "error", err)
			continue
		}
		rank[parsed] = position
		articleIDs = append(articleIDs, parsed)
	}

	rows, err := ss.articleRepo.GetByIDs(ctx, nil, articleIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("Failed to hydrate search results: %w", err)
	}

	// The store returns rows in its own order; re-sort by index rank.
	// Positions index the raw hit list, so the buffer must span all of
	// it even when some ids failed to parse.
	ordered := make([]*types.Article, len(ids))
	extra := make([]*types.Article, 0)
	for _, row := range rows {
		position, ok := rank[row.ID]
		if !ok || ordered[position] != nil {
			extra = append(extra, row)
			continue
		}
		ordered[position] = row
	}
	out := make([]*types.Article, 0, len(rows))
	for _, row := range ordered {
		if row != nil {
			out = append(out, row)
		}
	}
	out = append(out, extra...)
	return out, total, nil
}
