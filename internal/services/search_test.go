package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/synthese-backend/internal/logger"
)

func TestSearchArticlesPreservesIndexOrder(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice", false)
	first := env.seedArticle(t, user, "Alpha")
	second := env.seedArticle(t, user, "Beta")
	third := env.seedArticle(t, user, "Gamma")

	// The index ranks them in the reverse of insertion order.
	index := &fakeIndex{
		hits:  []string{third.ID.String(), first.ID.String(), second.ID.String()},
		total: 3,
	}
	svc := NewSearchService(logger.NewNop(), index, env.articleRepo)

	articles, total, err := svc.SearchArticles(context.Background(), "anything", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, articles, 3)
	require.Equal(t, third.ID, articles[0].ID)
	require.Equal(t, first.ID, articles[1].ID)
	require.Equal(t, second.ID, articles[2].ID)
}

func TestSearchArticlesSkipsVanishedRows(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice", false)
	kept := env.seedArticle(t, user, "Kept")
	removed := env.seedArticle(t, user, "Removed")
	require.NoError(t, env.db.Delete(removed).Error)

	// The index is stale: it still knows the deleted row.
	index := &fakeIndex{
		hits:  []string{removed.ID.String(), kept.ID.String()},
		total: 2,
	}
	svc := NewSearchService(logger.NewNop(), index, env.articleRepo)

	articles, total, err := svc.SearchArticles(context.Background(), "anything", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, articles, 1)
	require.Equal(t, kept.ID, articles[0].ID)
}

func TestSearchArticlesToleratesMalformedIDs(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice", false)
	article := env.seedArticle(t, user, "Valid")

	index := &fakeIndex{
		hits:  []string{"not-a-uuid", article.ID.String()},
		total: 2,
	}
	svc := NewSearchService(logger.NewNop(), index, env.articleRepo)

	articles, total, err := svc.SearchArticles(context.Background(), "anything", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, articles, 1)
	require.Equal(t, article.ID, articles[0].ID)
}

func TestSearchArticlesToleratesDuplicateIDs(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "alice", false)
	repeated := env.seedArticle(t, user, "Repeated")
	other := env.seedArticle(t, user, "Other")

	index := &fakeIndex{
		hits:  []string{repeated.ID.String(), repeated.ID.String(), other.ID.String()},
		total: 3,
	}
	svc := NewSearchService(logger.NewNop(), index, env.articleRepo)

	articles, total, err := svc.SearchArticles(context.Background(), "anything", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, articles, 2)
	require.Equal(t, repeated.ID, articles[0].ID)
	require.Equal(t, other.ID, articles[1].ID)
}

func TestSearchArticlesNoIndexBound(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSearchService(logger.NewNop(), nil, env.articleRepo)

	articles, total, err := svc.SearchArticles(context.Background(), "anything", 1, 10)
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, articles)
}

func TestSearchArticlesEmptyResult(t *testing.T) {
	env := newTestEnv(t)
	index := &fakeIndex{total: 0}
	svc := NewSearchService(logger.NewNop(), index, env.articleRepo)

	articles, total, err := svc.SearchArticles(context.Background(), "nothing matches", 1, 10)
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, articles)
}
