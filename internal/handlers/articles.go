package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/synthese-backend/internal/apierr"
	"github.com/yungbote/synthese-backend/internal/requestdata"
	"github.com/yungbote/synthese-backend/internal/services"
)

// ArticleHandler serves the JSON API article surface. Every route carries a
// user id in the path that must match the token's user.
type ArticleHandler struct {
	articleService services.ArticleService
}

func NewArticleHandler(articleService services.ArticleService) *ArticleHandler {
	return &ArticleHandler{articleService: articleService}
}

func (ah *ArticleHandler) ListArticles(c *gin.Context) {
	userID, ok := ah.ownedUserID(c)
	if !ok {
		return
	}
	articles, err := ah.articleService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		apierr.WriteErr(c, err)
		return
	}
	items := make([]map[string]interface{}, 0, len(articles))
	for _, article := range articles {
		items = append(items, article.ToDict())
	}
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"_meta": gin.H{"total_items": len(items)},
	})
}

func (ah *ArticleHandler) CreateArticle(c *gin.Context) {
	userID, ok := ah.ownedUserID(c)
	if !ok {
		return
	}
	var data map[string]interface{}
	if err := c.ShouldBindJSON(&data); err != nil {
		apierr.Write(c, http.StatusBadRequest, "invalid request body")
		return
	}
	article, err := ah.articleService.Create(c.Request.Context(), userID, data)
	if err != nil {
		apierr.WriteErr(c, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/articles/%s", userID))
	c.JSON(http.StatusCreated, article.ToDict())
}

func (ah *ArticleHandler) UpdateArticle(c *gin.Context) {
	userID, ok := ah.ownedUserID(c)
	if !ok {
		return
	}
	articleID, err := uuid.Parse(c.Param("article_id"))
	if err != nil {
		apierr.Write(c, http.StatusNotFound, "")
		return
	}
	existing, err := ah.articleService.Get(c.Request.Context(), articleID)
	if err != nil {
		apierr.WriteErr(c, err)
		return
	}
	if existing == nil {
		apierr.Write(c, http.StatusNotFound, "")
		return
	}
	if existing.UserID != userID {
		apierr.Write(c, http.StatusForbidden, "")
		return
	}
	var data map[string]interface{}
	if err := c.ShouldBindJSON(&data); err != nil {
		apierr.Write(c, http.StatusBadRequest, "invalid request body")
		return
	}
	article, err := ah.articleService.Update(c.Request.Context(), articleID, data)
	if err != nil {
		apierr.WriteErr(c, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/articles/%s", userID))
	c.JSON(http.StatusOK, article.ToDict())
}

// ownedUserID parses the path user id and enforces that it matches the
// authenticated user. A mismatch is an authorization failure, distinct from
// the 401 the middleware produces.
func (ah *ArticleHandler) ownedUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		apierr.Write(c, http.StatusNotFound, "")
		return uuid.Nil, false
	}
	if rd == nil || rd.UserID != userID {
		apierr.Write(c, http.StatusForbidden, "")
		return uuid.Nil, false
	}
	return userID, true
}
