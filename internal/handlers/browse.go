package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/synthese-backend/internal/apierr"
	"github.com/yungbote/synthese-backend/internal/logger"
	"github.com/yungbote/synthese-backend/internal/requestdata"
	"github.com/yungbote/synthese-backend/internal/services"
)

const (
	defaultSearchPerPage = 10
	maxSearchPerPage     = 100
)

// BrowseHandler serves the session-authenticated article surface: the pages a
// logged-in user works with directly, plus the small AJAX endpoints the editor
// uses for references and title checks.
type BrowseHandler struct {
	log            *logger.Logger
	articleService services.ArticleService
	searchService  services.SearchService
}

func NewBrowseHandler(baseLog *logger.Logger, articleService services.ArticleService, searchService services.SearchService) *BrowseHandler {
	handlerLog := baseLog.With("handler", "BrowseHandler")
	return &BrowseHandler{log: handlerLog, articleService: articleService, searchService: searchService}
}

// cleanupScratch drops the user's abandoned TMP article on navigation.
// Best-effort: a failure must not break the page being served.
func (bh *BrowseHandler) cleanupScratch(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if err := bh.articleService.CleanupScratch(c.Request.Context(), rd.UserID); err != nil {
		bh.log.Warn("Failed to clean up scratch article", "error", err)
	}
}

func (bh *BrowseHandler) ListArticles(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	bh.cleanupScratch(c)
	articles, err := bh.articleService.ListByUser(c.Request.Context(), rd.UserID)
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

func (bh *BrowseHandler) GetArticle(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	bh.cleanupScratch(c)
	articleID, err := uuid.Parse(c.Param("article_id"))
	if err != nil {
		apierr.Write(c, http.StatusNotFound, "")
		return
	}
	article, err := bh.articleService.Get(c.Request.Context(), articleID)
	if err != nil {
		apierr.WriteErr(c, err)
		return
	}
	if article == nil {
		apierr.Write(c, http.StatusNotFound, "")
		return
	}
	if article.UserID != rd.UserID {
		apierr.Write(c, http.StatusForbidden, "")
		return
	}
	c.JSON(http.StatusOK, article.ToDict())
}

type submitArticleRequest struct {
	Title     string `json:"title" binding:"required"`
	Synthesis string `json:"synthesis" binding:"required"`
}

// SubmitArticle finalizes the user's scratch article if one exists, otherwise
// creates the article outright.
func (bh *BrowseHandler) SubmitArticle(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var req submitArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Write(c, http.StatusBadRequest, "Must include title and synthesis fields")
		return
	}
	article, err := bh.articleService.FinalizeScratch(c.Request.Context(), rd.UserID, req.Title, req.Synthesis)
	if err != nil {
		apierr.WriteErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, article.ToDict())
}

func (bh *BrowseHandler) UpdateArticle(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	articleID, err := uuid.Parse(c.Param("article_id"))
	if err != nil {
		apierr.Write(c, http.StatusNotFound, "")
		return
	}
	existing, err := bh.articleService.Get(c.Request.Context(), articleID)
	if err != nil {
		apierr.WriteErr(c, err)
		return
	}
	if existing == nil {
		apierr.Write(c, http.StatusNotFound, "")
		return
	}
	if existing.UserID != rd.UserID {
		apierr.Write(c, http.StatusForbidden, "")
		return
	}
	var data map[string]interface{}
	if err := c.ShouldBindJSON(&data); err != nil {
		apierr.Write(c, http.StatusBadRequest, "invalid request body")
		return
	}
	article, err := bh.articleService.Update(c.Request.Context(), articleID, data)
	if err != nil {
		apierr.WriteErr(c, err)
		return
	}
	c.JSON(http.StatusOK, article.ToDict())
}

func (bh *BrowseHandler) DeleteArticle(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	articleID, err := uuid.Parse(c.Param("article_id"))
	if err != nil {
		apierr.Write(c, http.StatusNotFound, "")
		return
	}
	article, err := bh.articleService.Get(c.Request.Context(), articleID)
	if err != nil {
		apierr.WriteErr(c, err)
		return
	}
	if article == nil {
		apierr.Write(c, http.StatusNotFound, "")
		return
	}
	if article.UserID != rd.UserID {
		apierr.Write(c, http.StatusForbidden, "")
		return
	}
	if err := bh.articleService.Delete(c.Request.Context(), articleID); err != nil {
		apierr.WriteErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addReferenceRequest struct {
	Description string `json:"description" binding:"required"`
}

// AddReference attaches a reference to the article named in the path. The
// bare /references route carries no article: the reference lands on the
// user's scratch article, which is created on the fly if needed.
func (bh *BrowseHandler) AddReference(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var req addReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Write(c, http.StatusBadRequest, "Must include description field")
		return
	}
	var articleID *uuid.UUID
	if raw := c.Param("article_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			apierr.Write(c, http.StatusNotFound, "")
			return
		}
		articleID = &parsed
	}
	reference, article, err := bh.articleService.AddReference(c.Request.Context(), rd.UserID, articleID, req.Description)
	if err != nil {
		apierr.WriteErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":          reference.ID,
		"description": reference.Description,
		"article_id":  article.ID,
	})
}

func (bh *BrowseHandler) DeleteReference(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	referenceID, err := uuid.Parse(c.Param("reference_id"))
	if err != nil {
		apierr.Write(c, http.StatusNotFound, "")
		return
	}
	if err := bh.articleService.DeleteReference(c.Request.Context(), rd.UserID, referenceID); err != nil {
		apierr.WriteErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type checkTitleRequest struct {
	Title string `json:"title" binding:"required"`
}

// CheckArticleTitle backs the live title validation in the editor.
func (bh *BrowseHandler) CheckArticleTitle(c *gin.Context) {
	var req checkTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Write(c, http.StatusBadRequest, "Must include title field")
		return
	}
	taken, err := bh.articleService.TitleTaken(c.Request.Context(), req.Title)
	if err != nil {
		apierr.WriteErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"taken": taken})
}

func (bh *BrowseHandler) Search(c *gin.Context) {
	bh.cleanupScratch(c)
	query := c.Query("q")
	page := parsePositiveIntQuery(c, "page", 1)
	perPage := parsePositiveIntQuery(c, "per_page", defaultSearchPerPage)
	if perPage > maxSearchPerPage {
		perPage = maxSearchPerPage
	}
	articles, total, err := bh.searchService.SearchArticles(c.Request.Context(), query, page, perPage)
	if err != nil {
		apierr.WriteErr(c, err)
		return
	}
	items := make([]map[string]interface{}, 0, len(articles))
	for _, article := range articles {
		items = append(items, article.ToDict())
	}
	links := gin.H{
		"self": searchURL(query, page, perPage),
	}
	// A next link exists only while the index still holds more hits.
	if total > page*perPage {
		links["next"] = searchURL(query, page+1, perPage)
	}
	if page > 1 {
		links["prev"] = searchURL(query, page-1, perPage)
	}
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"_meta": gin.H{
			"total_items": total,
			"page":        page,
			"per_page":    perPage,
		},
		"_links": links,
	})
}

func searchURL(query string, page, perPage int) string {
	return fmt.Sprintf("/search?q=%s&page=%d&per_page=%d", url.QueryEscape(query), page, perPage)
}

func parsePositiveIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
