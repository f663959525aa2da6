package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/volunteerhub/portal-backend/internal/app/service"
	"github.com/volunteerhub/portal-backend/internal/middleware"
)

type ArticleController struct {
	articleService service.ArticleService
}

func NewArticleController(articleService service.ArticleService) *ArticleController {
	return &ArticleController{
		articleService: articleService,
	}
}

type CreateArticleRequest struct {
	Title      string `json:"title" binding:"required,min=3"`
	Content    string `json:"content" binding:"required"`
	Excerpt    string `json:"excerpt"`
	Category   string `json:"category" binding:"required,max=50"`
	Published  bool   `json:"published"`
	CoverImage string `json:"cover_image"`
	VideoURL   string `json:"video_url"`
	PDFURL     string `json:"pdf_url"`
}

// UpdateArticleRequest is partial; "" clears cover_image, video_url and pdf_url.
type UpdateArticleRequest struct {
	Title      *string `json:"title" binding:"omitempty,min=3"`
	Content    *string `json:"content"`
	Excerpt    *string `json:"excerpt"`
	Category   *string `json:"category" binding:"omitempty,max=50"`
	Published  *bool   `json:"published"`
	CoverImage *string `json:"cover_image"`
	VideoURL   *string `json:"video_url"`
	PDFURL     *string `json:"pdf_url"`
}

// staffViewer reports whether unpublished drafts are visible to the caller.
func staffViewer(c *gin.Context) bool {
	role, ok := middleware.GetUserRole(c)
	return ok && role.IsStaff()
}

// List returns articles, drafts included for staff
// GET /api/v1/articles?category=
func (ctrl *ArticleController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	articles, err := ctrl.articleService.List(c.Query("category"), staffViewer(c))
	if err != nil {
		respondServiceError(c, log, err, "list articles")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"count":    len(articles),
	})
}

// GetBySlug returns one article with its resolved video player
// GET /api/v1/articles/:slug
func (ctrl *ArticleController) GetBySlug(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	article, err := ctrl.articleService.GetBySlug(c.Param("slug"), staffViewer(c))
	if err != nil {
		respondServiceError(c, log, err, "get article")
		return
	}

	c.JSON(http.StatusOK, gin.H{"article": article})
}

// POST /api/v1/articles
func (ctrl *ArticleController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CreateArticleRequest
	if !bindJSON(c, log, &req) {
		return
	}

	article, err := ctrl.articleService.Create(actor.UserID, service.CreateArticleInput{
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		Category:   req.Category,
		Published:  req.Published,
		CoverImage: req.CoverImage,
		VideoURL:   req.VideoURL,
		PDFURL:     req.PDFURL,
	})
	if err != nil {
		respondServiceError(c, log, err, "create article")
		return
	}

	log.Info("Article created", map[string]interface{}{
		"article_id": article.ID,
		"slug":       article.Slug,
	})

	c.JSON(http.StatusCreated, gin.H{"article": article})
}

// PATCH /api/v1/articles/id/:id
func (ctrl *ArticleController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateArticleRequest
	if !bindJSON(c, log, &req) {
		return
	}

	article, err := ctrl.articleService.Update(id, service.UpdateArticleInput{
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		Category:   req.Category,
		Published:  req.Published,
		CoverImage: req.CoverImage,
		VideoURL:   req.VideoURL,
		PDFURL:     req.PDFURL,
	})
	if err != nil {
		respondServiceError(c, log, err, "update article")
		return
	}

	c.JSON(http.StatusOK, gin.H{"article": article})
}

// DELETE /api/v1/articles/id/:id
func (ctrl *ArticleController) Delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.articleService.Delete(id); err != nil {
		respondServiceError(c, log, err, "delete article")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Статья удалена"})
}
