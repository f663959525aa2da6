package repository

import (
	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/pkg/logger"
	"gorm.io/gorm"
)

type ArticleFilter struct {
	Category           string
	IncludeUnpublished bool
	WithVideoOnly      bool
	Limit              int
	Offset             int
}

type ArticleRepository interface {
	Create(article *model.Article) error
	FindByID(id uint) (*model.Article, error)
	FindBySlug(slug string) (*model.Article, error)
	FindWithFilter(filter ArticleFilter) ([]model.Article, error)
	Update(article *model.Article) error
	Delete(id uint) error
}

type articleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) Create(article *model.Article) error {
	logger.Debug("Creating article in database", map[string]interface{}{
		"slug":      article.Slug,
		"author_id": article.AuthorID,
	})

	if err := r.db.Omit("Author").Create(article).Error; err != nil {
		logger.Error("Failed to create article in database", err, map[string]interface{}{
			"slug": article.Slug,
		})
		return err
	}

	logger.Debug("Article created in database", map[string]interface{}{
		"article_id": article.ID,
		"slug":       article.Slug,
	})
	return nil
}

func (r *articleRepository) FindByID(id uint) (*model.Article, error) {
	var article model.Article
	if err := r.db.First(&article, id).Error; err != nil {
		logger.Debug("Article not found by ID in database", map[string]interface{}{
			"article_id": id,
		})
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) FindBySlug(slug string) (*model.Article, error) {
	logger.Debug("Finding article by slug in database", map[string]interface{}{
		"slug": slug,
	})

	var article model.Article
	if err := r.db.Preload("Author").Where("slug = ?", slug).First(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) FindWithFilter(filter ArticleFilter) ([]model.Article, error) {
	logger.Debug("Finding articles with filter", map[string]interface{}{
		"category":            filter.Category,
		"include_unpublished": filter.IncludeUnpublished,
		"with_video_only":     filter.WithVideoOnly,
		"limit":               filter.Limit,
		"offset":              filter.Offset,
	})

	query := r.db.Model(&model.Article{})
	if !filter.IncludeUnpublished {
		query = query.Where("published = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.WithVideoOnly {
		query = query.Where("video_url IS NOT NULL AND video_url <> ''")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var articles []model.Article
	if err := query.Order("created_at DESC").Order("id DESC").Find(&articles).Error; err != nil {
		logger.Error("Failed to find articles with filter", err)
		return nil, err
	}

	logger.Debug("Articles found with filter", map[string]interface{}{
		"count": len(articles),
	})
	return articles, nil
}

func (r *articleRepository) Update(article *model.Article) error {
	logger.Debug("Updating article in database", map[string]interface{}{
		"article_id": article.ID,
	})

	if err := r.db.Omit("Author").Save(article).Error; err != nil {
		logger.Error("Failed to update article in database", err, map[string]interface{}{
			"article_id": article.ID,
		})
		return err
	}
	return nil
}

func (r *articleRepository) Delete(id uint) error {
	logger.Debug("Deleting article from database", map[string]interface{}{
		"article_id": id,
	})

	result := r.db.Delete(&model.Article{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete article from database", result.Error, map[string]interface{}{
			"article_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
