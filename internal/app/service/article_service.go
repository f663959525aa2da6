package service

import (
	"errors"
	"strings"

	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/internal/app/repository"
	"github.com/volunteerhub/portal-backend/pkg/logger"
	"github.com/volunteerhub/portal-backend/pkg/util"
	"github.com/volunteerhub/portal-backend/pkg/video"
	"gorm.io/gorm"
)

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrSlugTaken       = errors.New("an article with this title already exists")
	ErrInvalidTitle    = errors.New("title produces an empty slug")
)

// ArticleDetail is an article together with its resolved video player.
type ArticleDetail struct {
	model.Article
	Video *video.Embed `json:"video,omitempty"`
}

type CreateArticleInput struct {
	Title      string
	Content    string
	Excerpt    string
	Category   string
	Published  bool
	CoverImage string
	VideoURL   string
	PDFURL     string
}

// UpdateArticleInput is a partial update. Nil fields stay as they are; an empty
// string clears an optional URL.
type UpdateArticleInput struct {
	Title      *string
	Content    *string
	Excerpt    *string
	Category   *string
	Published  *bool
	CoverImage *string
	VideoURL   *string
	PDFURL     *string
}

type ArticleService interface {
	List(category string, includeUnpublished bool) ([]model.Article, error)
	ListWithVideo() ([]model.Article, error)
	GetBySlug(slug string, includeUnpublished bool) (*ArticleDetail, error)
	Create(authorID uint, input CreateArticleInput) (*model.Article, error)
	Update(id uint, input UpdateArticleInput) (*model.Article, error)
	Delete(id uint) error
}

type articleService struct {
	articleRepo repository.ArticleRepository
}

func NewArticleService(articleRepo repository.ArticleRepository) ArticleService {
	return &articleService{articleRepo: articleRepo}
}

// optionalURL maps blank input to NULL.
func optionalURL(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func (s *articleService) List(category string, includeUnpublished bool) ([]model.Article, error) {
	return s.articleRepo.FindWithFilter(repository.ArticleFilter{
		Category:           category,
		IncludeUnpublished: includeUnpublished,
	})
}

func (s *articleService) ListWithVideo() ([]model.Article, error) {
	return s.articleRepo.FindWithFilter(repository.ArticleFilter{
		IncludeUnpublished: true,
		WithVideoOnly:      true,
	})
}

func (s *articleService) GetBySlug(slug string, includeUnpublished bool) (*ArticleDetail, error) {
	article, err := s.articleRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	if !article.Published && !includeUnpublished {
		return nil, ErrArticleNotFound
	}

	detail := &ArticleDetail{Article: *article}
	if article.VideoURL != nil {
		embed := video.Resolve(*article.VideoURL)
		detail.Video = &embed
	}
	return detail, nil
}

// slugFor derives the slug of title and checks no other article holds it.
func (s *articleService) slugFor(title string, selfID uint) (string, error) {
	slug := util.Slugify(title)
	if slug == "" {
		return "", ErrInvalidTitle
	}

	existing, err := s.articleRepo.FindBySlug(slug)
	if err == nil && existing.ID != selfID {
		return "", ErrSlugTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	return slug, nil
}

func (s *articleService) Create(authorID uint, input CreateArticleInput) (*model.Article, error) {
	title := strings.TrimSpace(input.Title)
	slug, err := s.slugFor(title, 0)
	if err != nil {
		return nil, err
	}

	article := &model.Article{
		Title:      title,
		Slug:       slug,
		Content:    input.Content,
		Excerpt:    input.Excerpt,
		Category:   input.Category,
		Published:  input.Published,
		CoverImage: optionalURL(input.CoverImage),
		VideoURL:   optionalURL(input.VideoURL),
		PDFURL:     optionalURL(input.PDFURL),
		AuthorID:   authorID,
	}
	if err := s.articleRepo.Create(article); err != nil {
		return nil, err
	}

	logger.Info("Article created", map[string]interface{}{
		"article_id": article.ID,
		"slug":       article.Slug,
		"author_id":  authorID,
	})
	return article, nil
}

func (s *articleService) Update(id uint, input UpdateArticleInput) (*model.Article, error) {
	article, err := s.articleRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		slug, err := s.slugFor(title, article.ID)
		if err != nil {
			return nil, err
		}
		article.Title = title
		article.Slug = slug
	}
	if input.Content != nil {
		article.Content = *input.Content
	}
	if input.Excerpt != nil {
		article.Excerpt = *input.Excerpt
	}
	if input.Category != nil {
		article.Category = *input.Category
	}
	if input.Published != nil {
		article.Published = *input.Published
	}
	if input.CoverImage != nil {
		article.CoverImage = optionalURL(*input.CoverImage)
	}
	if input.VideoURL != nil {
		article.VideoURL = optionalURL(*input.VideoURL)
	}
	if input.PDFURL != nil {
		article.PDFURL = optionalURL(*input.PDFURL)
	}

	if err := s.articleRepo.Update(article); err != nil {
		return nil, err
	}

	logger.Info("Article updated", map[string]interface{}{
		"article_id": article.ID,
	})
	return article, nil
}

func (s *articleService) Delete(id uint) error {
	if err := s.articleRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrArticleNotFound
		}
		return err
	}

	logger.Info("Article deleted", map[string]interface{}{
		"article_id": id,
	})
	return nil
}
