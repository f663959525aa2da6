package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/internal/db"
	"gorm.io/gorm"
)

func setupArticleTest(t *testing.T) (ArticleRepository, *model.User) {
	testDB := db.SetupTestDB(t)
	author := createTestUser(t, NewUserRepository(testDB), "editor@example.com", model.RoleModerator)
	return NewArticleRepository(testDB), author
}

func TestArticleRepository_FindWithFilter(t *testing.T) {
	repo, author := setupArticleTest(t)

	articles := []*model.Article{
		{Title: "Guide", Slug: "guide", Category: "guides", Published: true, AuthorID: author.ID},
		{Title: "News", Slug: "news", Category: "news", Published: true, AuthorID: author.ID, VideoURL: strPtr("https://youtu.be/abc")},
		{Title: "Draft", Slug: "draft", Category: "guides", Published: false, AuthorID: author.ID},
		{Title: "Empty video", Slug: "empty-video", Category: "news", Published: true, AuthorID: author.ID, VideoURL: strPtr("")},
	}
	for _, a := range articles {
		require.NoError(t, repo.Create(a))
	}

	tests := []struct {
		name      string
		filter    ArticleFilter
		wantSlugs []string
	}{
		{name: "Published only", filter: ArticleFilter{}, wantSlugs: []string{"guide", "news", "empty-video"}},
		{name: "Including drafts", filter: ArticleFilter{IncludeUnpublished: true}, wantSlugs: []string{"guide", "news", "draft", "empty-video"}},
		{name: "By category", filter: ArticleFilter{Category: "guides"}, wantSlugs: []string{"guide"}},
		{name: "With video", filter: ArticleFilter{WithVideoOnly: true, IncludeUnpublished: true}, wantSlugs: []string{"news"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindWithFilter(tt.filter)
			require.NoError(t, err)

			slugs := make([]string, 0, len(found))
			for _, a := range found {
				slugs = append(slugs, a.Slug)
			}
			assert.ElementsMatch(t, tt.wantSlugs, slugs)
		})
	}
}

func TestArticleRepository_SlugIsUnique(t *testing.T) {
	repo, author := setupArticleTest(t)

	require.NoError(t, repo.Create(&model.Article{Title: "One", Slug: "same", AuthorID: author.ID}))
	assert.Error(t, repo.Create(&model.Article{Title: "Two", Slug: "same", AuthorID: author.ID}))
}

func TestArticleRepository_UpdateAndDelete(t *testing.T) {
	repo, author := setupArticleTest(t)
	article := &model.Article{Title: "Old", Slug: "old", AuthorID: author.ID, PDFURL: strPtr("https://cdn/x.pdf")}
	require.NoError(t, repo.Create(article))

	article.Title = "New"
	article.Slug = "new"
	article.PDFURL = nil
	require.NoError(t, repo.Update(article))

	found, err := repo.FindBySlug("new")
	require.NoError(t, err)
	assert.Equal(t, "New", found.Title)
	assert.Nil(t, found.PDFURL)
	require.NotNil(t, found.Author)
	assert.Equal(t, author.ID, found.Author.ID)

	require.NoError(t, repo.Delete(article.ID))
	assert.ErrorIs(t, repo.Delete(article.ID), gorm.ErrRecordNotFound)
}
