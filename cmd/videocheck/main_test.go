package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/pkg/video"
)

func TestReport(t *testing.T) {
	link := func(s string) *string { return &s }
	articles := []model.Article{
		{ID: 1, Slug: "youtube", VideoURL: link("https://youtu.be/dQw4w9WgXcQ")},
		{ID: 2, Slug: "rutube", VideoURL: link("https://rutube.ru/video/abc123/")},
		{ID: 3, Slug: "private", VideoURL: link("https://rutube.ru/video/private/abc123/")},
		{ID: 4, Slug: "other", VideoURL: link("https://example.com/clip")},
		{ID: 5, Slug: "none"},
	}

	var out bytes.Buffer
	summary := report(&out, articles)

	assert.Equal(t, 1, summary[video.ProviderYouTube])
	assert.Equal(t, 2, summary[video.ProviderRutube])
	assert.Equal(t, 1, summary[video.ProviderUnknown])
	assert.Equal(t, 2, summary[noPlayer])

	text := out.String()
	assert.Contains(t, text, "https://www.youtube.com/embed/dQw4w9WgXcQ")
	assert.Contains(t, text, "https://rutube.ru/play/embed/abc123/")
	assert.NotContains(t, text, "none")
}
