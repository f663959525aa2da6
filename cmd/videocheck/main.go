package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/volunteerhub/portal-backend/config"
	"github.com/volunteerhub/portal-backend/internal/app/model"
	"github.com/volunteerhub/portal-backend/internal/app/repository"
	"github.com/volunteerhub/portal-backend/internal/app/service"
	"github.com/volunteerhub/portal-backend/internal/db"
	"github.com/volunteerhub/portal-backend/pkg/video"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	articleService := service.NewArticleService(repository.NewArticleRepository(db.GetDB()))

	articles, err := articleService.ListWithVideo()
	if err != nil {
		log.Fatal("Failed to list articles:", err)
	}

	summary := report(os.Stdout, articles)

	fmt.Printf("\nArticles with video: %d\n", len(articles))
	for _, provider := range []video.Provider{video.ProviderRutube, video.ProviderYouTube, video.ProviderVK, video.ProviderUnknown} {
		fmt.Printf("  %s: %d\n", provider, summary[provider])
	}
	fmt.Printf("  without player: %d\n", summary[noPlayer])
}

// noPlayer counts articles whose link resolves to a link card.
const noPlayer video.Provider = "no-player"

// report writes one line per article and returns counts per provider.
func report(w io.Writer, articles []model.Article) map[video.Provider]int {
	summary := make(map[video.Provider]int)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSLUG\tPROVIDER\tPLAYER\tURL")
	for _, article := range articles {
		if article.VideoURL == nil {
			continue
		}
		embed := video.Resolve(*article.VideoURL)
		summary[embed.Provider]++

		player := embed.EmbedURL
		if !embed.HasPlayer() {
			summary[noPlayer]++
			player = "-"
		} else if embed.Private {
			player += " (private)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", article.ID, article.Slug, embed.Provider, player, embed.OriginalURL)
	}
	tw.Flush()

	return summary
}
