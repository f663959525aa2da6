// Package video turns video links pasted by editors into embeddable player
// URLs. Resolution is a total function: every input yields an Embed, either a
// player URL or a link card pointing back at the original address.
package video

import (
	"fmt"
	"regexp"
	"strings"
)

// Provider identifies a video hosting service.
type Provider string

const (
	ProviderRutube  Provider = "rutube"
	ProviderYouTube Provider = "youtube"
	ProviderVK      Provider = "vk"
	ProviderUnknown Provider = "unknown"
)

// iframe allow attributes per provider
const (
	allowRutube        = "clipboard-write; autoplay"
	allowRutubePrivate = "clipboard-write; autoplay; fullscreen"
	allowYouTube       = "accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture"
	allowVK            = "autoplay; encrypted-media; fullscreen; picture-in-picture; screen-wake-lock"
)

// Link card texts shown when no player can be embedded.
const (
	LabelWatchOnRutube   = "Смотреть на Rutube"
	LabelOpenVideo       = "Открыть видео"
	MessageRutubePrivate = "Это видео размещено на Rutube с ограниченным доступом."
)

// LinkCard is the fallback rendered instead of a player.
type LinkCard struct {
	URL     string `json:"url"`
	Label   string `json:"label"`
	Message string `json:"message,omitempty"`
}

// Embed is the resolution result. Exactly one of EmbedURL and Fallback is set.
type Embed struct {
	Provider    Provider  `json:"provider"`
	Private     bool      `json:"private,omitempty"`
	EmbedURL    string    `json:"embed_url,omitempty"`
	Allow       string    `json:"allow,omitempty"`
	OriginalURL string    `json:"original_url"`
	Fallback    *LinkCard `json:"fallback,omitempty"`
}

// HasPlayer reports whether the embed can be shown in an iframe.
func (e Embed) HasPlayer() bool {
	return e.EmbedURL != ""
}

var (
	rutubeDomain  = regexp.MustCompile(`rutube\.ru`)
	rutubePrivate = regexp.MustCompile(`rutube\.ru/video/private`)
	vkDomain      = regexp.MustCompile(`vkvideo\.ru|vk\.com/video`)

	// Applied to the original string so extracted ids and tokens keep their case.
	rutubePrivateID = regexp.MustCompile(`(?i)rutube\.ru/video/private/([a-f0-9]+)/?.*?[?&]p=([^&\s#]+)`)
	rutubePublicID  = regexp.MustCompile(`(?i)rutube\.ru/video/([a-f0-9]+)(?:[/?#]|$)`)
	youtubeID       = regexp.MustCompile(`(?i)(?:youtube\.com/watch\?v=|youtu\.be/)([^&?#/\s]+)`)
	vkID            = regexp.MustCompile(`(?i)video(-?\d+)_(\d+)`)
)

// Detect classifies rawURL without extracting ids. Rutube wins over YouTube,
// YouTube over VK.
func Detect(rawURL string) Provider {
	normalized := strings.ToLower(strings.TrimSpace(rawURL))

	switch {
	case rutubeDomain.MatchString(normalized):
		return ProviderRutube
	case strings.Contains(normalized, "youtube.com") || strings.Contains(normalized, "youtu.be"):
		return ProviderYouTube
	case vkDomain.MatchString(normalized):
		return ProviderVK
	default:
		return ProviderUnknown
	}
}

// Resolve classifies rawURL and builds its embed. It never fails.
func Resolve(rawURL string) Embed {
	original := strings.TrimSpace(rawURL)

	switch Detect(original) {
	case ProviderRutube:
		return resolveRutube(original)
	case ProviderYouTube:
		if m := youtubeID.FindStringSubmatch(original); m != nil {
			return Embed{
				Provider:    ProviderYouTube,
				EmbedURL:    "https://www.youtube.com/embed/" + m[1],
				Allow:       allowYouTube,
				OriginalURL: original,
			}
		}
		return linkOut(ProviderYouTube, original)
	case ProviderVK:
		if m := vkID.FindStringSubmatch(original); m != nil {
			return Embed{
				Provider:    ProviderVK,
				EmbedURL:    fmt.Sprintf("https://vk.com/video_ext.php?oid=%s&id=%s&hd=2", m[1], m[2]),
				Allow:       allowVK,
				OriginalURL: original,
			}
		}
		return linkOut(ProviderVK, original)
	default:
		return linkOut(ProviderUnknown, original)
	}
}

func resolveRutube(original string) Embed {
	if rutubePrivate.MatchString(strings.ToLower(original)) {
		if m := rutubePrivateID.FindStringSubmatch(original); m != nil {
			return Embed{
				Provider:    ProviderRutube,
				Private:     true,
				EmbedURL:    fmt.Sprintf("https://rutube.ru/play/embed/%s?p=%s", m[1], m[2]),
				Allow:       allowRutubePrivate,
				OriginalURL: original,
			}
		}
		return Embed{
			Provider:    ProviderRutube,
			Private:     true,
			OriginalURL: original,
			Fallback: &LinkCard{
				URL:     original,
				Label:   LabelWatchOnRutube,
				Message: MessageRutubePrivate,
			},
		}
	}

	// ids always carry a digit, path words like "feed" do not
	if m := rutubePublicID.FindStringSubmatch(original); m != nil && strings.ContainsAny(m[1], "0123456789") {
		return Embed{
			Provider:    ProviderRutube,
			EmbedURL:    fmt.Sprintf("https://rutube.ru/play/embed/%s/", m[1]),
			Allow:       allowRutube,
			OriginalURL: original,
		}
	}
	return Embed{
		Provider:    ProviderRutube,
		OriginalURL: original,
		Fallback:    &LinkCard{URL: original, Label: LabelWatchOnRutube},
	}
}

// linkOut is the shared fallback for YouTube, VK and unknown hosts.
func linkOut(provider Provider, original string) Embed {
	return Embed{
		Provider:    provider,
		OriginalURL: original,
		Fallback:    &LinkCard{URL: original, Label: LabelOpenVideo},
	}
}
