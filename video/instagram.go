package video

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/exp/slog"

	"ladle/fetch"
	"ladle/model"
)

var (
	igLDJSONRe     = regexp.MustCompile(`(?is)<script[^>]*type=["']application/ld\+json["'][^>]*>(.*?)</script>`)
	igSharedDataRe = regexp.MustCompile(`window\._sharedData\s*=`)
	igAdditionalRe = regexp.MustCompile(`window\.__additionalDataLoaded\s*\(\s*['"][^'"]*['"]\s*,`)
	igBackgroundRe = regexp.MustCompile(`background-image:\s*url\(['"]?([^'")]+)['"]?\)`)
)

// Instagram extracts post/reel metadata. Instagram exposes no supported
// public API for this, so the chain works through the public page markup,
// the legacy oEmbed endpoint, and the /embed/ page in that order.
type Instagram struct {
	client *fetch.Client
	logger *slog.Logger
}

func NewInstagram(client *fetch.Client, logger *slog.Logger) *Instagram {
	return &Instagram{
		client: client,
		logger: logger,
	}
}

func (i *Instagram) Extract(ctx context.Context, pageURL, videoID string) (*model.VideoInfo, error) {
	info := &model.VideoInfo{
		Platform: model.PlatformInstagram,
		VideoID:  videoID,
		URL:      pageURL,
	}

	if page, err := i.client.GetString(ctx, pageURL); err == nil {
		applyInstagramPage(info, page)
	} else {
		i.logger.Info("instagram page fetch failed", slog.String("post", videoID), slog.String("error", err.Error()))
	}

	if !info.HasText() {
		if err := i.fromOEmbed(ctx, pageURL, info); err != nil {
			i.logger.Info("instagram oembed failed", slog.String("post", videoID), slog.String("error", err.Error()))
		}
	}

	if !info.HasText() {
		if err := i.fromEmbedPage(ctx, pageURL, info); err != nil {
			i.logger.Info("instagram embed page failed", slog.String("post", videoID), slog.String("error", err.Error()))
		}
	}

	if info.Title == "" && !info.HasText() {
		return nil, fmt.Errorf("no usable data for instagram post %s", videoID)
	}

	return info, nil
}

// applyInstagramPage mines the public post page: Open Graph tags, JSON-LD
// VideoObject/SocialMediaPosting blocks, and the two generations of legacy
// embedded JSON (_sharedData and __additionalDataLoaded).
func applyInstagramPage(info *model.VideoInfo, page string) {
	if info.Title == "" {
		info.Title = metaContent(page, "og:title")
	}
	if info.Description == "" {
		info.Description = metaContent(page, "og:description")
	}
	if info.ThumbnailURL == "" {
		info.ThumbnailURL = metaContent(page, "og:image")
	}

	for _, m := range igLDJSONRe.FindAllStringSubmatch(page, -1) {
		var doc map[string]any
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &doc); err != nil {
			continue
		}
		t, _ := doc["@type"].(string)
		if t != "VideoObject" && t != "SocialMediaPosting" {
			continue
		}
		if info.Description == "" {
			info.Description = digString(doc, "caption")
		}
		if info.Description == "" {
			info.Description = digString(doc, "description")
		}
		if info.Description == "" {
			info.Description = digString(doc, "articleBody")
		}
		if info.ChannelName == "" {
			info.ChannelName = digString(doc, "author", "name")
		}
		if info.ChannelName == "" {
			info.ChannelName = digString(doc, "author", "alternateName")
		}
		if info.ThumbnailURL == "" {
			info.ThumbnailURL = digString(doc, "thumbnailUrl")
		}
	}

	if loc := igSharedDataRe.FindStringIndex(page); loc != nil {
		if raw := extractJSONAfter(page[loc[0]:], "="); raw != "" {
			var shared map[string]any
			if err := json.Unmarshal([]byte(raw), &shared); err == nil {
				if posts := digSlice(shared, "entry_data", "PostPage"); len(posts) > 0 {
					if post, ok := posts[0].(map[string]any); ok {
						media := digMap(post, "graphql", "shortcode_media")
						applyShortcodeMedia(info, media)
					}
				}
			}
		}
	}

	if loc := igAdditionalRe.FindStringIndex(page); loc != nil {
		if raw := extractJSONAfter(page[loc[1]:], ""); raw != "" {
			var additional map[string]any
			if err := json.Unmarshal([]byte(raw), &additional); err == nil {
				applyShortcodeMedia(info, digMap(additional, "graphql", "shortcode_media"))
				if items := digSlice(additional, "items"); len(items) > 0 {
					if item, ok := items[0].(map[string]any); ok {
						if info.Description == "" {
							info.Description = digString(item, "caption", "text")
						}
						if info.ChannelName == "" {
							info.ChannelName = digString(item, "user", "username")
						}
					}
				}
			}
		}
	}
}

func applyShortcodeMedia(info *model.VideoInfo, media map[string]any) {
	if media == nil {
		return
	}
	if info.Description == "" {
		if edges := digSlice(media, "edge_media_to_caption", "edges"); len(edges) > 0 {
			if edge, ok := edges[0].(map[string]any); ok {
				info.Description = digString(edge, "node", "text")
			}
		}
	}
	if info.ChannelName == "" {
		info.ChannelName = digString(media, "owner", "username")
	}
	if info.ThumbnailURL == "" {
		info.ThumbnailURL = digString(media, "display_url")
	}
	if info.Duration == 0 {
		info.Duration = digInt(media, "video_duration")
	}
}

func (i *Instagram) fromOEmbed(ctx context.Context, pageURL string, info *model.VideoInfo) error {
	var oe struct {
		Title        string `json:"title"`
		AuthorName   string `json:"author_name"`
		ThumbnailURL string `json:"thumbnail_url"`
	}
	if err := i.client.GetJSON(ctx, "https://api.instagram.com/oembed/?url="+url.QueryEscape(pageURL), &oe); err != nil {
		return err
	}
	if info.Description == "" {
		info.Description = oe.Title
	}
	if info.ChannelName == "" {
		info.ChannelName = oe.AuthorName
	}
	if info.ThumbnailURL == "" {
		info.ThumbnailURL = oe.ThumbnailURL
	}
	return nil
}

// fromEmbedPage scrapes the /embed/ page, which often renders when the main
// page demands a login.
func (i *Instagram) fromEmbedPage(ctx context.Context, pageURL string, info *model.VideoInfo) error {
	embedURL := strings.TrimRight(pageURL, "/") + "/embed/"
	page, err := i.client.GetString(ctx, embedURL)
	if err != nil {
		return err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return err
	}

	if info.ChannelName == "" {
		info.ChannelName = strings.TrimSpace(doc.Find(".UsernameText").First().Text())
	}
	if info.Description == "" {
		caption := doc.Find(".Caption").First().Clone()
		caption.Find(".CaptionUsername, .CaptionComments").Remove()
		info.Description = strings.TrimSpace(caption.Text())
	}
	if info.ThumbnailURL == "" {
		if src, ok := doc.Find("img.EmbeddedMediaImage").First().Attr("src"); ok {
			info.ThumbnailURL = src
		}
	}
	if info.ThumbnailURL == "" {
		if m := igBackgroundRe.FindStringSubmatch(page); m != nil {
			info.ThumbnailURL = m[1]
		}
	}

	return nil
}
