package video

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/exp/slog"

	"ladle/fetch"
	"ladle/model"
)

var (
	tiktokScriptRe  = regexp.MustCompile(`(?s)<script id="(?:SIGI_STATE|__UNIVERSAL_DATA_FOR_REHYDRATION__)"[^>]*>(.*?)</script>`)
	tiktokVideoIDRe = regexp.MustCompile(`tiktok\.com/@[^/]+/video/(\d+)`)
)

// TikTok extracts video metadata from the public web page. The page embeds
// its state in one of two generations of JSON blobs; Open Graph tags are
// the last resort.
type TikTok struct {
	client *fetch.Client
	logger *slog.Logger
}

func NewTikTok(client *fetch.Client, logger *slog.Logger) *TikTok {
	return &TikTok{
		client: client,
		logger: logger,
	}
}

func (t *TikTok) Extract(ctx context.Context, pageURL, videoID string) (*model.VideoInfo, error) {
	// vm.tiktok.com / vt.tiktok.com short links redirect to the canonical
	// video URL, which carries the numeric id.
	if strings.Contains(pageURL, "vm.tiktok.com") || strings.Contains(pageURL, "vt.tiktok.com") {
		resolved, err := t.client.ResolveRedirect(ctx, pageURL)
		if err != nil {
			t.logger.Info("tiktok short link resolution failed", slog.String("url", pageURL), slog.String("error", err.Error()))
		} else {
			pageURL = resolved
			if m := tiktokVideoIDRe.FindStringSubmatch(resolved); m != nil {
				videoID = m[1]
			}
		}
	}

	page, err := t.client.GetString(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tiktok page: %w", err)
	}

	info := &model.VideoInfo{
		Platform: model.PlatformTikTok,
		VideoID:  videoID,
		URL:      pageURL,
	}

	subtitleURL := applyTikTokPage(info, page, videoID)

	if subtitleURL != "" && info.Transcript == "" {
		if body, err := t.client.GetString(ctx, subtitleURL); err == nil {
			info.Transcript = ParseSubtitles(body)
		} else {
			t.logger.Info("tiktok subtitle fetch failed", slog.String("video", videoID), slog.String("error", err.Error()))
		}
	}

	if info.Title == "" && !info.HasText() {
		return nil, fmt.Errorf("no usable data for tiktok video %s", videoID)
	}

	return info, nil
}

// applyTikTokPage tries SIGI_STATE, then __UNIVERSAL_DATA_FOR_REHYDRATION__,
// then Open Graph tags, and returns a subtitle track URL when one is
// advertised.
func applyTikTokPage(info *model.VideoInfo, page, videoID string) string {
	var subtitleURL string

	for _, m := range tiktokScriptRe.FindAllStringSubmatch(page, -1) {
		var state map[string]any
		if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &state); err != nil {
			continue
		}

		item := digMap(state, "ItemModule", videoID)
		if item == nil {
			item = digMap(state, "__DEFAULT_SCOPE__", "webapp.video-detail", "itemInfo", "itemStruct")
		}
		if item == nil {
			continue
		}

		if info.Description == "" {
			info.Description = digString(item, "desc")
		}
		if info.ChannelName == "" {
			info.ChannelName = digString(item, "nickname")
		}
		if info.ChannelName == "" {
			info.ChannelName = digString(item, "author", "nickname")
		}
		if info.Duration == 0 {
			info.Duration = digInt(item, "video", "duration")
		}
		if info.ThumbnailURL == "" {
			info.ThumbnailURL = digString(item, "video", "cover")
		}
		if subtitleURL == "" {
			if subs := digSlice(item, "video", "subtitleInfos"); len(subs) > 0 {
				if first, ok := subs[0].(map[string]any); ok {
					subtitleURL = digString(first, "Url")
					if subtitleURL == "" {
						subtitleURL = digString(first, "url")
					}
				}
			}
		}
		if info.Description != "" {
			break
		}
	}

	if info.Title == "" {
		info.Title = metaContent(page, "og:title")
	}
	if info.Description == "" {
		info.Description = metaContent(page, "og:description")
	}
	if info.ThumbnailURL == "" {
		info.ThumbnailURL = metaContent(page, "og:image")
	}

	return subtitleURL
}
