package video

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"sync"

	"golang.org/x/exp/slog"
	"google.golang.org/api/youtube/v3"

	"ladle/fetch"
	"ladle/model"
)

var isoSecondsRe = regexp.MustCompile(`(?i)^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// YouTube extracts video metadata and transcripts. The Data API is used
// first when a service is configured; the watch page and oEmbed endpoint
// cover the rest, and captions always come from the watch page.
type YouTube struct {
	api    *youtube.Service
	client *fetch.Client
	logger *slog.Logger
}

func NewYouTube(api *youtube.Service, client *fetch.Client, logger *slog.Logger) *YouTube {
	return &YouTube{
		api:    api,
		client: client,
		logger: logger,
	}
}

func (y *YouTube) Extract(ctx context.Context, pageURL, videoID string) (*model.VideoInfo, error) {
	info := &model.VideoInfo{
		Platform: model.PlatformYouTube,
		VideoID:  videoID,
		URL:      pageURL,
	}

	if y.api != nil {
		if err := y.fromAPI(ctx, videoID, info); err != nil {
			y.logger.Info("youtube api lookup failed, falling back to scraping",
				slog.String("video", videoID), slog.String("error", err.Error()))
		}
	}

	// oEmbed and the watch page are independent network calls; fetch both
	// concurrently and join before deciding what is missing.
	var (
		wg    sync.WaitGroup
		oe    oEmbedResponse
		oeErr error
		page  string
		pgErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		oeErr = y.client.GetJSON(ctx, "https://www.youtube.com/oembed?format=json&url="+url.QueryEscape(pageURL), &oe)
	}()
	go func() {
		defer wg.Done()
		page, pgErr = y.client.GetString(ctx, "https://www.youtube.com/watch?v="+url.QueryEscape(videoID))
	}()
	wg.Wait()

	if oeErr != nil {
		y.logger.Info("youtube oembed failed", slog.String("video", videoID), slog.String("error", oeErr.Error()))
	} else {
		applyOEmbed(info, oe)
	}

	var tracks []captionTrack
	if pgErr != nil {
		y.logger.Info("youtube watch page fetch failed", slog.String("video", videoID), slog.String("error", pgErr.Error()))
	} else {
		tracks = applyWatchPage(info, page)
	}

	if track := pickCaptionTrack(tracks); track != nil {
		if body, err := y.client.GetString(ctx, track.BaseURL); err == nil {
			info.Transcript = ParseTimedText(body)
		} else {
			y.logger.Info("youtube caption fetch failed", slog.String("video", videoID), slog.String("error", err.Error()))
		}
	}

	if info.Title == "" && !info.HasText() {
		return nil, fmt.Errorf("no usable data for youtube video %s", videoID)
	}

	return info, nil
}

func (y *YouTube) fromAPI(ctx context.Context, videoID string, info *model.VideoInfo) error {
	resp, err := y.api.Videos.
		List([]string{"snippet", "contentDetails"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return err
	}
	if len(resp.Items) == 0 {
		return fmt.Errorf("video %s not found", videoID)
	}

	item := resp.Items[0]
	if item.Snippet != nil {
		info.Title = item.Snippet.Title
		info.Description = item.Snippet.Description
		info.ChannelName = item.Snippet.ChannelTitle
		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.High != nil {
			info.ThumbnailURL = item.Snippet.Thumbnails.High.Url
		}
	}
	if item.ContentDetails != nil {
		info.Duration = isoSeconds(item.ContentDetails.Duration)
	}

	return nil
}

type oEmbedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func applyOEmbed(info *model.VideoInfo, oe oEmbedResponse) {
	if info.Title == "" {
		info.Title = oe.Title
	}
	if info.ChannelName == "" {
		info.ChannelName = oe.AuthorName
	}
	if info.ThumbnailURL == "" {
		info.ThumbnailURL = oe.ThumbnailURL
	}
}

type captionTrack struct {
	BaseURL      string
	LanguageCode string
}

// applyWatchPage mines the ytInitialPlayerResponse blob embedded in the
// watch page HTML, falling back to Open Graph tags, and returns any caption
// tracks it found.
func applyWatchPage(info *model.VideoInfo, page string) []captionTrack {
	var tracks []captionTrack

	if raw := extractJSONAfter(page, "ytInitialPlayerResponse"); raw != "" {
		var pr map[string]any
		if err := json.Unmarshal([]byte(raw), &pr); err == nil {
			if vd := digMap(pr, "videoDetails"); vd != nil {
				if info.Title == "" {
					info.Title = digString(vd, "title")
				}
				if info.Description == "" {
					info.Description = digString(vd, "shortDescription")
				}
				if info.ChannelName == "" {
					info.ChannelName = digString(vd, "author")
				}
				if info.Duration == 0 {
					info.Duration = digInt(vd, "lengthSeconds")
				}
				if info.ThumbnailURL == "" {
					if thumbs := digSlice(vd, "thumbnail", "thumbnails"); len(thumbs) > 0 {
						if last, ok := thumbs[len(thumbs)-1].(map[string]any); ok {
							info.ThumbnailURL = digString(last, "url")
						}
					}
				}
			}
			for _, item := range digSlice(pr, "captions", "playerCaptionsTracklistRenderer", "captionTracks") {
				track, ok := item.(map[string]any)
				if !ok {
					continue
				}
				baseURL := digString(track, "baseUrl")
				if baseURL == "" {
					continue
				}
				tracks = append(tracks, captionTrack{
					BaseURL:      baseURL,
					LanguageCode: digString(track, "languageCode"),
				})
			}
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

	return tracks
}

// pickCaptionTrack prefers an English track, then the first one available.
func pickCaptionTrack(tracks []captionTrack) *captionTrack {
	if len(tracks) == 0 {
		return nil
	}
	for i := range tracks {
		if len(tracks[i].LanguageCode) >= 2 && tracks[i].LanguageCode[:2] == "en" {
			return &tracks[i]
		}
	}
	return &tracks[0]
}

func isoSeconds(s string) int {
	m := isoSecondsRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	return hours*3600 + minutes*60 + seconds
}
