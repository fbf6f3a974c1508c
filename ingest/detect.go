package ingest

import (
	"regexp"

	"ladle/model"
)

// Detection is the result of classifying a URL as a known video platform.
type Detection struct {
	Platform model.Platform
	VideoID  string
}

// The patterns are disjoint by domain substring, so ordering only matters
// within a platform (canonical forms before short-link forms).
var platformPatterns = []struct {
	platform model.Platform
	re       *regexp.Regexp
}{
	{model.PlatformYouTube, regexp.MustCompile(`youtube\.com/watch\?(?:[^#\s]*&)?v=([A-Za-z0-9_-]+)`)},
	{model.PlatformYouTube, regexp.MustCompile(`youtube\.com/shorts/([A-Za-z0-9_-]+)`)},
	{model.PlatformYouTube, regexp.MustCompile(`youtube\.com/embed/([A-Za-z0-9_-]+)`)},
	{model.PlatformYouTube, regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]+)`)},
	{model.PlatformTikTok, regexp.MustCompile(`tiktok\.com/@[\w.-]+/video/(\d+)`)},
	{model.PlatformTikTok, regexp.MustCompile(`(?:vm|vt)\.tiktok\.com/([A-Za-z0-9]+)`)},
	{model.PlatformInstagram, regexp.MustCompile(`instagram\.com/(?:reels?|p|tv)/([A-Za-z0-9_-]+)`)},
}

// Detect classifies a URL by platform and extracts the platform-native
// video id. Returns nil when no pattern matches; the caller then treats the
// URL as a generic web page.
func Detect(url string) *Detection {
	for _, p := range platformPatterns {
		if m := p.re.FindStringSubmatch(url); m != nil {
			return &Detection{Platform: p.platform, VideoID: m[1]}
		}
	}
	return nil
}
