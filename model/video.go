package model

type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformUnknown   Platform = "unknown"
)

// VideoInfo is the common shape the platform extractors normalize to.
// Every field is best-effort; Transcript and Duration are often missing.
type VideoInfo struct {
	Platform     Platform `json:"platform"`
	VideoID      string   `json:"videoId"`
	URL          string   `json:"url"`
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description,omitempty"`
	Transcript   string   `json:"transcript,omitempty"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"`
	ChannelName  string   `json:"channelName,omitempty"`
	Duration     int      `json:"duration,omitempty"`
}

// HasText reports whether there is any material for the synthesizer to
// reason over. Extractions without it are treated as failures.
func (v *VideoInfo) HasText() bool {
	return v != nil && (v.Transcript != "" || v.Description != "")
}
