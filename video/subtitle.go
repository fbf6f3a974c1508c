package video

import (
	"encoding/json"
	"html"
	"regexp"
	"strings"
)

var (
	timedTextRe = regexp.MustCompile(`(?s)<text[^>]*>(.*?)</text>`)
	cueNumberRe = regexp.MustCompile(`^\d+$`)
)

// ParseSubtitles turns a subtitle payload into plain concatenated text. The
// platforms hand out either a JSON array of cue objects or SRT/WebVTT text;
// the format is sniffed from the body.
func ParseSubtitles(body string) string {
	trimmed := strings.TrimSpace(body)
	if strings.HasPrefix(trimmed, "[") {
		return parseJSONCues(trimmed)
	}
	return parseCueText(trimmed)
}

func parseJSONCues(body string) string {
	var cues []map[string]any
	if err := json.Unmarshal([]byte(body), &cues); err != nil {
		return ""
	}
	var parts []string
	for _, cue := range cues {
		text, _ := cue["text"].(string)
		if text == "" {
			text, _ = cue["utf8"].(string)
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// parseCueText strips SRT/WebVTT framing: the WEBVTT header, cue numbers
// and timestamp lines.
func parseCueText(body string) string {
	var parts []string
	prev := ""
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "" || line == "WEBVTT":
			continue
		case strings.HasPrefix(line, "NOTE") || strings.HasPrefix(line, "STYLE"):
			continue
		case cueNumberRe.MatchString(line):
			continue
		case strings.Contains(line, "-->"):
			continue
		case line == prev:
			// overlapping cues repeat the same text
			continue
		}
		parts = append(parts, line)
		prev = line
	}
	return strings.Join(parts, " ")
}

// ParseTimedText handles the YouTube caption formats: the json3 events
// payload and the legacy timed-text XML.
func ParseTimedText(body string) string {
	trimmed := strings.TrimSpace(body)
	if strings.HasPrefix(trimmed, "{") {
		return parseJSON3(trimmed)
	}

	var parts []string
	for _, m := range timedTextRe.FindAllStringSubmatch(trimmed, -1) {
		text := strings.TrimSpace(html.UnescapeString(m[1]))
		text = strings.ReplaceAll(text, "\n", " ")
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func parseJSON3(body string) string {
	var payload struct {
		Events []struct {
			Segs []struct {
				UTF8 string `json:"utf8"`
			} `json:"segs"`
		} `json:"events"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return ""
	}
	var b strings.Builder
	for _, ev := range payload.Events {
		for _, seg := range ev.Segs {
			b.WriteString(seg.UTF8)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
