package video

import "testing"

func TestParseSubtitlesSRT(t *testing.T) {
	srt := `1
00:00:01,000 --> 00:00:03,000
First add the garlic

2
00:00:03,500 --> 00:00:06,000
then the onions
`
	if got := ParseSubtitles(srt); got != "First add the garlic then the onions" {
		t.Errorf("got %q", got)
	}
}

func TestParseSubtitlesWebVTT(t *testing.T) {
	vtt := `WEBVTT

00:01.000 --> 00:03.000
Heat the pan

00:03.000 --> 00:05.000
Heat the pan

00:05.000 --> 00:08.000
add the butter
`
	if got := ParseSubtitles(vtt); got != "Heat the pan add the butter" {
		t.Errorf("got %q", got)
	}
}

func TestParseSubtitlesJSONArray(t *testing.T) {
	body := `[{"from":0,"to":2,"text":"Whisk the eggs"},{"from":2,"to":4,"text":"season well"}]`
	if got := ParseSubtitles(body); got != "Whisk the eggs season well" {
		t.Errorf("got %q", got)
	}
	if got := ParseSubtitles(`[not json`); got != "" {
		t.Errorf("got %q for malformed input", got)
	}
}

func TestParseTimedTextXML(t *testing.T) {
	xml := `<?xml version="1.0" encoding="utf-8"?><transcript>` +
		`<text start="0" dur="2">today we&#39;re making</text>` +
		`<text start="2" dur="3">a quick pasta</text></transcript>`
	if got := ParseTimedText(xml); got != "today we're making a quick pasta" {
		t.Errorf("got %q", got)
	}
}

func TestParseTimedTextJSON3(t *testing.T) {
	body := `{"events":[{"segs":[{"utf8":"today we"},{"utf8":"'re making"}]},{"segs":[{"utf8":" soup"}]}]}`
	if got := ParseTimedText(body); got != "today we're making soup" {
		t.Errorf("got %q", got)
	}
}
