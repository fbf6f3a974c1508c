package ingest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/exp/slog"

	"ladle/fetch"
	"ladle/model"
)

type stubSynth struct {
	pageCalls  int
	videoCalls int
	pageReply  *model.ParsedRecipe
	videoReply *model.ParsedRecipe
	err        error
}

func (s *stubSynth) FromPage(_ context.Context, _, sourceURL string) (*model.ParsedRecipe, error) {
	s.pageCalls++
	if s.pageReply != nil {
		s.pageReply.SourceURL = sourceURL
	}
	return s.pageReply, s.err
}

func (s *stubSynth) FromVideo(_ context.Context, info *model.VideoInfo) (*model.ParsedRecipe, error) {
	s.videoCalls++
	if s.videoReply != nil {
		s.videoReply.SourceURL = info.URL
	}
	return s.videoReply, s.err
}

type stubVideoExtractor struct {
	info *model.VideoInfo
	err  error
}

func (s *stubVideoExtractor) Extract(_ context.Context, _, _ string) (*model.VideoInfo, error) {
	return s.info, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard))
}

func TestIngestStructuredMarkup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html><head><title>Test Soup | My Blog</title>
<script type="application/ld+json">{"@context": "https://schema.org", "@type": "Recipe",
"name": "Test Soup", "totalTime": "PT45M", "recipeYield": "4 servings",
"recipeIngredient": ["2 cups stock", "salt"],
"recipeInstructions": ["Simmer the stock.", "Season with salt."]}</script>
</head><body><h1>Test Soup</h1></body></html>`)
	}))
	defer srv.Close()

	synth := &stubSynth{}
	p := NewPipeline(fetch.NewClient(0), nil, synth, discardLogger())

	r, err := p.Ingest(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if r.Name != "Test Soup" {
		t.Errorf("got name %q", r.Name)
	}
	if r.CookingTime != 45 {
		t.Errorf("got cooking time %d", r.CookingTime)
	}
	if r.Servings != 4 {
		t.Errorf("got servings %d", r.Servings)
	}
	if r.Instructions != "Simmer the stock.\nSeason with salt." {
		t.Errorf("got instructions %q", r.Instructions)
	}
	if len(r.Ingredients) != 2 || r.Ingredients[0].Name != "stock" {
		t.Errorf("got ingredients %+v", r.Ingredients)
	}
	if r.SourceURL != srv.URL {
		t.Errorf("got source url %q", r.SourceURL)
	}
	if synth.pageCalls != 0 || synth.videoCalls != 0 {
		t.Errorf("synthesizer was called %d/%d times", synth.pageCalls, synth.videoCalls)
	}
}

func TestIngestNothingFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html><body><p>Some prose about a hiking trip. No food here.</p></body></html>`)
	}))
	defer srv.Close()

	synth := &stubSynth{} // nil reply, the sentinel case
	p := NewPipeline(fetch.NewClient(0), nil, synth, discardLogger())

	r, err := p.Ingest(context.Background(), srv.URL)
	if !errors.Is(err, ErrNoRecipe) {
		t.Errorf("got err %v, want ErrNoRecipe", err)
	}
	if r != nil {
		t.Errorf("got %+v, want nil", r)
	}
	if synth.pageCalls != 1 {
		t.Errorf("synthesizer page calls = %d, want 1", synth.pageCalls)
	}
}

func TestIngestHeuristicFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html><head><title>Pan Bread</title></head><body>
<h2>Ingredients</h2><ul><li>2 cups flour</li><li>1 cup water</li></ul>
<h2>Instructions</h2><ol><li>Mix everything.</li><li>Cook for 10 minutes per side.</li></ol>
</body></html>`)
	}))
	defer srv.Close()

	synth := &stubSynth{}
	p := NewPipeline(fetch.NewClient(0), nil, synth, discardLogger())

	r, err := p.Ingest(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if r.Name != "Pan Bread" {
		t.Errorf("got name %q", r.Name)
	}
	if len(r.Ingredients) != 2 {
		t.Errorf("got ingredients %+v", r.Ingredients)
	}
	if r.CookingTime != 10 {
		t.Errorf("got cooking time %d", r.CookingTime)
	}
	if synth.pageCalls != 0 {
		t.Errorf("synthesizer page calls = %d, want 0", synth.pageCalls)
	}
}

func TestIngestVideo(t *testing.T) {
	synth := &stubSynth{videoReply: &model.ParsedRecipe{
		Name:         "Ramen at Home",
		Instructions: "Boil broth.\nSimmer for 20 minutes.",
		Source:       model.SourceAIParsed,
	}}
	extractors := map[model.Platform]VideoExtractor{
		model.PlatformYouTube: &stubVideoExtractor{info: &model.VideoInfo{
			Platform:   model.PlatformYouTube,
			VideoID:    "dQw4w9WgXcQ",
			Title:      "Ramen at Home",
			Transcript: "today we make ramen",
		}},
	}
	p := NewPipeline(nil, extractors, synth, discardLogger())

	url := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	r, err := p.Ingest(context.Background(), url)
	if err != nil {
		t.Fatal(err)
	}
	if r.Name != "Ramen at Home" {
		t.Errorf("got name %q", r.Name)
	}
	if r.SourceURL != url {
		t.Errorf("got source url %q", r.SourceURL)
	}
	if r.CookingTime != 20 {
		t.Errorf("got cooking time %d", r.CookingTime)
	}
	if synth.videoCalls != 1 || synth.pageCalls != 0 {
		t.Errorf("synthesizer calls = %d/%d", synth.videoCalls, synth.pageCalls)
	}
}

func TestIngestVideoWithoutText(t *testing.T) {
	synth := &stubSynth{}
	extractors := map[model.Platform]VideoExtractor{
		model.PlatformTikTok: &stubVideoExtractor{info: &model.VideoInfo{
			Platform: model.PlatformTikTok,
			VideoID:  "123",
			Title:    "untitled clip",
		}},
	}
	p := NewPipeline(nil, extractors, synth, discardLogger())

	_, err := p.Ingest(context.Background(), "https://www.tiktok.com/@someone/video/123")
	if !errors.Is(err, ErrNoRecipe) {
		t.Errorf("got err %v, want ErrNoRecipe", err)
	}
	if synth.videoCalls != 0 {
		t.Errorf("synthesizer video calls = %d, want 0", synth.videoCalls)
	}
}

func TestIngestVideoExtractorError(t *testing.T) {
	extractors := map[model.Platform]VideoExtractor{
		model.PlatformYouTube: &stubVideoExtractor{err: errors.New("blocked")},
	}
	p := NewPipeline(nil, extractors, &stubSynth{}, discardLogger())

	_, err := p.Ingest(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if !errors.Is(err, ErrNoRecipe) {
		t.Errorf("got err %v, want ErrNoRecipe", err)
	}
}
