package ingest

import (
	"context"
	"errors"

	"golang.org/x/exp/slog"

	"ladle/extract"
	"ladle/model"
)

// ErrNoRecipe is returned when every extraction stage for a URL came up
// empty or the source turned out not to be about cooking at all.
var ErrNoRecipe = errors.New("failed to parse recipe from url")

type PageFetcher interface {
	GetString(ctx context.Context, url string) (string, error)
}

type VideoExtractor interface {
	Extract(ctx context.Context, pageURL, videoID string) (*model.VideoInfo, error)
}

type Synthesizer interface {
	FromPage(ctx context.Context, pageText, sourceURL string) (*model.ParsedRecipe, error)
	FromVideo(ctx context.Context, info *model.VideoInfo) (*model.ParsedRecipe, error)
}

// Pipeline routes a URL to the right extraction strategy and runs the
// fallback chain until one of them produces a recipe.
type Pipeline struct {
	fetcher    PageFetcher
	extractors map[model.Platform]VideoExtractor
	synth      Synthesizer
	logger     *slog.Logger
}

func NewPipeline(fetcher PageFetcher, extractors map[model.Platform]VideoExtractor, synth Synthesizer, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		extractors: extractors,
		synth:      synth,
		logger:     logger.With("package", "ingest"),
	}
}

// Ingest turns a URL into a recipe, or ErrNoRecipe when it cannot. Video
// platform URLs go through the platform extractor and then the language
// model. Everything else is treated as a web page: structured markup first,
// then the heuristic text scan, then the language model on the cleaned page
// text.
func (p *Pipeline) Ingest(ctx context.Context, url string) (*model.ParsedRecipe, error) {
	if d := Detect(url); d != nil {
		if ex, ok := p.extractors[d.Platform]; ok {
			return p.ingestVideo(ctx, url, d, ex)
		}
		p.logger.Info("no extractor configured for platform, treating as web page", "platform", d.Platform)
	}

	return p.ingestPage(ctx, url)
}

func (p *Pipeline) ingestVideo(ctx context.Context, url string, d *Detection, ex VideoExtractor) (*model.ParsedRecipe, error) {
	info, err := ex.Extract(ctx, url, d.VideoID)
	if err != nil {
		p.logger.Error("video extraction failed", "platform", d.Platform, "url", url, "error", err)
		return nil, ErrNoRecipe
	}
	if !info.HasText() {
		p.logger.Info("video has no transcript or description", "platform", d.Platform, "url", url)
		return nil, ErrNoRecipe
	}

	r, err := p.synth.FromVideo(ctx, info)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrNoRecipe
	}

	return p.finalize(r, url), nil
}

func (p *Pipeline) ingestPage(ctx context.Context, url string) (*model.ParsedRecipe, error) {
	page, err := p.fetcher.GetString(ctx, url)
	if err != nil {
		p.logger.Error("page fetch failed", "url", url, "error", err)
		return nil, ErrNoRecipe
	}

	if r := extract.FromHTML(page, url); r != nil {
		p.logger.Info("recipe found in structured markup", "url", url)
		return p.finalize(r, url), nil
	}

	if r := extract.Heuristic(page, url); r != nil {
		p.logger.Info("recipe found by heuristic scan", "url", url)
		return p.finalize(r, url), nil
	}

	r, err := p.synth.FromPage(ctx, extract.HTMLToText(page), url)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrNoRecipe
	}

	return p.finalize(r, url), nil
}

func (p *Pipeline) finalize(r *model.ParsedRecipe, url string) *model.ParsedRecipe {
	if r.SourceURL == "" {
		r.SourceURL = url
	}
	if r.CookingTime == 0 && r.Instructions != "" {
		r.CookingTime = extract.CookingTimeFromInstructions(r.Instructions)
	}
	return r
}
