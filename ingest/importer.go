package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"ladle/model"
	"ladle/storage"
)

// Importer runs the pipeline for a URL and records the outcome, so failed
// imports are visible to the user instead of silently dropped.
type Importer struct {
	pipeline *Pipeline
	repo     storage.ImportRepository
	vecRepo  storage.RecipeVecRepository
	logger   *slog.Logger
}

// NewImporter wires the pipeline to its repositories. vecRepo may be nil,
// vector storage is optional.
func NewImporter(pipeline *Pipeline, repo storage.ImportRepository, vecRepo storage.RecipeVecRepository, logger *slog.Logger) *Importer {
	return &Importer{
		pipeline: pipeline,
		repo:     repo,
		vecRepo:  vecRepo,
		logger:   logger.With("package", "ingest"),
	}
}

// Import ingests the URL and persists the result. The returned import
// carries the recipe on success and the failure reason otherwise; the error
// return is reserved for storage trouble.
func (i *Importer) Import(ctx context.Context, url string) (*model.Import, error) {
	imp := &model.Import{
		ID:        uuid.New(),
		URL:       url,
		CreatedAt: time.Now().UTC(),
	}

	recipe, err := i.pipeline.Ingest(ctx, url)
	switch {
	case err != nil:
		imp.Status = model.ImportStatusFailed
		imp.Error = err.Error()
		i.logger.Info("import failed", "url", url, "error", err)
	default:
		imp.Status = model.ImportStatusDone
		imp.Recipe = recipe
		i.logger.Info("import done", "url", url, "recipe", recipe.Name)
	}

	if err := i.repo.Save(imp); err != nil {
		return nil, err
	}

	if imp.Status == model.ImportStatusDone && i.vecRepo != nil {
		if err := i.vecRepo.Save(ctx, imp); err != nil {
			i.logger.Error("failed to save recipe in vector db", "id", imp.ID.String(), "error", err)
		}
	}

	return imp, nil
}
