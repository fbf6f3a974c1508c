package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"ladle/model"
)

var ErrNotFound = errors.New("not found")

type ImportRepository interface {
	Save(imp *model.Import) error
	FindAll() ([]*model.Import, error)
	FindOne(id uuid.UUID) (*model.Import, error)
}

type RecipeVecRepository interface {
	Save(ctx context.Context, imp *model.Import) error
}
