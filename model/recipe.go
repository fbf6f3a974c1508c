package model

import (
	"time"

	"github.com/google/uuid"
)

// Provenance tags for parsed recipes.
const (
	SourceURLImport = "url_import"
	SourceAIParsed  = "AI Parsed"
)

// ParsedRecipe is the output of the ingestion pipeline. It is a transient
// value with no identity of its own; an id and owner are assigned on save.
type ParsedRecipe struct {
	Name               string             `json:"name"`
	Description        string             `json:"description,omitempty"`
	Instructions       string             `json:"instructions,omitempty"`
	ImageURL           string             `json:"imageUrl,omitempty"`
	Cuisine            string             `json:"cuisine,omitempty"`
	Category           string             `json:"category,omitempty"`
	CookingTime        int                `json:"cookingTime,omitempty"`
	Servings           int                `json:"servings,omitempty"`
	CaloriesPerServing int                `json:"caloriesPerServing,omitempty"`
	SourceURL          string             `json:"sourceUrl,omitempty"`
	Source             string             `json:"source,omitempty"`
	Ingredients        []ParsedIngredient `json:"ingredients,omitempty"`
}

// ParsedIngredient carries quantity and unit as scraped, without any
// normalization or unit conversion.
type ParsedIngredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
	Unit     string `json:"unit,omitempty"`
}

type ImportStatus string

const (
	ImportStatusDone   ImportStatus = "done"
	ImportStatusFailed ImportStatus = "failed"
)

// Import is the persisted record of one ingestion attempt.
type Import struct {
	ID        uuid.UUID     `json:"id"`
	URL       string        `json:"url"`
	Status    ImportStatus  `json:"status"`
	Recipe    *ParsedRecipe `json:"recipe,omitempty"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}
