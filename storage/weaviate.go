package storage

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/fault"
	"github.com/weaviate/weaviate/entities/models"

	"ladle/model"
)

const (
	className = "Recipe"
)

type Weaviate struct {
	client *weaviate.Client
}

func NewWeaviate(host, weaviateApiKey, openaiApiKey string) (*Weaviate, error) {
	config := weaviate.Config{
		Scheme:     "https",
		Host:       host,
		AuthConfig: auth.ApiKey{Value: weaviateApiKey},
		Headers: map[string]string{
			"X-OpenAI-Api-Key": openaiApiKey,
		},
	}

	c, err := weaviate.NewClient(config)
	if err != nil {
		return nil, err
	}

	return &Weaviate{client: c}, nil
}

func (w *Weaviate) ResetSchema() error {

	// delete old
	if err := w.client.Schema().ClassDeleter().WithClassName(className).Do(context.Background()); err != nil {
		// Weaviate will return a 400 if the class does not exist, so this is allowed, only return an error if it's not a 400
		if status, ok := err.(*fault.WeaviateClientError); ok && status.StatusCode != http.StatusBadRequest {
			return err
		}
	}

	// create new
	classObj := &models.Class{
		Class:      className,
		Vectorizer: "text2vec-openai",
		ModuleConfig: map[string]any{
			"text2vec-openai": map[string]any{
				"model":        "ada",
				"modelVersion": "002",
				"type":         "text",
			},
		},
	}

	return w.client.Schema().ClassCreator().WithClass(classObj).Do(context.Background())
}

// Save stores the parsed recipe of a finished import as a vectorized
// object, keyed by the import id so retries overwrite instead of duplicate.
func (w *Weaviate) Save(ctx context.Context, imp *model.Import) error {
	if imp.Recipe == nil {
		return fmt.Errorf("import %s has no recipe", imp.ID)
	}

	r := imp.Recipe
	ingredients := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		ingredients = append(ingredients, strings.TrimSpace(fmt.Sprintf("%s %s %s", ing.Quantity, ing.Unit, ing.Name)))
	}
	properties := map[string]any{
		"name":         r.Name,
		"description":  r.Description,
		"instructions": r.Instructions,
		"ingredients":  strings.Join(ingredients, "\n"),
		"cuisine":      r.Cuisine,
		"category":     r.Category,
		"sourceUrl":    r.SourceURL,
	}

	impID := imp.ID.String()
	// check it already exists
	exists, err := w.client.Data().
		Checker().
		WithID(impID).
		WithClassName(className).
		Do(ctx)
	if err != nil {
		return err
	}

	if exists {
		return w.client.Data().
			Updater().
			WithID(impID).
			WithClassName(className).
			WithProperties(properties).
			Do(ctx)
	}

	_, err = w.client.Data().
		Creator().
		WithClassName(className).
		WithID(impID).
		WithProperties(properties).
		Do(ctx)

	return err
}
