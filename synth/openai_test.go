package synth

import (
	"encoding/json"
	"testing"

	"ladle/model"
)

func TestDecodeReply(t *testing.T) {
	content := `{"name": "Garlic Noodles", "instructions": ["Boil noodles.", "Toss with garlic oil."], "ingredients": [{"name": "noodles", "quantity": "200", "unit": "g"}, {"name": "garlic", "quantity": "~3", "unit": "cloves"}], "servings": 2}`
	r, err := DecodeReply(content)
	if err != nil {
		t.Fatal(err)
	}
	if r == nil {
		t.Fatal("expected a recipe")
	}
	if r.Name != "Garlic Noodles" || r.Servings != 2 {
		t.Errorf("got %+v", r)
	}
	if r.Instructions != "Boil noodles.\nToss with garlic oil." {
		t.Errorf("got instructions %q", r.Instructions)
	}
	if r.Source != model.SourceAIParsed {
		t.Errorf("got source %q", r.Source)
	}
	if len(r.Ingredients) != 2 || r.Ingredients[1].Quantity != "~3" {
		t.Errorf("got ingredients %+v", r.Ingredients)
	}
}

func TestDecodeReplySentinel(t *testing.T) {
	r, err := DecodeReply(`{"name": "NOT_A_RECIPE"}`)
	if err != nil {
		t.Fatal(err)
	}
	if r != nil {
		t.Errorf("got %+v, want nil for the sentinel", r)
	}
}

func TestDecodeReplyMissingName(t *testing.T) {
	r, err := DecodeReply(`{"description": "nameless"}`)
	if err != nil {
		t.Fatal(err)
	}
	if r != nil {
		t.Errorf("got %+v, want nil without a name", r)
	}
}

func TestDecodeReplyMalformed(t *testing.T) {
	if _, err := DecodeReply(`this is not json`); err == nil {
		t.Error("expected an error")
	}
}

func TestDecodeReplyNullFields(t *testing.T) {
	content := `{"name": "Plain Rice", "description": null, "instructions": null, "cuisine": null,
"category": null, "cookingTime": null, "servings": null, "caloriesPerServing": null,
"ingredients": [{"name": "rice", "quantity": null, "unit": null}]}`
	r, err := DecodeReply(content)
	if err != nil {
		t.Fatal(err)
	}
	if r == nil || r.Name != "Plain Rice" {
		t.Fatalf("got %+v", r)
	}
	if r.Instructions != "" || r.CookingTime != 0 {
		t.Errorf("got %+v", r)
	}
	if len(r.Ingredients) != 1 || r.Ingredients[0].Name != "rice" || r.Ingredients[0].Quantity != "" {
		t.Errorf("got ingredients %+v", r.Ingredients)
	}
}

// Strict structured outputs rejects schemas where an object allows
// additional properties or leaves a declared property out of required.
func TestRecipeSchemaStrict(t *testing.T) {
	var schema map[string]any
	if err := json.Unmarshal(recipeSchema, &schema); err != nil {
		t.Fatal(err)
	}
	checkStrictObject(t, "recipe", schema)
}

func checkStrictObject(t *testing.T, name string, node map[string]any) {
	t.Helper()
	props, ok := node["properties"].(map[string]any)
	if !ok {
		return
	}
	if ap, ok := node["additionalProperties"].(bool); !ok || ap {
		t.Errorf("%s: additionalProperties must be false", name)
	}
	required := map[string]bool{}
	if list, ok := node["required"].([]any); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				required[s] = true
			}
		}
	}
	if len(required) != len(props) {
		t.Errorf("%s: required lists %d keys, properties has %d", name, len(required), len(props))
	}
	for key, raw := range props {
		if !required[key] {
			t.Errorf("%s: property %q is not listed as required", name, key)
		}
		prop, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if items, ok := prop["items"].(map[string]any); ok {
			checkStrictObject(t, name+"."+key+".items", items)
		}
	}
}

func TestDecodeReplyFenced(t *testing.T) {
	r, err := DecodeReply("```json\n{\"name\": \"Fenced Salad\"}\n```")
	if err != nil {
		t.Fatal(err)
	}
	if r == nil || r.Name != "Fenced Salad" {
		t.Errorf("got %+v", r)
	}
}
