package extract

import (
	"fmt"
	"testing"

	"ladle/model"
)

func page(ld string) string {
	return fmt.Sprintf(`<html><head><script type="application/ld+json">%s</script></head><body></body></html>`, ld)
}

func TestFromHTMLInstructionsArray(t *testing.T) {
	r := FromHTML(page(`{"@type":"Recipe","name":"Pancakes","recipeInstructions":["Step 1","Step 2"]}`), "https://example.com/r")
	if r == nil {
		t.Fatal("expected a recipe")
	}
	if r.Instructions != "Step 1\nStep 2" {
		t.Errorf("got instructions %q", r.Instructions)
	}
	if r.Source != model.SourceURLImport {
		t.Errorf("got source %q", r.Source)
	}
	if r.SourceURL != "https://example.com/r" {
		t.Errorf("got sourceUrl %q", r.SourceURL)
	}
}

func TestFromHTMLInstructionShapes(t *testing.T) {
	for name, tc := range map[string]struct {
		instructions string
		want         string
	}{
		"plain string":     {`"Boil water."`, "Boil water."},
		"object with text": {`{"@type":"HowToStep","text":"Mix well."}`, "Mix well."},
		"objects with text": {
			`[{"@type":"HowToStep","text":"Chop."},{"@type":"HowToStep","text":"Fry."}]`,
			"Chop.\nFry.",
		},
		"section list": {
			`[{"@type":"HowToSection","itemListElement":[{"text":"Knead."},{"text":"Rest."}]}]`,
			"Knead.\nRest.",
		},
	} {
		t.Run(name, func(t *testing.T) {
			r := FromHTML(page(`{"@type":"Recipe","name":"X","recipeInstructions":`+tc.instructions+`}`), "u")
			if r == nil {
				t.Fatal("expected a recipe")
			}
			if r.Instructions != tc.want {
				t.Errorf("got %q, want %q", r.Instructions, tc.want)
			}
		})
	}
}

func TestFromHTMLGraphNesting(t *testing.T) {
	ld := `{"@context":"https://schema.org","@graph":[{"@type":"WebPage","name":"ignored"},{"@type":["Thing","Recipe"],"name":"Buried Stew"}]}`
	r := FromHTML(page(ld), "u")
	if r == nil || r.Name != "Buried Stew" {
		t.Fatalf("got %+v", r)
	}
}

func TestFromHTMLCommentWrapped(t *testing.T) {
	r := FromHTML(page(`<!--{"@type":"Recipe","name":"Wrapped"}-->`), "u")
	if r == nil || r.Name != "Wrapped" {
		t.Fatalf("got %+v", r)
	}
}

func TestFromHTMLEmptyNameFallsThrough(t *testing.T) {
	body := page(`{"@type":"Recipe","name":""}`) +
		`<script type="application/ld+json">{"@type":"Recipe","name":"Second Block"}</script>`
	r := FromHTML(body, "u")
	if r == nil || r.Name != "Second Block" {
		t.Fatalf("got %+v", r)
	}

	if r := FromHTML(page(`{"@type":"Recipe","name":"  "}`), "u"); r != nil {
		t.Errorf("expected nil for blank name, got %+v", r)
	}
}

func TestDurationMinutes(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want int
	}{
		{"PT1H20M", 80},
		{"PT45M30S", 46},
		{"PT45M29S", 45},
		{"PT2H", 120},
		{"35 min", 35},
		{"garbage", 0},
		{"", 0},
	} {
		if got := durationMinutes(tc.in); got != tc.want {
			t.Errorf("durationMinutes(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}

	// totalTime wins over cookTime
	if got := durationMinutes("PT30M", "PT10M"); got != 30 {
		t.Errorf("got %d, want 30", got)
	}
	// empty totalTime falls through
	if got := durationMinutes("", "PT10M"); got != 10 {
		t.Errorf("got %d, want 10", got)
	}
}

func TestTokenizeIngredient(t *testing.T) {
	for _, tc := range []struct {
		line string
		want model.ParsedIngredient
	}{
		{"2 cups flour", model.ParsedIngredient{Quantity: "2", Unit: "cups", Name: "flour"}},
		{"salt", model.ParsedIngredient{Name: "salt"}},
		{"1/2 tsp baking soda", model.ParsedIngredient{Quantity: "1/2", Unit: "tsp", Name: "baking soda"}},
		{"", model.ParsedIngredient{}},
	} {
		if got := TokenizeIngredient(tc.line); got != tc.want {
			t.Errorf("TokenizeIngredient(%q) = %+v, want %+v", tc.line, got, tc.want)
		}
	}
}

func TestFromHTMLFullRecipe(t *testing.T) {
	ld := `{
		"@type": "Recipe",
		"name": "Test Soup",
		"description": "A soup.",
		"image": [{"url": "https://example.com/soup.jpg"}],
		"recipeCategory": ["Dinner", "Soup"],
		"recipeCuisine": "French",
		"totalTime": "PT45M30S",
		"recipeYield": "4 servings",
		"nutrition": {"@type": "NutritionInformation", "calories": "320 kcal"},
		"recipeIngredient": ["1 cup water", "salt"],
		"recipeInstructions": "Boil water."
	}`
	r := FromHTML(page(ld), "https://example.com/recipe")
	if r == nil {
		t.Fatal("expected a recipe")
	}
	if r.Name != "Test Soup" || r.Description != "A soup." {
		t.Errorf("got %q / %q", r.Name, r.Description)
	}
	if r.ImageURL != "https://example.com/soup.jpg" {
		t.Errorf("got image %q", r.ImageURL)
	}
	if r.Category != "Dinner\nSoup" || r.Cuisine != "French" {
		t.Errorf("got category %q cuisine %q", r.Category, r.Cuisine)
	}
	if r.CookingTime != 46 || r.Servings != 4 || r.CaloriesPerServing != 320 {
		t.Errorf("got time %d servings %d calories %d", r.CookingTime, r.Servings, r.CaloriesPerServing)
	}
	want := []model.ParsedIngredient{
		{Quantity: "1", Unit: "cup", Name: "water"},
		{Name: "salt"},
	}
	if len(r.Ingredients) != len(want) {
		t.Fatalf("got %d ingredients", len(r.Ingredients))
	}
	for i := range want {
		if r.Ingredients[i] != want[i] {
			t.Errorf("ingredient %d = %+v, want %+v", i, r.Ingredients[i], want[i])
		}
	}
}

func TestFromHTMLNoRecipe(t *testing.T) {
	if r := FromHTML(`<html><body><p>Nothing here</p></body></html>`, "u"); r != nil {
		t.Errorf("got %+v, want nil", r)
	}
	if r := FromHTML(page(`{"@type":"Article","name":"Not food"}`), "u"); r != nil {
		t.Errorf("got %+v, want nil", r)
	}
	if r := FromHTML(page(`not even json`), "u"); r != nil {
		t.Errorf("got %+v, want nil", r)
	}
}
