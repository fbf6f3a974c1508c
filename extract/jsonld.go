package extract

import (
	"encoding/json"
	"html"
	"regexp"
	"strconv"
	"strings"

	"ladle/model"
)

var (
	ldJSONRe = regexp.MustCompile(`(?is)<script[^>]*type=["']application/ld\+json["'][^>]*>(.*?)</script>`)
	isoDurRe = regexp.MustCompile(`(?i)^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)
	minSufRe = regexp.MustCompile(`(?i)(\d+)\s*min`)
	firstInt = regexp.MustCompile(`\d+`)
)

// FromHTML extracts a schema.org Recipe from the JSON-LD blocks of a page.
// The first block yielding a named recipe wins; later blocks are not merged
// in. Returns nil when no block contains a usable recipe.
func FromHTML(page, sourceURL string) *model.ParsedRecipe {
	for _, m := range ldJSONRe.FindAllStringSubmatch(page, -1) {
		block := stripCommentWrapper(strings.TrimSpace(m[1]))
		var doc any
		if err := json.Unmarshal([]byte(block), &doc); err != nil {
			continue
		}
		node := findRecipeNode(doc)
		if node == nil {
			continue
		}
		if r := decodeRecipe(node, sourceURL); r != nil {
			return r
		}
	}

	return nil
}

// Some sites wrap the JSON-LD payload in a single HTML comment.
func stripCommentWrapper(block string) string {
	block = strings.TrimPrefix(block, "<!--")
	block = strings.TrimSuffix(block, "-->")
	return strings.TrimSpace(block)
}

// findRecipeNode walks a parsed JSON-LD document, including @graph arrays
// and nested arrays, and returns the first node typed as a Recipe.
func findRecipeNode(doc any) map[string]any {
	switch v := doc.(type) {
	case map[string]any:
		if isRecipeType(v["@type"]) {
			return v
		}
		if graph, ok := v["@graph"]; ok {
			if node := findRecipeNode(graph); node != nil {
				return node
			}
		}
		for _, nested := range v {
			if node := findRecipeNode(nested); node != nil {
				return node
			}
		}
	case []any:
		for _, item := range v {
			if node := findRecipeNode(item); node != nil {
				return node
			}
		}
	}

	return nil
}

func isRecipeType(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.EqualFold(t, "Recipe")
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.EqualFold(s, "Recipe") {
				return true
			}
		}
	}
	return false
}

func decodeRecipe(node map[string]any, sourceURL string) *model.ParsedRecipe {
	name := strings.TrimSpace(stringValue(node["name"]))
	if name == "" {
		// a recipe node without a name is treated as not found
		return nil
	}

	r := &model.ParsedRecipe{
		Name:               html.UnescapeString(name),
		Description:        html.UnescapeString(strings.TrimSpace(stringValue(node["description"]))),
		Instructions:       normalizeInstructions(node["recipeInstructions"]),
		ImageURL:           firstImage(node["image"]),
		Category:           joinStringOrList(node["recipeCategory"]),
		Cuisine:            joinStringOrList(node["recipeCuisine"]),
		CookingTime:        durationMinutes(node["totalTime"], node["cookTime"], node["prepTime"]),
		Servings:           parseYield(node["recipeYield"]),
		CaloriesPerServing: parseCalories(node["nutrition"]),
		SourceURL:          sourceURL,
		Source:             model.SourceURLImport,
	}

	if list, ok := node["recipeIngredient"].([]any); ok {
		for _, item := range list {
			line, ok := item.(string)
			if !ok {
				continue
			}
			ing := TokenizeIngredient(html.UnescapeString(line))
			if ing.Name == "" && ing.Quantity == "" {
				continue
			}
			r.Ingredients = append(r.Ingredients, ing)
		}
	}

	return r
}

// TokenizeIngredient splits an ingredient line as "[quantity] [unit] name".
// A single token is a bare name. This is a whitespace heuristic, not a
// unit-aware parser; lines like "a pinch of salt" misparse on purpose so
// that output stays stable for existing callers.
func TokenizeIngredient(line string) model.ParsedIngredient {
	fields := strings.Fields(line)
	switch len(fields) {
	case 0:
		return model.ParsedIngredient{}
	case 1:
		return model.ParsedIngredient{Name: fields[0]}
	default:
		return model.ParsedIngredient{
			Quantity: fields[0],
			Unit:     fields[1],
			Name:     strings.Join(fields[2:], " "),
		}
	}
}

// normalizeInstructions flattens the allowed recipeInstructions shapes
// (string, array of strings, array of objects with text, single object,
// HowToSection lists) into one newline-joined string.
func normalizeInstructions(v any) string {
	steps := instructionSteps(v)
	return strings.Join(steps, "\n")
}

func instructionSteps(v any) []string {
	var steps []string
	switch val := v.(type) {
	case string:
		if s := strings.TrimSpace(html.UnescapeString(val)); s != "" {
			steps = append(steps, s)
		}
	case []any:
		for _, item := range val {
			steps = append(steps, instructionSteps(item)...)
		}
	case map[string]any:
		if nested, ok := val["itemListElement"]; ok {
			steps = append(steps, instructionSteps(nested)...)
			break
		}
		if s := strings.TrimSpace(html.UnescapeString(stringValue(val["text"]))); s != "" {
			steps = append(steps, s)
		}
	}
	return steps
}

func firstImage(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if u := stringValue(val["url"]); u != "" {
			return u
		}
		if u := stringValue(val["@id"]); u != "" {
			return u
		}
	case []any:
		for _, item := range val {
			if u := firstImage(item); u != "" {
				return u
			}
		}
	}
	return ""
}

func joinStringOrList(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []any:
		var parts []string
		for _, item := range val {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return strings.Join(parts, "\n")
	}
	return ""
}

// durationMinutes returns the first usable duration among vals, in minutes.
// ISO-8601 PT#H#M#S forms round up when 30 or more seconds are left over;
// plain "N min" text is the fallback.
func durationMinutes(vals ...any) int {
	for _, v := range vals {
		s := strings.TrimSpace(stringValue(v))
		if s == "" {
			continue
		}
		if m := isoDurRe.FindStringSubmatch(s); m != nil {
			hours, _ := strconv.Atoi(m[1])
			minutes, _ := strconv.Atoi(m[2])
			seconds, _ := strconv.Atoi(m[3])
			total := hours*60 + minutes
			if seconds >= 30 {
				total++
			}
			if total > 0 {
				return total
			}
			continue
		}
		if m := minSufRe.FindStringSubmatch(s); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}

func parseYield(v any) int {
	switch val := v.(type) {
	case float64:
		return int(val)
	case string:
		if m := firstInt.FindString(val); m != "" {
			n, _ := strconv.Atoi(m)
			return n
		}
	case []any:
		for _, item := range val {
			if n := parseYield(item); n != 0 {
				return n
			}
		}
	}
	return 0
}

func parseCalories(v any) int {
	m, ok := v.(map[string]any)
	if !ok {
		return 0
	}
	if s := firstInt.FindString(stringValue(m["calories"])); s != "" {
		n, _ := strconv.Atoi(s)
		return n
	}
	return 0
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
