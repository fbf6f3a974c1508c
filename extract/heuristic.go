package extract

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ladle/model"
)

var (
	scriptStyleRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	blockCloseRe  = regexp.MustCompile(`(?i)</(p|div|li|ul|ol|h[1-6]|tr|table|section|article|blockquote)>`)
	lineBreakRe   = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	anyTagRe      = regexp.MustCompile(`(?s)<[^>]+>`)
	multiSpaceRe  = regexp.MustCompile(`[ \t]+`)

	ingredientsAnchorRe  = regexp.MustCompile(`(?i)ingredients?`)
	instructionsAnchorRe = regexp.MustCompile(`(?i)(preparation|directions|steps|method|instructions)`)

	looseTimeRe = regexp.MustCompile(`(?i)(\d+)\s*(minutes|mins|min|hours|hrs|hr)`)
	servesRe    = regexp.MustCompile(`(?i)serves?\s*(\d+)`)
	yieldRe     = regexp.MustCompile(`(?i)yield[:\s]+(\d+)`)
)

// Heuristic is the fallback for pages without structured markup. It strips
// the page to flat text, slices out the ingredients and preparation sections
// by keyword anchors and line-splits them. Returns nil when it found neither
// a title, ingredients, nor steps.
func Heuristic(page, sourceURL string) *model.ParsedRecipe {
	text := HTMLToText(page)
	title := pageTitle(page)

	ingredients := sectionLines(text, ingredientsAnchorRe, instructionsAnchorRe)
	steps := sectionLines(text, instructionsAnchorRe, ingredientsAnchorRe)

	if title == "" && len(ingredients) == 0 && len(steps) == 0 {
		return nil
	}

	r := &model.ParsedRecipe{
		Name:         title,
		Instructions: strings.Join(steps, "\n"),
		CookingTime:  looseCookingTime(text),
		Servings:     looseServings(text),
		SourceURL:    sourceURL,
		Source:       model.SourceURLImport,
	}
	for _, line := range ingredients {
		r.Ingredients = append(r.Ingredients, TokenizeIngredient(line))
	}

	return r
}

// HTMLToText strips scripts and styles, turns block-level tag boundaries
// into newlines to keep rough section structure, then removes the remaining
// tags and collapses whitespace.
func HTMLToText(page string) string {
	text := scriptStyleRe.ReplaceAllString(page, "\n")
	text = blockCloseRe.ReplaceAllString(text, "\n")
	text = lineBreakRe.ReplaceAllString(text, "\n")
	text = anyTagRe.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(multiSpaceRe.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// sectionLines slices the text from the first match of anchor to the next
// match of the other section's anchor (or end of text) and splits the slice
// into cleaned lines. Lines that re-match the anchor are headers and are
// dropped.
func sectionLines(text string, anchor, otherAnchor *regexp.Regexp) []string {
	loc := anchor.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	section := text[loc[1]:]
	if end := otherAnchor.FindStringIndex(section); end != nil {
		section = section[:end[0]]
	}

	var lines []string
	for _, raw := range strings.Split(section, "\n") {
		for _, part := range splitBullets(raw) {
			part = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(part), "-"))
			if part == "" {
				continue
			}
			if anchor.MatchString(part) {
				continue
			}
			lines = append(lines, part)
		}
	}

	return lines
}

func splitBullets(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == '•' || r == '·'
	})
}

func pageTitle(page string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return ""
	}
	if v, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if v, ok := doc.Find(`meta[name="title"]`).Attr("content"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func looseCookingTime(text string) int {
	m := looseTimeRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	if strings.HasPrefix(strings.ToLower(m[2]), "h") {
		return n * 60
	}
	return n
}

func looseServings(text string) int {
	if m := servesRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if m := yieldRe.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return 0
}
