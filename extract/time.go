package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var instructionTimeRe = regexp.MustCompile(`(?i)(?:bake|cook|roast|grill|simmer|microwave)\s+for\s+(\d+)(?:\s*(?:-|–|to)\s*(\d+))?\s*(minutes?|mins?|min|hours?|hrs?|hr)`)

// CookingTimeFromInstructions scans free-text instructions for explicit
// cooking durations ("bake for 25 minutes", "simmer for 1-2 hours") and
// returns the largest one in minutes. A range counts as its upper bound.
// Returns 0 when no duration is mentioned.
func CookingTimeFromInstructions(text string) int {
	best := 0
	for _, m := range instructionTimeRe.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if m[2] != "" {
			if upper, err := strconv.Atoi(m[2]); err == nil && upper > n {
				n = upper
			}
		}
		if strings.HasPrefix(strings.ToLower(m[3]), "h") {
			n *= 60
		}
		if n > best {
			best = n
		}
	}
	return best
}
