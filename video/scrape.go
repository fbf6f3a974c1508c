package video

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// extractJSONAfter locates marker in a page and returns the balanced JSON
// object or array that follows it. Embedded player blobs like
// ytInitialPlayerResponse and SIGI_STATE are assigned inline in script tags,
// so a plain regex cannot find their end; this scans brace depth with
// string and escape awareness.
func extractJSONAfter(page, marker string) string {
	idx := strings.Index(page, marker)
	if idx < 0 {
		return ""
	}
	rest := page[idx+len(marker):]
	start := strings.IndexAny(rest, "{[")
	if start < 0 {
		return ""
	}
	rest = rest[start:]

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{' || c == '[':
			depth++
		case c == '}' || c == ']':
			depth--
			if depth == 0 {
				return rest[:i+1]
			}
		}
	}

	return ""
}

var metaTagRe = `(?is)<meta[^>]+(?:property|name)=["']%s["'][^>]*content=["']([^"']*)["']`

// metaContent returns the content of an Open Graph or named meta tag.
func metaContent(page, key string) string {
	re := regexp.MustCompile(strings.Replace(metaTagRe, "%s", regexp.QuoteMeta(key), 1))
	if m := re.FindStringSubmatch(page); m != nil {
		return strings.TrimSpace(html.UnescapeString(m[1]))
	}
	return ""
}

// Defensive navigation helpers for untyped JSON from third-party markup.
// Every field is unknown until checked.

func digMap(m map[string]any, keys ...string) map[string]any {
	cur := m
	for _, key := range keys {
		next, ok := cur[key].(map[string]any)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

func digSlice(m map[string]any, keys ...string) []any {
	if len(keys) == 0 {
		return nil
	}
	parent := digMap(m, keys[:len(keys)-1]...)
	if parent == nil {
		return nil
	}
	s, _ := parent[keys[len(keys)-1]].([]any)
	return s
}

func digString(m map[string]any, keys ...string) string {
	if len(keys) == 0 {
		return ""
	}
	parent := digMap(m, keys[:len(keys)-1]...)
	if parent == nil {
		return ""
	}
	s, _ := parent[keys[len(keys)-1]].(string)
	return s
}

// digInt tolerates numbers arriving as float64 or numeric strings.
func digInt(m map[string]any, keys ...string) int {
	if len(keys) == 0 {
		return 0
	}
	parent := digMap(m, keys[:len(keys)-1]...)
	if parent == nil {
		return 0
	}
	switch v := parent[keys[len(keys)-1]].(type) {
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}
