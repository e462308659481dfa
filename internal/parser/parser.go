// Package parser converts raw search provider text into discovered
// resources. Providers are prompted for a JSON envelope but compliance is
// not guaranteed, so parsing runs in two tiers: a structured parse of the
// first JSON object in the text, then a regex fallback that extracts URLs
// and nearby titles. The fallback trades precision for coverage; it exists
// so a sloppy provider response degrades to "something usable" instead of
// nothing.
package parser

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/aihorizon/eduscout/internal/types"
)

// Pre-compiled regular expressions. Compiling per parse is far slower than
// reusing package-level patterns.
var (
	// Greedy to capture nested structures; the envelope is the outermost
	// object in the response.
	objectRegex = regexp.MustCompile(`(?s)\{.*\}`)

	// Code fence wrapper some providers add around the envelope
	codeFenceRegex = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

	// URL pattern for the fallback tier. The trailing class strips
	// sentence punctuation that rides along with URLs in prose.
	urlRegex = regexp.MustCompile(`https?://[^\s<>"{}|\\^` + "`" + `\[\]]+[^\s<>"{}|\\^` + "`" + `\[\].,;:!?]`)

	quotedTitleRegex       = regexp.MustCompile(`"([^"]+)"`)
	capitalizedPhraseRegex = regexp.MustCompile(`([A-Z][a-zA-Z\s]+)`)
)

// fallbackCap bounds the fallback tier's output. The structured tier is
// already bounded by the provider's token limit; free-text scanning is not,
// so degenerate input gets cut off here.
const fallbackCap = 10

// fallbackTitle is used when no plausible title precedes a URL
const fallbackTitle = "Educational Resource"

// titleLookback is how far before a URL the fallback tier searches for a title
const titleLookback = 200

// Result holds parsed candidates plus a flag recording whether the
// structured tier failed and the fallback produced them. Degraded parses
// are a quality signal, not an error.
type Result struct {
	Candidates []types.DiscoveredResource
	Degraded   bool
}

// Parse extracts resource candidates from raw provider text. It never
// returns an error: a response with no extractable resources yields an
// empty candidate list.
func Parse(raw, topic string) Result {
	if candidates, ok := parseStructured(raw, topic); ok {
		return Result{Candidates: candidates}
	}
	return Result{Candidates: parseFallback(raw, topic), Degraded: true}
}

// envelope is the JSON shape requested from the provider. Items are kept as
// loose maps because providers drift from the schema; every field access
// goes through a typed getter with an explicit default.
type envelope struct {
	Resources []map[string]any `json:"resources"`
}

// parseStructured attempts the tier-1 parse. ok is false when no JSON
// object could be located or decoded; per-item problems only drop the item.
func parseStructured(raw, topic string) ([]types.DiscoveredResource, bool) {
	text := raw
	if m := codeFenceRegex.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	match := objectRegex.FindString(text)
	if match == "" {
		return nil, false
	}

	var env envelope
	if err := json.Unmarshal([]byte(match), &env); err != nil {
		return nil, false
	}

	candidates := make([]types.DiscoveredResource, 0, len(env.Resources))
	for _, item := range env.Resources {
		title := getString(item, "title")
		rawURL := getString(item, "url")
		if title == "" || rawURL == "" {
			continue
		}

		candidates = append(candidates, types.DiscoveredResource{
			Title:           title,
			URL:             rawURL,
			Description:     getString(item, "description"),
			ResourceType:    types.NormalizeResourceType(getString(item, "resource_type")),
			DurationMinutes: getMinutes(item, "duration_minutes"),
			Author:          getString(item, "author"),
			SourcePlatform:  types.PlatformFromURL(rawURL),
			Keywords:        append(getStringSlice(item, "keywords"), topic),
			RawContent:      raw,
		})
	}

	return candidates, true
}

// parseFallback is the tier-2 regex scan: find URLs, then look backward for
// something title-shaped.
func parseFallback(raw, topic string) []types.DiscoveredResource {
	urls := urlRegex.FindAllString(raw, -1)

	candidates := make([]types.DiscoveredResource, 0, len(urls))
	for _, u := range urls {
		if len(candidates) >= fallbackCap {
			break
		}

		idx := strings.Index(raw, u)
		if idx < 0 {
			continue
		}

		start := idx - titleLookback
		if start < 0 {
			start = 0
		}
		title := extractTitle(raw[start:idx])

		candidates = append(candidates, types.DiscoveredResource{
			Title:          title,
			URL:            u,
			Description:    "Educational resource for " + topic,
			ResourceType:   types.GuessTypeFromURL(u),
			SourcePlatform: types.PlatformFromURL(u),
			Keywords:       []string{topic},
			RawContent:     raw,
		})
	}

	return candidates
}

// extractTitle picks the most title-like fragment from the text preceding a
// URL: last quoted string first, then the last capitalized phrase.
func extractTitle(preceding string) string {
	if matches := quotedTitleRegex.FindAllStringSubmatch(preceding, -1); len(matches) > 0 {
		if title := strings.TrimSpace(matches[len(matches)-1][1]); title != "" {
			return title
		}
	}
	if matches := capitalizedPhraseRegex.FindAllStringSubmatch(preceding, -1); len(matches) > 0 {
		if title := strings.TrimSpace(matches[len(matches)-1][1]); title != "" {
			return title
		}
	}
	return fallbackTitle
}

func getString(item map[string]any, key string) string {
	if v, ok := item[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func getStringSlice(item map[string]any, key string) []string {
	raw, ok := item[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// getMinutes coerces the duration field, which providers send as a number,
// a numeric string, or null.
func getMinutes(item map[string]any, key string) *int {
	switch v := item[key].(type) {
	case float64:
		if v < 0 {
			return nil
		}
		m := int(v)
		return &m
	case string:
		var m int
		if err := json.Unmarshal([]byte(strings.TrimSpace(v)), &m); err == nil && m >= 0 {
			return &m
		}
	}
	return nil
}
