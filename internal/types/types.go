package types

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ResourceType classifies an educational resource
type ResourceType string

const (
	TypeVideo         ResourceType = "video"
	TypeCourse        ResourceType = "course"
	TypeDocumentation ResourceType = "documentation"
	TypeTool          ResourceType = "tool"
	TypeBook          ResourceType = "book"
	TypeArticle       ResourceType = "article"
)

// IsValid checks if the resource type is one of the canonical values
func (t ResourceType) IsValid() bool {
	switch t {
	case TypeVideo, TypeCourse, TypeDocumentation, TypeTool, TypeBook, TypeArticle:
		return true
	default:
		return false
	}
}

// typeSynonyms maps free-text provider labels to canonical resource types.
// Providers are prompted for a fixed vocabulary but routinely drift from it,
// so the table carries the observed variants too.
var typeSynonyms = map[string]ResourceType{
	"video":         TypeVideo,
	"videos":        TypeVideo,
	"youtube_video": TypeVideo,
	"course":        TypeCourse,
	"courses":       TypeCourse,
	"online_course": TypeCourse,
	"certification": TypeCourse,
	"documentation": TypeDocumentation,
	"docs":          TypeDocumentation,
	"guide":         TypeDocumentation,
	"tool":          TypeTool,
	"tools":         TypeTool,
	"software":      TypeTool,
	"book":          TypeBook,
	"ebook":         TypeBook,
	"books":         TypeBook,
	"article":       TypeArticle,
}

// NormalizeResourceType maps a free-text provider label to a canonical
// ResourceType. Unrecognized labels map to article. Normalizing an
// already-canonical value returns it unchanged.
func NormalizeResourceType(label string) ResourceType {
	if t, ok := typeSynonyms[strings.ToLower(strings.TrimSpace(label))]; ok {
		return t
	}
	return TypeArticle
}

// knownPlatforms maps URL host substrings to platform names
var knownPlatforms = []struct {
	hostPart string
	platform string
}{
	{"youtube.com", "youtube"},
	{"youtu.be", "youtube"},
	{"coursera.org", "coursera"},
	{"edx.org", "edx"},
	{"udemy.com", "udemy"},
	{"github.com", "github"},
	{"medium.com", "medium"},
}

// PlatformFromURL derives a source platform name from a resource URL.
// Unknown hosts fall back to the bare host (leading "www." stripped);
// missing or unparsable URLs yield "unknown".
func PlatformFromURL(rawURL string) string {
	if rawURL == "" {
		return "unknown"
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}

	host := strings.ToLower(u.Hostname())
	for _, p := range knownPlatforms {
		if strings.Contains(host, p.hostPart) {
			return p.platform
		}
	}
	if strings.HasPrefix(host, "docs.") {
		return "documentation"
	}
	return strings.TrimPrefix(host, "www.")
}

// GuessTypeFromURL infers a resource type from the URL alone.
// Used by the fallback parser when the provider response carries no
// structured type field.
func GuessTypeFromURL(rawURL string) ResourceType {
	lower := strings.ToLower(rawURL)
	switch {
	case strings.Contains(lower, "youtube.com") || strings.Contains(lower, "youtu.be"):
		return TypeVideo
	case strings.Contains(lower, "coursera") || strings.Contains(lower, "edx") || strings.Contains(lower, "udemy"):
		return TypeCourse
	case strings.Contains(lower, "github.com"):
		return TypeTool
	case strings.Contains(lower, "docs") || strings.Contains(lower, "documentation") || strings.Contains(lower, "guide"):
		return TypeDocumentation
	default:
		return TypeArticle
	}
}

// DiscoveredResource is a single educational resource extracted from a
// search provider response. It is constructed by the parser and never
// mutated after scoring.
type DiscoveredResource struct {
	Title           string       `json:"title"`
	URL             string       `json:"url"`
	Description     string       `json:"description"`
	ResourceType    ResourceType `json:"resource_type"`
	DurationMinutes *int         `json:"duration_minutes,omitempty"`
	Author          string       `json:"author,omitempty"`
	SourcePlatform  string       `json:"source_platform"`
	Keywords        []string     `json:"keywords,omitempty"`
	RawContent      string       `json:"-"`
}

// Validate checks the invariants a resource must satisfy before it can be
// surfaced to a caller
func (r *DiscoveredResource) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(r.URL) == "" {
		return fmt.Errorf("url is required")
	}
	return nil
}

// ScoredResource pairs a discovered resource with its quality score and
// the timestamp of the discovery run that produced it.
type ScoredResource struct {
	Resource     DiscoveredResource `json:"resource"`
	QualityScore float64            `json:"quality_score"`
	DiscoveredAt time.Time          `json:"discovered_at"`
}

// ClampScore bounds a quality score to [0.0, 1.0]
func ClampScore(score float64) float64 {
	if score < 0.0 {
		return 0.0
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}
