package scoring

import (
	"context"
	"strings"

	"github.com/aihorizon/eduscout/internal/types"
)

// Heuristic blend weights
const (
	platformWeight  = 0.4
	relevanceWeight = 0.3
	typeWeight      = 0.3
)

// platformCredibility scores known platforms; unknown hosts get the low default
var platformCredibility = map[string]float64{
	"youtube":       0.7,
	"coursera":      0.9,
	"edx":           0.9,
	"udemy":         0.8,
	"github":        0.8,
	"documentation": 0.9,
}

const defaultPlatformScore = 0.5

// typePriors encodes a preference for structured learning material over prose
var typePriors = map[types.ResourceType]float64{
	types.TypeCourse:        0.9,
	types.TypeDocumentation: 0.8,
	types.TypeTool:          0.8,
	types.TypeVideo:         0.7,
	types.TypeArticle:       0.6,
	types.TypeBook:          0.6,
}

const defaultTypeScore = 0.5

// HeuristicScorer is the terminal scoring tier. It needs no network and
// never fails, so the chain always terminates with a usable score.
type HeuristicScorer struct{}

// NewHeuristicScorer creates the deterministic fallback tier
func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{}
}

func (s *HeuristicScorer) Name() string { return "heuristic" }

// Score blends platform credibility, title/topic lexical overlap, and a
// resource-type prior.
func (s *HeuristicScorer) Score(_ context.Context, resource *types.DiscoveredResource, topic string) (float64, error) {
	platformScore, ok := platformCredibility[resource.SourcePlatform]
	if !ok {
		platformScore = defaultPlatformScore
	}

	typeScore, ok := typePriors[resource.ResourceType]
	if !ok {
		typeScore = defaultTypeScore
	}

	relevance := titleRelevance(resource.Title, topic)

	score := platformScore*platformWeight + relevance*relevanceWeight + typeScore*typeWeight
	return types.ClampScore(score), nil
}

// titleRelevance is the fraction of topic words appearing as substrings of
// any title word.
func titleRelevance(title, topic string) float64 {
	topicWords := strings.Fields(strings.ToLower(topic))
	if len(topicWords) == 0 {
		return 0
	}
	titleWords := strings.Fields(strings.ToLower(title))

	matched := 0
	for _, tw := range topicWords {
		for _, word := range titleWords {
			if strings.Contains(word, tw) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(topicWords))
}
