// Package scoring assigns each discovered resource a quality score in
// [0.0, 1.0]. Scorers are arranged in an ordered fallback chain: an LLM
// provider when configured, then a deterministic heuristic that needs no
// network. A resource's scoring failure is isolated; the chain never
// returns an error for a resource, it degrades.
package scoring

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/aihorizon/eduscout/internal/logger"
	"github.com/aihorizon/eduscout/internal/types"
)

// neutralScore is assigned when every tier fails
const neutralScore = 0.5

// Scorer evaluates one resource against a topic
type Scorer interface {
	// Name identifies the tier for logging
	Name() string

	// Score returns a quality score in [0.0, 1.0]
	Score(ctx context.Context, resource *types.DiscoveredResource, topic string) (float64, error)
}

// Chain tries each scorer in order and returns the first success, clamped.
// If all tiers fail the neutral default is returned. Score on a Chain never
// returns an error.
type Chain struct {
	scorers []Scorer
	log     logger.Logger
}

// NewChain builds a scoring chain. Scorers are consulted in the order given.
func NewChain(log logger.Logger, scorers ...Scorer) *Chain {
	if log == nil {
		log = logger.NewNop()
	}
	return &Chain{scorers: scorers, log: log}
}

// Score runs the fallback chain for one resource
func (c *Chain) Score(ctx context.Context, resource *types.DiscoveredResource, topic string) float64 {
	for _, s := range c.scorers {
		score, err := s.Score(ctx, resource, topic)
		if err != nil {
			c.log.Warn("scoring tier failed, falling through",
				logger.String("tier", s.Name()),
				logger.String("url", resource.URL),
				logger.Error(err))
			continue
		}
		c.log.Debug("resource scored",
			logger.String("tier", s.Name()),
			logger.String("url", resource.URL),
			logger.Float64("score", score))
		return types.ClampScore(score)
	}

	c.log.Warn("all scoring tiers failed, assigning neutral score",
		logger.String("url", resource.URL))
	return neutralScore
}

// Tiers reports the configured tier names in order
func (c *Chain) Tiers() []string {
	names := make([]string, len(c.scorers))
	for i, s := range c.scorers {
		names[i] = s.Name()
	}
	return names
}

// decimalRegex pulls the first decimal out of a model response. Models are
// told to answer with a bare number but sometimes wrap it in prose.
var decimalRegex = regexp.MustCompile(`\d*\.?\d+`)

// parseScore extracts a float score from an LLM response
func parseScore(text string) (float64, error) {
	match := decimalRegex.FindString(text)
	if match == "" {
		return 0, fmt.Errorf("no numeric score in response %q", truncate(text, 80))
	}
	score, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing score %q: %w", match, err)
	}
	return score, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
