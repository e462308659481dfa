package scoring

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/aihorizon/eduscout/internal/types"
)

// modelHaiku is the cost-efficient model used for scoring. Each score call
// returns a single decimal, so the cheap tier is plenty.
const modelHaiku = "claude-3-5-haiku-20241022"

// AnthropicScorer scores resources via the Anthropic Messages API
type AnthropicScorer struct {
	client anthropic.Client
	model  string
	retry  retryConfig
}

// NewAnthropicScorer creates the Anthropic scoring tier
func NewAnthropicScorer(apiKey string) *AnthropicScorer {
	return &AnthropicScorer{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  modelHaiku,
		retry:  defaultRetryConfig(),
	}
}

func (s *AnthropicScorer) Name() string { return "anthropic" }

// Score sends the rubric prompt and parses the bare-decimal reply
func (s *AnthropicScorer) Score(ctx context.Context, resource *types.DiscoveredResource, topic string) (float64, error) {
	prompt := buildScoringPrompt(resource, topic)

	var response *anthropic.Message
	err := retryWithBackoff(ctx, s.retry, func(attemptCtx context.Context) error {
		resp, apiErr := s.client.Messages.New(attemptCtx, anthropic.MessageNewParams{
			Model:       anthropic.Model(s.model),
			MaxTokens:   10,
			Temperature: anthropic.Float(0.1),
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("anthropic API call failed: %w", err)
	}

	var text string
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return parseScore(text)
}
