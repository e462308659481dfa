package scoring

import (
	"fmt"
	"strings"

	"github.com/aihorizon/eduscout/internal/types"
)

// buildScoringPrompt renders the evaluation rubric for a resource. Both LLM
// tiers use the same prompt so their scores are comparable.
func buildScoringPrompt(resource *types.DiscoveredResource, topic string) string {
	author := resource.Author
	if author == "" {
		author = "Unknown"
	}

	var b strings.Builder
	b.WriteString("You are an expert educational content evaluator specializing in cybersecurity education.\n\n")
	fmt.Fprintf(&b, "Please evaluate this educational resource for learning %q and provide a quality score from 0.0 to 1.0.\n\n", topic)

	b.WriteString("Resource Details:\n")
	fmt.Fprintf(&b, "- Title: %s\n", resource.Title)
	fmt.Fprintf(&b, "- URL: %s\n", resource.URL)
	fmt.Fprintf(&b, "- Description: %s\n", resource.Description)
	fmt.Fprintf(&b, "- Resource Type: %s\n", resource.ResourceType)
	fmt.Fprintf(&b, "- Platform: %s\n", resource.SourcePlatform)
	fmt.Fprintf(&b, "- Author: %s\n\n", author)

	fmt.Fprintf(&b, `Evaluation Criteria:
1. Relevance to %q (25%%)
2. Educational Quality & Comprehensiveness (25%%)
3. Source Credibility & Authority (20%%)
4. Content Recency & Up-to-date Information (15%%)
5. Practical Application & Hands-on Learning (15%%)

Please respond with ONLY a decimal number between 0.0 and 1.0 representing the quality score.
For example: 0.85
`, topic)

	return b.String()
}
