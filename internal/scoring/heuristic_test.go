package scoring

import (
	"context"
	"testing"

	"github.com/aihorizon/eduscout/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoreOf(t *testing.T, r *types.DiscoveredResource, topic string) float64 {
	t.Helper()
	got, err := NewHeuristicScorer().Score(context.Background(), r, topic)
	require.NoError(t, err)
	return got
}

func TestHeuristicScoreBounds(t *testing.T) {
	resources := []*types.DiscoveredResource{
		{Title: "Incident Response", SourcePlatform: "coursera", ResourceType: types.TypeCourse},
		{Title: "", SourcePlatform: "nobody.example", ResourceType: types.TypeArticle},
		{Title: "Threat Hunting Masterclass", SourcePlatform: "youtube", ResourceType: types.TypeVideo},
		{Title: "x", SourcePlatform: "", ResourceType: ""},
	}

	for _, r := range resources {
		got := scoreOf(t, r, "incident response")
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 1.0)
	}
}

func TestHeuristicExactBlend(t *testing.T) {
	// Full relevance on a top platform with the best type prior:
	// 0.9*0.4 + 1.0*0.3 + 0.9*0.3 = 0.93
	r := &types.DiscoveredResource{
		Title:          "Incident Response Deep Dive",
		SourcePlatform: "coursera",
		ResourceType:   types.TypeCourse,
	}
	assert.InDelta(t, 0.93, scoreOf(t, r, "incident response"), 1e-9)

	// Unknown platform and type, zero relevance: 0.5*0.4 + 0 + 0.5*0.3 = 0.35
	r2 := &types.DiscoveredResource{
		Title:          "Unrelated",
		SourcePlatform: "random.example",
		ResourceType:   types.ResourceType("mystery"),
	}
	assert.InDelta(t, 0.35, scoreOf(t, r2, "incident response"), 1e-9)
}

func TestHeuristicPrefersCrediblePlatforms(t *testing.T) {
	course := &types.DiscoveredResource{Title: "IR", SourcePlatform: "coursera", ResourceType: types.TypeCourse}
	unknown := &types.DiscoveredResource{Title: "IR", SourcePlatform: "blog.example", ResourceType: types.TypeCourse}

	assert.Greater(t, scoreOf(t, course, "forensics"), scoreOf(t, unknown, "forensics"))
}

func TestHeuristicDeterministic(t *testing.T) {
	r := &types.DiscoveredResource{Title: "Zero Trust Guide", SourcePlatform: "documentation", ResourceType: types.TypeDocumentation}
	first := scoreOf(t, r, "zero trust")
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, scoreOf(t, r, "zero trust"))
	}
}

func TestTitleRelevance(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		topic    string
		expected float64
	}{
		{"all topic words present", "Incident Response Handbook", "incident response", 1.0},
		{"half present", "Incident Management Guide", "incident response", 0.5},
		{"substring match counts", "Responses to Incidents", "incident response", 1.0},
		{"none present", "Cooking for Beginners", "incident response", 0.0},
		{"empty topic", "Anything", "", 0.0},
		{"empty title", "", "incident response", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, titleRelevance(tt.title, tt.topic))
		})
	}
}
