package discovery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/aihorizon/eduscout/internal/config"
	"github.com/aihorizon/eduscout/internal/scoring"
	"github.com/aihorizon/eduscout/internal/storage"
	"github.com/aihorizon/eduscout/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSearcher returns canned responses in call order. Calls beyond the
// script return an error, standing in for a flaky provider.
type scriptedSearcher struct {
	mu        sync.Mutex
	responses []searchResponse
	calls     int
}

type searchResponse struct {
	content string
	err     error
}

func (s *scriptedSearcher) Search(_ context.Context, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls >= len(s.responses) {
		s.calls++
		return "", errors.New("no scripted response")
	}
	r := s.responses[s.calls]
	s.calls++
	return r.content, r.err
}

// urlScorer maps URLs to fixed scores; unknown URLs get the default
type urlScorer struct {
	scores map[string]float64
	def    float64
}

func (s *urlScorer) Score(_ context.Context, r *types.DiscoveredResource, _ string) float64 {
	if v, ok := s.scores[r.URL]; ok {
		return v
	}
	return s.def
}

// memStore records the last saved result list per topic
type memStore struct {
	mu      sync.Mutex
	saved   map[string][]types.ScoredResource
	saveErr error
}

var _ storage.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{saved: make(map[string][]types.ScoredResource)}
}

func (m *memStore) SaveResults(_ context.Context, topic string, results []types.ScoredResource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved[topic] = results
	return nil
}

func (m *memStore) GetResults(_ context.Context, topic string) ([]types.ScoredResource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved[topic], nil
}

func (m *memStore) Topics(_ context.Context) ([]string, error) { return nil, nil }
func (m *memStore) Close() error                               { return nil }

func validConfig() *config.Config {
	return &config.Config{PerplexityAPIKey: "test-key", QualityThreshold: 0.6}
}

func envelope(items ...string) string {
	out := `{"resources": [`
	for i, item := range items {
		if i > 0 {
			out += ","
		}
		out += item
	}
	return out + `]}`
}

func resourceJSON(title, url, rtype string) string {
	return fmt.Sprintf(`{"title": %q, "url": %q, "resource_type": %q}`, title, url, rtype)
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	engine, err := NewEngine(validConfig(), nil, opts...)
	require.NoError(t, err)
	return engine
}

func heuristicOnly() Scorer {
	return scoring.NewChain(nil, scoring.NewHeuristicScorer())
}

func TestNewEngineRequiresSearchKey(t *testing.T) {
	cfg := &config.Config{QualityThreshold: 0.6}
	_, err := NewEngine(cfg, nil)
	require.Error(t, err)

	var cfgErr *config.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

// One valid envelope with two resources, scoring provider unavailable so
// the heuristic tier runs: both results come back with their platforms
// derived, scores in bounds, sorted descending.
func TestDiscoverHeuristicScoredRun(t *testing.T) {
	searcher := &scriptedSearcher{responses: []searchResponse{
		{content: envelope(
			`{"title": "Incident Response Walkthrough", "url": "https://youtube.com/watch?v=abc", "description": "Full IR cycle demo", "resource_type": "video"}`,
			resourceJSON("IR Specialization", "https://coursera.org/xyz", "course"),
		)},
	}}

	engine := newTestEngine(t, WithSearcher(searcher), WithScorer(heuristicOnly()))
	result, err := engine.Discover(context.Background(), "incident response", nil)
	require.NoError(t, err)
	require.Len(t, result.Resources, 2)

	platforms := map[string]bool{}
	for _, r := range result.Resources {
		platforms[r.Resource.SourcePlatform] = true
		assert.GreaterOrEqual(t, r.QualityScore, 0.0)
		assert.LessOrEqual(t, r.QualityScore, 1.0)
		assert.False(t, r.DiscoveredAt.IsZero())
	}
	assert.True(t, platforms["youtube"])
	assert.True(t, platforms["coursera"])

	// Sorted descending.
	assert.True(t, sort.SliceIsSorted(result.Resources, func(a, b int) bool {
		return result.Resources[a].QualityScore > result.Resources[b].QualityScore
	}))

	// Default categories each ran both prompt phrasings.
	require.Len(t, result.Categories, 4)
	for _, c := range result.Categories {
		assert.Equal(t, 2, c.Prompts)
	}
}

// Two candidates with the same URL but different titles collapse to one
// entry, the first encountered.
func TestDiscoverDedupFirstWins(t *testing.T) {
	searcher := &scriptedSearcher{responses: []searchResponse{
		{content: envelope(resourceJSON("First Title", "https://example.com/dup", "video"))},
		{content: envelope(resourceJSON("Second Title", "https://example.com/dup", "video"))},
	}}

	engine := newTestEngine(t, WithSearcher(searcher), WithScorer(heuristicOnly()))
	result, err := engine.Discover(context.Background(), "topic", []types.ResourceType{types.TypeVideo})
	require.NoError(t, err)

	require.Len(t, result.Resources, 1)
	assert.Equal(t, "First Title", result.Resources[0].Resource.Title)
	assert.Equal(t, 1, result.Duplicates)
}

// A failed search call costs only that prompt: the final URL set equals the
// set from the successful prompts alone.
func TestDiscoverIsolatesSearchFailures(t *testing.T) {
	okA := envelope(resourceJSON("A", "https://example.com/a", "video"))
	okB := envelope(resourceJSON("B", "https://example.com/b", "video"))

	run := func(responses []searchResponse) map[string]bool {
		engine := newTestEngine(t,
			WithSearcher(&scriptedSearcher{responses: responses}),
			WithScorer(heuristicOnly()))
		result, err := engine.Discover(context.Background(), "topic", []types.ResourceType{types.TypeVideo})
		require.NoError(t, err)

		urls := map[string]bool{}
		for _, r := range result.Resources {
			urls[r.Resource.URL] = true
		}
		return urls
	}

	withFailure := run([]searchResponse{
		{content: okA},
		{err: errors.New("transport error"), content: okB},
	})
	// Rerun with the failing prompt's response removed entirely.
	successesOnly := run([]searchResponse{{content: okA}})

	assert.Equal(t, successesOnly, withFailure)
}

func TestDiscoverRecordsSearchFailureStats(t *testing.T) {
	searcher := &scriptedSearcher{responses: []searchResponse{
		{err: errors.New("boom")},
		{content: envelope(resourceJSON("A", "https://example.com/a", "video"))},
	}}

	engine := newTestEngine(t, WithSearcher(searcher), WithScorer(heuristicOnly()))
	result, err := engine.Discover(context.Background(), "topic", []types.ResourceType{types.TypeVideo})
	require.NoError(t, err)

	require.Len(t, result.Categories, 1)
	assert.Equal(t, 1, result.Categories[0].SearchFailures)
	assert.Len(t, result.Resources, 1)
}

// Distinct scores sort strictly descending; equal scores keep discovery order.
func TestDiscoverSortStability(t *testing.T) {
	searcher := &scriptedSearcher{responses: []searchResponse{
		{content: envelope(
			resourceJSON("Low", "https://example.com/low", "video"),
			resourceJSON("EqualOne", "https://example.com/eq1", "video"),
			resourceJSON("High", "https://example.com/high", "video"),
			resourceJSON("EqualTwo", "https://example.com/eq2", "video"),
		)},
	}}

	scorer := &urlScorer{
		scores: map[string]float64{
			"https://example.com/low":  0.2,
			"https://example.com/eq1":  0.5,
			"https://example.com/high": 0.9,
			"https://example.com/eq2":  0.5,
		},
	}

	engine := newTestEngine(t, WithSearcher(searcher), WithScorer(scorer))
	result, err := engine.Discover(context.Background(), "topic", []types.ResourceType{types.TypeVideo})
	require.NoError(t, err)
	require.Len(t, result.Resources, 4)

	titles := make([]string, len(result.Resources))
	for i, r := range result.Resources {
		titles[i] = r.Resource.Title
	}
	// EqualOne was discovered before EqualTwo, so it stays first among the ties.
	assert.Equal(t, []string{"High", "EqualOne", "EqualTwo", "Low"}, titles)
}

func TestDiscoverScoresAreRounded(t *testing.T) {
	searcher := &scriptedSearcher{responses: []searchResponse{
		{content: envelope(resourceJSON("A", "https://example.com/a", "video"))},
	}}
	scorer := &urlScorer{def: 0.123456}

	engine := newTestEngine(t, WithSearcher(searcher), WithScorer(scorer))
	result, err := engine.Discover(context.Background(), "topic", []types.ResourceType{types.TypeVideo})
	require.NoError(t, err)

	require.Len(t, result.Resources, 1)
	assert.Equal(t, 0.123, result.Resources[0].QualityScore)
}

// With scoring disabled results keep discovery order and the neutral score.
func TestDiscoverWithoutScorer(t *testing.T) {
	searcher := &scriptedSearcher{responses: []searchResponse{
		{content: envelope(
			resourceJSON("First", "https://example.com/1", "video"),
			resourceJSON("Second", "https://example.com/2", "video"),
		)},
	}}

	engine := newTestEngine(t, WithSearcher(searcher), WithScorer(nil))
	result, err := engine.Discover(context.Background(), "topic", []types.ResourceType{types.TypeVideo})
	require.NoError(t, err)
	require.Len(t, result.Resources, 2)

	assert.Equal(t, "First", result.Resources[0].Resource.Title)
	assert.Equal(t, "Second", result.Resources[1].Resource.Title)
	for _, r := range result.Resources {
		assert.Equal(t, 0.5, r.QualityScore)
		assert.False(t, r.DiscoveredAt.IsZero())
	}
}

// Every prompt failing yields an empty list and a nil error: "no resources
// found" is a valid outcome, not a failure.
func TestDiscoverEmptyResultIsNotAnError(t *testing.T) {
	engine := newTestEngine(t,
		WithSearcher(&scriptedSearcher{}),
		WithScorer(heuristicOnly()))

	result, err := engine.Discover(context.Background(), "topic", nil)
	require.NoError(t, err)
	assert.Empty(t, result.Resources)
}

func TestDiscoverPersistsResults(t *testing.T) {
	store := newMemStore()
	searcher := &scriptedSearcher{responses: []searchResponse{
		{content: envelope(resourceJSON("A", "https://example.com/a", "video"))},
	}}

	engine := newTestEngine(t, WithSearcher(searcher), WithScorer(heuristicOnly()), WithStore(store))
	result, err := engine.Discover(context.Background(), "incident response", []types.ResourceType{types.TypeVideo})
	require.NoError(t, err)

	saved, _ := store.GetResults(context.Background(), "incident response")
	assert.Equal(t, result.Resources, saved)
}

func TestDiscoverStoreFailureIsNotFatal(t *testing.T) {
	store := newMemStore()
	store.saveErr = errors.New("disk full")

	searcher := &scriptedSearcher{responses: []searchResponse{
		{content: envelope(resourceJSON("A", "https://example.com/a", "video"))},
	}}

	engine := newTestEngine(t, WithSearcher(searcher), WithScorer(heuristicOnly()), WithStore(store))
	result, err := engine.Discover(context.Background(), "topic", []types.ResourceType{types.TypeVideo})
	require.NoError(t, err)
	assert.Len(t, result.Resources, 1)
}

// A degraded free-text response still produces candidates via the fallback
// parser, and the degradation is recorded per category.
func TestDiscoverDegradedParse(t *testing.T) {
	raw := `Check out "Intro to Zero Trust" at https://docs.example.com/zt today`
	searcher := &scriptedSearcher{responses: []searchResponse{{content: raw}}}

	engine := newTestEngine(t, WithSearcher(searcher), WithScorer(heuristicOnly()))
	result, err := engine.Discover(context.Background(), "zero trust", []types.ResourceType{types.TypeDocumentation})
	require.NoError(t, err)

	require.Len(t, result.Resources, 1)
	assert.Equal(t, "Intro to Zero Trust", result.Resources[0].Resource.Title)
	assert.Equal(t, types.TypeDocumentation, result.Resources[0].Resource.ResourceType)

	require.Len(t, result.Categories, 1)
	assert.Equal(t, 1, result.Categories[0].DegradedParses)
}

func TestDedupeByURL(t *testing.T) {
	in := []types.DiscoveredResource{
		{Title: "A", URL: "https://example.com/1"},
		{Title: "B", URL: "https://example.com/2"},
		{Title: "A again", URL: "https://example.com/1"},
		{Title: "C", URL: "https://example.com/3"},
		{Title: "B again", URL: "https://example.com/2"},
	}

	out := dedupeByURL(in)
	require.Len(t, out, 3)
	assert.Equal(t, "A", out[0].Title)
	assert.Equal(t, "B", out[1].Title)
	assert.Equal(t, "C", out[2].Title)
}
