// Package discovery orchestrates the pipeline: prompt generation, search,
// parsing, deduplication, and scoring. Per-prompt and per-resource failures
// are absorbed here; the only error an Engine ever surfaces is a
// configuration problem at construction time.
package discovery

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/aihorizon/eduscout/internal/config"
	"github.com/aihorizon/eduscout/internal/logger"
	"github.com/aihorizon/eduscout/internal/parser"
	"github.com/aihorizon/eduscout/internal/prompts"
	"github.com/aihorizon/eduscout/internal/scoring"
	"github.com/aihorizon/eduscout/internal/search"
	"github.com/aihorizon/eduscout/internal/storage"
	"github.com/aihorizon/eduscout/internal/types"
)

// defaultCategories are searched when the caller requests no specific types
var defaultCategories = []types.ResourceType{
	types.TypeVideo,
	types.TypeCourse,
	types.TypeDocumentation,
	types.TypeTool,
}

// maxConcurrentScores bounds parallel scoring calls. Candidates are
// independent, so scoring fans out; dedup and sorting happen only after the
// fan-in.
const maxConcurrentScores = 4

// Searcher issues one search call per prompt
type Searcher interface {
	Search(ctx context.Context, prompt string) (string, error)
}

// Scorer assigns a quality score to one resource. scoring.Chain satisfies
// this; it never fails, it degrades.
type Scorer interface {
	Score(ctx context.Context, resource *types.DiscoveredResource, topic string) float64
}

// Engine runs discovery for one topic at a time. It holds no state across
// runs; each Discover call is independent.
type Engine struct {
	searcher Searcher
	scorer   Scorer
	store    storage.Store
	log      logger.Logger
}

// Option overrides a dependency, mainly for tests
type Option func(*Engine)

// WithSearcher replaces the search client
func WithSearcher(s Searcher) Option {
	return func(e *Engine) { e.searcher = s }
}

// WithScorer replaces the scoring chain. Passing nil disables scoring
// entirely: results come back in discovery order with the neutral score.
func WithScorer(s Scorer) Option {
	return func(e *Engine) { e.scorer = s }
}

// WithStore attaches a result store. Discovery persists each successful
// run's ranked list; persistence failures are logged, never fatal.
func WithStore(st storage.Store) Option {
	return func(e *Engine) { e.store = st }
}

// NewEngine wires an engine from configuration. The search provider key is
// required: its absence is the one fatal, fail-fast error in the pipeline.
// Scoring degrades instead: with an LLM key the chain is provider-then-
// heuristic, without one it is heuristic-only.
func NewEngine(cfg *config.Config, log logger.Logger, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}

	tiers := []scoring.Scorer{}
	switch cfg.ScoringProvider() {
	case config.ProviderAnthropic:
		tiers = append(tiers, scoring.NewAnthropicScorer(cfg.AnthropicAPIKey))
	case config.ProviderOpenAI:
		tiers = append(tiers, scoring.NewOpenAIScorer(cfg.OpenAIAPIKey))
	}
	tiers = append(tiers, scoring.NewHeuristicScorer())
	chain := scoring.NewChain(log, tiers...)

	e := &Engine{
		searcher: search.NewClient(cfg.PerplexityAPIKey, search.WithTimeout(cfg.RequestTimeout)),
		scorer:   chain,
		log:      log,
	}
	for _, opt := range opts {
		opt(e)
	}

	log.Info("discovery engine ready",
		logger.String("scoring_tiers", strings.Join(chain.Tiers(), ",")),
		logger.Float64("quality_threshold", cfg.QualityThreshold))

	return e, nil
}

// CategoryStats records what happened for one resource-type category
type CategoryStats struct {
	Category       types.ResourceType
	Prompts        int
	SearchFailures int
	DegradedParses int
	Candidates     int
}

// Result is the outcome of one discovery run. An empty Resources slice with
// a nil error means "no resources found", which is distinct from the
// configuration errors raised at engine construction.
type Result struct {
	RunID      string
	Topic      string
	Resources  []types.ScoredResource
	Categories []CategoryStats
	Duplicates int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Discover runs the full pipeline for a topic. resourceTypes defaults to
// video, course, documentation, and tool when empty.
func (e *Engine) Discover(ctx context.Context, topic string, resourceTypes []types.ResourceType) (*Result, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		Topic:     topic,
		StartedAt: time.Now().UTC(),
	}

	categories := resourceTypes
	if len(categories) == 0 {
		categories = defaultCategories
	}

	e.log.Info("discovery run started",
		logger.String("run_id", result.RunID),
		logger.String("topic", topic),
		logger.Int("categories", len(categories)))

	var candidates []types.DiscoveredResource
	for _, category := range categories {
		stats := e.discoverCategory(ctx, topic, category, &candidates)
		result.Categories = append(result.Categories, stats)
	}

	unique := dedupeByURL(candidates)
	result.Duplicates = len(candidates) - len(unique)

	result.Resources = e.scoreAndRank(ctx, topic, unique)
	result.FinishedAt = time.Now().UTC()

	e.log.Info("discovery run finished",
		logger.String("run_id", result.RunID),
		logger.Int("candidates", len(candidates)),
		logger.Int("unique", len(unique)),
		logger.Duration("elapsed", result.FinishedAt.Sub(result.StartedAt)))

	if e.store != nil && len(result.Resources) > 0 {
		if err := e.store.SaveResults(ctx, topic, result.Resources); err != nil {
			e.log.Error("failed to persist results",
				logger.String("run_id", result.RunID),
				logger.Error(err))
		}
	}

	return result, nil
}

// discoverCategory runs every prompt for one category, appending parsed
// candidates. A failed search call costs only that prompt's results.
func (e *Engine) discoverCategory(ctx context.Context, topic string, category types.ResourceType, candidates *[]types.DiscoveredResource) CategoryStats {
	promptList := prompts.Generate(topic, string(category))
	stats := CategoryStats{Category: category, Prompts: len(promptList)}

	for _, prompt := range promptList {
		raw, err := e.searcher.Search(ctx, prompt)
		if err != nil {
			stats.SearchFailures++
			e.log.Warn("search call failed, skipping prompt",
				logger.String("category", string(category)),
				logger.Error(err))
			continue
		}

		parsed := parser.Parse(raw, topic)
		if parsed.Degraded {
			stats.DegradedParses++
			e.log.Warn("structured parse failed, used fallback extraction",
				logger.String("category", string(category)),
				logger.Int("recovered", len(parsed.Candidates)))
		}

		stats.Candidates += len(parsed.Candidates)
		*candidates = append(*candidates, parsed.Candidates...)
	}

	e.log.Info("category processed",
		logger.String("category", string(category)),
		logger.Int("prompts", stats.Prompts),
		logger.Int("candidates", stats.Candidates),
		logger.Int("search_failures", stats.SearchFailures))

	return stats
}

// dedupeByURL keeps the first occurrence of each URL, preserving order
func dedupeByURL(candidates []types.DiscoveredResource) []types.DiscoveredResource {
	seen := make(map[string]bool, len(candidates))
	unique := make([]types.DiscoveredResource, 0, len(candidates))
	for _, c := range candidates {
		if seen[c.URL] {
			continue
		}
		seen[c.URL] = true
		unique = append(unique, c)
	}
	return unique
}

// scoreAndRank scores candidates concurrently, then sorts descending by
// score. The sort is stable so equal scores keep discovery order. With no
// scorer configured the list passes through unsorted with the neutral score.
func (e *Engine) scoreAndRank(ctx context.Context, topic string, unique []types.DiscoveredResource) []types.ScoredResource {
	now := time.Now().UTC()
	results := make([]types.ScoredResource, len(unique))

	if e.scorer == nil {
		for i, r := range unique {
			results[i] = types.ScoredResource{Resource: r, QualityScore: 0.5, DiscoveredAt: now}
		}
		return results
	}

	scores := make([]float64, len(unique))
	sem := semaphore.NewWeighted(maxConcurrentScores)
	var wg sync.WaitGroup

	for i := range unique {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Context cancelled mid-run; remaining candidates get the
			// heuristic-equivalent neutral score.
			scores[i] = 0.5
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			scores[i] = e.scorer.Score(ctx, &unique[i], topic)
		}(i)
	}
	wg.Wait()

	order := make([]int, len(unique))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	for rank, idx := range order {
		results[rank] = types.ScoredResource{
			Resource:     unique[idx],
			QualityScore: math.Round(scores[idx]*1000) / 1000,
			DiscoveredAt: now,
		}
	}
	return results
}
