// Package search builds catalog queries from search filters, ranks the
// matches and hydrates them into product candidates.
package search

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/hyperjump/rentassist/internal/config"
	"github.com/hyperjump/rentassist/internal/keyword"
	"github.com/hyperjump/rentassist/internal/models"
	"github.com/hyperjump/rentassist/internal/ranking"
	"github.com/hyperjump/rentassist/internal/storage"
	"github.com/hyperjump/rentassist/pkg/utils"
	"go.uber.org/zap"
)

// Engine runs catalog searches and detail lookups.
type Engine struct {
	catalog   storage.Catalog
	relevance *ranking.RelevanceScorer
	spell     *keyword.SpellChecker
	config    *config.SearchConfig
	logger    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for lookup failures.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithSpellChecker enables spelling hints for empty results.
func WithSpellChecker(s *keyword.SpellChecker) Option {
	return func(e *Engine) { e.spell = s }
}

// WithRankingConfig overrides the relevance scoring constants.
func WithRankingConfig(c *ranking.RankingConfig) Option {
	return func(e *Engine) { e.relevance = ranking.NewRelevanceScorer(c) }
}

// NewEngine creates a search engine over catalog.
func NewEngine(catalog storage.Catalog, cfg *config.SearchConfig, opts ...Option) *Engine {
	if cfg == nil {
		cfg = &config.SearchConfig{}
	}
	e := &Engine{
		catalog:   catalog,
		relevance: ranking.NewRelevanceScorer(nil),
		config:    cfg,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = utils.OrNop(e.logger)
	return e
}

// Search returns visible products matching f, at most f.Limit of them. Any
// lookup failure is logged and yields an empty result.
func (e *Engine) Search(ctx context.Context, f models.SearchFilters) []*models.ProductCandidate {
	f.Normalize(e.config.DefaultLimit, e.config.MaxLimit)
	q := ranking.AnalyzeQuery(f.Q)

	pred := storage.ItemPredicate{
		CategoryID: f.CategoryID,
		MinPrice:   f.MinPrice,
		MaxPrice:   f.MaxPrice,
		City:       f.City,
		District:   f.District,
		Limit:      f.Limit,
	}
	switch {
	case fieldLess(f.SortType) != nil:
		// catalog rows arrive in sort order; relevance only breaks ties
		pred.Sort = f.SortType
		pred.Limit = e.candidatePool(f.Limit)
	case !q.IsEmpty():
		// every text match is ranked
		pred.Limit = 0
	}
	if !q.IsEmpty() {
		match, err := e.textMatch(ctx, q)
		if err != nil {
			e.logger.Warn("search text signals failed", zap.String("q", f.Q), zap.Error(err))
			return []*models.ProductCandidate{}
		}
		pred.Match = match
	}

	items, err := e.catalog.FindVisibleItems(ctx, pred)
	if err != nil {
		e.logger.Warn("search query failed", zap.String("q", f.Q), zap.Error(err))
		return []*models.ProductCandidate{}
	}
	if !q.IsEmpty() {
		e.rankByRelevance(q, items)
	}
	if f.SortType.IsSort() {
		SortItems(items, f.SortType)
	}
	if len(items) > f.Limit {
		items = items[:f.Limit]
	}

	products, err := e.hydrate(ctx, items)
	if err != nil {
		e.logger.Warn("search hydration failed", zap.Int("items", len(items)), zap.Error(err))
		return []*models.ProductCandidate{}
	}
	return products
}

func (e *Engine) candidatePool(limit int) int {
	pool := e.config.CandidatePool
	if pool <= 0 {
		pool = 200
	}
	return max(pool, limit)
}

// textMatch builds the OR-ed text signals for q. Category and tag names are
// resolved to ids first.
func (e *Engine) textMatch(ctx context.Context, q *ranking.AnalyzedQuery) (*storage.TextMatch, error) {
	phrase := q.Normalized
	if q.Plain {
		phrase = utils.FoldDiacritics(phrase)
	}
	categoryIDs, err := e.catalog.FindCategoryIDsByName(ctx, q.Normalized)
	if err != nil {
		return nil, err
	}
	itemIDs, err := e.catalog.FindItemIDsByTagName(ctx, q.Normalized)
	if err != nil {
		return nil, err
	}
	return &storage.TextMatch{
		Phrase:      phrase,
		Words:       q.Terms,
		CategoryIDs: categoryIDs,
		ItemIDs:     itemIDs,
		Folded:      q.Plain,
	}, nil
}

func (e *Engine) rankByRelevance(q *ranking.AnalyzedQuery, items []*storage.Item) {
	keys := make(map[string]ranking.RelevanceKey, len(items))
	for _, it := range items {
		keys[it.ID] = ranking.RelevanceKey{
			Relevance: e.relevance.Evaluate(q, it.Title),
			Views:     it.ViewCount,
			Favorites: it.FavoriteCount,
			CreatedAt: it.CreatedAt,
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return keys[items[i].ID].Before(keys[items[j].ID])
	})
}

// GetProductDetail returns the visible product with id, or nil when id is
// malformed, unknown or not visible.
func (e *Engine) GetProductDetail(ctx context.Context, id string) *models.ProductCandidate {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	it, err := e.catalog.FindItemByID(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			e.logger.Warn("product detail lookup failed", zap.String("id", id), zap.Error(err))
		}
		return nil
	}
	if !it.Visible() {
		return nil
	}
	products, err := e.hydrate(ctx, []*storage.Item{it})
	if err != nil {
		e.logger.Warn("product detail hydration failed", zap.String("id", id), zap.Error(err))
		return nil
	}
	if len(products) == 0 {
		return nil
	}
	p := products[0]
	p.IsAvailableNow = p.AvailableQuantity > 0
	p.PopularityScore = int(math.Round(float64(p.Engagement()) / 3))
	return p
}

// SpellingHints returns "did you mean" queries for q. It returns nil when
// hints are disabled or every word of q is indexed.
func (e *Engine) SpellingHints(ctx context.Context, q string) []string {
	if e.spell == nil || !e.config.SpellingHints {
		return nil
	}
	return e.spell.Hints(q, 3)
}
