// Package recommend picks the best products from a candidate set with the
// capped component scores of the ranking package.
package recommend

import (
	"context"

	"github.com/hyperjump/rentassist/internal/config"
	"github.com/hyperjump/rentassist/internal/models"
	"github.com/hyperjump/rentassist/internal/ranking"
	"github.com/hyperjump/rentassist/pkg/utils"
	"go.uber.org/zap"
)

// Catalog is the search surface the recommender reads from.
type Catalog interface {
	Search(ctx context.Context, f models.SearchFilters) []*models.ProductCandidate
	GetProductDetail(ctx context.Context, id string) *models.ProductCandidate
}

// Recommender scores candidates and returns the top ones with fresh details.
type Recommender struct {
	catalog Catalog
	ranker  *ranking.Ranker
	config  *config.RecommendConfig
	logger  *zap.Logger
}

// Option configures a Recommender.
type Option func(*Recommender)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Recommender) { r.logger = l }
}

// WithRanker replaces the default component scorers.
func WithRanker(rk *ranking.Ranker) Option {
	return func(r *Recommender) { r.ranker = rk }
}

// NewRecommender creates a Recommender over catalog.
func NewRecommender(catalog Catalog, cfg *config.RecommendConfig, opts ...Option) *Recommender {
	if cfg == nil {
		cfg = &config.RecommendConfig{}
	}
	r := &Recommender{catalog: catalog, ranker: ranking.NewRanker(nil), config: cfg}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = utils.OrNop(r.logger)
	return r
}

// Recommend returns the top filters.Limit products (default 1), best first.
// The previous product list is scored when non-empty; otherwise a broad
// search with filters supplies the candidates. Each pick is re-read from the
// catalog so the result carries current data plus its score and reasons.
// An empty candidate set yields an empty, non-nil result.
func (r *Recommender) Recommend(ctx context.Context, filters models.SearchFilters, previous []*models.ProductCandidate, userLocation string) []*models.ProductCandidate {
	limit := r.limit(filters.Limit)
	source := previous
	if len(source) == 0 {
		f := filters
		f.SortType = ""
		f.Limit = r.sourceLimit()
		source = r.catalog.Search(ctx, f)
	}
	out := []*models.ProductCandidate{}
	if len(source) == 0 {
		return out
	}

	ranked := r.ranker.Rank(source, userLocation)
	for _, rp := range ranked {
		if len(out) == limit {
			break
		}
		p := r.catalog.GetProductDetail(ctx, rp.Product.ID)
		if p == nil {
			r.logger.Debug("recommended product no longer visible", zap.String("id", rp.Product.ID))
			continue
		}
		p.RecommendationScore = rp.Score
		p.Reasons = rp.Breakdown.Reasons
		p.EstimatedDistance = nil
		out = append(out, p)
	}
	return out
}

func (r *Recommender) limit(requested int) int {
	def, maxLimit := r.config.DefaultLimit, r.config.MaxLimit
	if def <= 0 {
		def = 1
	}
	if maxLimit <= 0 {
		maxLimit = 10
	}
	if requested <= 0 {
		requested = def
	}
	return min(requested, maxLimit)
}

func (r *Recommender) sourceLimit() int {
	if r.config.SourceLimit > 0 {
		return r.config.SourceLimit
	}
	return 30
}
