package ranking

import (
	"sort"

	"github.com/hyperjump/rentassist/internal/models"
	"github.com/hyperjump/rentassist/pkg/utils"
)

// Ranker sums scorer components into recommendation scores.
type Ranker struct {
	config  *RankingConfig
	scorers []Scorer
}

// NewRanker creates a Ranker with the default scorers.
func NewRanker(config *RankingConfig) *Ranker {
	if config == nil {
		config = DefaultRankingConfig()
	}
	config.ApplyDefaults()
	return &Ranker{
		config:  config,
		scorers: DefaultScorers(config),
	}
}

// WithScorers replaces the scorers.
func (r *Ranker) WithScorers(scorers []Scorer) *Ranker {
	r.scorers = scorers
	return r
}

// Breakdown scores one product.
func (r *Ranker) Breakdown(ctx *ScoringContext) *ScoreBreakdown {
	b := NewScoreBreakdown()
	var total float64
	for _, s := range r.scorers {
		v := s.Score(ctx)
		b.Components[s.Name()] = v
		total += v
		if ex, ok := s.(Explainer); ok {
			if reason := ex.Reason(ctx); reason != "" {
				b.Reasons = append(b.Reasons, reason)
			}
		}
	}
	b.FinalScore = utils.RoundTo(total, 1)
	return b
}

// RankedProduct is a product with its recommendation score.
type RankedProduct struct {
	Product   *models.ProductCandidate
	Score     float64
	Breakdown *ScoreBreakdown
}

// Rank scores products and sorts them by score descending. Equal scores keep
// their input order.
func (r *Ranker) Rank(products []*models.ProductCandidate, userLocation string) []*RankedProduct {
	results := make([]*RankedProduct, 0, len(products))
	for _, p := range products {
		if p == nil {
			continue
		}
		b := r.Breakdown(&ScoringContext{Product: p, UserLocation: userLocation})
		results = append(results, &RankedProduct{Product: p, Score: b.FinalScore, Breakdown: b})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// GetConfig returns the ranking configuration.
func (r *Ranker) GetConfig() *RankingConfig {
	return r.config
}

// TopN returns the first n results.
func TopN(results []*RankedProduct, n int) []*RankedProduct {
	if n < 0 {
		n = 0
	}
	if n >= len(results) {
		return results
	}
	return results[:n]
}
