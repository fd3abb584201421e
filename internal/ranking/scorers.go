package ranking

import "github.com/hyperjump/rentassist/pkg/utils"

// EngagementScorer rewards views, favorites and rents together.
type EngagementScorer struct {
	config *RankingConfig
}

// NewEngagementScorer creates an engagement scorer.
func NewEngagementScorer(config *RankingConfig) *EngagementScorer {
	return &EngagementScorer{config: config}
}

// Name returns the component name.
func (s *EngagementScorer) Name() string { return "engagement" }

// Score is engagement/ceiling scaled to the cap.
func (s *EngagementScorer) Score(ctx *ScoringContext) float64 {
	e := float64(ctx.Product.Engagement())
	return utils.Clamp(e/s.config.EngagementCeiling*s.config.EngagementMax, 0, s.config.EngagementMax)
}

// Reason marks products with more than PopularReasonAbove interactions.
func (s *EngagementScorer) Reason(ctx *ScoringContext) string {
	if ctx.Product.Engagement() > s.config.PopularReasonAbove {
		return s.config.PopularReason
	}
	return ""
}

// PriceScorer rewards cheaper items against a fixed price ceiling.
type PriceScorer struct {
	config *RankingConfig
}

// NewPriceScorer creates a price scorer.
func NewPriceScorer(config *RankingConfig) *PriceScorer {
	return &PriceScorer{config: config}
}

// Name returns the component name.
func (s *PriceScorer) Name() string { return "price" }

// Score falls linearly from the cap at price 0 to 0 at the ceiling.
func (s *PriceScorer) Score(ctx *ScoringContext) float64 {
	c := s.config.PriceCeiling
	return utils.Clamp((c-ctx.Product.BasePrice)/c*s.config.PriceMax, 0, s.config.PriceMax)
}

// Reason marks items priced under CheapReasonBelow.
func (s *PriceScorer) Reason(ctx *ScoringContext) string {
	if ctx.Product.BasePrice < s.config.CheapReasonBelow {
		return s.config.CheapReason
	}
	return ""
}

// AvailabilityScorer rewards the share of units still available.
type AvailabilityScorer struct {
	config *RankingConfig
}

// NewAvailabilityScorer creates an availability scorer.
func NewAvailabilityScorer(config *RankingConfig) *AvailabilityScorer {
	return &AvailabilityScorer{config: config}
}

// Name returns the component name.
func (s *AvailabilityScorer) Name() string { return "availability" }

// Score is min(available/quantity, 1) scaled to the cap. A product without a
// positive quantity scores zero.
func (s *AvailabilityScorer) Score(ctx *ScoringContext) float64 {
	p := ctx.Product
	if p.Quantity <= 0 {
		return 0
	}
	ratio := utils.Clamp(float64(p.AvailableQuantity)/float64(p.Quantity), 0, 1)
	return ratio * s.config.AvailabilityMax
}

// Reason marks products with more than AvailableReasonAbove units free.
func (s *AvailabilityScorer) Reason(ctx *ScoringContext) string {
	if ctx.Product.AvailableQuantity > s.config.AvailableReasonAbove {
		return s.config.AvailableReason
	}
	return ""
}

// ConditionScorer gives a flat bonus to new items.
type ConditionScorer struct {
	config *RankingConfig
}

// NewConditionScorer creates a condition scorer.
func NewConditionScorer(config *RankingConfig) *ConditionScorer {
	return &ConditionScorer{config: config}
}

// Name returns the component name.
func (s *ConditionScorer) Name() string { return "condition" }

// Score returns the bonus for new items, else zero.
func (s *ConditionScorer) Score(ctx *ScoringContext) float64 {
	if ctx.Product.Condition.IsNew() {
		return s.config.NewConditionBonus
	}
	return 0
}

// DefaultScorers returns the four recommendation components.
func DefaultScorers(config *RankingConfig) []Scorer {
	return []Scorer{
		NewEngagementScorer(config),
		NewPriceScorer(config),
		NewAvailabilityScorer(config),
		NewConditionScorer(config),
	}
}
