package ranking

// RankingConfig holds the constants of relevance and recommendation scoring.
type RankingConfig struct {
	// Text relevance
	PhraseBonus float64 // default: 2

	// Engagement component
	EngagementMax      float64 // default: 40
	EngagementCeiling  float64 // default: 1000
	PopularReasonAbove int     // default: 100
	PopularReason      string

	// Price component
	PriceMax         float64 // default: 30
	PriceCeiling     float64 // default: 10,000,000
	CheapReasonBelow float64 // default: 500,000
	CheapReason      string

	// Availability component
	AvailabilityMax      float64 // default: 15
	AvailableReasonAbove int     // default: 5
	AvailableReason      string

	// Condition component
	NewConditionBonus float64 // default: 15
}

// DefaultRankingConfig returns the default ranking configuration.
func DefaultRankingConfig() *RankingConfig {
	return &RankingConfig{
		PhraseBonus: 2,

		EngagementMax:      40,
		EngagementCeiling:  1000,
		PopularReasonAbove: 100,
		PopularReason:      "Phổ biến cao",

		PriceMax:         30,
		PriceCeiling:     10_000_000,
		CheapReasonBelow: 500_000,
		CheapReason:      "Giá thuê hợp lý",

		AvailabilityMax:      15,
		AvailableReasonAbove: 5,
		AvailableReason:      "Còn nhiều sản phẩm sẵn sàng cho thuê",

		NewConditionBonus: 15,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *RankingConfig) ApplyDefaults() {
	d := DefaultRankingConfig()
	if c.PhraseBonus == 0 {
		c.PhraseBonus = d.PhraseBonus
	}
	if c.EngagementMax == 0 {
		c.EngagementMax = d.EngagementMax
	}
	if c.EngagementCeiling == 0 {
		c.EngagementCeiling = d.EngagementCeiling
	}
	if c.PopularReasonAbove == 0 {
		c.PopularReasonAbove = d.PopularReasonAbove
	}
	if c.PopularReason == "" {
		c.PopularReason = d.PopularReason
	}
	if c.PriceMax == 0 {
		c.PriceMax = d.PriceMax
	}
	if c.PriceCeiling == 0 {
		c.PriceCeiling = d.PriceCeiling
	}
	if c.CheapReasonBelow == 0 {
		c.CheapReasonBelow = d.CheapReasonBelow
	}
	if c.CheapReason == "" {
		c.CheapReason = d.CheapReason
	}
	if c.AvailabilityMax == 0 {
		c.AvailabilityMax = d.AvailabilityMax
	}
	if c.AvailableReasonAbove == 0 {
		c.AvailableReasonAbove = d.AvailableReasonAbove
	}
	if c.AvailableReason == "" {
		c.AvailableReason = d.AvailableReason
	}
	if c.NewConditionBonus == 0 {
		c.NewConditionBonus = d.NewConditionBonus
	}
}

// MaxTotal is the highest score the recommendation components can sum to.
func (c *RankingConfig) MaxTotal() float64 {
	return c.EngagementMax + c.PriceMax + c.AvailabilityMax + c.NewConditionBonus
}
