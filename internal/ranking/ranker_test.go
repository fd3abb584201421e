package ranking

import (
	"reflect"
	"testing"

	"github.com/hyperjump/rentassist/internal/models"
)

func TestNewRanker(t *testing.T) {
	r := NewRanker(nil)
	if r.GetConfig().EngagementMax != 40 {
		t.Errorf("EngagementMax = %v, want 40", r.GetConfig().EngagementMax)
	}
	if got := r.GetConfig().MaxTotal(); got != 100 {
		t.Errorf("MaxTotal = %v, want 100", got)
	}
	r = NewRanker(&RankingConfig{PriceMax: 20})
	if r.GetConfig().PriceMax != 20 || r.GetConfig().AvailabilityMax != 15 {
		t.Errorf("custom config not applied with defaults: %+v", r.GetConfig())
	}
}

func TestRanker_Breakdown(t *testing.T) {
	p := &models.ProductCandidate{
		BasePrice:         300_000,
		ViewCount:         500,
		FavoriteCount:     40,
		RentCount:         12,
		AvailableQuantity: 2,
		Quantity:          3,
		Condition:         &models.Condition{ID: 2, Name: "Như mới"},
	}
	b := NewRanker(nil).Breakdown(&ScoringContext{Product: p})
	// engagement 552/1000*40 = 22.08, price 29.1, availability 10, condition 0
	if b.FinalScore != 61.2 {
		t.Errorf("FinalScore = %v, want 61.2", b.FinalScore)
	}
	if len(b.Components) != 4 {
		t.Errorf("Components = %v", b.Components)
	}
	want := []string{"Phổ biến cao", "Giá thuê hợp lý"}
	if !reflect.DeepEqual(b.Reasons, want) {
		t.Errorf("Reasons = %v, want %v", b.Reasons, want)
	}
}

func TestRanker_ScoreBounds(t *testing.T) {
	r := NewRanker(nil)
	extremes := []*models.ProductCandidate{
		{ViewCount: 1 << 20, AvailableQuantity: 100, Quantity: 1, Condition: &models.Condition{ID: 1}, BasePrice: -5},
		{},
		{BasePrice: 1e12, Quantity: 0, AvailableQuantity: 5},
	}
	for _, p := range extremes {
		b := r.Breakdown(&ScoringContext{Product: p})
		if b.FinalScore < 0 || b.FinalScore > 100 {
			t.Errorf("score %v out of [0,100] for %+v", b.FinalScore, p)
		}
		caps := map[string]float64{"engagement": 40, "price": 30, "availability": 15, "condition": 15}
		for name, v := range b.Components {
			if v < 0 || v > caps[name] {
				t.Errorf("%s = %v exceeds cap %v", name, v, caps[name])
			}
		}
	}
}

func TestRanker_RankStable(t *testing.T) {
	a := &models.ProductCandidate{ID: "a", BasePrice: 10_000_000}
	b := &models.ProductCandidate{ID: "b", BasePrice: 10_000_000}
	c := &models.ProductCandidate{ID: "c", BasePrice: 0}
	ranked := NewRanker(nil).Rank([]*models.ProductCandidate{a, nil, b, c}, "Quận 1")
	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.Product.ID
	}
	if !reflect.DeepEqual(ids, []string{"c", "a", "b"}) {
		t.Errorf("order = %v, want [c a b]", ids)
	}
	if got := TopN(ranked, 1); len(got) != 1 || got[0].Product.ID != "c" {
		t.Errorf("TopN(1) = %v", got)
	}
	if got := TopN(ranked, 10); len(got) != 3 {
		t.Errorf("TopN(10) len = %d", len(got))
	}
}

type fixedScorer struct{ v float64 }

func (f fixedScorer) Score(*ScoringContext) float64 { return f.v }
func (f fixedScorer) Name() string                  { return "fixed" }

func TestRanker_WithScorers(t *testing.T) {
	r := NewRanker(nil).WithScorers([]Scorer{fixedScorer{12.345}})
	b := r.Breakdown(&ScoringContext{Product: &models.ProductCandidate{}})
	if b.FinalScore != 12.3 {
		t.Errorf("FinalScore = %v, want 12.3", b.FinalScore)
	}
	if len(b.Reasons) != 0 {
		t.Errorf("non-explaining scorer produced reasons %v", b.Reasons)
	}
}
