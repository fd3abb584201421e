// Package ranking scores catalog products: text relevance for search ordering
// and the capped component scores used to pick recommendations.
package ranking

import "github.com/hyperjump/rentassist/internal/models"

// MatchType is how well a query matched a title.
type MatchType int

const (
	MatchTypeNone MatchType = iota
	MatchTypePartial
	MatchTypeAllWords
	MatchTypePhrase
	MatchTypeExact
)

// String returns a string representation of the match type.
func (m MatchType) String() string {
	switch m {
	case MatchTypeNone:
		return "none"
	case MatchTypePartial:
		return "partial"
	case MatchTypeAllWords:
		return "all_words"
	case MatchTypePhrase:
		return "phrase"
	case MatchTypeExact:
		return "exact"
	default:
		return "unknown"
	}
}

// AnalyzedQuery holds the normalized form of a search query.
type AnalyzedQuery struct {
	// Original is the query as received.
	Original string
	// Normalized is NFC, lowercased and space-collapsed. When Plain is set it
	// is also folded to ASCII letters.
	Normalized string
	// Terms are the distinct words of Normalized in order.
	Terms []string
	// Plain is true when the query was typed without diacritics; titles are
	// then compared in folded form.
	Plain bool
}

// IsEmpty reports whether the query has no words.
func (q *AnalyzedQuery) IsEmpty() bool {
	return q == nil || len(q.Terms) == 0
}

// ScoringContext is the input of a recommendation scorer.
type ScoringContext struct {
	Product *models.ProductCandidate
	// UserLocation is accepted for future proximity scoring and is not read
	// by any scorer yet.
	UserLocation string
}

// Scorer computes one capped component of a recommendation score.
type Scorer interface {
	// Score returns the component value for the product in ctx.
	Score(ctx *ScoringContext) float64
	// Name returns the component name used in breakdowns.
	Name() string
}

// Explainer is implemented by scorers that attach a human-readable reason.
type Explainer interface {
	// Reason returns the reason for ctx, or "" when none applies.
	Reason(ctx *ScoringContext) string
}

// ScoreBreakdown records how a recommendation score was built.
type ScoreBreakdown struct {
	// FinalScore is the component sum rounded to one decimal.
	FinalScore float64
	// Components maps scorer names to their values.
	Components map[string]float64
	// Reasons are the explanations attached by scorers, in scorer order.
	Reasons []string
}

// NewScoreBreakdown creates an empty breakdown.
func NewScoreBreakdown() *ScoreBreakdown {
	return &ScoreBreakdown{Components: make(map[string]float64)}
}
