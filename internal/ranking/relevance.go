package ranking

import (
	"strings"
	"time"

	"github.com/hyperjump/rentassist/pkg/utils"
)

// Relevance is the text match of one title against a query.
type Relevance struct {
	Score      float64
	Match      MatchType
	StartsWith bool
}

// RelevanceScorer scores titles: one point per distinct query word found in
// the title, plus a bonus when the whole query appears verbatim.
type RelevanceScorer struct {
	config *RankingConfig
}

// NewRelevanceScorer creates a relevance scorer.
func NewRelevanceScorer(config *RankingConfig) *RelevanceScorer {
	if config == nil {
		config = DefaultRankingConfig()
	}
	config.ApplyDefaults()
	return &RelevanceScorer{config: config}
}

// Evaluate scores title against q. An empty query scores zero.
func (s *RelevanceScorer) Evaluate(q *AnalyzedQuery, title string) Relevance {
	if q.IsEmpty() {
		return Relevance{}
	}
	t := q.comparable(title)
	matched := 0
	for _, term := range q.Terms {
		if utils.ContainsPhrase(t, term) {
			matched++
		}
	}
	phrase := q.phrase()
	r := Relevance{
		Score:      float64(matched),
		StartsWith: strings.HasPrefix(t, phrase),
	}
	hasPhrase := utils.ContainsPhrase(t, phrase)
	if hasPhrase {
		r.Score += s.config.PhraseBonus
	}
	switch {
	case t == q.Normalized || t == phrase:
		r.Match = MatchTypeExact
	case hasPhrase:
		r.Match = MatchTypePhrase
	case matched == len(q.Terms):
		r.Match = MatchTypeAllWords
	case matched > 0:
		r.Match = MatchTypePartial
	}
	return r
}

// RelevanceKey orders search results.
type RelevanceKey struct {
	Relevance
	Views     int
	Favorites int
	CreatedAt time.Time
}

// Before reports whether k sorts ahead of o: higher score, then exact title,
// then title starting with the query, then views, favorites and recency,
// all descending. With zero relevance this is plain popularity order.
func (k RelevanceKey) Before(o RelevanceKey) bool {
	if k.Score != o.Score {
		return k.Score > o.Score
	}
	if ke, oe := k.Match == MatchTypeExact, o.Match == MatchTypeExact; ke != oe {
		return ke
	}
	if k.StartsWith != o.StartsWith {
		return k.StartsWith
	}
	if k.Views != o.Views {
		return k.Views > o.Views
	}
	if k.Favorites != o.Favorites {
		return k.Favorites > o.Favorites
	}
	return k.CreatedAt.After(o.CreatedAt)
}
