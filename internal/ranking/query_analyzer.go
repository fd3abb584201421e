package ranking

import (
	"strings"

	"github.com/hyperjump/rentassist/pkg/utils"
)

// AnalyzeQuery normalizes q for title matching.
func AnalyzeQuery(q string) *AnalyzedQuery {
	norm := utils.NormalizeText(q)
	plain := norm != "" && !utils.HasDiacritics(norm)
	return &AnalyzedQuery{
		Original:   q,
		Normalized: norm,
		Terms:      utils.Words(norm),
		Plain:      plain,
	}
}

// comparable returns title in the form q is compared against.
func (q *AnalyzedQuery) comparable(title string) string {
	t := utils.NormalizeText(title)
	if q.Plain {
		t = utils.FoldDiacritics(t)
	}
	return t
}

// phrase is the query words joined by single spaces, so punctuation in the
// query does not prevent a verbatim title match.
func (q *AnalyzedQuery) phrase() string {
	return strings.Join(q.Terms, " ")
}
