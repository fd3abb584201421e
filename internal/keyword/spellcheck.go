package keyword

import (
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/hyperjump/rentassist/pkg/utils"
)

// Suggestion is a dictionary term close to a query word.
type Suggestion struct {
	Term      string
	Distance  int
	Frequency int
	Score     float64
}

// SpellCheckResult describes the corrections found for one query.
type SpellCheckResult struct {
	OriginalQuery   string
	CorrectedQuery  string
	MisspelledTerms []string
	Suggestions     map[string][]Suggestion
	HasCorrections  bool
}

// SpellChecker suggests indexed terms for words the index has never seen.
type SpellChecker struct {
	dictionary     TermDictionary
	maxDistance    int
	minFreq        int
	maxSuggestions int

	mu     sync.RWMutex
	terms  map[string]int
	folded map[string][]string
	valid  bool
}

// SpellCheckerOption configures a SpellChecker.
type SpellCheckerOption func(*SpellChecker)

// WithMaxDistance sets the maximum edit distance for suggestions.
func WithMaxDistance(d int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMinFrequency ignores terms indexed in fewer than f products.
func WithMinFrequency(f int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if f >= 0 {
			s.minFreq = f
		}
	}
}

// WithMaxSuggestions caps the suggestions returned per word.
func WithMaxSuggestions(n int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// NewSpellChecker creates a SpellChecker over dict.
func NewSpellChecker(dict TermDictionary, opts ...SpellCheckerOption) *SpellChecker {
	s := &SpellChecker{
		dictionary:     dict,
		maxDistance:    2,
		minFreq:        1,
		maxSuggestions: 3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh reloads the term cache from the dictionary.
func (s *SpellChecker) Refresh() error {
	terms, err := s.dictionary.Terms()
	if err != nil {
		return err
	}
	folded := make(map[string][]string, len(terms))
	for t := range terms {
		f := utils.FoldDiacritics(t)
		folded[f] = append(folded[f], t)
	}
	s.mu.Lock()
	s.terms = terms
	s.folded = folded
	s.valid = true
	s.mu.Unlock()
	return nil
}

// Invalidate marks the cache stale; the next lookup reloads it.
func (s *SpellChecker) Invalidate() {
	s.mu.Lock()
	s.valid = false
	s.mu.Unlock()
}

func (s *SpellChecker) ensureFresh() error {
	s.mu.RLock()
	valid := s.valid
	s.mu.RUnlock()
	if valid {
		return nil
	}
	return s.Refresh()
}

// Check looks up every word of query and proposes a corrected query.
func (s *SpellChecker) Check(query string) (*SpellCheckResult, error) {
	if err := s.ensureFresh(); err != nil {
		return nil, err
	}
	words := utils.Words(utils.NormalizeText(query))
	result := &SpellCheckResult{
		OriginalQuery: query,
		Suggestions:   make(map[string][]Suggestion),
	}
	corrected := make([]string, 0, len(words))
	for _, w := range words {
		if s.known(w) {
			corrected = append(corrected, w)
			continue
		}
		suggestions := s.Suggest(w)
		if len(suggestions) == 0 {
			corrected = append(corrected, w)
			continue
		}
		result.HasCorrections = true
		result.MisspelledTerms = append(result.MisspelledTerms, w)
		result.Suggestions[w] = suggestions
		corrected = append(corrected, suggestions[0].Term)
	}
	result.CorrectedQuery = strings.Join(corrected, " ")
	return result, nil
}

func (s *SpellChecker) known(word string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	freq, ok := s.terms[word]
	return ok && freq >= s.minFreq
}

// Suggest returns the closest indexed terms for one lowercase word, best
// first. A word typed without diacritics matches indexed terms by their
// folded form.
func (s *SpellChecker) Suggest(word string) []Suggestion {
	if err := s.ensureFresh(); err != nil {
		return nil
	}
	plain := !utils.HasDiacritics(word)
	limit := s.allowedDistance(word)

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Suggestion
	for term, freq := range s.terms {
		if term == word || freq < s.minFreq {
			continue
		}
		if abs(utf8.RuneCountInString(term)-utf8.RuneCountInString(word)) > s.maxDistance {
			continue
		}
		d := LevenshteinDistance(word, term)
		if plain {
			d = min(d, LevenshteinDistance(word, utils.FoldDiacritics(term)))
		}
		if d > limit {
			continue
		}
		out = append(out, Suggestion{
			Term:      term,
			Distance:  d,
			Frequency: freq,
			Score:     float64(freq) / float64(d+1),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Term < out[j].Term
	})
	if len(out) > s.maxSuggestions {
		out = out[:s.maxSuggestions]
	}
	return out
}

// allowedDistance shrinks the edit budget for short words, which would
// otherwise match half the dictionary.
func (s *SpellChecker) allowedDistance(word string) int {
	switch n := utf8.RuneCountInString(word); {
	case n <= 2:
		return 0
	case n <= 4:
		return min(1, s.maxDistance)
	default:
		return s.maxDistance
	}
}

// Hints returns up to n corrected queries, best first. A query whose words
// are all indexed gets no hints.
func (s *SpellChecker) Hints(query string, n int) []string {
	if n <= 0 {
		return nil
	}
	result, err := s.Check(query)
	if err != nil || !result.HasCorrections {
		return nil
	}
	hints := []string{result.CorrectedQuery}
	seen := map[string]bool{result.CorrectedQuery: true}
	base := strings.Fields(result.CorrectedQuery)
	for _, miss := range result.MisspelledTerms {
		best := result.Suggestions[miss][0].Term
		for _, alt := range result.Suggestions[miss][1:] {
			if len(hints) >= n {
				return hints
			}
			variant := make([]string, len(base))
			for i, w := range base {
				if w == best {
					w = alt.Term
				}
				variant[i] = w
			}
			q := strings.Join(variant, " ")
			if !seen[q] {
				seen[q] = true
				hints = append(hints, q)
			}
		}
	}
	if len(hints) > n {
		hints = hints[:n]
	}
	return hints
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
