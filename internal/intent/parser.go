// Package intent turns free-text user messages into ParsedFilters using the
// lexicon keyword tables.
package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperjump/rentassist/internal/lexicon"
	"github.com/hyperjump/rentassist/internal/models"
)

const (
	defaultSortLimit = 5
	defaultBestLimit = 1
	defaultMaxLimit  = 30
)

// Parser reads messages. It is safe for concurrent use.
type Parser struct {
	lexicon   *lexicon.Provider
	sortLimit int
	bestLimit int
	maxLimit  int
}

// Option configures a Parser.
type Option func(*Parser)

// WithSortLimit sets the item count used when a sort phrase has no quantity.
func WithSortLimit(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.sortLimit = n
		}
	}
}

// WithMaxLimit caps any quantity read from a message.
func WithMaxLimit(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxLimit = n
		}
	}
}

// NewParser creates a parser backed by the given lexicon provider.
func NewParser(lx *lexicon.Provider, opts ...Option) *Parser {
	p := &Parser{
		lexicon:   lx,
		sortLimit: defaultSortLimit,
		bestLimit: defaultBestLimit,
		maxLimit:  defaultMaxLimit,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads message. It never fails: a message with no recognizable
// keywords yields Intent search and no filters.
func (p *Parser) Parse(message string) models.ParsedFilters {
	lx := p.lexicon.Current()
	text := lexicon.NewText(message)
	out := models.ParsedFilters{Intent: models.IntentSearch}

	if v, ok := lx.ProductType(text); ok {
		out.ProductType = &v
	}
	if v, ok := lx.City(text); ok {
		out.City = &v
	}
	if v, ok := lx.District(text); ok {
		out.District = &v
	}
	out.MinPrice, out.MaxPrice = extractPrices(text.Norm, lx)

	// Sort phrases take precedence over best/recommend keywords.
	if typ, ok := lx.SortIntent(text); ok {
		out.Intent = typ
		out.SortConfig = &models.SortConfig{Type: typ, Limit: p.quantity(text, lx, p.sortLimit)}
		return out
	}
	if lx.HasBest(text) {
		out.Intent = models.IntentBest
		out.BestConfig = &models.BestConfig{Limit: p.quantity(text, lx, p.bestLimit)}
		return out
	}
	if lx.HasRecommend(text) {
		out.Intent = models.IntentRecommend
	}
	return out
}

var topRe = regexp.MustCompile(`(?:^|[^\p{L}\p{N}])top\s*(\d{1,3})(?:$|[^\p{L}\p{N}])`)

// quantity reads "top N" or "N <unit>" from text, capped at the max limit.
func (p *Parser) quantity(text lexicon.Text, lx *lexicon.Lexicon, def int) int {
	n := 0
	if m := topRe.FindStringSubmatch(text.Norm); m != nil {
		n, _ = strconv.Atoi(m[1])
	} else if re := unitCountRe(lx.QuantityUnits(text)); re != nil {
		if m := re.FindStringSubmatch(text.Norm); m != nil {
			n, _ = strconv.Atoi(m[1])
		}
	}
	if n <= 0 {
		return def
	}
	if n > p.maxLimit {
		return p.maxLimit
	}
	return n
}

func unitCountRe(units []string) *regexp.Regexp {
	if len(units) == 0 {
		return nil
	}
	quoted := make([]string, len(units))
	for i, u := range units {
		quoted[i] = regexp.QuoteMeta(u)
	}
	return regexp.MustCompile(`(?:^|[^\p{L}\p{N}])(\d{1,3})\s*(?:` + strings.Join(quoted, "|") + `)(?:$|[^\p{L}\p{N}])`)
}
