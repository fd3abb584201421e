// Package compose turns generated text and the candidate set of one turn into
// the reply shown to the user, keeping every referenced product inside that
// candidate set.
package compose

import (
	"strings"

	"github.com/hyperjump/rentassist/internal/lexicon"
	"github.com/hyperjump/rentassist/internal/models"
	"github.com/hyperjump/rentassist/pkg/utils"
	"go.uber.org/zap"
)

// NoResultsMessage is the only reply given when no candidates exist.
const NoResultsMessage = "Xin lỗi, hiện chưa có sản phẩm nào phù hợp với yêu cầu của bạn. Bạn có thể mô tả rõ hơn hoặc thử tiêu chí khác nhé."

// BroadSearchNote is appended when results come from a search without criteria.
const BroadSearchNote = "Bạn chưa nêu tiêu chí cụ thể nên mình gợi ý các sản phẩm đang được quan tâm nhiều nhất."

const maxReasonLength = 200

// Input is everything one reply is composed from.
type Input struct {
	// Candidates is the exact product set given to the generator.
	Candidates []*models.ProductCandidate
	// Generated is the raw generator text; empty when generation failed.
	Generated string
	// BroadSearch adds the broad search disclosure.
	BroadSearch bool
	// Notes are appended verbatim, e.g. a missing-distance disclosure.
	Notes []string
}

// Output is the composed reply.
type Output struct {
	Text        string
	Suggestions []models.Suggestion
	// Fallback is set when the catalog summary replaced generated content.
	Fallback bool
}

// Composer applies the fabrication guard to generated replies.
type Composer struct {
	lexicon   *lexicon.Provider
	fallbackN int
	logger    *zap.Logger
}

// Option configures a Composer.
type Option func(*Composer)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Composer) { c.logger = l }
}

// WithFallbackSuggestions sets how many candidates a fallback reply lists.
func WithFallbackSuggestions(n int) Option {
	return func(c *Composer) {
		if n > 0 {
			c.fallbackN = n
		}
	}
}

// NewComposer creates a Composer using lx for filler detection.
func NewComposer(lx *lexicon.Provider, opts ...Option) *Composer {
	c := &Composer{lexicon: lx, fallbackN: 5}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = utils.OrNop(c.logger)
	return c
}

// Compose builds the reply. Suggestions only ever name candidates; text that
// names an unknown product id is replaced by a catalog summary; with no
// candidates the reply is always NoResultsMessage.
func (c *Composer) Compose(in Input) Output {
	if len(in.Candidates) == 0 {
		return Output{Text: NoResultsMessage, Suggestions: []models.Suggestion{}}
	}
	byID := make(map[string]*models.ProductCandidate, len(in.Candidates))
	allowed := make(map[string]bool, len(in.Candidates))
	for _, p := range in.Candidates {
		byID[p.ID] = p
		allowed[strings.ToLower(p.ID)] = true
	}

	text, raw, err := extractPayload(in.Generated)
	if err != nil {
		c.logger.Debug("ignoring generated suggestions", zap.Error(err))
	}
	suggestions := make([]models.Suggestion, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	dropped := 0
	for _, s := range raw {
		p, ok := byID[strings.TrimSpace(s.ID)]
		if !ok {
			dropped++
			continue
		}
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		suggestions = append(suggestions, suggestionFor(p, s.Reason))
	}
	if dropped > 0 {
		c.logger.Warn("dropped suggestions outside the candidate set", zap.Int("dropped", dropped))
	}

	out := Output{Text: text, Suggestions: suggestions}
	if foreign := foreignIDs(text, allowed); len(foreign) > 0 {
		c.logger.Warn("generated text names unknown products", zap.Strings("ids", foreign))
		out.Text = ""
	}
	if len(out.Suggestions) == 0 {
		out.Fallback = true
		n := min(c.fallbackN, len(in.Candidates))
		for _, p := range in.Candidates[:n] {
			out.Suggestions = append(out.Suggestions, suggestionFor(p, strings.Join(p.Reasons, ", ")))
		}
		if out.Text == "" || c.isFiller(out.Text) {
			out.Text = Summary(in.Candidates, c.fallbackN)
		}
	}
	if out.Text == "" {
		out.Fallback = true
		out.Text = Summary(in.Candidates, c.fallbackN)
	}
	if in.BroadSearch {
		out.Text += "\n\n" + BroadSearchNote
	}
	for _, n := range in.Notes {
		out.Text += "\n\n" + n
	}
	return out
}

func (c *Composer) isFiller(text string) bool {
	if c.lexicon == nil {
		return false
	}
	return c.lexicon.Current().IsFiller(lexicon.NewText(text))
}

func suggestionFor(p *models.ProductCandidate, reason string) models.Suggestion {
	return models.Suggestion{
		ID:        p.ID,
		Title:     p.Title,
		BasePrice: p.BasePrice,
		Currency:  p.Currency,
		Reason:    utils.Truncate(strings.TrimSpace(reason), maxReasonLength),
	}
}
