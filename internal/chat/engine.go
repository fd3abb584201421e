// Package chat answers one user message at a time: it reads the intent,
// resolves follow-ups from history, retrieves and scores catalog products,
// generates a reply and records the turn.
//
// The engine holds no per-session lock. Callers must serialize requests that
// share a session id.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/rentassist/internal/compose"
	"github.com/hyperjump/rentassist/internal/config"
	"github.com/hyperjump/rentassist/internal/conversation"
	"github.com/hyperjump/rentassist/internal/intent"
	"github.com/hyperjump/rentassist/internal/llm"
	"github.com/hyperjump/rentassist/internal/models"
	"github.com/hyperjump/rentassist/internal/search"
	"github.com/hyperjump/rentassist/pkg/utils"
	"go.uber.org/zap"
)

// Searcher is the catalog read side the engine depends on.
type Searcher interface {
	Search(ctx context.Context, f models.SearchFilters) []*models.ProductCandidate
	GetProductDetail(ctx context.Context, id string) *models.ProductCandidate
	SpellingHints(ctx context.Context, q string) []string
}

// Recommender scores candidates and returns the top picks.
type Recommender interface {
	Recommend(ctx context.Context, filters models.SearchFilters, previous []*models.ProductCandidate, userLocation string) []*models.ProductCandidate
}

// Dependencies are the collaborators of an Engine. All are required.
type Dependencies struct {
	Parser      *intent.Parser
	Searcher    Searcher
	Recommender Recommender
	Composer    *compose.Composer
	Generator   llm.Generator
	Store       conversation.Store
}

// Engine handles chat messages.
type Engine struct {
	deps   Dependencies
	config *config.ChatConfig
	logger *zap.Logger
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine.
func NewEngine(deps Dependencies, cfg *config.ChatConfig, opts ...Option) *Engine {
	if cfg == nil {
		cfg = &config.ChatConfig{}
	}
	e := &Engine{deps: deps, config: cfg, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = utils.OrNop(e.logger)
	return e
}

// turn is the working state of one message.
type turn struct {
	req      models.ChatRequest
	message  string
	parsed   models.ParsedFilters
	history  []models.ConversationTurn
	previous []*models.ProductCandidate
	prevFilt *conversation.PreviousFilters
	query    string

	candidates      []*models.ProductCandidate
	recommendations []*models.ProductCandidate
	best            *models.ProductCandidate
	broad           bool
	notes           []string

	// reply, when set, is sent as is without generation.
	reply        string
	products     []*models.ProductCandidate
	needLocation bool
}

// Handle answers one message. It never fails: store, search and generation
// problems degrade to catalog-only or fixed replies.
func (e *Engine) Handle(ctx context.Context, req models.ChatRequest) *models.ChatResponse {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	resp := &models.ChatResponse{
		SessionID:   sessionID,
		Intent:      models.IntentSearch,
		Suggestions: []models.Suggestion{},
		Products:    []*models.ProductCandidate{},
	}
	message := e.clip(strings.TrimSpace(req.Message))
	if message == "" {
		resp.Text = EmptyMessageReply
		return resp
	}

	t := &turn{req: req, message: message}
	t.history = e.loadHistory(ctx, sessionID)
	t.parsed = e.deps.Parser.Parse(message)
	t.previous = conversation.PreviousProductList(t.history)
	withCurrent := append(append([]models.ConversationTurn(nil), t.history...), models.ConversationTurn{Role: models.RoleUser, Content: message})
	t.prevFilt = conversation.ExtractPreviousFilters(e.deps.Parser, withCurrent)
	resp.Intent = t.parsed.Intent

	switch {
	case t.parsed.SortConfig != nil:
		e.handleSort(ctx, t)
	case t.parsed.Intent == models.IntentBest:
		e.handleBest(ctx, t)
	default:
		e.handleSearch(ctx, t)
	}

	if t.reply != "" {
		resp.Text = t.reply
		resp.NeedLocation = t.needLocation
		if t.products != nil {
			resp.Products = t.products
		}
	} else {
		out := e.deps.Composer.Compose(compose.Input{
			Candidates:  t.candidates,
			Generated:   e.generate(ctx, t),
			BroadSearch: t.broad,
			Notes:       t.notes,
		})
		resp.Text = out.Text
		resp.Suggestions = out.Suggestions
		resp.Products = nonNil(t.candidates)
		resp.Recommendations = t.recommendations
		resp.BestProduct = t.best
		resp.BroadSearch = t.broad
		if len(t.candidates) == 0 && t.query != "" {
			resp.SpellingHints = e.deps.Searcher.SpellingHints(ctx, t.query)
		}
	}

	e.record(ctx, sessionID, message, resp)
	return resp
}

func (e *Engine) clip(s string) string {
	if n := e.config.MaxMessageLength; n > 0 {
		if r := []rune(s); len(r) > n {
			return string(r[:n])
		}
	}
	return s
}

func (e *Engine) loadHistory(ctx context.Context, sessionID string) []models.ConversationTurn {
	n := e.config.HistoryTurns
	if n <= 0 {
		n = 10
	}
	history, err := e.deps.Store.Recent(ctx, sessionID, n)
	if err != nil {
		e.logger.Warn("load conversation history failed", zap.String("session", sessionID), zap.Error(err))
		return nil
	}
	return history
}

// filters builds search filters from the message, backfilling a missing
// product type and city from the earlier user message.
func (e *Engine) filters(t *turn) models.SearchFilters {
	f := models.FromParsed(t.parsed)
	if p := t.prevFilt; p != nil {
		if f.Q == "" && p.ProductType != nil {
			f.Q = *p.ProductType
		}
		if f.City == "" && f.District == "" && p.City != nil {
			f.City = *p.City
		}
	}
	return f
}

// followUp reports whether the message refers back to the previous list.
// A message stating any criterion of its own runs a fresh search, with the
// missing criteria backfilled from context.
func (t *turn) followUp() bool {
	return !t.parsed.HasCriteria() && len(t.previous) > 0
}

func (e *Engine) handleSort(ctx context.Context, t *turn) {
	sc := t.parsed.SortConfig
	address := strings.TrimSpace(t.req.UserAddress)
	if sc.Type == models.IntentClosest {
		if address == "" {
			t.reply = AskLocationReply
			t.needLocation = true
			t.products = nonNil(t.previous)
			return
		}
		t.notes = append(t.notes, DistanceUnavailableNote)
	}

	if t.followUp() {
		products := e.refresh(ctx, t.previous)
		search.SortProducts(products, sc.Type)
		if len(products) > sc.Limit {
			products = products[:sc.Limit]
		}
		t.candidates = products
		return
	}
	f := e.filters(t)
	t.query = f.Q
	t.candidates = e.deps.Searcher.Search(ctx, f)
}

func (e *Engine) handleBest(ctx context.Context, t *turn) {
	f := e.filters(t)
	if t.parsed.BestConfig != nil {
		f.Limit = t.parsed.BestConfig.Limit
	}
	var source []*models.ProductCandidate
	if t.followUp() {
		source = t.previous
	}
	recs := e.deps.Recommender.Recommend(ctx, f, source, t.req.UserAddress)
	if len(recs) == 0 {
		t.products = nonNil(t.previous)
		if strings.TrimSpace(t.req.UserAddress) == "" {
			t.reply = AskLocationReply
			t.needLocation = true
		} else {
			t.reply = AskCriteriaReply
		}
		return
	}
	t.candidates = recs
	t.recommendations = recs
	t.best = recs[0]
}

func (e *Engine) handleSearch(ctx context.Context, t *turn) {
	f := e.filters(t)
	t.query = f.Q
	t.broad = f.Q == "" && f.City == "" && f.District == "" && f.MinPrice == nil && f.MaxPrice == nil
	t.candidates = e.deps.Searcher.Search(ctx, f)
	if t.parsed.Intent != models.IntentRecommend || len(t.candidates) == 0 {
		return
	}
	rf := f
	rf.Limit = e.config.FallbackSuggestions
	t.recommendations = e.deps.Recommender.Recommend(ctx, rf, t.candidates, t.req.UserAddress)
	if len(t.recommendations) > 0 {
		t.best = t.recommendations[0]
	}
}

// refresh re-reads products from the catalog, dropping those no longer visible.
func (e *Engine) refresh(ctx context.Context, products []*models.ProductCandidate) []*models.ProductCandidate {
	out := make([]*models.ProductCandidate, 0, len(products))
	for _, p := range products {
		if p == nil {
			continue
		}
		if fresh := e.deps.Searcher.GetProductDetail(ctx, p.ID); fresh != nil {
			out = append(out, fresh)
		}
	}
	return out
}

// generate asks the generator for a reply over the turn's candidates. Errors
// return "" so the composer answers from the catalog alone.
func (e *Engine) generate(ctx context.Context, t *turn) string {
	if len(t.candidates) == 0 {
		return ""
	}
	req := llm.GenerateRequest{
		System: compose.BuildSystemPrompt(compose.PromptInput{
			Intent:      t.parsed.Intent,
			Candidates:  t.candidates,
			UserAddress: t.req.UserAddress,
			BroadSearch: t.broad,
			Notes:       t.notes,
		}),
		History:    historyMessages(t.history),
		Message:    t.message,
		ProductIDs: models.IDs(t.candidates),
	}
	text, err := e.deps.Generator.Generate(ctx, req)
	if err != nil {
		e.logger.Warn("generation failed, answering from catalog", zap.Error(err))
		return ""
	}
	return text
}

func historyMessages(history []models.ConversationTurn) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	for _, h := range history {
		out = append(out, llm.Message{Role: h.Role, Content: h.Content})
	}
	return out
}

// record appends the user and model turns. Failures are only logged.
func (e *Engine) record(ctx context.Context, sessionID, message string, resp *models.ChatResponse) {
	now := e.now()
	user := models.ConversationTurn{Role: models.RoleUser, Content: message, Timestamp: now}
	model := models.ConversationTurn{
		Role:            models.RoleModel,
		Content:         resp.Text,
		Timestamp:       now,
		Products:        conversation.TrimProducts(resp.Products),
		Recommendations: conversation.TrimProducts(resp.Recommendations),
		BestProduct:     conversation.TrimProduct(resp.BestProduct),
	}
	if err := e.deps.Store.Append(ctx, sessionID, user, model); err != nil {
		e.logger.Warn("append conversation turns failed", zap.String("session", sessionID), zap.Error(err))
	}
}

func nonNil(ps []*models.ProductCandidate) []*models.ProductCandidate {
	if ps == nil {
		return []*models.ProductCandidate{}
	}
	return ps
}
