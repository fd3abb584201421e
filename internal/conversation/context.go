// Package conversation derives follow-up context from chat history and
// persists conversation turns.
package conversation

import (
	"strings"

	"github.com/hyperjump/rentassist/internal/models"
	"github.com/hyperjump/rentassist/pkg/utils"
)

// FilterParser reads structured filters from a message.
type FilterParser interface {
	Parse(message string) models.ParsedFilters
}

// PreviousFilters is the criteria carried over from an earlier user message.
type PreviousFilters struct {
	// Q is the product type when one was recognized, else the message text.
	Q           string
	ProductType *string
	City        *string
}

// ExtractPreviousFilters re-parses the most recent earlier user message. The
// last turn of history is the message being answered and is skipped. It
// returns nil when no earlier user message has content.
func ExtractPreviousFilters(p FilterParser, history []models.ConversationTurn) *PreviousFilters {
	for i := len(history) - 2; i >= 0; i-- {
		turn := history[i]
		if turn.Role != models.RoleUser {
			continue
		}
		text := strings.TrimSpace(turn.Content)
		if text == "" {
			continue
		}
		parsed := p.Parse(text)
		prev := &PreviousFilters{Q: text, ProductType: parsed.ProductType, City: parsed.City}
		if parsed.ProductType != nil {
			prev.Q = *parsed.ProductType
		}
		return prev
	}
	return nil
}

// PreviousProductList returns the product list of the most recent model
// turn: its products, else its recommendations, else its best product alone.
// Older model turns are never consulted.
func PreviousProductList(history []models.ConversationTurn) []*models.ProductCandidate {
	for i := len(history) - 1; i >= 0; i-- {
		turn := history[i]
		if turn.Role != models.RoleModel {
			continue
		}
		switch {
		case len(turn.Products) > 0:
			return turn.Products
		case len(turn.Recommendations) > 0:
			return turn.Recommendations
		case turn.BestProduct != nil:
			return []*models.ProductCandidate{turn.BestProduct}
		}
		return []*models.ProductCandidate{}
	}
	return []*models.ProductCandidate{}
}

const maxStoredDescription = 200

// TrimProduct returns a copy of p small enough to keep in history. It keeps
// what follow-up sorting, scoring and detail lookups need.
func TrimProduct(p *models.ProductCandidate) *models.ProductCandidate {
	if p == nil {
		return nil
	}
	t := *p
	t.ShortDescription = utils.Truncate(p.ShortDescription, maxStoredDescription)
	if len(p.Images) > 1 {
		t.Images = p.Images[:1:1]
	}
	t.Tags = nil
	if p.Owner != nil {
		t.Owner = &models.Owner{ID: p.Owner.ID, DisplayName: p.Owner.DisplayName}
	}
	return &t
}

// TrimProducts trims every product of ps.
func TrimProducts(ps []*models.ProductCandidate) []*models.ProductCandidate {
	if len(ps) == 0 {
		return nil
	}
	out := make([]*models.ProductCandidate, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			out = append(out, TrimProduct(p))
		}
	}
	return out
}
