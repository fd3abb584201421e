// Package models defines the shared data shapes of the assistant: catalog
// candidates, parsed filters, search filters, conversation turns and chat results.
package models

import (
	"strings"
	"time"
)

// ConditionNewID is the canonical id of the "new" item condition.
const ConditionNewID = 1

// Category is the resolved category of a catalog item.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// Condition is the physical condition of a catalog item.
type Condition struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// IsNew reports whether the condition is "new", by canonical id or by name.
func (c *Condition) IsNew() bool {
	if c == nil {
		return false
	}
	if c.ID == ConditionNewID {
		return true
	}
	name := strings.ToLower(strings.TrimSpace(c.Name))
	return name == "new" || name == "mới" || name == "moi"
}

// PriceUnit is the rental period a base price refers to (day, week, ...).
type PriceUnit struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Tag is a free-form label attached to items.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Image is an item image; lower DisplayRank is shown first.
type Image struct {
	URL         string `json:"url"`
	DisplayRank int    `json:"display_rank"`
}

// Owner holds the public display info of the lister.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// ProductCandidate is the denormalized read-model of a visible catalog item
// used for search, scoring and conversation context. It is never persisted as
// a catalog record.
type ProductCandidate struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	ShortDescription  string     `json:"short_description,omitempty"`
	BasePrice         float64    `json:"base_price"`
	DepositAmount     float64    `json:"deposit_amount"`
	Currency          string     `json:"currency"`
	AvailableQuantity int        `json:"available_quantity"`
	Quantity          int        `json:"quantity"`
	City              string     `json:"city,omitempty"`
	District          string     `json:"district,omitempty"`
	Address           string     `json:"address,omitempty"`
	FullAddress       string     `json:"full_address,omitempty"`
	ViewCount         int        `json:"view_count"`
	FavoriteCount     int        `json:"favorite_count"`
	RentCount         int        `json:"rent_count"`
	Category          *Category  `json:"category,omitempty"`
	Condition         *Condition `json:"condition,omitempty"`
	PriceUnit         *PriceUnit `json:"price_unit,omitempty"`
	Tags              []Tag      `json:"tags,omitempty"`
	Images            []Image    `json:"images,omitempty"`
	Owner             *Owner     `json:"owner,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`

	// Detail-only fields, set by a detail fetch.
	IsAvailableNow  bool `json:"is_available_now,omitempty"`
	PopularityScore int  `json:"popularity_score,omitempty"`

	// Scoring-time fields. EstimatedDistance is never populated: there is no
	// distance source.
	EstimatedDistance   *float64 `json:"estimated_distance"`
	RecommendationScore float64  `json:"recommendation_score,omitempty"`
	Reasons             []string `json:"reasons,omitempty"`
}

// Engagement returns views + favorites + rents.
func (p *ProductCandidate) Engagement() int {
	return p.ViewCount + p.FavoriteCount + p.RentCount
}

// JoinAddress builds the display address from its non-empty parts.
func JoinAddress(address, district, city string) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{address, district, city} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// IDs returns the ids of products in order.
func IDs(products []*ProductCandidate) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}
