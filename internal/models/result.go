package models

import "time"

// Role is the author of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ConversationTurn is one message of a chat session. Only model turns carry
// products, recommendations or a best product.
type ConversationTurn struct {
	Role            Role                `json:"role"`
	Content         string              `json:"content"`
	Timestamp       time.Time           `json:"timestamp"`
	Products        []*ProductCandidate `json:"products,omitempty"`
	Recommendations []*ProductCandidate `json:"recommendations,omitempty"`
	BestProduct     *ProductCandidate   `json:"best_product,omitempty"`
}

// Suggestion is a structured product suggestion. Every field except Reason is
// copied from the catalog candidate.
type Suggestion struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	BasePrice float64 `json:"base_price"`
	Currency  string  `json:"currency"`
	Reason    string  `json:"reason,omitempty"`
}

// ChatRequest is one incoming user message.
type ChatRequest struct {
	SessionID   string `json:"session_id,omitempty" validate:"omitempty,max=128"`
	Message     string `json:"message" validate:"required,max=2000"`
	UserAddress string `json:"user_address,omitempty" validate:"omitempty,max=500"`
}

// ChatResponse is the composed answer to one user message.
type ChatResponse struct {
	SessionID       string              `json:"session_id"`
	Intent          Intent              `json:"intent"`
	Text            string              `json:"text"`
	Suggestions     []Suggestion        `json:"suggestions"`
	Products        []*ProductCandidate `json:"products"`
	Recommendations []*ProductCandidate `json:"recommendations,omitempty"`
	BestProduct     *ProductCandidate   `json:"best_product,omitempty"`
	NeedLocation    bool                `json:"need_location,omitempty"`
	BroadSearch     bool                `json:"broad_search,omitempty"`
	SpellingHints   []string            `json:"spelling_hints,omitempty"`
}
