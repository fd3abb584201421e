package models

// Intent is the classified purpose of a user message.
type Intent string

const (
	IntentSearch        Intent = "search"
	IntentRecommend     Intent = "recommend"
	IntentBest          Intent = "best"
	IntentCheap         Intent = "cheap"
	IntentExpensive     Intent = "expensive"
	IntentClosest       Intent = "closest"
	IntentMostRented    Intent = "most_rented"
	IntentMostFavorited Intent = "most_favorited"
	IntentMostViewed    Intent = "most_viewed"
)

// SortIntents lists the sort intents in detection priority order.
var SortIntents = []Intent{
	IntentCheap,
	IntentExpensive,
	IntentClosest,
	IntentMostRented,
	IntentMostFavorited,
	IntentMostViewed,
}

// IsSort reports whether i is a sort-by-field intent.
func (i Intent) IsSort() bool {
	for _, s := range SortIntents {
		if i == s {
			return true
		}
	}
	return false
}

// SortConfig is a detected sort request.
type SortConfig struct {
	Type  Intent `json:"type"`
	Limit int    `json:"limit"`
}

// BestConfig is a detected "best / top N" request.
type BestConfig struct {
	Limit int `json:"limit"`
}

// ParsedFilters is the structured reading of one user message.
// Intent is always set. At most one of SortConfig and BestConfig is set.
type ParsedFilters struct {
	ProductType *string     `json:"product_type"`
	MinPrice    *float64    `json:"min_price"`
	MaxPrice    *float64    `json:"max_price"`
	City        *string     `json:"city"`
	District    *string     `json:"district"`
	Intent      Intent      `json:"intent"`
	SortConfig  *SortConfig `json:"sort_config,omitempty"`
	BestConfig  *BestConfig `json:"best_config,omitempty"`
}

// HasCriteria reports whether the message carried any filter at all.
func (f *ParsedFilters) HasCriteria() bool {
	return f.ProductType != nil || f.City != nil || f.District != nil || f.MinPrice != nil || f.MaxPrice != nil
}

// SearchFilters is the input to query execution.
type SearchFilters struct {
	Q          string   `json:"q"`
	CategoryID string   `json:"category_id,omitempty"`
	City       string   `json:"city,omitempty"`
	District   string   `json:"district,omitempty"`
	MinPrice   *float64 `json:"min_price,omitempty" validate:"omitempty,gte=0"`
	MaxPrice   *float64 `json:"max_price,omitempty" validate:"omitempty,gte=0"`
	SortType   Intent   `json:"sort_type,omitempty" validate:"omitempty,oneof=cheap expensive closest most_rented most_favorited most_viewed"`
	Limit      int      `json:"limit,omitempty" validate:"gte=0"`
}

// Normalize sets a default limit and caps it at maxLimit, so Limit is always
// in [1, maxLimit].
func (f *SearchFilters) Normalize(defaultLimit, maxLimit int) {
	if maxLimit <= 0 {
		maxLimit = 30
	}
	if defaultLimit <= 0 || defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
}

// FromParsed builds search filters from a parsed message. The product type
// becomes the text query.
func FromParsed(p ParsedFilters) SearchFilters {
	var f SearchFilters
	if p.ProductType != nil {
		f.Q = *p.ProductType
	}
	if p.City != nil {
		f.City = *p.City
	}
	if p.District != nil {
		f.District = *p.District
	}
	f.MinPrice = p.MinPrice
	f.MaxPrice = p.MaxPrice
	if p.SortConfig != nil {
		f.SortType = p.SortConfig.Type
		f.Limit = p.SortConfig.Limit
	}
	return f
}
