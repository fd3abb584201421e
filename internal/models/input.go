package models

// ProductInput is one product to write into the catalog, as read from an
// import file. Category, condition and price unit are given by name and
// resolved (or created) on write.
type ProductInput struct {
	ID                string   `json:"id,omitempty"`
	Title             string   `json:"title" validate:"required,max=255"`
	Description       string   `json:"description,omitempty"`
	BasePrice         float64  `json:"base_price" validate:"gte=0"`
	DepositAmount     float64  `json:"deposit_amount,omitempty" validate:"gte=0"`
	Currency          string   `json:"currency,omitempty"`
	Quantity          int      `json:"quantity,omitempty" validate:"gte=0"`
	AvailableQuantity *int     `json:"available_quantity,omitempty" validate:"omitempty,gte=0"`
	City              string   `json:"city,omitempty"`
	District          string   `json:"district,omitempty"`
	Address           string   `json:"address,omitempty"`
	Category          string   `json:"category,omitempty"`
	Condition         string   `json:"condition,omitempty"`
	PriceUnit         string   `json:"price_unit,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	Images            []string `json:"images,omitempty"`
	Owner             string   `json:"owner,omitempty"`
	Status            string   `json:"status,omitempty" validate:"omitempty,oneof=pending approved active rejected"`
	ViewCount         int      `json:"view_count,omitempty" validate:"gte=0"`
	FavoriteCount     int      `json:"favorite_count,omitempty" validate:"gte=0"`
	RentCount         int      `json:"rent_count,omitempty" validate:"gte=0"`
}
