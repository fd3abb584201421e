// Package storage defines the catalog persistence interfaces and their SQLite
// implementation.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hyperjump/rentassist/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Item statuses. Only approved and active items are publicly visible.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusActive   = "active"
	StatusRejected = "rejected"
)

// Item is a catalog record.
type Item struct {
	ID                string
	OwnerID           string
	CategoryID        string
	Title             string
	ShortDescription  string
	BasePrice         float64
	DepositAmount     float64
	Currency          string
	Quantity          int
	AvailableQuantity int
	City              string
	District          string
	Address           string
	ViewCount         int
	FavoriteCount     int
	RentCount         int
	ConditionID       int
	PriceUnitID       int
	Status            string
	CreatedAt         time.Time
	DeletedAt         *time.Time
}

// Visible reports whether the item may be shown publicly: approved or active,
// not soft-deleted, and with stock available.
func (it *Item) Visible() bool {
	if it == nil || it.DeletedAt != nil || it.AvailableQuantity <= 0 {
		return false
	}
	return it.Status == StatusApproved || it.Status == StatusActive
}

// TextMatch lists the text signals of a query. An item matches when ANY
// signal matches.
type TextMatch struct {
	// Phrase matches titles equal to it and titles or descriptions containing it.
	Phrase string
	// Words match titles containing every word.
	Words []string
	// CategoryIDs match items in any of these categories.
	CategoryIDs []string
	// ItemIDs match these items directly (tag expansion).
	ItemIDs []string
	// Folded compares against diacritic-free columns.
	Folded bool
}

// ItemPredicate selects visible items. Text signals are OR-ed; scalar
// filters are AND-ed with them.
type ItemPredicate struct {
	Match      *TextMatch
	CategoryID string
	MinPrice   *float64
	MaxPrice   *float64
	City       string
	District   string
	// Sort orders rows by the intent's field before popularity. Intents
	// without a sortable field keep popularity order.
	Sort models.Intent
	// Limit bounds the rows returned (0 = no limit). It is applied after
	// ordering. Popularity order is views, favorites, recency.
	Limit int
}

// Catalog is the read side of the catalog store. The visibility predicate is
// applied by FindVisibleItems; FindItemByID returns the raw record and callers
// must check Item.Visible.
type Catalog interface {
	FindVisibleItems(ctx context.Context, pred ItemPredicate) ([]*Item, error)
	FindItemByID(ctx context.Context, id string) (*Item, error)
	FindCategoryIDsByName(ctx context.Context, name string) ([]string, error)
	FindItemIDsByTagName(ctx context.Context, name string) ([]string, error)

	// Batch lookups keyed by id lists.
	ImagesByItemIDs(ctx context.Context, itemIDs []string) (map[string][]models.Image, error)
	TagsByItemIDs(ctx context.Context, itemIDs []string) (map[string][]models.Tag, error)
	CategoriesByIDs(ctx context.Context, ids []string) (map[string]*models.Category, error)
	ConditionsByIDs(ctx context.Context, ids []int) (map[int]*models.Condition, error)
	PriceUnitsByIDs(ctx context.Context, ids []int) (map[int]*models.PriceUnit, error)
	OwnersByIDs(ctx context.Context, ids []string) (map[string]*models.Owner, error)
}

// CatalogWriter is the write side, used by catalog import and seeding only.
type CatalogWriter interface {
	EnsureCategory(ctx context.Context, name string) (*models.Category, error)
	EnsureCondition(ctx context.Context, name string) (int, error)
	EnsurePriceUnit(ctx context.Context, name string) (int, error)
	SaveOwner(ctx context.Context, owner *models.Owner) error
	SaveItem(ctx context.Context, item *Item) error
	SetItemTags(ctx context.Context, itemID string, names []string) error
	SetItemImages(ctx context.Context, itemID string, urls []string) error
	SoftDeleteItem(ctx context.Context, itemID string) error
	CountItems(ctx context.Context) (int64, error)
	// AllItems returns every item record, visible or not, in id order.
	AllItems(ctx context.Context) ([]*Item, error)
}

// Store is the full catalog store.
type Store interface {
	Catalog
	CatalogWriter
}
