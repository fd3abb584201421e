package search

import (
	"sort"

	"github.com/hyperjump/rentassist/internal/models"
	"github.com/hyperjump/rentassist/internal/storage"
)

type sortFields struct {
	price     float64
	rented    int
	favorited int
	viewed    int
}

// fieldLess returns the ordering behind a sort intent, or nil when the
// intent has no field to sort on (closest has no distance source).
func fieldLess(s models.Intent) func(a, b sortFields) bool {
	switch s {
	case models.IntentCheap:
		return func(a, b sortFields) bool { return a.price < b.price }
	case models.IntentExpensive:
		return func(a, b sortFields) bool { return a.price > b.price }
	case models.IntentMostRented:
		return func(a, b sortFields) bool { return a.rented > b.rented }
	case models.IntentMostFavorited:
		return func(a, b sortFields) bool { return a.favorited > b.favorited }
	case models.IntentMostViewed:
		return func(a, b sortFields) bool { return a.viewed > b.viewed }
	default:
		return nil
	}
}

// SortItems reorders catalog items for a sort intent. Ties keep their
// current order.
func SortItems(items []*storage.Item, s models.Intent) {
	less := fieldLess(s)
	if less == nil {
		return
	}
	fields := func(it *storage.Item) sortFields {
		return sortFields{it.BasePrice, it.RentCount, it.FavoriteCount, it.ViewCount}
	}
	sort.SliceStable(items, func(i, j int) bool { return less(fields(items[i]), fields(items[j])) })
}

// SortProducts reorders hydrated products for a sort intent, used when a
// follow-up re-sorts a previous result list. Ties keep their current order.
func SortProducts(products []*models.ProductCandidate, s models.Intent) {
	less := fieldLess(s)
	if less == nil {
		return
	}
	fields := func(p *models.ProductCandidate) sortFields {
		return sortFields{p.BasePrice, p.RentCount, p.FavoriteCount, p.ViewCount}
	}
	sort.SliceStable(products, func(i, j int) bool { return less(fields(products[i]), fields(products[j])) })
}
