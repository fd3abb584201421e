package search

import (
	"context"

	"github.com/hyperjump/rentassist/internal/models"
	"github.com/hyperjump/rentassist/internal/storage"
	"golang.org/x/sync/errgroup"
)

// hydration holds the batch lookups for one result page.
type hydration struct {
	images     map[string][]models.Image
	tags       map[string][]models.Tag
	categories map[string]*models.Category
	conditions map[int]*models.Condition
	priceUnits map[int]*models.PriceUnit
	owners     map[string]*models.Owner
}

// hydrate loads related records for items with one batch query per relation,
// run concurrently, and converts them to candidates. Items whose category
// does not resolve or with no stock left are dropped. Any lookup error fails
// the whole page.
func (e *Engine) hydrate(ctx context.Context, items []*storage.Item) ([]*models.ProductCandidate, error) {
	if len(items) == 0 {
		return []*models.ProductCandidate{}, nil
	}
	var (
		itemIDs      = make([]string, 0, len(items))
		categoryIDs  = make([]string, 0, len(items))
		ownerIDs     = make([]string, 0, len(items))
		conditionIDs = make([]int, 0, len(items))
		priceUnitIDs = make([]int, 0, len(items))
	)
	for _, it := range items {
		itemIDs = append(itemIDs, it.ID)
		categoryIDs = appendUnique(categoryIDs, it.CategoryID)
		ownerIDs = appendUnique(ownerIDs, it.OwnerID)
		if it.ConditionID > 0 {
			conditionIDs = appendUnique(conditionIDs, it.ConditionID)
		}
		if it.PriceUnitID > 0 {
			priceUnitIDs = appendUnique(priceUnitIDs, it.PriceUnitID)
		}
	}

	var h hydration
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)
	g.Go(func() (err error) {
		h.images, err = e.catalog.ImagesByItemIDs(gctx, itemIDs)
		return err
	})
	g.Go(func() (err error) {
		h.tags, err = e.catalog.TagsByItemIDs(gctx, itemIDs)
		return err
	})
	g.Go(func() (err error) {
		h.categories, err = e.catalog.CategoriesByIDs(gctx, categoryIDs)
		return err
	})
	g.Go(func() (err error) {
		h.conditions, err = e.catalog.ConditionsByIDs(gctx, conditionIDs)
		return err
	})
	g.Go(func() (err error) {
		h.priceUnits, err = e.catalog.PriceUnitsByIDs(gctx, priceUnitIDs)
		return err
	})
	g.Go(func() (err error) {
		h.owners, err = e.catalog.OwnersByIDs(gctx, ownerIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*models.ProductCandidate, 0, len(items))
	for _, it := range items {
		cat := h.categories[it.CategoryID]
		if cat == nil || it.AvailableQuantity <= 0 {
			continue
		}
		out = append(out, &models.ProductCandidate{
			ID:                it.ID,
			Title:             it.Title,
			ShortDescription:  it.ShortDescription,
			BasePrice:         it.BasePrice,
			DepositAmount:     it.DepositAmount,
			Currency:          it.Currency,
			AvailableQuantity: it.AvailableQuantity,
			Quantity:          it.Quantity,
			City:              it.City,
			District:          it.District,
			Address:           it.Address,
			FullAddress:       models.JoinAddress(it.Address, it.District, it.City),
			ViewCount:         it.ViewCount,
			FavoriteCount:     it.FavoriteCount,
			RentCount:         it.RentCount,
			Category:          cat,
			Condition:         h.conditions[it.ConditionID],
			PriceUnit:         h.priceUnits[it.PriceUnitID],
			Tags:              h.tags[it.ID],
			Images:            h.images[it.ID],
			Owner:             h.owners[it.OwnerID],
			CreatedAt:         it.CreatedAt,
		})
	}
	return out, nil
}

func appendUnique[T comparable](s []T, v T) []T {
	var zero T
	if v == zero {
		return s
	}
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}
