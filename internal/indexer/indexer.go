// Package indexer writes products into the catalog store and keeps the
// keyword term index in step with it.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hyperjump/rentassist/internal/keyword"
	"github.com/hyperjump/rentassist/internal/models"
	"github.com/hyperjump/rentassist/internal/storage"
	"github.com/hyperjump/rentassist/pkg/utils"
	"go.uber.org/zap"
)

// ownerNamespace derives stable owner ids from display names.
var ownerNamespace = uuid.MustParse("6f2c1d1e-8a4b-4f0e-9d3c-2b7a5e9c4f10")

// ErrInvalidProduct is returned for input that cannot be stored.
var ErrInvalidProduct = errors.New("invalid product")

// Indexer writes products into the catalog and term index.
type Indexer struct {
	catalog storage.Store
	terms   keyword.TermIndex
	spell   *keyword.SpellChecker
	logger  *zap.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output (product indexed, product deleted, etc.).
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// WithSpellChecker sets a spell checker whose dictionary is invalidated on
// every write.
func WithSpellChecker(s *keyword.SpellChecker) IndexerOption {
	return func(idx *Indexer) { idx.spell = s }
}

// NewIndexer creates an indexer. terms may be nil when no term index is kept.
func NewIndexer(catalog storage.Store, terms keyword.TermIndex, opts ...IndexerOption) *Indexer {
	idx := &Indexer{catalog: catalog, terms: terms}
	for _, opt := range opts {
		opt(idx)
	}
	idx.logger = utils.OrNop(idx.logger)
	return idx
}

// IndexProduct stores a product and returns its id. Names of category,
// condition, price unit, tags and owner are created as needed. A product
// without a status is approved. Only visible products are added to the term
// index.
func (idx *Indexer) IndexProduct(ctx context.Context, in *models.ProductInput) (string, error) {
	title := cleanText(in.Title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", ErrInvalidProduct)
	}
	if in.BasePrice < 0 || in.DepositAmount < 0 || in.Quantity < 0 {
		return "", fmt.Errorf("%w: negative price or quantity", ErrInvalidProduct)
	}
	if in.ID != "" {
		if _, err := uuid.Parse(in.ID); err != nil {
			return "", fmt.Errorf("%w: id %q is not a uuid", ErrInvalidProduct, in.ID)
		}
	}

	it := &storage.Item{
		ID:               in.ID,
		Title:            title,
		ShortDescription: shortDescription(in.Description),
		BasePrice:        in.BasePrice,
		DepositAmount:    in.DepositAmount,
		Currency:         strings.ToUpper(strings.TrimSpace(in.Currency)),
		Quantity:         in.Quantity,
		City:             strings.TrimSpace(in.City),
		District:         strings.TrimSpace(in.District),
		Address:          strings.TrimSpace(in.Address),
		ViewCount:        in.ViewCount,
		FavoriteCount:    in.FavoriteCount,
		RentCount:        in.RentCount,
		Status:           strings.ToLower(strings.TrimSpace(in.Status)),
	}
	if it.Status == "" {
		it.Status = storage.StatusApproved
	}
	it.AvailableQuantity = in.Quantity
	if in.AvailableQuantity != nil {
		it.AvailableQuantity = *in.AvailableQuantity
		it.Quantity = max(it.Quantity, it.AvailableQuantity)
	}

	var category string
	if name := strings.TrimSpace(in.Category); name != "" {
		c, err := idx.catalog.EnsureCategory(ctx, name)
		if err != nil {
			return "", fmt.Errorf("failed to resolve category: %w", err)
		}
		it.CategoryID, category = c.ID, c.Name
	}
	if name := strings.TrimSpace(in.Condition); name != "" {
		id, err := idx.catalog.EnsureCondition(ctx, name)
		if err != nil {
			return "", fmt.Errorf("failed to resolve condition: %w", err)
		}
		it.ConditionID = id
	}
	if name := strings.TrimSpace(in.PriceUnit); name != "" {
		id, err := idx.catalog.EnsurePriceUnit(ctx, name)
		if err != nil {
			return "", fmt.Errorf("failed to resolve price unit: %w", err)
		}
		it.PriceUnitID = id
	}
	if name := strings.TrimSpace(in.Owner); name != "" {
		owner := &models.Owner{
			ID:          uuid.NewSHA1(ownerNamespace, []byte(utils.NormalizeText(name))).String(),
			DisplayName: name,
		}
		if err := idx.catalog.SaveOwner(ctx, owner); err != nil {
			return "", fmt.Errorf("failed to store owner: %w", err)
		}
		it.OwnerID = owner.ID
	}

	if err := idx.catalog.SaveItem(ctx, it); err != nil {
		return "", fmt.Errorf("failed to store product: %w", err)
	}
	if err := idx.catalog.SetItemTags(ctx, it.ID, in.Tags); err != nil {
		return "", fmt.Errorf("failed to store tags: %w", err)
	}
	if err := idx.catalog.SetItemImages(ctx, it.ID, in.Images); err != nil {
		return "", fmt.Errorf("failed to store images: %w", err)
	}
	if err := idx.syncTerms(ctx, it, category, in.Tags); err != nil {
		return "", err
	}
	idx.invalidate()
	idx.logger.Debug("indexer product indexed", zap.String("id", it.ID), zap.Bool("visible", it.Visible()))
	return it.ID, nil
}

// DeleteProduct soft-deletes a product and drops it from the term index.
func (idx *Indexer) DeleteProduct(ctx context.Context, id string) error {
	idx.logger.Debug("indexer deleting product", zap.String("id", id))
	if err := idx.catalog.SoftDeleteItem(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if idx.terms != nil {
		if err := idx.terms.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete from term index: %w", err)
		}
	}
	idx.invalidate()
	return nil
}

// Reindex rebuilds the term index from the catalog: visible items are
// (re)indexed and every other record is removed. It returns the number of
// visible items indexed.
func (idx *Indexer) Reindex(ctx context.Context) (int, error) {
	if idx.terms == nil {
		return 0, nil
	}
	items, err := idx.catalog.AllItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list items: %w", err)
	}
	var visible, categoryIDs []string
	for _, it := range items {
		if it.Visible() {
			visible = append(visible, it.ID)
			if it.CategoryID != "" {
				categoryIDs = append(categoryIDs, it.CategoryID)
			}
		}
	}
	tags, err := idx.catalog.TagsByItemIDs(ctx, visible)
	if err != nil {
		return 0, fmt.Errorf("failed to load tags: %w", err)
	}
	categories, err := idx.catalog.CategoriesByIDs(ctx, categoryIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to load categories: %w", err)
	}

	n := 0
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if !it.Visible() {
			if err := idx.terms.Delete(ctx, it.ID); err != nil {
				return n, fmt.Errorf("failed to delete from term index: %w", err)
			}
			continue
		}
		var category string
		if c := categories[it.CategoryID]; c != nil {
			category = c.Name
		}
		names := make([]string, 0, len(tags[it.ID]))
		for _, t := range tags[it.ID] {
			names = append(names, t.Name)
		}
		if err := idx.syncTerms(ctx, it, category, names); err != nil {
			return n, err
		}
		n++
	}
	idx.invalidate()
	idx.logger.Info("term index rebuilt", zap.Int("indexed", n), zap.Int("records", len(items)))
	return n, nil
}

func (idx *Indexer) syncTerms(ctx context.Context, it *storage.Item, category string, tags []string) error {
	if idx.terms == nil {
		return nil
	}
	if !it.Visible() {
		if err := idx.terms.Delete(ctx, it.ID); err != nil {
			return fmt.Errorf("failed to delete from term index: %w", err)
		}
		return nil
	}
	doc := &keyword.ProductDoc{
		ID:          it.ID,
		Title:       it.Title,
		Description: it.ShortDescription,
		Category:    category,
		Tags:        strings.Join(tags, " "),
	}
	if err := idx.terms.Index(ctx, doc); err != nil {
		return fmt.Errorf("failed to index terms: %w", err)
	}
	return nil
}

func (idx *Indexer) invalidate() {
	if idx.spell != nil {
		idx.spell.Invalidate()
	}
}
