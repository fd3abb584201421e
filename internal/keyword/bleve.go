package keyword

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/hyperjump/rentassist/pkg/utils"
)

var textFields = []string{"title", "description", "category", "tags"}

// BleveIndex implements TermIndex and TermDictionary using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path. An empty path keeps
// the index in memory.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := productMapping()
	if path == "" {
		index, err := bleve.NewMemOnly(im)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory Bleve index: %w", err)
		}
		return &BleveIndex{index: index}, nil
	}
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}
	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// productMapping uses the standard analyzer so Vietnamese syllables stay
// whole words; stemming would mangle them.
func productMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()
	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name
	for _, f := range textFields {
		doc.AddFieldMappingsAt(f, text)
	}
	doc.AddFieldMappingsAt("id", bleve.NewKeywordFieldMapping())
	im.AddDocumentMapping("product", doc)
	im.DefaultType = "product"
	im.DefaultMapping = doc
	return im
}

// Index stores doc, replacing any previous version with the same id.
func (b *BleveIndex) Index(ctx context.Context, doc *ProductDoc) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("product doc without id")
	}
	normalized := ProductDoc{
		ID:          doc.ID,
		Title:       utils.NormalizeText(doc.Title),
		Description: utils.NormalizeText(doc.Description),
		Category:    utils.NormalizeText(doc.Category),
		Tags:        utils.NormalizeText(doc.Tags),
	}
	return b.index.Index(doc.ID, normalized)
}

// Delete removes a product from the index. Unknown ids are not an error.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// DocCount returns the number of indexed products.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the underlying index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// Terms walks the field dictionaries and sums per-field document counts.
func (b *BleveIndex) Terms() (map[string]int, error) {
	terms := make(map[string]int)
	for _, field := range textFields {
		dict, err := b.index.FieldDict(field)
		if err != nil {
			return nil, fmt.Errorf("field dictionary %s: %w", field, err)
		}
		for {
			entry, err := dict.Next()
			if err != nil {
				_ = dict.Close()
				return nil, fmt.Errorf("field dictionary %s: %w", field, err)
			}
			if entry == nil {
				break
			}
			terms[entry.Term] += int(entry.Count)
		}
		if err := dict.Close(); err != nil {
			return nil, err
		}
	}
	return terms, nil
}
