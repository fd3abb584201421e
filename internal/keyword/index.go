// Package keyword keeps a Bleve term index over product text and derives
// "did you mean" hints from its term dictionary.
package keyword

import "context"

// ProductDoc is the text of one product as it is stored in the term index.
type ProductDoc struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Tags        string `json:"tags"`
}

// TermIndex stores product text for term statistics.
type TermIndex interface {
	Index(ctx context.Context, doc *ProductDoc) error
	Delete(ctx context.Context, id string) error
	DocCount() (uint64, error)
	Close() error
}

// TermDictionary exposes the indexed terms with their document frequency.
type TermDictionary interface {
	Terms() (map[string]int, error)
}
