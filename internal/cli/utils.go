// Package cli provides output helpers for the rentassist command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/rentassist/internal/compose"
	"github.com/hyperjump/rentassist/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat maps a flag value to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, OutputJSON:
		return OutputFormat(s), nil
	}
	return "", fmt.Errorf("unknown output format %q; use text or json", s)
}

// SearchResults is what the search command prints.
type SearchResults struct {
	Query         string                     `json:"query"`
	Filters       models.SearchFilters       `json:"filters"`
	Products      []*models.ProductCandidate `json:"products"`
	SpellingHints []string                   `json:"spelling_hints,omitempty"`
}

// WriteSearchResults writes search results to w in the given format.
func WriteSearchResults(w io.Writer, res *SearchResults, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}
	fmt.Fprintf(w, "\nFound %d products for %q\n\n", len(res.Products), res.Query)
	for i, p := range res.Products {
		writeProduct(w, i+1, p)
	}
	if len(res.Products) == 0 && len(res.SpellingHints) > 0 {
		fmt.Fprintf(w, "Did you mean: %s\n", strings.Join(res.SpellingHints, ", "))
	}
	return nil
}

// WriteChatResponse writes a chat answer to w in the given format.
func WriteChatResponse(w io.Writer, resp *models.ChatResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "%s\n", resp.Text)
	if len(resp.Suggestions) > 0 {
		fmt.Fprintln(w)
		for _, s := range resp.Suggestions {
			fmt.Fprintf(w, "  * %s (%s)", s.Title, s.ID)
			if s.Reason != "" {
				fmt.Fprintf(w, ": %s", Truncate(s.Reason, 120))
			}
			fmt.Fprintln(w)
		}
	}
	if len(resp.SpellingHints) > 0 {
		fmt.Fprintf(w, "\nDid you mean: %s\n", strings.Join(resp.SpellingHints, ", "))
	}
	fmt.Fprintf(w, "\n[session %s, intent %s]\n", resp.SessionID, resp.Intent)
	return nil
}

// WriteParsedFilters writes the reading of a message to w.
func WriteParsedFilters(w io.Writer, f models.ParsedFilters, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, f)
	}
	fmt.Fprintf(w, "intent:        %s\n", f.Intent)
	fmt.Fprintf(w, "product_type:  %s\n", deref(f.ProductType))
	fmt.Fprintf(w, "city:          %s\n", deref(f.City))
	fmt.Fprintf(w, "district:      %s\n", deref(f.District))
	fmt.Fprintf(w, "min_price:     %s\n", derefPrice(f.MinPrice))
	fmt.Fprintf(w, "max_price:     %s\n", derefPrice(f.MaxPrice))
	if f.SortConfig != nil {
		fmt.Fprintf(w, "sort:          %s (limit %d)\n", f.SortConfig.Type, f.SortConfig.Limit)
	}
	if f.BestConfig != nil {
		fmt.Fprintf(w, "best:          limit %d\n", f.BestConfig.Limit)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeProduct(w io.Writer, rank int, p *models.ProductCandidate) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "%d. %s\n", rank, p.Title)
	fmt.Fprintf(w, "ID: %s\n", p.ID)
	fmt.Fprintf(w, "Price: %s", compose.FormatPrice(p))
	if p.DepositAmount > 0 {
		fmt.Fprintf(w, " (deposit %s)", compose.FormatPrice(&models.ProductCandidate{BasePrice: p.DepositAmount, Currency: p.Currency}))
	}
	fmt.Fprintln(w)
	if p.FullAddress != "" {
		fmt.Fprintf(w, "Location: %s\n", p.FullAddress)
	}
	fmt.Fprintf(w, "Stock: %d/%d | views %d, favorites %d, rents %d\n",
		p.AvailableQuantity, p.Quantity, p.ViewCount, p.FavoriteCount, p.RentCount)
	if p.ShortDescription != "" {
		fmt.Fprintf(w, "\n%s\n", TruncateWords(p.ShortDescription, 40))
	}
	fmt.Fprintln(w)
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func derefPrice(v *float64) string {
	if v == nil {
		return "-"
	}
	return compose.FormatPrice(&models.ProductCandidate{BasePrice: *v})
}

// Truncate truncates s to maxLen runes and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
