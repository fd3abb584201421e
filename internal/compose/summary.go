package compose

import (
	"fmt"
	"strings"

	"github.com/hyperjump/rentassist/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var vi = message.NewPrinter(language.Vietnamese)

// FormatPrice renders a price with Vietnamese digit grouping, its currency
// and rental period, e.g. "300.000 VND/ngày".
func FormatPrice(p *models.ProductCandidate) string {
	currency := p.Currency
	if currency == "" {
		currency = "VND"
	}
	s := vi.Sprintf("%d %s", int64(p.BasePrice+0.5), currency)
	if p.PriceUnit != nil && p.PriceUnit.Name != "" {
		s += "/" + p.PriceUnit.Name
	}
	return s
}

// Summary lists up to n products as a numbered catalog summary.
func Summary(products []*models.ProductCandidate, n int) string {
	if n <= 0 || n > len(products) {
		n = len(products)
	}
	var b strings.Builder
	if n < len(products) {
		fmt.Fprintf(&b, "Mình tìm thấy %d sản phẩm phù hợp, đây là %d sản phẩm nổi bật:", len(products), n)
	} else {
		fmt.Fprintf(&b, "Mình tìm thấy %d sản phẩm phù hợp:", len(products))
	}
	for i, p := range products[:n] {
		fmt.Fprintf(&b, "\n%d. %s - %s", i+1, p.Title, FormatPrice(p))
		if loc := locationOf(p); loc != "" {
			b.WriteString(" (" + loc + ")")
		}
	}
	return b.String()
}

func locationOf(p *models.ProductCandidate) string {
	return models.JoinAddress("", p.District, p.City)
}
