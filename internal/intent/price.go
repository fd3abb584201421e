package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperjump/rentassist/internal/lexicon"
)

// number captures the digits, the gap before a trailing word and the word.
const number = `(\d+(?:[.,]\d+)*)(\s*)(\p{L}*)`

var (
	rangeRe = regexp.MustCompile(`(?:^|[^\p{L}])(?:từ|tu|khoảng|khoang|between|from)?\s*` + number +
		`\s*(?:-|–|đến|den|tới|toi|to|and)\s*` + number)
	maxRe = regexp.MustCompile(`(?:^|[^\p{L}])(?:dưới|duoi|không quá|khong qua|tối đa|toi da|under|below|max|<=|<)\s*` + number)
	minRe = regexp.MustCompile(`(?:^|[^\p{L}])(?:trên|tren|từ|tu|hơn|hon|ít nhất|it nhat|over|above|from|min|>=|>)\s*` + number)

	groupedRe = regexp.MustCompile(`^\d{1,3}(?:[.,]\d{3})+$`)
)

// extractPrices reads price bounds such as "dưới 500k", "từ 1 đến 2 triệu"
// or "trên 300.000đ". A bare amount below 1000 is read as thousands.
func extractPrices(norm string, lx *lexicon.Lexicon) (minPrice, maxPrice *float64) {
	rest := norm
	if m := rangeRe.FindStringSubmatchIndex(rest); m != nil {
		g := groups(rest, m)
		unitLo, okLo := priceUnit(lx, g[2], g[3])
		unitHi, okHi := priceUnit(lx, g[5], g[6])
		if okLo && okHi {
			if unitLo == "" {
				unitLo = unitHi
			}
			lo, okLo := amount(g[1], unitLo, lx)
			hi, okHi := amount(g[4], unitHi, lx)
			if okLo && okHi {
				if lo > hi {
					lo, hi = hi, lo
				}
				return &lo, &hi
			}
		}
	}
	if m := maxRe.FindStringSubmatchIndex(rest); m != nil {
		g := groups(rest, m)
		if unit, ok := priceUnit(lx, g[2], g[3]); ok {
			if v, ok := amount(g[1], unit, lx); ok {
				maxPrice = &v
			}
		}
		rest = rest[:m[0]] + " " + rest[m[1]:]
	}
	if m := minRe.FindStringSubmatchIndex(rest); m != nil {
		g := groups(rest, m)
		if unit, ok := priceUnit(lx, g[2], g[3]); ok {
			if v, ok := amount(g[1], unit, lx); ok {
				minPrice = &v
			}
		}
	}
	if minPrice != nil && maxPrice != nil && *minPrice > *maxPrice {
		minPrice, maxPrice = maxPrice, minPrice
	}
	return minPrice, maxPrice
}

func groups(s string, idx []int) []string {
	out := make([]string, len(idx)/2)
	for i := range out {
		if idx[2*i] >= 0 {
			out[i] = s[idx[2*i]:idx[2*i+1]]
		}
	}
	return out
}

// priceUnit resolves the word after a number. It returns the word when it is
// a price unit and "" when the number is bare or followed by an unrelated
// word. ok is false when the number is not a price: the word is a measure
// unit, or unknown letters are glued to the digits as in "256gb".
func priceUnit(lx *lexicon.Lexicon, gap, word string) (unit string, ok bool) {
	if word == "" {
		return "", true
	}
	if _, isPrice := lx.PriceMultiplier(word); isPrice {
		return word, true
	}
	if gap == "" || lx.IsMeasureUnit(word) {
		return "", false
	}
	return "", true
}

func amount(num, unit string, lx *lexicon.Lexicon) (float64, bool) {
	v, ok := parseNumber(num)
	if !ok {
		return 0, false
	}
	if mult, ok := lx.PriceMultiplier(unit); ok {
		return v * mult, true
	}
	if v < 1000 {
		return v * 1000, true
	}
	return v, true
}

func parseNumber(s string) (float64, bool) {
	if groupedRe.MatchString(s) {
		s = strings.NewReplacer(".", "", ",", "").Replace(s)
	} else {
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
