package indexer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// maxDescriptionRunes bounds the stored short description.
const maxDescriptionRunes = 500

// cleanText puts product text in NFC form, drops control characters and
// collapses whitespace, keeping the original case.
func cleanText(text string) string {
	text = norm.NFC.String(text)
	var b strings.Builder
	b.Grow(len(text))
	wasSpace := true
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
		case unicode.IsControl(r), r == '\u200b', r == '\ufeff':
		default:
			b.WriteRune(r)
			wasSpace = false
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// shortDescription cleans text and cuts it at the last word boundary that
// fits in maxDescriptionRunes.
func shortDescription(text string) string {
	text = cleanText(text)
	r := []rune(text)
	if len(r) <= maxDescriptionRunes {
		return text
	}
	cut := string(r[:maxDescriptionRunes])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;.") + "…"
}
