// Package utils provides shared utilities for text, math, and logging.
package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Truncate returns s truncated to maxLen runes, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}

// NormalizeText returns s in NFC form, lowercased, with runs of whitespace
// collapsed to a single space.
func NormalizeText(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// FoldDiacritics strips Vietnamese tone and vowel marks: "Hà Nội" -> "Ha Noi".
// The letter đ has no decomposition and is mapped to d explicitly.
func FoldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.NewReplacer("đ", "d", "Đ", "D").Replace(out)
}

// HasDiacritics reports whether folding would change s.
func HasDiacritics(s string) bool {
	return FoldDiacritics(s) != s
}

// ContainsPhrase reports whether phrase occurs in text on word boundaries.
// Both arguments are expected to be normalized already.
func ContainsPhrase(text, phrase string) bool {
	return PhraseIndex(text, phrase) >= 0
}

// PhraseIndex returns the byte offset of the first word-bounded occurrence of
// phrase in text, or -1.
func PhraseIndex(text, phrase string) int {
	if phrase == "" {
		return -1
	}
	from := 0
	for from <= len(text) {
		i := strings.Index(text[from:], phrase)
		if i < 0 {
			return -1
		}
		start := from + i
		end := start + len(phrase)
		if isBoundary(text, start, true) && isBoundary(text, end, false) {
			return start
		}
		from = start + 1
	}
	return -1
}

func isBoundary(text string, pos int, before bool) bool {
	if before {
		if pos == 0 {
			return true
		}
		r := lastRune(text[:pos])
		return !isWordRune(r)
	}
	if pos >= len(text) {
		return true
	}
	r := []rune(text[pos:])[0]
	return !isWordRune(r)
}

func lastRune(s string) rune {
	r := []rune(s)
	return r[len(r)-1]
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// Words splits normalized text into distinct words, dropping punctuation.
func Words(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return !isWordRune(r) })
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
