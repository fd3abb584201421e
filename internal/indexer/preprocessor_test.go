package indexer

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trim and collapse", "  Máy  chiếu\n\tEpson  ", "Máy chiếu Epson"},
		{"keeps case", "Loa JBL PartyBox", "Loa JBL PartyBox"},
		{"drops control and zero width", "Lều\u200b 4\x00 người\ufeff", "Lều 4 người"},
		{"decomposed to NFC", "Ma\u0301y a\u0309nh", "Máy ảnh"},
		{"empty", " \n ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanText(tt.in); got != tt.want {
				t.Errorf("cleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestShortDescription(t *testing.T) {
	if got := shortDescription("Độ sáng 3300 lumen,  kèm dây HDMI"); got != "Độ sáng 3300 lumen, kèm dây HDMI" {
		t.Errorf("short text changed: %q", got)
	}
	long := strings.Repeat("giao nhận tận nơi, ", 60)
	got := shortDescription(long)
	if n := utf8.RuneCountInString(got); n > maxDescriptionRunes+1 {
		t.Errorf("description has %d runes, want at most %d", n, maxDescriptionRunes+1)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("clipped description should end with an ellipsis: %q", got[len(got)-10:])
	}
	if strings.Contains(got, ", …") || strings.HasSuffix(strings.TrimSuffix(got, "…"), " ") {
		t.Errorf("clipped description should end on a word: %q", got)
	}
}
