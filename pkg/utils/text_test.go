package utils

import (
	"reflect"
	"testing"
)

func TestTruncate(t *testing.T) {
	if Truncate("hello", 10) != "hello" {
		t.Error("short string unchanged")
	}
	if Truncate("hello world", 5) != "hello..." {
		t.Errorf("got %s", Truncate("hello world", 5))
	}
	if Truncate("x", 0) != "x" {
		t.Error("maxLen 0 returns as-is")
	}
	if got := Truncate("máy ảnh canon", 6); got != "máy ản..." {
		t.Errorf("rune truncation: got %q", got)
	}
}

func TestNormalizeText(t *testing.T) {
	// "ả" written as a + combining hook above
	decomposed := "Máy Ảnh   CANON"
	if got := NormalizeText(decomposed); got != "máy ảnh canon" {
		t.Errorf("NormalizeText = %q", got)
	}
}

func TestFoldDiacritics(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hà nội", "ha noi"},
		{"đà nẵng", "da nang"},
		{"máy ảnh", "may anh"},
		{"Đồng hồ", "Dong ho"},
		{"camera", "camera"},
	}
	for _, tt := range tests {
		if got := FoldDiacritics(tt.in); got != tt.want {
			t.Errorf("FoldDiacritics(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if HasDiacritics("ha noi") {
		t.Error("plain ascii has no diacritics")
	}
	if !HasDiacritics("hà nội") {
		t.Error("hà nội has diacritics")
	}
}

func TestContainsPhrase(t *testing.T) {
	tests := []struct {
		text, phrase string
		want         bool
	}{
		{"thuê máy ảnh rẻ", "máy ảnh", true},
		{"máy ảnh", "máy ảnh", true},
		{"máy ảnhx", "máy ảnh", false},
		{"xe máy ở hà nội", "hà nội", true},
		{"xe máy", "máy ảnh", false},
		{"top 3 cái rẻ nhất", "rẻ nhất", true},
		{"tablet", "tab", false},
		{"anything", "", false},
	}
	for _, tt := range tests {
		if got := ContainsPhrase(tt.text, tt.phrase); got != tt.want {
			t.Errorf("ContainsPhrase(%q, %q) = %v, want %v", tt.text, tt.phrase, got, tt.want)
		}
	}
}

func TestWords(t *testing.T) {
	got := Words("máy ảnh, máy quay!")
	want := []string{"máy", "ảnh", "quay"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Words = %v, want %v", got, want)
	}
}

func TestRoundTo(t *testing.T) {
	if got := RoundTo(12.345, 1); got != 12.3 {
		t.Errorf("RoundTo = %v", got)
	}
	if got := Clamp(50, 0, 40); got != 40 {
		t.Errorf("Clamp = %v", got)
	}
}
