package keyword

import "testing"

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"canon", "canon", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"canon", "cannon", 1},
		{"sony", "sonny", 1},
		{"kitten", "sitting", 3},
		{"máy", "may", 1},
		{"ảnh", "anh", 1},
		{"lều", "leu", 1},
	}
	for _, tt := range tests {
		if got := LevenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestLevenshteinDistance_symmetric(t *testing.T) {
	pairs := [][2]string{{"fujifilm", "fujiflim"}, {"gopro", "goprp"}, {"xe máy", "xe may"}}
	for _, p := range pairs {
		if LevenshteinDistance(p[0], p[1]) != LevenshteinDistance(p[1], p[0]) {
			t.Errorf("distance not symmetric for %q/%q", p[0], p[1])
		}
	}
}
