package e2e

import (
	"testing"
)

func TestBuildCorpus_rows(t *testing.T) {
	c := BuildCorpus()
	want := len(productTypes) * (len(cities)*variantsPerCity + 3)
	if c.TotalRows != want || len(c.Products) != want {
		t.Errorf("expected %d rows, got %d", want, c.TotalRows)
	}
	if c.TotalVisible != len(productTypes)*len(cities)*variantsPerCity {
		t.Errorf("expected only the hidden rows to be invisible, got %d visible", c.TotalVisible)
	}
	titles := make(map[string]bool)
	for _, p := range c.Products {
		if titles[p.Title] {
			t.Errorf("duplicate title %q", p.Title)
		}
		titles[p.Title] = true
		if TypeOf(p.Title) != p.Type {
			t.Errorf("TypeOf(%q) = %q, want %q", p.Title, TypeOf(p.Title), p.Type)
		}
	}
}

func TestBuildCorpus_hiddenRowsUndercutPrices(t *testing.T) {
	c := BuildCorpus()
	for _, p := range c.Products {
		if !p.Visible() && p.BasePrice >= 80000 {
			t.Errorf("hidden row %q should be the cheapest of its type", p.Title)
		}
	}
}

func TestBuildCorpus_chatCases(t *testing.T) {
	c := BuildCorpus()
	if len(c.TestCases) == 0 {
		t.Fatal("expected chat test cases")
	}
	for i, tc := range c.TestCases {
		if tc.Message == "" || tc.Description == "" {
			t.Errorf("case %d: empty message or description", i)
		}
		if tc.Intent == "" {
			t.Errorf("case %d: no expected intent", i)
		}
	}
}
