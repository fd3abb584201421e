package search

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/hyperjump/rentassist/internal/config"
	"github.com/hyperjump/rentassist/internal/keyword"
	"github.com/hyperjump/rentassist/internal/models"
	"github.com/hyperjump/rentassist/internal/storage"
	"github.com/hyperjump/rentassist/internal/storage/storagetest"
)

func testConfig() *config.SearchConfig {
	return &config.SearchConfig{DefaultLimit: 30, MaxLimit: 30, CandidatePool: 200, DefaultSortLimit: 5}
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(storagetest.Seeded(t), testConfig())
}

func ids(products []*models.ProductCandidate) []string {
	return models.IDs(products)
}

func TestEngine_SearchCheapCameras(t *testing.T) {
	e := testEngine(t)
	got := e.Search(context.Background(), models.SearchFilters{Q: "máy ảnh", SortType: models.IntentCheap, Limit: 5})
	want := []string{storagetest.ItemFuji, storagetest.ItemCanon, storagetest.ItemGoPro, storagetest.ItemSony}
	if !reflect.DeepEqual(ids(got), want) {
		t.Errorf("cheap cameras = %v, want %v", ids(got), want)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].BasePrice > got[i].BasePrice {
			t.Errorf("not ascending by price at %d", i)
		}
	}
}

func TestEngine_SearchRelevanceOrder(t *testing.T) {
	e := testEngine(t)
	got := e.Search(context.Background(), models.SearchFilters{Q: "máy ảnh", Limit: 10})
	// title phrase matches tie on score and fall back to views; the category
	// match has no title words and comes last
	want := []string{storagetest.ItemCanon, storagetest.ItemSony, storagetest.ItemFuji, storagetest.ItemGoPro}
	if !reflect.DeepEqual(ids(got), want) {
		t.Errorf("relevance order = %v, want %v", ids(got), want)
	}
}

func TestEngine_SearchSpecificTitle(t *testing.T) {
	e := testEngine(t)
	got := e.Search(context.Background(), models.SearchFilters{Q: "Máy ảnh Canon"})
	if len(got) != 1 || got[0].ID != storagetest.ItemCanon {
		t.Errorf("Máy ảnh Canon = %v", ids(got))
	}
}

func TestEngine_SearchTagSignal(t *testing.T) {
	e := testEngine(t)
	got := e.Search(context.Background(), models.SearchFilters{Q: "mirrorless"})
	want := []string{storagetest.ItemCanon, storagetest.ItemSony}
	if !reflect.DeepEqual(ids(got), want) {
		t.Errorf("mirrorless = %v, want %v", ids(got), want)
	}
}

func TestEngine_SearchPlainQuery(t *testing.T) {
	e := testEngine(t)
	got := e.Search(context.Background(), models.SearchFilters{Q: "may anh"})
	want := []string{storagetest.ItemCanon, storagetest.ItemSony, storagetest.ItemFuji}
	if !reflect.DeepEqual(ids(got), want) {
		t.Errorf("may anh = %v, want %v", ids(got), want)
	}
}

func TestEngine_SearchVisibility(t *testing.T) {
	e := testEngine(t)
	got := e.Search(context.Background(), models.SearchFilters{})
	want := []string{
		storagetest.ItemScooter, storagetest.ItemCanon, storagetest.ItemSony,
		storagetest.ItemGoPro, storagetest.ItemFuji, storagetest.ItemTent,
	}
	if !reflect.DeepEqual(ids(got), want) {
		t.Errorf("browse = %v, want %v", ids(got), want)
	}
	hidden := map[string]bool{
		storagetest.ItemPending: true, storagetest.ItemDeleted: true,
		storagetest.ItemSoldOut: true, storagetest.ItemOrphan: true,
	}
	for _, p := range got {
		if hidden[p.ID] {
			t.Errorf("hidden item %s returned", p.ID)
		}
		if p.AvailableQuantity <= 0 || p.Category == nil {
			t.Errorf("item %s violates visibility: avail=%d category=%v", p.ID, p.AvailableQuantity, p.Category)
		}
	}
}

func TestEngine_SearchScalarFilters(t *testing.T) {
	e := testEngine(t)
	maxPrice := 300000.0
	got := e.Search(context.Background(), models.SearchFilters{City: "Hồ Chí Minh", MaxPrice: &maxPrice})
	want := []string{storagetest.ItemScooter, storagetest.ItemCanon, storagetest.ItemFuji}
	if !reflect.DeepEqual(ids(got), want) {
		t.Errorf("HCM <= 300k = %v, want %v", ids(got), want)
	}
	got = e.Search(context.Background(), models.SearchFilters{District: "quận 1"})
	want = []string{storagetest.ItemScooter, storagetest.ItemCanon}
	if !reflect.DeepEqual(ids(got), want) {
		t.Errorf("Quận 1 = %v, want %v", ids(got), want)
	}
}

func TestEngine_SearchLimit(t *testing.T) {
	e := testEngine(t)
	if got := e.Search(context.Background(), models.SearchFilters{Limit: 2}); len(got) != 2 {
		t.Errorf("limit 2 returned %d", len(got))
	}
	if got := e.Search(context.Background(), models.SearchFilters{Q: "máy ảnh", SortType: models.IntentMostViewed, Limit: 1}); len(got) != 1 || got[0].ID != storagetest.ItemCanon {
		t.Errorf("most viewed camera = %v", ids(got))
	}
}

func TestEngine_SearchNoMatch(t *testing.T) {
	e := testEngine(t)
	got := e.Search(context.Background(), models.SearchFilters{Q: "tàu ngầm"})
	if got == nil || len(got) != 0 {
		t.Errorf("no match = %#v, want empty slice", got)
	}
}

func TestEngine_SearchHydration(t *testing.T) {
	e := testEngine(t)
	got := e.Search(context.Background(), models.SearchFilters{Q: "canon"})
	if len(got) != 1 {
		t.Fatalf("canon = %v", ids(got))
	}
	p := got[0]
	if p.Category == nil || p.Category.Name != "Máy ảnh" {
		t.Errorf("category = %+v", p.Category)
	}
	if p.Condition == nil || p.Condition.ID != 2 {
		t.Errorf("condition = %+v", p.Condition)
	}
	if p.PriceUnit == nil || p.PriceUnit.ID != 1 {
		t.Errorf("price unit = %+v", p.PriceUnit)
	}
	if p.Owner == nil || p.Owner.DisplayName != "Minh Anh" {
		t.Errorf("owner = %+v", p.Owner)
	}
	if len(p.Images) != 2 || p.Images[0].URL != "https://cdn.example.com/m50-front.jpg" {
		t.Errorf("images = %+v", p.Images)
	}
	if len(p.Tags) != 2 {
		t.Errorf("tags = %+v", p.Tags)
	}
	if p.FullAddress != "12 Lê Lợi, Quận 1, Hồ Chí Minh" {
		t.Errorf("FullAddress = %q", p.FullAddress)
	}
	if p.EstimatedDistance != nil {
		t.Error("EstimatedDistance must stay nil")
	}
}

type failingCatalog struct {
	storage.Catalog
	failOwners bool
	failFind   bool
}

func (f *failingCatalog) FindVisibleItems(ctx context.Context, pred storage.ItemPredicate) ([]*storage.Item, error) {
	if f.failFind {
		return nil, errors.New("database is locked")
	}
	return f.Catalog.FindVisibleItems(ctx, pred)
}

func (f *failingCatalog) OwnersByIDs(ctx context.Context, ids []string) (map[string]*models.Owner, error) {
	if f.failOwners {
		return nil, errors.New("owners table missing")
	}
	return f.Catalog.OwnersByIDs(ctx, ids)
}

func TestEngine_SearchErrorsYieldEmpty(t *testing.T) {
	base := storagetest.Seeded(t)
	for _, fc := range []*failingCatalog{
		{Catalog: base, failFind: true},
		{Catalog: base, failOwners: true},
	} {
		e := NewEngine(fc, testConfig())
		got := e.Search(context.Background(), models.SearchFilters{Q: "máy ảnh"})
		if got == nil || len(got) != 0 {
			t.Errorf("failure %+v returned %v", fc, ids(got))
		}
	}
}

func TestEngine_GetProductDetail(t *testing.T) {
	e := testEngine(t)
	ctx := context.Background()
	p := e.GetProductDetail(ctx, storagetest.ItemCanon)
	if p == nil {
		t.Fatal("detail is nil")
	}
	if !p.IsAvailableNow {
		t.Error("IsAvailableNow = false")
	}
	if p.PopularityScore != 187 {
		t.Errorf("PopularityScore = %d, want 187", p.PopularityScore)
	}
	again := e.GetProductDetail(ctx, storagetest.ItemCanon)
	if !reflect.DeepEqual(p, again) {
		t.Error("detail lookups are not idempotent")
	}
}

func TestEngine_GetProductDetailHidden(t *testing.T) {
	e := testEngine(t)
	for _, id := range []string{
		storagetest.ItemPending, storagetest.ItemDeleted, storagetest.ItemSoldOut,
		storagetest.ItemOrphan, "not-a-uuid", "", "0b7c6a52-1c1e-4c52-9f0e-0000000000ff",
	} {
		if p := e.GetProductDetail(context.Background(), id); p != nil {
			t.Errorf("GetProductDetail(%q) = %s, want nil", id, p.ID)
		}
	}
}

func TestEngine_SpellingHints(t *testing.T) {
	idx, err := keyword.NewBleveIndex("")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = idx.Close() }()
	_ = idx.Index(context.Background(), &keyword.ProductDoc{ID: storagetest.ItemCanon, Title: "Máy ảnh Canon EOS M50"})

	cfg := testConfig()
	e := NewEngine(storagetest.Seeded(t), cfg, WithSpellChecker(keyword.NewSpellChecker(idx)))
	if hints := e.SpellingHints(context.Background(), "máy ảnh canom"); hints != nil {
		t.Errorf("hints disabled by config, got %v", hints)
	}
	cfg.SpellingHints = true
	hints := e.SpellingHints(context.Background(), "máy ảnh canom")
	if len(hints) == 0 || hints[0] != "máy ảnh canon" {
		t.Errorf("hints = %v", hints)
	}
	if got := testEngine(t).SpellingHints(context.Background(), "canom"); got != nil {
		t.Errorf("engine without spell checker returned %v", got)
	}
}

// largeCatalog adds more popular cameras than the candidate pool holds, plus
// an unpopular cheapest camera and an unpopular exact-title camera.
func largeCatalog(t *testing.T, n int) (*storage.SQLiteCatalog, string, string) {
	t.Helper()
	ctx := context.Background()
	c := storagetest.Seeded(t)
	cat, err := c.EnsureCategory(ctx, "Máy ảnh")
	if err != nil {
		t.Fatal(err)
	}
	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	save := func(id, title string, price float64, views int) {
		it := &storage.Item{ID: id, OwnerID: storagetest.OwnerID, CategoryID: cat.ID, Title: title,
			BasePrice: price, Quantity: 1, AvailableQuantity: 1, City: "Hồ Chí Minh",
			ViewCount: views, Status: storage.StatusApproved, CreatedAt: base}
		if err := c.SaveItem(ctx, it); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < n; i++ {
		save(fmt.Sprintf("7d3e9a10-0000-4000-8000-%012d", i), fmt.Sprintf("Máy ảnh mẫu %d", i),
			float64(100000+i*1000), 5000+i)
	}
	cheapest := "7d3e9a10-1111-4000-8000-000000000001"
	exact := "7d3e9a10-1111-4000-8000-000000000002"
	save(cheapest, "Máy ảnh cũ giá rẻ", 1000, 0)
	save(exact, "Máy ảnh", 500000, 0)
	return c, cheapest, exact
}

func TestEngine_SearchBeyondCandidatePool(t *testing.T) {
	cfg := testConfig()
	c, cheapest, exact := largeCatalog(t, cfg.CandidatePool+50)
	e := NewEngine(c, cfg)
	ctx := context.Background()

	tests := []struct {
		name    string
		filters models.SearchFilters
		first   string
	}{
		{"cheap without query", models.SearchFilters{SortType: models.IntentCheap, Limit: 5}, cheapest},
		{"cheap with query", models.SearchFilters{Q: "máy ảnh", SortType: models.IntentCheap, Limit: 5}, cheapest},
		{"relevance", models.SearchFilters{Q: "máy ảnh", Limit: 5}, exact},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Search(ctx, tt.filters)
			if len(got) == 0 {
				t.Fatal("no results")
			}
			if got[0].ID != tt.first {
				t.Errorf("first = %s (%s), want %s", got[0].ID, got[0].Title, tt.first)
			}
		})
	}

	got := e.Search(ctx, models.SearchFilters{SortType: models.IntentExpensive, Limit: 1})
	if len(got) != 1 || got[0].BasePrice != 500000 {
		t.Errorf("expensive = %v", ids(got))
	}
}
