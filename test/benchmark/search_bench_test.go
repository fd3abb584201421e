package benchmark

import (
	"context"
	"testing"

	"github.com/hyperjump/rentassist/internal/compose"
	"github.com/hyperjump/rentassist/internal/config"
	"github.com/hyperjump/rentassist/internal/intent"
	"github.com/hyperjump/rentassist/internal/lexicon"
	"github.com/hyperjump/rentassist/internal/models"
	"github.com/hyperjump/rentassist/internal/ranking"
	"github.com/hyperjump/rentassist/internal/search"
	"github.com/hyperjump/rentassist/internal/storage/storagetest"
)

func BenchmarkParse(b *testing.B) {
	p := intent.NewParser(lexicon.Static(lexicon.Default()))
	msgs := []string{
		"máy ảnh rẻ nhất ở hcm",
		"top 3 xe máy ở quận 1 dưới 200k",
		"cho mình thuê lều cắm trại từ 100k đến 300k ở đà lạt",
		"may anh gan nhat",
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = p.Parse(msgs[i%len(msgs)])
	}
}

func BenchmarkAnalyzeQuery(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = ranking.AnalyzeQuery("máy ảnh sony a7 iii")
	}
}

func BenchmarkSearch(b *testing.B) {
	catalog := storagetest.Seeded(b)
	cfg := &config.SearchConfig{}
	e := search.NewEngine(catalog, cfg)
	ctx := context.Background()
	f := models.SearchFilters{Q: "máy ảnh", SortType: models.IntentCheap, Limit: 5}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Search(ctx, f)
	}
}

func BenchmarkCompose(b *testing.B) {
	c := compose.NewComposer(lexicon.Static(lexicon.Default()))
	candidates := make([]*models.ProductCandidate, 0, 30)
	for i := 0; i < 30; i++ {
		candidates = append(candidates, &models.ProductCandidate{
			ID:        "11111111-1111-4111-8111-1111111111" + string(rune('a'+i/16)) + string("0123456789abcdef"[i%16]),
			Title:     "Máy ảnh",
			BasePrice: float64(100000 + i*10000),
			Currency:  "VND",
		})
	}
	generated := "Mình gợi ý:\n```json\n{\"suggestions\":[{\"id\":\"" + candidates[0].ID + "\",\"reason\":\"rẻ\"}]}\n```"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Compose(compose.Input{Candidates: candidates, Generated: generated})
	}
}
