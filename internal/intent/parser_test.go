package intent

import (
	"testing"

	"github.com/hyperjump/rentassist/internal/lexicon"
	"github.com/hyperjump/rentassist/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser() *Parser {
	return NewParser(lexicon.Static(lexicon.Default()))
}

func TestParse_CheapestCamera(t *testing.T) {
	got := newTestParser().Parse("máy ảnh rẻ nhất")

	require.NotNil(t, got.ProductType)
	assert.Equal(t, "máy ảnh", *got.ProductType)
	assert.Equal(t, models.IntentCheap, got.Intent)
	require.NotNil(t, got.SortConfig)
	assert.Equal(t, models.SortConfig{Type: models.IntentCheap, Limit: 5}, *got.SortConfig)
	assert.Nil(t, got.BestConfig)
}

func TestParse_SortTakesPrecedenceOverBest(t *testing.T) {
	p := newTestParser()
	for _, msg := range []string{
		"tìm giá rẻ nhất tốt nhất",
		"gợi ý máy quay đắt nhất",
		"top 3 xe máy được thuê nhiều nhất tốt nhất",
	} {
		got := p.Parse(msg)
		assert.True(t, got.Intent.IsSort(), msg)
		assert.NotNil(t, got.SortConfig, msg)
		assert.Nil(t, got.BestConfig, msg)
	}
}

func TestParse_BestIntent(t *testing.T) {
	p := newTestParser()

	got := p.Parse("máy ảnh nào tốt nhất")
	assert.Equal(t, models.IntentBest, got.Intent)
	require.NotNil(t, got.BestConfig)
	assert.Equal(t, 1, got.BestConfig.Limit)
	assert.Nil(t, got.SortConfig)

	got = p.Parse("gợi ý top 3 lều cắm trại")
	assert.Equal(t, models.IntentBest, got.Intent)
	require.NotNil(t, got.BestConfig)
	assert.Equal(t, 3, got.BestConfig.Limit)
	require.NotNil(t, got.ProductType)
	assert.Equal(t, "lều", *got.ProductType)
}

func TestParse_Quantity(t *testing.T) {
	p := newTestParser()

	got := p.Parse("cho mình 3 cái loa rẻ nhất")
	require.NotNil(t, got.SortConfig)
	assert.Equal(t, 3, got.SortConfig.Limit)

	got = p.Parse("top 99 xe đạp xem nhiều nhất")
	require.NotNil(t, got.SortConfig)
	assert.Equal(t, 30, got.SortConfig.Limit, "capped at max limit")

	got = NewParser(lexicon.Static(lexicon.Default()), WithSortLimit(8)).Parse("laptop rẻ nhất")
	require.NotNil(t, got.SortConfig)
	assert.Equal(t, 8, got.SortConfig.Limit)
}

func TestParse_FallbackIntents(t *testing.T) {
	p := newTestParser()

	got := p.Parse("tư vấn giúp mình vài món")
	assert.Equal(t, models.IntentRecommend, got.Intent)

	got = p.Parse("xin chào")
	assert.Equal(t, models.IntentSearch, got.Intent)
	assert.Nil(t, got.ProductType)
	assert.Nil(t, got.City)
	assert.Nil(t, got.SortConfig)
	assert.Nil(t, got.BestConfig)
	assert.False(t, got.HasCriteria())

	got = p.Parse("")
	assert.Equal(t, models.IntentSearch, got.Intent)
}

func TestParse_Location(t *testing.T) {
	p := newTestParser()

	got := p.Parse("thuê xe máy ở Hà Nội quận Hoàn Kiếm")
	require.NotNil(t, got.City)
	assert.Equal(t, "Hà Nội", *got.City)
	require.NotNil(t, got.District)
	assert.Equal(t, "Hoàn Kiếm", *got.District)

	got = p.Parse("thue may anh o sai gon")
	require.NotNil(t, got.City)
	assert.Equal(t, "Hồ Chí Minh", *got.City)
	require.NotNil(t, got.ProductType)
	assert.Equal(t, "máy ảnh", *got.ProductType)
}

func TestParse_Prices(t *testing.T) {
	p := newTestParser()
	tests := []struct {
		msg      string
		min, max *float64
	}{
		{"máy ảnh dưới 500k", nil, f(500000)},
		{"xe máy dưới 2 triệu", nil, f(2000000)},
		{"loa trên 300.000đ", f(300000), nil},
		{"flycam từ 1 đến 2 triệu", f(1000000), f(2000000)},
		{"lều 200k-500k", f(200000), f(500000)},
		{"vest duoi 1.5tr", nil, f(1500000)},
		{"balo dưới 300", nil, f(300000)},
		{"máy ảnh dưới 300 ở hcm", nil, f(300000)},
		{"iphone 15 pro max 256gb", nil, nil},
		{"iphone 15 pro max 256 gb", nil, nil},
		{"laptop 14 inch tới 15 triệu", nil, nil},
		{"xe 7 chỗ dưới 1 triệu", nil, f(1000000)},
		{"máy ảnh", nil, nil},
	}
	for _, tt := range tests {
		got := p.Parse(tt.msg)
		assertPrice(t, tt.msg+" min", tt.min, got.MinPrice)
		assertPrice(t, tt.msg+" max", tt.max, got.MaxPrice)
	}
}

func TestParse_ProductTypeUnmatchedIsNil(t *testing.T) {
	got := newTestParser().Parse("rẻ nhất")
	assert.Nil(t, got.ProductType)
	assert.Equal(t, models.IntentCheap, got.Intent)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"500", 500},
		{"1.5", 1.5},
		{"1,5", 1.5},
		{"300.000", 300000},
		{"2,000,000", 2000000},
	}
	for _, tt := range tests {
		got, ok := parseNumber(tt.in)
		assert.True(t, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func f(v float64) *float64 { return &v }

func assertPrice(t *testing.T, name string, want, got *float64) {
	t.Helper()
	if want == nil {
		assert.Nil(t, got, name)
		return
	}
	if assert.NotNil(t, got, name) {
		assert.InDelta(t, *want, *got, 0.001, name)
	}
}
