package conversation

import (
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/rentassist/internal/intent"
	"github.com/hyperjump/rentassist/internal/lexicon"
	"github.com/hyperjump/rentassist/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parser() *intent.Parser {
	return intent.NewParser(lexicon.Static(lexicon.Default()))
}

func user(text string) models.ConversationTurn {
	return models.ConversationTurn{Role: models.RoleUser, Content: text, Timestamp: time.Now()}
}

func model(text string) models.ConversationTurn {
	return models.ConversationTurn{Role: models.RoleModel, Content: text, Timestamp: time.Now()}
}

func TestExtractPreviousFilters(t *testing.T) {
	history := []models.ConversationTurn{
		user("cho thuê xe máy ở sài gòn"),
		model("Đây là các xe máy phù hợp"),
		user("tôi cần máy ảnh ở hà nội"),
		model("Có 2 máy ảnh"),
		user("cái nào rẻ nhất"),
	}
	prev := ExtractPreviousFilters(parser(), history)
	require.NotNil(t, prev)
	assert.Equal(t, "máy ảnh", prev.Q)
	require.NotNil(t, prev.ProductType)
	assert.Equal(t, "máy ảnh", *prev.ProductType)
	require.NotNil(t, prev.City)
	assert.Equal(t, "Hà Nội", *prev.City)
}

func TestExtractPreviousFilters_SkipsCurrentAndBlank(t *testing.T) {
	history := []models.ConversationTurn{
		user("flycam"),
		model("..."),
		user("   "),
		model("Bạn cần gì?"),
		user("máy ảnh"),
	}
	prev := ExtractPreviousFilters(parser(), history)
	require.NotNil(t, prev)
	assert.Equal(t, "flycam", prev.Q)
}

func TestExtractPreviousFilters_TextWithoutProductType(t *testing.T) {
	history := []models.ConversationTurn{user("xin chào shop"), model("Chào bạn"), user("có gì hot")}
	prev := ExtractPreviousFilters(parser(), history)
	require.NotNil(t, prev)
	assert.Equal(t, "xin chào shop", prev.Q)
	assert.Nil(t, prev.ProductType)
}

func TestExtractPreviousFilters_NoContext(t *testing.T) {
	assert.Nil(t, ExtractPreviousFilters(parser(), nil))
	assert.Nil(t, ExtractPreviousFilters(parser(), []models.ConversationTurn{user("máy ảnh")}))
	assert.Nil(t, ExtractPreviousFilters(parser(), []models.ConversationTurn{model("xin chào"), user("máy ảnh")}))
}

func TestPreviousProductList_FallbackChain(t *testing.T) {
	a := &models.ProductCandidate{ID: "a"}
	b := &models.ProductCandidate{ID: "b"}
	c := &models.ProductCandidate{ID: "c"}

	withProducts := model("x")
	withProducts.Products = []*models.ProductCandidate{a, b}
	withProducts.Recommendations = []*models.ProductCandidate{c}
	assert.Equal(t, []string{"a", "b"}, models.IDs(PreviousProductList([]models.ConversationTurn{withProducts})))

	withRecs := model("x")
	withRecs.Recommendations = []*models.ProductCandidate{c, a}
	withRecs.BestProduct = b
	assert.Equal(t, []string{"c", "a"}, models.IDs(PreviousProductList([]models.ConversationTurn{withRecs})))

	bestOnly := model("x")
	bestOnly.BestProduct = b
	got := PreviousProductList([]models.ConversationTurn{bestOnly, user("rẻ hơn")})
	assert.Equal(t, []string{"b"}, models.IDs(got))
}

func TestPreviousProductList_OnlyMostRecentModelTurn(t *testing.T) {
	old := model("x")
	old.Products = []*models.ProductCandidate{{ID: "old"}}
	history := []models.ConversationTurn{old, user("hi"), model("Chào bạn"), user("rẻ nhất")}
	got := PreviousProductList(history)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, PreviousProductList(nil))
}

func TestTrimProducts(t *testing.T) {
	p := &models.ProductCandidate{
		ID:               "p",
		Title:            "Máy ảnh",
		ShortDescription: strings.Repeat("ả", 300),
		BasePrice:        300000,
		Images:           []models.Image{{URL: "1"}, {URL: "2"}},
		Tags:             []models.Tag{{Name: "canon"}},
		Owner:            &models.Owner{ID: "o", DisplayName: "Minh Anh", AvatarURL: "https://x"},
		Reasons:          []string{"Phổ biến cao"},
	}
	got := TrimProducts([]*models.ProductCandidate{p, nil})
	require.Len(t, got, 1)
	tp := got[0]
	assert.Equal(t, "p", tp.ID)
	assert.Equal(t, 300000.0, tp.BasePrice)
	assert.LessOrEqual(t, len([]rune(tp.ShortDescription)), maxStoredDescription+3)
	assert.Len(t, tp.Images, 1)
	assert.Nil(t, tp.Tags)
	assert.Empty(t, tp.Owner.AvatarURL)
	assert.Equal(t, []string{"Phổ biến cao"}, tp.Reasons)
	// original untouched
	assert.Len(t, p.Images, 2)
	assert.Equal(t, "https://x", p.Owner.AvatarURL)
	assert.Nil(t, TrimProducts(nil))
	assert.Nil(t, TrimProduct(nil))
}
