// Package e2e provides end-to-end tests over a generated rental catalog: the
// catalog is written as a spreadsheet, imported, and queried through the chat
// API.
package e2e

import (
	"fmt"
	"strings"

	"github.com/hyperjump/rentassist/internal/models"
)

// E2EProduct is one catalog row of the corpus.
type E2EProduct struct {
	Title       string
	Type        string // canonical product type the title belongs to
	Category    string
	City        string
	District    string
	BasePrice   float64
	Quantity    int
	Available   int
	Status      string
	ViewCount   int
	RentCount   int
	Description string
}

// Visible reports whether the row should ever be shown to a user.
func (p E2EProduct) Visible() bool {
	return (p.Status == "" || p.Status == "approved" || p.Status == "active") && p.Available > 0
}

// ChatTestCase is a message and the constraints every product in the answer
// must satisfy.
type ChatTestCase struct {
	Message     string
	Description string
	Intent      models.Intent
	Type        string // expected product type; empty = any
	City        string // expected city; empty = any
	MaxPrice    float64
	// Order, when set, must hold between consecutive products.
	Order func(a, b *models.ProductCandidate) bool
	// MinProducts is the least number of products the answer must list.
	MinProducts int
}

// Corpus holds products and chat test cases for E2E tests.
type Corpus struct {
	Products     []E2EProduct
	TestCases    []ChatTestCase
	TotalRows    int
	TotalVisible int
}

var productTypes = []struct {
	value    string
	title    string
	category string
	price    float64
}{
	{"máy ảnh", "Máy ảnh Canon", "Máy ảnh", 250000},
	{"lều", "Lều cắm trại", "Đồ cắm trại", 80000},
	{"xe máy", "Xe máy Honda Vision", "Xe máy", 150000},
	{"loa", "Loa kéo JBL", "Âm thanh", 300000},
	{"máy chiếu", "Máy chiếu Epson", "Máy chiếu", 200000},
}

var cities = []struct {
	name     string
	district string
}{
	{"Hồ Chí Minh", "Quận 1"},
	{"Hà Nội", "Cầu Giấy"},
	{"Đà Nẵng", "Hải Châu"},
}

const variantsPerCity = 4

// BuildCorpus returns products for every type and city, four variants each,
// plus hidden rows (pending, rejected, sold out) that must never surface.
func BuildCorpus() *Corpus {
	var products []E2EProduct
	n := 0
	for _, pt := range productTypes {
		for _, c := range cities {
			for v := 0; v < variantsPerCity; v++ {
				n++
				products = append(products, E2EProduct{
					Title:       fmt.Sprintf("%s %d", pt.title, n),
					Type:        pt.value,
					Category:    pt.category,
					City:        c.name,
					District:    c.district,
					BasePrice:   pt.price + float64(v*50000),
					Quantity:    2,
					Available:   1 + v%2,
					Status:      "approved",
					ViewCount:   (n * 37) % 500,
					RentCount:   (n * 11) % 60,
					Description: fmt.Sprintf("Sản phẩm số %d, bảo quản kỹ, giao nhận tận nơi.", n),
				})
			}
		}
		// Cheapest rows of each type are hidden, so a leak is visible in sort order.
		for i, status := range []string{"pending", "rejected", "approved"} {
			n++
			available := 1
			if status == "approved" {
				available = 0
			}
			products = append(products, E2EProduct{
				Title:     fmt.Sprintf("%s %d", pt.title, n),
				Type:      pt.value,
				Category:  pt.category,
				City:      cities[i].name,
				District:  cities[i].district,
				BasePrice: 1000,
				Quantity:  1,
				Available: available,
				Status:    status,
				ViewCount: 10000,
			})
		}
	}
	visible := 0
	for _, p := range products {
		if p.Visible() {
			visible++
		}
	}
	return &Corpus{
		Products:     products,
		TestCases:    buildChatTestCases(),
		TotalRows:    len(products),
		TotalVisible: visible,
	}
}

func cheaper(a, b *models.ProductCandidate) bool { return a.BasePrice <= b.BasePrice }

func pricier(a, b *models.ProductCandidate) bool { return a.BasePrice >= b.BasePrice }

func moreViewed(a, b *models.ProductCandidate) bool { return a.ViewCount >= b.ViewCount }

func moreRented(a, b *models.ProductCandidate) bool { return a.RentCount >= b.RentCount }

func buildChatTestCases() []ChatTestCase {
	var cases []ChatTestCase
	for _, pt := range productTypes {
		cases = append(cases,
			ChatTestCase{
				Message:     pt.value + " rẻ nhất",
				Description: "cheapest " + pt.value,
				Intent:      models.IntentCheap,
				Type:        pt.value,
				Order:       cheaper,
				MinProducts: 5,
			},
			ChatTestCase{
				Message:     "thuê " + pt.value + " ở hà nội",
				Description: pt.value + " in Hà Nội",
				Intent:      models.IntentSearch,
				Type:        pt.value,
				City:        "Hà Nội",
				MinProducts: variantsPerCity,
			},
		)
	}
	cases = append(cases,
		ChatTestCase{
			Message:     "máy ảnh đắt nhất ở sài gòn",
			Description: "most expensive camera in Hồ Chí Minh",
			Intent:      models.IntentExpensive,
			Type:        "máy ảnh",
			City:        "Hồ Chí Minh",
			Order:       pricier,
			MinProducts: variantsPerCity,
		},
		ChatTestCase{
			Message:     "xe máy dưới 200k",
			Description: "scooter under 200k",
			Intent:      models.IntentSearch,
			Type:        "xe máy",
			MaxPrice:    200000,
			MinProducts: 2 * len(cities),
		},
		ChatTestCase{
			Message:     "lều xem nhiều nhất",
			Description: "most viewed tent",
			Intent:      models.IntentMostViewed,
			Type:        "lều",
			Order:       moreViewed,
			MinProducts: 5,
		},
		ChatTestCase{
			Message:     "loa thuê nhiều nhất ở đà nẵng",
			Description: "most rented speaker in Đà Nẵng",
			Intent:      models.IntentMostRented,
			Type:        "loa",
			City:        "Đà Nẵng",
			Order:       moreRented,
			MinProducts: variantsPerCity,
		},
	)
	return cases
}

// TypeOf returns the corpus product type of a title, or "".
func TypeOf(title string) string {
	for _, pt := range productTypes {
		if strings.HasPrefix(title, pt.title+" ") {
			return pt.value
		}
	}
	return ""
}
