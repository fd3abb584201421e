// Package storagetest provides a seeded in-memory catalog for tests.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/hyperjump/rentassist/internal/models"
	"github.com/hyperjump/rentassist/internal/storage"
)

// Fixture item ids.
const (
	ItemCanon      = "0b7c6a52-1c1e-4c52-9f0e-000000000001"
	ItemSony       = "0b7c6a52-1c1e-4c52-9f0e-000000000002"
	ItemFuji       = "0b7c6a52-1c1e-4c52-9f0e-000000000003"
	ItemPending    = "0b7c6a52-1c1e-4c52-9f0e-000000000004"
	ItemDeleted    = "0b7c6a52-1c1e-4c52-9f0e-000000000005"
	ItemSoldOut    = "0b7c6a52-1c1e-4c52-9f0e-000000000006"
	ItemScooter    = "0b7c6a52-1c1e-4c52-9f0e-000000000007"
	ItemTent       = "0b7c6a52-1c1e-4c52-9f0e-000000000008"
	ItemGoPro      = "0b7c6a52-1c1e-4c52-9f0e-000000000009"
	ItemOrphan     = "0b7c6a52-1c1e-4c52-9f0e-000000000010"
	OwnerID        = "5f1d0c3e-7a2b-4e8d-9c61-00000000000a"
	OrphanCategory = "missing-category"
)

// VisibleCameraIDs are the visible items a "máy ảnh" query matches, orphan excluded.
var VisibleCameraIDs = []string{ItemCanon, ItemSony, ItemFuji, ItemGoPro}

// NewCatalog returns an empty in-memory catalog closed at test end.
func NewCatalog(t testing.TB) *storage.SQLiteCatalog {
	t.Helper()
	c, err := storage.NewSQLiteCatalog(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// Seeded returns an in-memory catalog holding the fixture items.
func Seeded(t testing.TB) *storage.SQLiteCatalog {
	t.Helper()
	c := NewCatalog(t)
	Seed(t, c)
	return c
}

type seedItem struct {
	item     storage.Item
	category string
	tags     []string
	images   []string
}

// Seed writes the fixture items into c.
func Seed(t testing.TB, c *storage.SQLiteCatalog) {
	t.Helper()
	ctx := context.Background()
	if err := c.SaveOwner(ctx, &models.Owner{ID: OwnerID, DisplayName: "Minh Anh"}); err != nil {
		t.Fatal(err)
	}
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	deleted := base.Add(48 * time.Hour)
	items := []seedItem{
		{
			item: storage.Item{ID: ItemCanon, Title: "Máy ảnh Canon EOS M50", ShortDescription: "Mirrorless nhỏ gọn, kèm lens kit 15-45mm",
				BasePrice: 300000, DepositAmount: 3000000, Quantity: 3, AvailableQuantity: 2,
				City: "Hồ Chí Minh", District: "Quận 1", Address: "12 Lê Lợi",
				ViewCount: 500, FavoriteCount: 40, RentCount: 20, ConditionID: 2, PriceUnitID: 1,
				Status: storage.StatusApproved, CreatedAt: base},
			category: "Máy ảnh", tags: []string{"canon", "mirrorless"},
			images: []string{"https://cdn.example.com/m50-front.jpg", "https://cdn.example.com/m50-back.jpg"},
		},
		{
			item: storage.Item{ID: ItemSony, Title: "Máy ảnh Sony A6400", ShortDescription: "Lấy nét nhanh, quay 4K",
				BasePrice: 450000, DepositAmount: 5000000, Quantity: 1, AvailableQuantity: 1,
				City: "Hà Nội", District: "Hoàn Kiếm", Address: "5 Hàng Bài",
				ViewCount: 300, FavoriteCount: 60, RentCount: 30, ConditionID: 1, PriceUnitID: 1,
				Status: storage.StatusApproved, CreatedAt: base.Add(time.Hour)},
			category: "Máy ảnh", tags: []string{"sony", "mirrorless"},
			images: []string{"https://cdn.example.com/a6400.jpg"},
		},
		{
			item: storage.Item{ID: ItemFuji, Title: "Máy ảnh Fujifilm X-T30", ShortDescription: "Màu film đẹp",
				BasePrice: 250000, DepositAmount: 2500000, Quantity: 6, AvailableQuantity: 6,
				City: "Hồ Chí Minh", District: "Bình Thạnh",
				ViewCount: 120, FavoriteCount: 10, RentCount: 5, ConditionID: 3, PriceUnitID: 1,
				Status: storage.StatusActive, CreatedAt: base.Add(2 * time.Hour)},
			category: "Máy ảnh", tags: []string{"fujifilm"},
		},
		{
			item: storage.Item{ID: ItemPending, Title: "Máy ảnh film Pentax K1000", BasePrice: 100000,
				Quantity: 1, AvailableQuantity: 1, City: "Hồ Chí Minh", ViewCount: 5,
				Status: storage.StatusPending, CreatedAt: base},
			category: "Máy ảnh",
		},
		{
			item: storage.Item{ID: ItemDeleted, Title: "Máy ảnh Nikon D750", BasePrice: 200000,
				Quantity: 1, AvailableQuantity: 1, City: "Hồ Chí Minh", ViewCount: 900,
				Status: storage.StatusApproved, CreatedAt: base, DeletedAt: &deleted},
			category: "Máy ảnh",
		},
		{
			item: storage.Item{ID: ItemSoldOut, Title: "Máy ảnh Olympus OM-D", BasePrice: 150000,
				Quantity: 2, AvailableQuantity: 0, City: "Hồ Chí Minh", ViewCount: 700,
				Status: storage.StatusApproved, CreatedAt: base},
			category: "Máy ảnh",
		},
		{
			item: storage.Item{ID: ItemScooter, Title: "Xe máy Honda Vision 2023", ShortDescription: "Xe tay ga tiết kiệm xăng",
				BasePrice: 150000, DepositAmount: 2000000, Quantity: 4, AvailableQuantity: 3,
				City: "Hồ Chí Minh", District: "Quận 1",
				ViewCount: 800, FavoriteCount: 90, RentCount: 150, ConditionID: 2, PriceUnitID: 1,
				Status: storage.StatusApproved, CreatedAt: base.Add(3 * time.Hour)},
			category: "Xe máy", tags: []string{"honda", "xe tay ga"},
		},
		{
			item: storage.Item{ID: ItemTent, Title: "Lều cắm trại 4 người", ShortDescription: "Chống mưa, dựng nhanh",
				BasePrice: 80000, Quantity: 10, AvailableQuantity: 8,
				City: "Đà Nẵng", ViewCount: 50, FavoriteCount: 5, RentCount: 12, ConditionID: 1, PriceUnitID: 1,
				Status: storage.StatusActive, CreatedAt: base.Add(4 * time.Hour)},
			category: "Đồ cắm trại", tags: []string{"camping"},
		},
		{
			item: storage.Item{ID: ItemGoPro, Title: "GoPro Hero 11 Black", ShortDescription: "Camera hành trình chống nước",
				BasePrice: 350000, Quantity: 2, AvailableQuantity: 2,
				City: "Hồ Chí Minh", ViewCount: 200, FavoriteCount: 25, RentCount: 18, ConditionID: 2, PriceUnitID: 1,
				Status: storage.StatusApproved, CreatedAt: base.Add(5 * time.Hour)},
			category: "Máy ảnh", tags: []string{"action cam"},
		},
	}
	for _, si := range items {
		cat, err := c.EnsureCategory(ctx, si.category)
		if err != nil {
			t.Fatal(err)
		}
		it := si.item
		it.CategoryID = cat.ID
		it.OwnerID = OwnerID
		if err := c.SaveItem(ctx, &it); err != nil {
			t.Fatal(err)
		}
		if err := c.SetItemTags(ctx, it.ID, si.tags); err != nil {
			t.Fatal(err)
		}
		if err := c.SetItemImages(ctx, it.ID, si.images); err != nil {
			t.Fatal(err)
		}
	}
	// Visible item whose category cannot be resolved.
	orphan := storage.Item{ID: ItemOrphan, CategoryID: OrphanCategory, OwnerID: OwnerID,
		Title: "Máy ảnh Leica M6 cũ", BasePrice: 120000, Quantity: 1, AvailableQuantity: 1,
		City: "Hồ Chí Minh", ViewCount: 10, Status: storage.StatusApproved, CreatedAt: base}
	if err := c.SaveItem(ctx, &orphan); err != nil {
		t.Fatal(err)
	}
}
