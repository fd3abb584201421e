package catalogimport

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hyperjump/rentassist/internal/indexer"
	"github.com/hyperjump/rentassist/internal/models"
	"github.com/hyperjump/rentassist/internal/storage"
	"github.com/hyperjump/rentassist/internal/storage/storagetest"
	"github.com/hyperjump/rentassist/internal/watcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeXLSX(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := r
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
}

func newImporter(t *testing.T) (*Importer, *storage.SQLiteCatalog) {
	t.Helper()
	catalog := storagetest.NewCatalog(t)
	return NewImporter(indexer.NewIndexer(catalog, nil)), catalog
}

func TestImportFile_XLSX(t *testing.T) {
	im, catalog := newImporter(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	writeXLSX(t, path, [][]interface{}{
		{"Tên sản phẩm", "Giá thuê", "Số lượng", "Thành phố", "Quận/Huyện", "Danh mục", "Tình trạng", "Đơn vị", "Thẻ", "Ghi chú"},
		{"Máy chiếu Epson", "200.000", 2, "Hồ Chí Minh", "Quận 3", "Máy chiếu", "mới", "ngày", "epson; hội thảo", "bỏ qua"},
		{},
		{"Loa kéo JBL", 350000, 1, "Hà Nội", "", "Loa", "", "ngày", "", ""},
		{"", "100000", 1},
		{"Đàn guitar Yamaha", "abc", 1},
	})

	res, err := im.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "Sheet1:5", res.Errors[0].Row)
	assert.Equal(t, "Sheet1:6", res.Errors[1].Row)

	it, err := catalog.FindItemByID(ctx, res.IDs[0])
	require.NoError(t, err)
	assert.Equal(t, "Máy chiếu Epson", it.Title)
	assert.Equal(t, 200000.0, it.BasePrice)
	assert.Equal(t, "Quận 3", it.District)
	assert.True(t, it.Visible())
	tags, err := catalog.TagsByItemIDs(ctx, []string{it.ID})
	require.NoError(t, err)
	assert.Len(t, tags[it.ID], 2)

	again, err := im.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, res.IDs, again.IDs, "re-import keeps row ids")
	n, err := catalog.CountItems(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestImportFile_XLSXWithoutTitleColumn(t *testing.T) {
	im, _ := newImporter(t)
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	writeXLSX(t, path, [][]interface{}{{"price", "city"}, {100, "Huế"}})

	_, err := im.ImportFile(context.Background(), path)
	assert.ErrorContains(t, err, "no title column")
}

func TestImportFile_JSON(t *testing.T) {
	im, catalog := newImporter(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "products.json")
	content := `{"products": [
		{"id": "0b7c6a52-1c1e-4c52-9f0e-0000000000aa", "title": "Flycam DJI Mini 3", "base_price": 500000, "quantity": 1, "status": "active"},
		{"title": "Ván trượt", "base_price": -5},
		{"title": "Lều 2 người", "base_price": 60000, "quantity": 3, "available_quantity": 0}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	res, err := im.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "1", res.Errors[0].Row)
	assert.Equal(t, "0b7c6a52-1c1e-4c52-9f0e-0000000000aa", res.IDs[0])

	visible, err := catalog.FindVisibleItems(ctx, storage.ItemPredicate{})
	require.NoError(t, err)
	require.Len(t, visible, 1, "the sold out tent is stored but hidden")
	assert.Equal(t, "Flycam DJI Mini 3", visible[0].Title)
}

func TestImportFile_JSONArray(t *testing.T) {
	im, _ := newImporter(t)
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"title": "Balo du lịch", "base_price": 40000, "quantity": 1}]`), 0600))

	res, err := im.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
}

func TestImportFile_Unsupported(t *testing.T) {
	im, _ := newImporter(t)
	_, err := im.ImportFile(context.Background(), "catalog.csv")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestImportDirectory(t *testing.T) {
	im, catalog := newImporter(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`[{"title": "Vali 24 inch", "base_price": 50000, "quantity": 1}]`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0600))
	writeXLSX(t, filepath.Join(dir, "b.xlsx"), [][]interface{}{{"title", "price"}, {"Áo dài cách tân", 120000}})

	results, err := im.ImportDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	n, err := catalog.CountItems(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

type recordingSink struct {
	mu     sync.Mutex
	titles []string
}

func (s *recordingSink) IndexProduct(_ context.Context, in *models.ProductInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.titles = append(s.titles, in.Title)
	return in.ID, nil
}

func (s *recordingSink) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.titles...)
}

func TestWatchInbox(t *testing.T) {
	sink := &recordingSink{}
	im := NewImporter(sink)
	dir := filepath.Join(t.TempDir(), "inbox")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := im.WatchInbox(ctx, dir, watcher.WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.json"), []byte(`[{"title": "Máy khoan Bosch", "base_price": 70000}]`), 0600))
	assert.Eventually(t, func() bool {
		return len(sink.seen()) > 0
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, "Máy khoan Bosch", sink.seen()[0])
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"300000", 300000},
		{"300.000", 300000},
		{"1,500,000", 1500000},
		{"250.000 đ", 250000},
		{"99.5", 99.5},
	}
	for _, tt := range tests {
		got, err := parseAmount(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	_, err := parseAmount("abc")
	assert.Error(t, err)
}
