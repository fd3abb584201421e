package e2e

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// catalogHeader uses the Vietnamese column names marketplace staff type.
var catalogHeader = []interface{}{
	"Tên sản phẩm", "Mô tả", "Giá thuê", "Số lượng", "Còn lại", "Thành phố", "Quận/Huyện",
	"Danh mục", "Tình trạng", "Đơn vị", "Trạng thái", "Lượt xem", "Lượt thuê",
}

// WriteCatalogXLSX writes products to a spreadsheet at path, splitting them
// across sheets of at most perSheet rows.
func WriteCatalogXLSX(path string, products []E2EProduct, perSheet int) error {
	if perSheet <= 0 {
		perSheet = len(products)
	}
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"
	row := 0
	for i, p := range products {
		if i > 0 && i%perSheet == 0 {
			sheet = fmt.Sprintf("Sheet%d", i/perSheet+1)
			if _, err := f.NewSheet(sheet); err != nil {
				return err
			}
			row = 0
		}
		if row == 0 {
			if err := setRow(f, sheet, 1, catalogHeader); err != nil {
				return err
			}
			row = 1
		}
		row++
		values := []interface{}{
			p.Title, p.Description, p.BasePrice, p.Quantity, p.Available, p.City, p.District,
			p.Category, "tốt", "ngày", p.Status, p.ViewCount, p.RentCount,
		}
		if err := setRow(f, sheet, row, values); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
