package catalogimport

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperjump/rentassist/internal/models"
	"github.com/hyperjump/rentassist/pkg/utils"
)

// columnAliases maps accepted header names to product fields.
var columnAliases = map[string][]string{
	"id":                 {"id"},
	"title":              {"title", "name", "tên", "tên sản phẩm"},
	"description":        {"description", "short description", "mô tả"},
	"base_price":         {"base price", "price", "giá", "giá thuê"},
	"deposit_amount":     {"deposit amount", "deposit", "tiền cọc", "đặt cọc"},
	"currency":           {"currency", "tiền tệ"},
	"quantity":           {"quantity", "số lượng"},
	"available_quantity": {"available quantity", "available", "còn lại"},
	"city":               {"city", "thành phố", "tỉnh"},
	"district":           {"district", "quận", "quận huyện"},
	"address":            {"address", "địa chỉ"},
	"category":           {"category", "danh mục"},
	"condition":          {"condition", "tình trạng"},
	"price_unit":         {"price unit", "unit", "đơn vị"},
	"tags":               {"tags", "thẻ"},
	"images":             {"images", "image", "hình ảnh", "ảnh"},
	"owner":              {"owner", "chủ sở hữu", "người cho thuê"},
	"status":             {"status", "trạng thái"},
	"view_count":         {"view count", "views", "lượt xem"},
	"favorite_count":     {"favorite count", "favorites", "lượt thích"},
	"rent_count":         {"rent count", "rents", "lượt thuê"},
}

var headerIndex = func() map[string]string {
	m := make(map[string]string)
	for field, aliases := range columnAliases {
		for _, a := range aliases {
			m[headerKey(a)] = field
		}
	}
	return m
}()

var headerSepRe = regexp.MustCompile(`[\s_/\-]+`)

func headerKey(s string) string {
	return strings.TrimSpace(headerSepRe.ReplaceAllString(utils.NormalizeText(s), " "))
}

// mapHeader returns the field for every column; unknown columns map to "".
func mapHeader(header []string) ([]string, error) {
	fields := make([]string, len(header))
	hasTitle := false
	for i, h := range header {
		fields[i] = headerIndex[headerKey(h)]
		if fields[i] == "title" {
			hasTitle = true
		}
	}
	if !hasTitle {
		return nil, fmt.Errorf("no title column in header %v", header)
	}
	return fields, nil
}

// rowToInput builds a product from one sheet row.
func rowToInput(fields, row []string) (*models.ProductInput, error) {
	in := &models.ProductInput{}
	for i, field := range fields {
		if field == "" || i >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[i])
		if v == "" {
			continue
		}
		if err := setField(in, field, v); err != nil {
			return nil, fmt.Errorf("column %s: %w", field, err)
		}
	}
	return in, nil
}

func setField(in *models.ProductInput, field, v string) error {
	var err error
	switch field {
	case "id":
		in.ID = v
	case "title":
		in.Title = v
	case "description":
		in.Description = v
	case "base_price":
		in.BasePrice, err = parseAmount(v)
	case "deposit_amount":
		in.DepositAmount, err = parseAmount(v)
	case "currency":
		in.Currency = v
	case "quantity":
		in.Quantity, err = parseCount(v)
	case "available_quantity":
		var n int
		if n, err = parseCount(v); err == nil {
			in.AvailableQuantity = &n
		}
	case "city":
		in.City = v
	case "district":
		in.District = v
	case "address":
		in.Address = v
	case "category":
		in.Category = v
	case "condition":
		in.Condition = v
	case "price_unit":
		in.PriceUnit = v
	case "tags":
		in.Tags = splitList(v)
	case "images":
		in.Images = splitList(v)
	case "owner":
		in.Owner = v
	case "status":
		in.Status = strings.ToLower(v)
	case "view_count":
		in.ViewCount, err = parseCount(v)
	case "favorite_count":
		in.FavoriteCount, err = parseCount(v)
	case "rent_count":
		in.RentCount, err = parseCount(v)
	}
	return err
}

var groupedRe = regexp.MustCompile(`^\d{1,3}(?:[.,]\d{3})+$`)

// parseAmount reads "300000", "300.000", "300,000" or "300.000 đ".
func parseAmount(s string) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, suffix := range []string{"vnd", "vnđ", "đ"} {
		s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
	}
	s = strings.ReplaceAll(s, " ", "")
	if groupedRe.MatchString(s) {
		s = strings.NewReplacer(".", "", ",", "").Replace(s)
	} else {
		s = strings.ReplaceAll(s, ",", ".")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return f, nil
}

func parseCount(s string) (int, error) {
	f, err := parseAmount(s)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func splitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '|' || r == '\n'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
