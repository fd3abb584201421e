package compose

import (
	"encoding/json"
	"strings"

	"github.com/hyperjump/rentassist/internal/models"
)

// PromptInput is what the system prompt is built from.
type PromptInput struct {
	Intent      models.Intent
	Candidates  []*models.ProductCandidate
	UserAddress string
	BroadSearch bool
	Notes       []string
}

type promptProduct struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Price     string   `json:"price"`
	Category  string   `json:"category,omitempty"`
	Condition string   `json:"condition,omitempty"`
	Location  string   `json:"location,omitempty"`
	Available int      `json:"available_quantity"`
	Score     float64  `json:"recommendation_score,omitempty"`
	Reasons   []string `json:"reasons,omitempty"`
}

const systemRules = `Bạn là trợ lý tư vấn của một sàn cho thuê đồ tại Việt Nam. Trả lời ngắn gọn bằng tiếng Việt.
Quy tắc bắt buộc:
- Chỉ được nhắc tới sản phẩm có trong PROVIDED_PRODUCTS. Không bịa tên, giá hay mã sản phẩm.
- Nếu PROVIDED_PRODUCTS rỗng, hãy nói rằng chưa có sản phẩm phù hợp.
- Khoảng cách tới người dùng chưa được tính; không được ước lượng khoảng cách.
- Cuối câu trả lời, thêm một khối JSON dạng {"suggestions":[{"id":"...","reason":"..."}]} chỉ chứa id trong PROVIDED_PRODUCTS.`

// BuildSystemPrompt renders the rules, request context and the exact
// candidate set the reply may reference.
func BuildSystemPrompt(in PromptInput) string {
	var b strings.Builder
	b.WriteString(systemRules)
	b.WriteString("\n\nINTENT: ")
	b.WriteString(string(in.Intent))
	if in.UserAddress != "" {
		b.WriteString("\nUSER_ADDRESS: ")
		b.WriteString(in.UserAddress)
	}
	if in.BroadSearch {
		b.WriteString("\nNOTE: Người dùng chưa nêu tiêu chí cụ thể; đây là các sản phẩm phổ biến. Hãy nói rõ điều này.")
	}
	for _, n := range in.Notes {
		b.WriteString("\nNOTE: ")
		b.WriteString(n)
	}
	products := make([]promptProduct, 0, len(in.Candidates))
	for _, p := range in.Candidates {
		pp := promptProduct{
			ID:        p.ID,
			Title:     p.Title,
			Price:     FormatPrice(p),
			Location:  locationOf(p),
			Available: p.AvailableQuantity,
			Score:     p.RecommendationScore,
			Reasons:   p.Reasons,
		}
		if p.Category != nil {
			pp.Category = p.Category.Name
		}
		if p.Condition != nil {
			pp.Condition = p.Condition.Name
		}
		products = append(products, pp)
	}
	data, _ := json.Marshal(products)
	b.WriteString("\n\nPROVIDED_PRODUCTS: ")
	b.Write(data)
	return b.String()
}
