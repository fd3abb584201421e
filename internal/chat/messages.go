package chat

// Fixed replies that never go through generation.
const (
	EmptyMessageReply = "Bạn muốn thuê sản phẩm gì? Hãy cho mình biết loại sản phẩm, khu vực hoặc mức giá mong muốn nhé."

	AskLocationReply = "Để tìm sản phẩm gần bạn nhất, bạn vui lòng cho mình biết địa chỉ hoặc khu vực của bạn nhé."

	AskCriteriaReply = "Mình chưa tìm được sản phẩm phù hợp để đề xuất. Bạn có thể cho mình biết thêm loại sản phẩm, khu vực hoặc mức giá mong muốn không?"

	DistanceUnavailableNote = "Lưu ý: hệ thống chưa tính được khoảng cách tới địa chỉ của bạn, danh sách được sắp xếp theo mức độ phù hợp."
)
