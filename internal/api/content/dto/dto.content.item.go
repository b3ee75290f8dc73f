package contentdto

// ContentItemCreateInput dữ liệu đầu vào khi tạo content item.
// Status không nhận từ client: service tự tính theo type (social-post → pending,
// còn lại → published vì đã được produce hoàn chỉnh từ module execution).
type ContentItemCreateInput struct {
	Title      string                 `json:"title" validate:"required,no_xss"`
	Type       string                 `json:"type" validate:"required,oneof=article video image audio data social-post"`
	ModuleSlug string                 `json:"moduleSlug" validate:"required"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// ContentItemUpdateInput dữ liệu đầu vào khi cập nhật content item.
// Status, scheduledAt và isFavorite có route riêng, không cập nhật qua đây.
type ContentItemUpdateInput struct {
	Title    string                 `json:"title,omitempty" validate:"omitempty,no_xss"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// ContentStatusUpdateInput dữ liệu đầu vào khi cập nhật status trực tiếp
type ContentStatusUpdateInput struct {
	Status string `json:"status" validate:"required,oneof=pending approved declined scheduled publishing published"`
}

// ContentFavoriteUpdateInput dữ liệu đầu vào khi toggle favorite.
// Dùng pointer để phân biệt false với thiếu field.
type ContentFavoriteUpdateInput struct {
	IsFavorite *bool `json:"isFavorite" validate:"required"`
}

// ContentDecisionInput dữ liệu đầu vào khi approve/decline một content item
type ContentDecisionInput struct {
	Feedback string `json:"feedback,omitempty" validate:"omitempty,no_xss,max=2000"`
}

// ContentScheduleInput dữ liệu đầu vào khi lên lịch publish.
// future_unix_ms từ chối timestamp không nằm trong tương lai trước khi chạm database.
type ContentScheduleInput struct {
	ScheduledAt int64 `json:"scheduledAt" validate:"required,future_unix_ms"`
}
