package webhookdto

// WebhookLogCreateInput dữ liệu đầu vào khi tạo webhook log.
// Log được ghi bởi resume dispatcher; route chỉ expose đọc, input này tồn tại
// cho chữ ký generic của BaseHandler.
type WebhookLogCreateInput struct {
	DeliveryID  string                 `json:"deliveryId" validate:"required"`
	URL         string                 `json:"url" validate:"required,url"`
	ContentID   string                 `json:"contentId,omitempty"`
	Decision    string                 `json:"decision,omitempty" validate:"omitempty,oneof=approved declined cancelled"`
	RequestBody map[string]interface{} `json:"requestBody,omitempty"`
}

// WebhookLogUpdateInput dữ liệu đầu vào khi cập nhật webhook log
type WebhookLogUpdateInput struct {
	StatusCode int    `json:"statusCode,omitempty"`
	Error      string `json:"error,omitempty"`
}
