package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WebhookLog là log một lần gọi resume webhook ra ngoài (outbound).
// deliveryId unique để mỗi lần enqueue chỉ được log/gửi đúng một lần.
type WebhookLog struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của log

	// ===== DELIVERY INFO =====
	DeliveryID string `json:"deliveryId" bson:"deliveryId" index:"single:1"` // Idempotency key của lần gửi (uuid, unique)
	URL        string `json:"url" bson:"url"`                                // URL đích
	ContentID  string `json:"contentId,omitempty" bson:"contentId,omitempty" index:"single:1"` // Content item liên quan
	Decision   string `json:"decision,omitempty" bson:"decision,omitempty"`  // approved, declined, cancelled

	// ===== REQUEST/RESPONSE INFO =====
	RequestBody map[string]interface{} `json:"requestBody,omitempty" bson:"requestBody,omitempty"` // Payload đã POST
	StatusCode  int                    `json:"statusCode,omitempty" bson:"statusCode,omitempty"`   // HTTP status từ phía nhận (0 nếu không kết nối được)
	Success     bool                   `json:"success" bson:"success" index:"single:1"`            // 2xx hay không
	Error       string                 `json:"error,omitempty" bson:"error,omitempty"`             // Lỗi network/timeout nếu có
	DurationMs  int64                  `json:"durationMs,omitempty" bson:"durationMs,omitempty"`   // Thời gian gọi (ms)

	// ===== METADATA =====
	UserID    primitive.ObjectID `json:"userId" bson:"userId" index:"single:1"` // Owner của content (phân quyền dữ liệu)
	SentAt    int64              `json:"sentAt" bson:"sentAt"`                  // Thời điểm gửi (ms)
	CreatedAt int64              `json:"createdAt" bson:"createdAt"`            // Thời gian tạo
	UpdatedAt int64              `json:"updatedAt" bson:"updatedAt"`            // Thời gian cập nhật
}
