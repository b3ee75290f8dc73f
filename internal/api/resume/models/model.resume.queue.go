package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResumeDecision các giá trị decision gửi cho workflow bên ngoài
const (
	ResumeDecisionApproved  = "approved"  // Content được duyệt
	ResumeDecisionDeclined  = "declined"  // Content bị từ chối
	ResumeDecisionCancelled = "cancelled" // Content pending bị xóa trước khi có quyết định
)

// ResumeQueueStatus trạng thái của một item trong resume queue
const (
	ResumeStatusPending    = "pending"    // Chờ gửi
	ResumeStatusProcessing = "processing" // Đang gửi
	ResumeStatusCompleted  = "completed"  // Đã gửi thành công
	ResumeStatusFailed     = "failed"     // Gửi thất bại (không retry, chỉ ghi log)
)

// ResumePayload là JSON body POST tới resumeWebhookUrl của workflow bên ngoài.
// deliveryId là uuid duy nhất per enqueue để phía nhận de-duplicate.
type ResumePayload struct {
	DeliveryID string `json:"deliveryId" bson:"deliveryId"`         // Idempotency key (uuid)
	Decision   string `json:"decision" bson:"decision"`             // approved | declined | cancelled
	Approved   bool   `json:"approved" bson:"approved"`             // true khi decision=approved
	Feedback   string `json:"feedback,omitempty" bson:"feedback,omitempty"` // Feedback của người duyệt
	ContentID  string `json:"contentId" bson:"contentId"`           // ID content item
	ApproverID string `json:"approverId" bson:"approverId"`         // Identity người ra quyết định
	Timestamp  string `json:"timestamp" bson:"timestamp"`           // ISO-8601 (RFC3339)
}

// ResumeQueueItem là một lần gọi resume webhook đang chờ dispatcher xử lý.
// Mỗi quyết định enqueue tối đa một item; dispatcher gửi đúng một lần.
type ResumeQueueItem struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID queue item

	WebhookURL string        `json:"webhookUrl" bson:"webhookUrl"`                       // URL đích (metadata.resumeWebhookUrl)
	Payload    ResumePayload `json:"payload" bson:"payload"`                             // Body sẽ POST
	Status     string        `json:"status" bson:"status" index:"single:1"`              // pending, processing, completed, failed
	LastError  string        `json:"lastError,omitempty" bson:"lastError,omitempty"`     // Lỗi lần gửi cuối (nếu failed)

	UserID    primitive.ObjectID `json:"userId" bson:"userId" index:"single:1"` // Owner của content (phân quyền dữ liệu)
	CreatedAt int64              `json:"createdAt" bson:"createdAt"`            // Thời gian tạo
	UpdatedAt int64              `json:"updatedAt" bson:"updatedAt"`            // Thời gian cập nhật
}
