package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentType định nghĩa các loại content item
const (
	ContentTypeArticle    = "article"     // Bài viết
	ContentTypeVideo      = "video"       // Video
	ContentTypeImage      = "image"       // Hình ảnh
	ContentTypeAudio      = "audio"       // Âm thanh
	ContentTypeData       = "data"        // Dữ liệu (report, export)
	ContentTypeSocialPost = "social-post" // Bài đăng mạng xã hội
)

// ContentStatus định nghĩa các trạng thái trong lifecycle của content item
const (
	ContentStatusPending    = "pending"    // Chờ duyệt
	ContentStatusApproved   = "approved"   // Đã duyệt
	ContentStatusDeclined   = "declined"   // Bị từ chối
	ContentStatusScheduled  = "scheduled"  // Đã lên lịch publish
	ContentStatusPublishing = "publishing" // Đang publish (external publisher)
	ContentStatusPublished  = "published"  // Đã publish
)

// MetadataKey các key chuẩn trong metadata bag
const (
	MetadataKeyResumeWebhookURL = "resumeWebhookUrl" // URL resume workflow bên ngoài (single-use per decision)
	MetadataKeyApprovedAt       = "approvedAt"       // Thời điểm duyệt (ms)
	MetadataKeyApprovalFeedback = "approvalFeedback" // Feedback của người duyệt
)

// RequiresApproval kiểm tra content type có cần duyệt trước khi publish không.
// Hiện tại chỉ social-post phải qua trạng thái pending; các type khác chuyển
// thẳng sang trạng thái cuối khi được tạo (bởi module execution, ngoài phạm vi).
func RequiresApproval(contentType string) bool {
	return contentType == ContentTypeSocialPost
}

// IsValidStatus kiểm tra status có thuộc lifecycle không
func IsValidStatus(status string) bool {
	switch status {
	case ContentStatusPending, ContentStatusApproved, ContentStatusDeclined,
		ContentStatusScheduled, ContentStatusPublishing, ContentStatusPublished:
		return true
	}
	return false
}

// ContentItem đại diện cho một content item do module execution sinh ra.
// Lifecycle: pending → approved/declined → (social-post) scheduled → publishing → published.
type ContentItem struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của content item

	// ===== CONTENT =====
	Title      string `json:"title" bson:"title" index:"text"`                 // Tiêu đề content
	Type       string `json:"type" bson:"type" index:"single:1"`               // Loại: article, video, image, audio, data, social-post
	ModuleSlug string `json:"moduleSlug" bson:"moduleSlug" index:"single:1"`   // Slug của module sinh ra content này
	Status     string `json:"status" bson:"status" index:"single:1"`           // Trạng thái lifecycle

	// ===== SCHEDULING =====
	ScheduledAt int64 `json:"scheduledAt,omitempty" bson:"scheduledAt,omitempty" index:"single:1"` // Thời điểm publish dự kiến (ms), chỉ có khi status=scheduled

	// ===== USER =====
	IsFavorite bool               `json:"isFavorite" bson:"isFavorite"`            // User đánh dấu yêu thích, độc lập với lifecycle
	UserID     primitive.ObjectID `json:"userId" bson:"userId" index:"single:1"`   // User sở hữu content (phân quyền dữ liệu)

	// ===== METADATA =====
	Metadata  map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"` // Metadata theo producer (platform, hashtags, resumeWebhookUrl...)
	CreatedAt int64                  `json:"createdAt" bson:"createdAt"`                   // Thời gian tạo
	UpdatedAt int64                  `json:"updatedAt" bson:"updatedAt"`                   // Thời gian cập nhật
}

// ResumeWebhookURL đọc resumeWebhookUrl từ metadata bag, trả về chuỗi rỗng nếu không có
func (c *ContentItem) ResumeWebhookURL() string {
	if c.Metadata == nil {
		return ""
	}
	if url, ok := c.Metadata[MetadataKeyResumeWebhookURL].(string); ok {
		return url
	}
	return ""
}
