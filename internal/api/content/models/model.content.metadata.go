package models

import (
	"meta_content/internal/utility"
)

// MetadataKind phân loại shape của metadata bag theo producer
const (
	MetadataKindSocialPost = "socialPost" // Bài đăng mạng xã hội
	MetadataKindArticle    = "article"    // Bài viết
	MetadataKindDocument   = "document"   // Tài liệu (file)
	MetadataKindLease      = "lease"      // Hợp đồng thuê bất động sản
	MetadataKindOpaque     = "opaque"     // Shape không nhận diện được, giữ nguyên bag
)

// SocialPostMetadata shape metadata của social-post (module social publishing)
type SocialPostMetadata struct {
	Platform         string   `json:"platform"`                   // facebook, instagram, tiktok...
	Hashtags         []string `json:"hashtags,omitempty"`         // Danh sách hashtag
	Caption          string   `json:"caption,omitempty"`          // Caption bài đăng
	MediaPaths       []string `json:"mediaPaths,omitempty"`       // Đường dẫn file media
	ResumeWebhookURL string   `json:"resumeWebhookUrl,omitempty"` // URL resume workflow sau quyết định
	ApprovedAt       int64    `json:"approvedAt,omitempty"`       // Thời điểm duyệt (ms)
	ApprovalFeedback string   `json:"approvalFeedback,omitempty"` // Feedback khi duyệt
}

// ArticleMetadata shape metadata của article (module content generation)
type ArticleMetadata struct {
	WordCount int      `json:"wordCount,omitempty"` // Số từ
	Keywords  []string `json:"keywords,omitempty"`  // Từ khóa SEO
	Excerpt   string   `json:"excerpt,omitempty"`   // Đoạn trích
}

// DocumentMetadata shape metadata của document (file sinh ra bởi module)
type DocumentMetadata struct {
	FilePath string `json:"filePath"`           // Đường dẫn file
	FileSize int64  `json:"fileSize,omitempty"` // Kích thước (byte)
	MimeType string `json:"mimeType,omitempty"` // MIME type
}

// LeaseMetadata shape metadata của hợp đồng thuê (module real-estate)
type LeaseMetadata struct {
	PropertyAddress string `json:"propertyAddress"`       // Địa chỉ bất động sản
	TenantName      string `json:"tenantName,omitempty"`  // Tên người thuê
	MonthlyRent     int64  `json:"monthlyRent,omitempty"` // Tiền thuê hàng tháng
	LeaseStart      int64  `json:"leaseStart,omitempty"`  // Bắt đầu thuê (ms)
	LeaseEnd        int64  `json:"leaseEnd,omitempty"`    // Kết thúc thuê (ms)
}

// DecodeMetadata decode metadata bag thành shape đã biết theo content type / các
// field đặc trưng; trả về kind và struct tương ứng. Bag không nhận diện được trả
// về MetadataKindOpaque cùng chính bag đó để caller xử lý tùy ý.
func DecodeMetadata(contentType string, bag map[string]interface{}) (string, interface{}) {
	if bag == nil {
		return MetadataKindOpaque, map[string]interface{}{}
	}

	switch {
	case contentType == ContentTypeSocialPost:
		var m SocialPostMetadata
		if _, err := utility.ConvertStruct(bag, &m); err == nil {
			return MetadataKindSocialPost, m
		}
	case contentType == ContentTypeArticle:
		var m ArticleMetadata
		if _, err := utility.ConvertStruct(bag, &m); err == nil {
			return MetadataKindArticle, m
		}
	case hasKey(bag, "filePath"):
		var m DocumentMetadata
		if _, err := utility.ConvertStruct(bag, &m); err == nil {
			return MetadataKindDocument, m
		}
	case hasKey(bag, "propertyAddress"):
		var m LeaseMetadata
		if _, err := utility.ConvertStruct(bag, &m); err == nil {
			return MetadataKindLease, m
		}
	}

	return MetadataKindOpaque, bag
}

func hasKey(bag map[string]interface{}, key string) bool {
	_, ok := bag[key]
	return ok
}
