package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ApprovalStatus định nghĩa kết quả của một quyết định duyệt
const (
	ApprovalStatusApproved = "approved" // Đã duyệt
	ApprovalStatusDeclined = "declined" // Từ chối
)

// ContentApproval là approval record mới nhất của một content item (1:1 theo contentId).
// Sau khi có quyết định, status của record này và status của ContentItem phải khớp nhau;
// nếu write thứ hai thất bại thì hệ thống báo lỗi partial-failure riêng biệt.
type ContentApproval struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của approval record

	ContentID  primitive.ObjectID `json:"contentId" bson:"contentId" index:"single:1"` // Content item được duyệt (unique, giữ record mới nhất)
	Status     string             `json:"status" bson:"status" index:"single:1"`       // approved | declined
	Feedback   string             `json:"feedback,omitempty" bson:"feedback,omitempty"` // Feedback tự do của người duyệt
	ApproverID primitive.ObjectID `json:"approverId" bson:"approverId" index:"single:1"` // User ra quyết định
	ReviewedAt int64              `json:"reviewedAt" bson:"reviewedAt"`                 // Thời điểm quyết định (ms)

	UserID    primitive.ObjectID `json:"userId" bson:"userId" index:"single:1"` // User sở hữu (trùng owner của content, phân quyền dữ liệu)
	CreatedAt int64              `json:"createdAt" bson:"createdAt"`            // Thời gian tạo
	UpdatedAt int64              `json:"updatedAt" bson:"updatedAt"`            // Thời gian cập nhật
}
