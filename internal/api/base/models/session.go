package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionContext chứa thông tin phiên làm việc của user, được truyền tường minh
// vào các service nghiệp vụ thay vì đọc từ global state. Handler xây dựng
// SessionContext từ Locals do auth middleware set.
type SessionContext struct {
	UserID      primitive.ObjectID // ID của user đang đăng nhập
	CanSchedule bool               // Entitlement cho phép lên lịch publish
}

// IsValid kiểm tra session có user hợp lệ không
func (s SessionContext) IsValid() bool {
	return !s.UserID.IsZero()
}
