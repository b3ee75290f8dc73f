package contentsvc

import (
	"context"
	"time"

	basemodels "meta_content/internal/api/base/models"
	basesvc "meta_content/internal/api/base/service"
	contentmodels "meta_content/internal/api/content/models"
	"meta_content/internal/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// scheduleItemStore là surface tối thiểu của ContentItemService mà schedule engine cần
type scheduleItemStore interface {
	FindOneById(ctx context.Context, id primitive.ObjectID) (contentmodels.ContentItem, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (contentmodels.ContentItem, error)
	Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]contentmodels.ContentItem, error)
}

// ScheduleService ghi nhận intent lên lịch publish cho content item.
// Việc bắn publish tại thời điểm đã lên lịch do hệ thống ngoài đảm nhiệm;
// service này chỉ persist status=scheduled + scheduledAt.
type ScheduleService struct {
	items scheduleItemStore
}

// NewScheduleService tạo mới ScheduleService
func NewScheduleService() (*ScheduleService, error) {
	itemService, err := NewContentItemService()
	if err != nil {
		return nil, err
	}
	return newScheduleServiceWith(itemService), nil
}

// newScheduleServiceWith dùng cho test với store giả
func newScheduleServiceWith(items scheduleItemStore) *ScheduleService {
	return &ScheduleService{items: items}
}

// Schedule lên lịch publish cho content item tại executionTime (ms).
//
// Thứ tự kiểm tra, cả hai đều TRƯỚC mọi truy cập database:
//  1. Entitlement canSchedule: thiếu → lỗi permission riêng biệt (403, upsell path).
//  2. executionTime phải strictly lớn hơn now tại thời điểm validate → lỗi
//     validation (400) nếu không.
//
// Thành công: status=scheduled, scheduledAt=executionTime (persist đúng giá trị
// caller đưa vào, không làm tròn). Không chạm isFavorite.
func (s *ScheduleService) Schedule(ctx context.Context, session basemodels.SessionContext, contentID primitive.ObjectID, executionTime int64) (contentmodels.ContentItem, error) {
	var zero contentmodels.ContentItem

	if !session.IsValid() || contentID.IsZero() {
		return zero, common.ErrRequiredField
	}
	if !session.CanSchedule {
		return zero, common.ErrUpgradeRequired
	}
	if executionTime <= time.Now().UnixMilli() {
		return zero, common.ErrScheduleInPast
	}

	item, err := s.items.FindOneById(ctx, contentID)
	if err != nil {
		return zero, err
	}
	if item.UserID != session.UserID {
		return zero, common.ErrNotFound
	}

	update := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"status":      contentmodels.ContentStatusScheduled,
			"scheduledAt": executionTime,
		},
	}
	return s.items.UpdateOne(ctx, bson.M{"_id": contentID}, update, nil)
}

// Unschedule hủy lịch publish: trả item về approved và gỡ scheduledAt.
// Chỉ hợp lệ khi item đang ở trạng thái scheduled.
func (s *ScheduleService) Unschedule(ctx context.Context, session basemodels.SessionContext, contentID primitive.ObjectID) (contentmodels.ContentItem, error) {
	var zero contentmodels.ContentItem

	if !session.IsValid() || contentID.IsZero() {
		return zero, common.ErrRequiredField
	}

	item, err := s.items.FindOneById(ctx, contentID)
	if err != nil {
		return zero, err
	}
	if item.UserID != session.UserID {
		return zero, common.ErrNotFound
	}
	if item.Status != contentmodels.ContentStatusScheduled {
		return zero, common.ErrInvalidState
	}

	update := &basesvc.UpdateData{
		Set:   map[string]interface{}{"status": contentmodels.ContentStatusApproved},
		Unset: map[string]interface{}{"scheduledAt": ""},
	}
	return s.items.UpdateOne(ctx, bson.M{"_id": contentID}, update, nil)
}

// Calendar liệt kê các item đã lên lịch của user trong cửa sổ [from, to) ms,
// sắp theo scheduledAt tăng dần (calendar view)
func (s *ScheduleService) Calendar(ctx context.Context, session basemodels.SessionContext, from, to int64) ([]contentmodels.ContentItem, error) {
	if !session.IsValid() {
		return nil, common.ErrRequiredField
	}
	if from >= to {
		return nil, common.ErrInvalidInput
	}

	filter := bson.M{
		"userId": session.UserID,
		"status": contentmodels.ContentStatusScheduled,
		"scheduledAt": bson.M{
			"$gte": from,
			"$lt":  to,
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "scheduledAt", Value: 1}})
	return s.items.Find(ctx, filter, opts)
}
