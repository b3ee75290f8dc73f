// Package resumesvc chứa service data access cho resume queue (các lần gọi
// resume webhook đang chờ dispatcher gửi). Base service ở api/basesvc.
package resumesvc

import (
	"context"
	"fmt"
	"time"

	basesvc "meta_content/internal/api/base/service"
	resumemodels "meta_content/internal/api/resume/models"
	"meta_content/internal/common"
	"meta_content/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ResumeQueueService là service quản lý resume queue
type ResumeQueueService struct {
	*basesvc.BaseServiceMongoImpl[resumemodels.ResumeQueueItem]
}

// NewResumeQueueService tạo mới ResumeQueueService
func NewResumeQueueService() (*ResumeQueueService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ResumeQueue)
	if !exist {
		return nil, fmt.Errorf("failed to get resume_queue collection: %v", common.ErrNotFound)
	}
	return &ResumeQueueService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[resumemodels.ResumeQueueItem](collection),
	}, nil
}

// EnqueueResume thêm một lần gọi resume webhook vào queue.
// Implement contentsvc.ResumeEnqueuer.
func (s *ResumeQueueService) EnqueueResume(ctx context.Context, webhookURL string, ownerID primitive.ObjectID, payload resumemodels.ResumePayload) error {
	if webhookURL == "" || payload.DeliveryID == "" {
		return common.ErrRequiredField
	}

	item := resumemodels.ResumeQueueItem{
		WebhookURL: webhookURL,
		Payload:    payload,
		Status:     resumemodels.ResumeStatusPending,
		UserID:     ownerID,
	}
	_, err := s.InsertOne(ctx, item)
	return err
}

// FindPending tìm các items chờ gửi: status=pending, hoặc processing quá lâu
// (dispatcher chết giữa chừng), cũ nhất trước
func (s *ResumeQueueService) FindPending(ctx context.Context, limit int) ([]resumemodels.ResumeQueueItem, error) {
	staleThreshold := time.Now().UnixMilli() - 5*60*1000

	filter := bson.M{
		"$or": []bson.M{
			{"status": resumemodels.ResumeStatusPending},
			{
				"status":    resumemodels.ResumeStatusProcessing,
				"updatedAt": bson.M{"$lt": staleThreshold},
			},
		},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit))

	return s.Find(ctx, filter, opts)
}

// MarkProcessing chuyển một batch items sang trạng thái processing
func (s *ResumeQueueService) MarkProcessing(ctx context.Context, ids []primitive.ObjectID) error {
	filter := bson.M{"_id": bson.M{"$in": ids}}
	update := bson.M{"$set": bson.M{
		"status":    resumemodels.ResumeStatusProcessing,
		"updatedAt": time.Now().UnixMilli(),
	}}
	_, err := s.Collection().UpdateMany(ctx, filter, update)
	return common.ConvertMongoError(err)
}

// MarkCompleted đánh dấu item đã gửi thành công
func (s *ResumeQueueService) MarkCompleted(ctx context.Context, id primitive.ObjectID) error {
	update := &basesvc.UpdateData{
		Set: map[string]interface{}{"status": resumemodels.ResumeStatusCompleted},
	}
	_, err := s.UpdateOne(ctx, bson.M{"_id": id}, update, nil)
	return err
}

// MarkFailed đánh dấu item gửi thất bại kèm lỗi cuối (không retry)
func (s *ResumeQueueService) MarkFailed(ctx context.Context, id primitive.ObjectID, lastError string) error {
	update := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"status":    resumemodels.ResumeStatusFailed,
			"lastError": lastError,
		},
	}
	_, err := s.UpdateOne(ctx, bson.M{"_id": id}, update, nil)
	return err
}

// CleanupCompleted xóa các item completed/failed cũ hơn N ngày
func (s *ResumeQueueService) CleanupCompleted(ctx context.Context, daysOld int) (int64, error) {
	cutoff := time.Now().UnixMilli() - int64(daysOld)*24*60*60*1000
	filter := bson.M{
		"status":    bson.M{"$in": []string{resumemodels.ResumeStatusCompleted, resumemodels.ResumeStatusFailed}},
		"updatedAt": bson.M{"$lt": cutoff},
	}
	return s.DeleteMany(ctx, filter)
}
