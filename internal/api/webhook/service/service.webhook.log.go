// Package webhooksvc chứa service cho domain Webhook (log các lần gọi ra ngoài).
package webhooksvc

import (
	"context"
	"fmt"

	basesvc "meta_content/internal/api/base/service"
	webhookmodels "meta_content/internal/api/webhook/models"
	"meta_content/internal/common"
	"meta_content/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// WebhookLogService là service quản lý webhook logs
type WebhookLogService struct {
	*basesvc.BaseServiceMongoImpl[webhookmodels.WebhookLog]
}

// NewWebhookLogService tạo mới WebhookLogService
func NewWebhookLogService() (*WebhookLogService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.WebhookLogs)
	if !exist {
		return nil, fmt.Errorf("failed to get webhook_logs collection: %v", common.ErrNotFound)
	}
	return &WebhookLogService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[webhookmodels.WebhookLog](collection),
	}, nil
}

// RecordDelivery ghi log một lần gọi webhook đã thực hiện.
// deliveryId unique: lần ghi trùng trả về ErrDuplicate (đã gửi rồi).
func (s *WebhookLogService) RecordDelivery(ctx context.Context, log webhookmodels.WebhookLog) (webhookmodels.WebhookLog, error) {
	if log.DeliveryID == "" {
		return webhookmodels.WebhookLog{}, common.ErrRequiredField
	}
	return s.InsertOne(ctx, log)
}

// FindByContentID liệt kê log các lần gọi webhook của một content item, mới nhất trước
func (s *WebhookLogService) FindByContentID(ctx context.Context, contentID primitive.ObjectID) ([]webhookmodels.WebhookLog, error) {
	filter := bson.M{"contentId": contentID.Hex()}
	opts := options.Find().SetSort(bson.D{{Key: "sentAt", Value: -1}})
	return s.Find(ctx, filter, opts)
}
