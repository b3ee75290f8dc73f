// Package contentsvc chứa service data access và nghiệp vụ lifecycle cho domain Content
// (content item, approval record, decision saga, scheduling).
// Base service (BaseServiceMongoImpl) ở api/basesvc.
package contentsvc

import (
	"context"
	"fmt"

	contentmodels "meta_content/internal/api/content/models"
	basesvc "meta_content/internal/api/base/service"
	"meta_content/internal/common"
	"meta_content/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxListLimit là giới hạn cứng mặc định số item trả về cho một lần list.
// Client phân trang phía trên tập đã fetch, không có cursor.
// Override qua env CONTENT_LIST_HARD_CAP.
const MaxListLimit = 1000

// listHardCap trả về giới hạn cứng hiện hành từ config, fallback MaxListLimit
func listHardCap() int64 {
	if global.ServerConfig != nil && global.ServerConfig.ContentListHardCap > 0 {
		return global.ServerConfig.ContentListHardCap
	}
	return MaxListLimit
}

// ContentItemService là service quản lý content items
type ContentItemService struct {
	*basesvc.BaseServiceMongoImpl[contentmodels.ContentItem]
}

// NewContentItemService tạo mới ContentItemService
func NewContentItemService() (*ContentItemService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ContentItems)
	if !exist {
		return nil, fmt.Errorf("failed to get content_items collection: %v", common.ErrNotFound)
	}
	return &ContentItemService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[contentmodels.ContentItem](collection),
	}, nil
}

// InsertOne tạo content item mới với status mặc định theo type:
// social-post phải qua duyệt nên vào pending, các type khác đã được produce
// hoàn chỉnh từ module execution nên vào thẳng published.
func (s *ContentItemService) InsertOne(ctx context.Context, data contentmodels.ContentItem) (contentmodels.ContentItem, error) {
	if data.Status == "" {
		if contentmodels.RequiresApproval(data.Type) {
			data.Status = contentmodels.ContentStatusPending
		} else {
			data.Status = contentmodels.ContentStatusPublished
		}
	}
	if !contentmodels.IsValidStatus(data.Status) {
		return contentmodels.ContentItem{}, common.ErrInvalidState
	}
	return s.BaseServiceMongoImpl.InsertOne(ctx, data)
}

// ListForUser liệt kê content items của một user, lọc theo type (tùy chọn),
// giới hạn cứng theo listHardCap, mới nhất trước.
func (s *ContentItemService) ListForUser(ctx context.Context, userID primitive.ObjectID, contentType string, limit int64) ([]contentmodels.ContentItem, error) {
	hardCap := listHardCap()
	if limit <= 0 || limit > hardCap {
		limit = hardCap
	}

	filter := bson.M{"userId": userID}
	if contentType != "" {
		filter["type"] = contentType
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	return s.Find(ctx, filter, opts)
}

// UpdateStatus cập nhật status của content item, không chạm vào field nào khác
// (đặc biệt là isFavorite — favorite độc lập với lifecycle)
func (s *ContentItemService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (contentmodels.ContentItem, error) {
	if !contentmodels.IsValidStatus(status) {
		return contentmodels.ContentItem{}, common.ErrInvalidState
	}
	update := &basesvc.UpdateData{
		Set: map[string]interface{}{"status": status},
	}
	return s.UpdateOne(ctx, bson.M{"_id": id}, update, nil)
}

// UpdateFavorite toggle isFavorite, không chạm vào status hay scheduledAt
func (s *ContentItemService) UpdateFavorite(ctx context.Context, id primitive.ObjectID, isFavorite bool) (contentmodels.ContentItem, error) {
	update := &basesvc.UpdateData{
		Set: map[string]interface{}{"isFavorite": isFavorite},
	}
	return s.UpdateOne(ctx, bson.M{"_id": id}, update, nil)
}
