package contentsvc

import (
	"context"
	"fmt"
	"time"

	contentmodels "meta_content/internal/api/content/models"
	basesvc "meta_content/internal/api/base/service"
	"meta_content/internal/common"
	"meta_content/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentApprovalService là service quản lý approval records (1 record mới nhất per content)
type ContentApprovalService struct {
	*basesvc.BaseServiceMongoImpl[contentmodels.ContentApproval]
}

// NewContentApprovalService tạo mới ContentApprovalService
func NewContentApprovalService() (*ContentApprovalService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ContentApprovals)
	if !exist {
		return nil, fmt.Errorf("failed to get content_approvals collection: %v", common.ErrNotFound)
	}
	return &ContentApprovalService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[contentmodels.ContentApproval](collection),
	}, nil
}

// UpsertDecision ghi quyết định mới nhất cho một content item (upsert theo contentId).
// reviewedAt được stamp tại thời điểm ghi.
func (s *ContentApprovalService) UpsertDecision(ctx context.Context, contentID primitive.ObjectID, ownerID primitive.ObjectID, approverID primitive.ObjectID, approved bool, feedback string) (contentmodels.ContentApproval, error) {
	status := contentmodels.ApprovalStatusDeclined
	if approved {
		status = contentmodels.ApprovalStatusApproved
	}

	update := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"status":     status,
			"feedback":   feedback,
			"approverId": approverID,
			"reviewedAt": time.Now().UnixMilli(),
			"userId":     ownerID,
		},
	}
	return s.Upsert(ctx, bson.M{"contentId": contentID}, update)
}

// FindByContentID lấy approval record mới nhất của một content item
func (s *ContentApprovalService) FindByContentID(ctx context.Context, contentID primitive.ObjectID) (contentmodels.ContentApproval, error) {
	return s.FindOne(ctx, bson.M{"contentId": contentID}, nil)
}
