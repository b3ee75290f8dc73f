package contentsvc

import (
	"context"
	"sync"
	"time"

	basemodels "meta_content/internal/api/base/models"
	basesvc "meta_content/internal/api/base/service"
	contentmodels "meta_content/internal/api/content/models"
	resumemodels "meta_content/internal/api/resume/models"
	"meta_content/internal/common"
	"meta_content/internal/logger"
	"meta_content/internal/utility"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// contentItemStore là surface tối thiểu của ContentItemService mà decision saga cần.
// Tách interface để test inject được fault vào từng bước ghi.
type contentItemStore interface {
	FindOneById(ctx context.Context, id primitive.ObjectID) (contentmodels.ContentItem, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (contentmodels.ContentItem, error)
	DeleteById(ctx context.Context, id primitive.ObjectID) error
}

// approvalStore là surface tối thiểu của ContentApprovalService mà decision saga cần
type approvalStore interface {
	UpsertDecision(ctx context.Context, contentID, ownerID, approverID primitive.ObjectID, approved bool, feedback string) (contentmodels.ContentApproval, error)
}

// ResumeEnqueuer enqueue một lần gọi resume webhook (gửi nền bởi dispatcher).
// ResumeQueueService implement interface này.
type ResumeEnqueuer interface {
	EnqueueResume(ctx context.Context, webhookURL string, ownerID primitive.ObjectID, payload resumemodels.ResumePayload) error
}

// DecisionResult kết quả của một quyết định duyệt thành công
type DecisionResult struct {
	Approval contentmodels.ContentApproval `json:"approval"` // Approval record sau khi ghi
	Content  contentmodels.ContentItem     `json:"content"`  // Content item sau khi cập nhật status
}

// DecisionService thực hiện saga quyết định duyệt:
// ghi approval record → cập nhật content status + metadata → enqueue resume webhook.
// Thứ tự đó là bất biến trong một lần gọi; webhook là best-effort, không rollback.
type DecisionService struct {
	items     contentItemStore
	approvals approvalStore
	resume    ResumeEnqueuer

	// Guard advisory per-process: từ chối quyết định thứ hai trên cùng content
	// khi quyết định thứ nhất còn đang chạy. Không chống race giữa hai process.
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewDecisionService tạo mới DecisionService với các service thật
func NewDecisionService(resume ResumeEnqueuer) (*DecisionService, error) {
	itemService, err := NewContentItemService()
	if err != nil {
		return nil, err
	}
	approvalService, err := NewContentApprovalService()
	if err != nil {
		return nil, err
	}
	return newDecisionServiceWith(itemService, approvalService, resume), nil
}

// newDecisionServiceWith dùng cho test với store giả
func newDecisionServiceWith(items contentItemStore, approvals approvalStore, resume ResumeEnqueuer) *DecisionService {
	return &DecisionService{
		items:     items,
		approvals: approvals,
		resume:    resume,
		inFlight:  make(map[string]struct{}),
	}
}

// acquire đánh dấu content đang được xử lý quyết định; trả về false nếu đã có
// quyết định khác đang chạy trên cùng content.
func (s *DecisionService) acquire(contentID primitive.ObjectID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := contentID.Hex()
	if _, busy := s.inFlight[key]; busy {
		return false
	}
	s.inFlight[key] = struct{}{}
	return true
}

func (s *DecisionService) release(contentID primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, contentID.Hex())
}

// ProcessDecision xử lý một quyết định approve/decline cho content item.
//
// Các bước (tuần tự, không transactional qua network):
//  1. Guard in-flight: quyết định thứ hai trên cùng content bị từ chối ngay với
//     lỗi "đang xử lý" (409), không ghi gì.
//  2. Upsert approval record (status, feedback, approverId, reviewedAt).
//     Thất bại → abort, không đi tiếp.
//  3. Cập nhật content status + merge approvedAt/approvalFeedback vào metadata.
//     Thất bại → trả về lỗi partial-failure riêng biệt: approval đã ghi nhưng
//     status chưa, caller phải biết hệ thống đang inconsistent.
//  4. Nếu metadata có resumeWebhookUrl: enqueue đúng một lần gọi resume.
//     Thất bại chỉ ghi log, không ảnh hưởng kết quả quyết định.
func (s *DecisionService) ProcessDecision(ctx context.Context, session basemodels.SessionContext, contentID primitive.ObjectID, approved bool, feedback string) (*DecisionResult, error) {
	if !session.IsValid() || contentID.IsZero() {
		return nil, common.ErrRequiredField
	}

	if !s.acquire(contentID) {
		return nil, common.ErrDecisionInFlight
	}
	defer s.release(contentID)

	return s.processLocked(ctx, session, contentID, approved, feedback)
}

// ProcessDecisionAndDelete xử lý decline (hoặc approve) rồi xóa content item.
// Delete chỉ chạy SAU khi cả hai write của quyết định thành công; approval record
// được giữ lại làm audit trail.
func (s *DecisionService) ProcessDecisionAndDelete(ctx context.Context, session basemodels.SessionContext, contentID primitive.ObjectID, approved bool, feedback string) (*DecisionResult, error) {
	if !session.IsValid() || contentID.IsZero() {
		return nil, common.ErrRequiredField
	}

	if !s.acquire(contentID) {
		return nil, common.ErrDecisionInFlight
	}
	defer s.release(contentID)

	result, err := s.processLocked(ctx, session, contentID, approved, feedback)
	if err != nil {
		return nil, err
	}

	if err := s.items.DeleteById(ctx, contentID); err != nil {
		// Quyết định đã durable, chỉ delete thất bại
		logger.GetErrorLogger().WithError(err).WithFields(logrus.Fields{
			"contentId": contentID.Hex(),
		}).Error("Xóa content sau quyết định thất bại")
		return nil, common.ConvertMongoError(err)
	}

	return result, nil
}

// processLocked chạy các bước 2-4 của saga, caller đã giữ in-flight guard
func (s *DecisionService) processLocked(ctx context.Context, session basemodels.SessionContext, contentID primitive.ObjectID, approved bool, feedback string) (*DecisionResult, error) {
	item, err := s.items.FindOneById(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if item.UserID != session.UserID {
		// Không leak sự tồn tại của content thuộc user khác
		return nil, common.ErrNotFound
	}

	// Bước 2: ghi approval record trước
	approval, err := s.approvals.UpsertDecision(ctx, contentID, item.UserID, session.UserID, approved, feedback)
	if err != nil {
		return nil, err
	}

	// Bước 3: cập nhật content status + metadata.
	// $set theo dotted key để merge vào bag, không thay cả metadata.
	newStatus := contentmodels.ContentStatusDeclined
	if approved {
		newStatus = contentmodels.ContentStatusApproved
	}
	update := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"status": newStatus,
			"metadata." + contentmodels.MetadataKeyApprovedAt:       utility.CurrentTimeInMilli(),
			"metadata." + contentmodels.MetadataKeyApprovalFeedback: feedback,
		},
	}
	updated, err := s.items.UpdateOne(ctx, bson.M{"_id": contentID}, update, nil)
	if err != nil {
		// Approval đã ghi nhưng status chưa: inconsistency durable, báo lỗi riêng biệt
		return nil, common.NewPartialDecisionError(contentID.Hex(), err)
	}

	// Bước 4: enqueue resume webhook (best-effort, không ảnh hưởng outcome)
	if url := item.ResumeWebhookURL(); url != "" {
		s.enqueueResume(ctx, url, item, approved, feedback, session.UserID)
	}

	return &DecisionResult{Approval: approval, Content: updated}, nil
}

// NotifyDeleted gửi thông báo cancelled best-effort khi một content pending bị xóa
// trước khi có quyết định. Luôn trả về nil: thất bại chỉ ghi log.
func (s *DecisionService) NotifyDeleted(ctx context.Context, item contentmodels.ContentItem, deletedBy primitive.ObjectID) error {
	if item.Status != contentmodels.ContentStatusPending {
		return nil
	}
	url := item.ResumeWebhookURL()
	if url == "" {
		return nil
	}

	payload := resumemodels.ResumePayload{
		DeliveryID: uuid.NewString(),
		Decision:   resumemodels.ResumeDecisionCancelled,
		Approved:   false,
		ContentID:  item.ID.Hex(),
		ApproverID: deletedBy.Hex(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.resume.EnqueueResume(ctx, url, item.UserID, payload); err != nil {
		logger.GetErrorLogger().WithError(err).WithFields(logrus.Fields{
			"contentId": item.ID.Hex(),
			"decision":  payload.Decision,
		}).Error("Enqueue resume webhook thất bại")
	}
	return nil
}

// enqueueResume dựng payload và enqueue, nuốt lỗi (chỉ log)
func (s *DecisionService) enqueueResume(ctx context.Context, url string, item contentmodels.ContentItem, approved bool, feedback string, approverID primitive.ObjectID) {
	decision := resumemodels.ResumeDecisionDeclined
	if approved {
		decision = resumemodels.ResumeDecisionApproved
	}

	payload := resumemodels.ResumePayload{
		DeliveryID: uuid.NewString(),
		Decision:   decision,
		Approved:   approved,
		Feedback:   feedback,
		ContentID:  item.ID.Hex(),
		ApproverID: approverID.Hex(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.resume.EnqueueResume(ctx, url, item.UserID, payload); err != nil {
		logger.GetErrorLogger().WithError(err).WithFields(logrus.Fields{
			"contentId": item.ID.Hex(),
			"decision":  decision,
		}).Error("Enqueue resume webhook thất bại")
	}
}

// DeleteContent xóa content item của owner ở bất kỳ trạng thái nào.
// Nếu item đang pending và có resumeWebhookUrl, gửi thông báo cancelled
// best-effort trước khi xóa (không block, không fail thao tác xóa).
func (s *DecisionService) DeleteContent(ctx context.Context, session basemodels.SessionContext, contentID primitive.ObjectID) error {
	if !session.IsValid() || contentID.IsZero() {
		return common.ErrRequiredField
	}

	item, err := s.items.FindOneById(ctx, contentID)
	if err != nil {
		return err
	}
	if item.UserID != session.UserID {
		return common.ErrNotFound
	}

	s.NotifyDeleted(ctx, item, session.UserID)

	return s.items.DeleteById(ctx, contentID)
}
