// Package contentsvc - Test saga quyết định duyệt với store giả để inject fault
// vào từng bước ghi.
package contentsvc

import (
	"context"
	"errors"
	"testing"
	"time"

	basemodels "meta_content/internal/api/base/models"
	basesvc "meta_content/internal/api/base/service"
	contentmodels "meta_content/internal/api/content/models"
	resumemodels "meta_content/internal/api/resume/models"
	"meta_content/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// fakeItemStore giả lập ContentItemService, cho phép inject lỗi vào từng method
type fakeItemStore struct {
	item contentmodels.ContentItem

	findErr   error
	updateErr error
	deleteErr error

	updateCalls []interface{}
	deleteCalls []primitive.ObjectID

	// updateHook chạy trước khi UpdateOne trả về (dùng để giữ saga "đang chạy")
	updateHook func()
}

func (f *fakeItemStore) FindOneById(ctx context.Context, id primitive.ObjectID) (contentmodels.ContentItem, error) {
	if f.findErr != nil {
		return contentmodels.ContentItem{}, f.findErr
	}
	return f.item, nil
}

func (f *fakeItemStore) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (contentmodels.ContentItem, error) {
	if f.updateHook != nil {
		f.updateHook()
	}
	if f.updateErr != nil {
		return contentmodels.ContentItem{}, f.updateErr
	}
	f.updateCalls = append(f.updateCalls, update)
	updated := f.item
	if data, ok := update.(*basesvc.UpdateData); ok {
		if status, ok := data.Set["status"].(string); ok {
			updated.Status = status
		}
	}
	return updated, nil
}

func (f *fakeItemStore) DeleteById(ctx context.Context, id primitive.ObjectID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleteCalls = append(f.deleteCalls, id)
	return nil
}

// fakeApprovalStore giả lập ContentApprovalService
type fakeApprovalStore struct {
	upsertErr error
	calls     int

	lastApproved bool
	lastFeedback string
}

func (f *fakeApprovalStore) UpsertDecision(ctx context.Context, contentID, ownerID, approverID primitive.ObjectID, approved bool, feedback string) (contentmodels.ContentApproval, error) {
	if f.upsertErr != nil {
		return contentmodels.ContentApproval{}, f.upsertErr
	}
	f.calls++
	f.lastApproved = approved
	f.lastFeedback = feedback
	status := contentmodels.ApprovalStatusDeclined
	if approved {
		status = contentmodels.ApprovalStatusApproved
	}
	return contentmodels.ContentApproval{
		ID:         primitive.NewObjectID(),
		ContentID:  contentID,
		Status:     status,
		Feedback:   feedback,
		ApproverID: approverID,
		UserID:     ownerID,
	}, nil
}

// fakeEnqueuer giả lập ResumeQueueService
type fakeEnqueuer struct {
	enqueueErr error
	payloads   []resumemodels.ResumePayload
	urls       []string
}

func (f *fakeEnqueuer) EnqueueResume(ctx context.Context, webhookURL string, ownerID primitive.ObjectID, payload resumemodels.ResumePayload) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.urls = append(f.urls, webhookURL)
	f.payloads = append(f.payloads, payload)
	return nil
}

func newTestItem(owner primitive.ObjectID, webhookURL string) contentmodels.ContentItem {
	item := contentmodels.ContentItem{
		ID:         primitive.NewObjectID(),
		Title:      "Bài đăng test",
		Type:       contentmodels.ContentTypeSocialPost,
		ModuleSlug: "social-media-posts",
		Status:     contentmodels.ContentStatusPending,
		UserID:     owner,
		CreatedAt:  time.Now().UnixMilli(),
		UpdatedAt:  time.Now().UnixMilli(),
	}
	if webhookURL != "" {
		item.Metadata = map[string]interface{}{
			contentmodels.MetadataKeyResumeWebhookURL: webhookURL,
		}
	}
	return item
}

func TestProcessDecision_ApproveHappyPath(t *testing.T) {
	owner := primitive.NewObjectID()
	items := &fakeItemStore{item: newTestItem(owner, "https://n8n.example.com/resume/abc")}
	approvals := &fakeApprovalStore{}
	enqueuer := &fakeEnqueuer{}
	svc := newDecisionServiceWith(items, approvals, enqueuer)

	session := basemodels.SessionContext{UserID: owner, CanSchedule: true}
	result, err := svc.ProcessDecision(context.Background(), session, items.item.ID, true, "Nội dung tốt")

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, contentmodels.ContentStatusApproved, result.Content.Status)
	assert.Equal(t, contentmodels.ApprovalStatusApproved, result.Approval.Status)

	// Status update chỉ $set status + metadata theo dotted key (merge, không thay cả bag)
	require.Len(t, items.updateCalls, 1)
	update, ok := items.updateCalls[0].(*basesvc.UpdateData)
	require.True(t, ok)
	assert.Equal(t, contentmodels.ContentStatusApproved, update.Set["status"])
	assert.Contains(t, update.Set, "metadata."+contentmodels.MetadataKeyApprovedAt)
	assert.Equal(t, "Nội dung tốt", update.Set["metadata."+contentmodels.MetadataKeyApprovalFeedback])
	assert.NotContains(t, update.Set, "metadata")
	assert.NotContains(t, update.Set, "isFavorite")

	// Resume webhook được enqueue đúng một lần với payload approved
	require.Len(t, enqueuer.payloads, 1)
	payload := enqueuer.payloads[0]
	assert.Equal(t, "https://n8n.example.com/resume/abc", enqueuer.urls[0])
	assert.Equal(t, resumemodels.ResumeDecisionApproved, payload.Decision)
	assert.True(t, payload.Approved)
	assert.Equal(t, items.item.ID.Hex(), payload.ContentID)
	assert.NotEmpty(t, payload.DeliveryID)
}

func TestProcessDecision_Decline(t *testing.T) {
	owner := primitive.NewObjectID()
	items := &fakeItemStore{item: newTestItem(owner, "https://n8n.example.com/resume/abc")}
	approvals := &fakeApprovalStore{}
	enqueuer := &fakeEnqueuer{}
	svc := newDecisionServiceWith(items, approvals, enqueuer)

	session := basemodels.SessionContext{UserID: owner}
	result, err := svc.ProcessDecision(context.Background(), session, items.item.ID, false, "Cần sửa caption")

	require.NoError(t, err)
	assert.Equal(t, contentmodels.ContentStatusDeclined, result.Content.Status)
	assert.False(t, approvals.lastApproved)
	assert.Equal(t, "Cần sửa caption", approvals.lastFeedback)

	require.Len(t, enqueuer.payloads, 1)
	assert.Equal(t, resumemodels.ResumeDecisionDeclined, enqueuer.payloads[0].Decision)
	assert.False(t, enqueuer.payloads[0].Approved)
	assert.Equal(t, "Cần sửa caption", enqueuer.payloads[0].Feedback)
}

func TestProcessDecision_NoWebhookURL_NoEnqueue(t *testing.T) {
	owner := primitive.NewObjectID()
	items := &fakeItemStore{item: newTestItem(owner, "")}
	enqueuer := &fakeEnqueuer{}
	svc := newDecisionServiceWith(items, &fakeApprovalStore{}, enqueuer)

	session := basemodels.SessionContext{UserID: owner}
	_, err := svc.ProcessDecision(context.Background(), session, items.item.ID, true, "")

	require.NoError(t, err)
	assert.Empty(t, enqueuer.payloads)
}

func TestProcessDecision_OwnershipMismatch(t *testing.T) {
	owner := primitive.NewObjectID()
	items := &fakeItemStore{item: newTestItem(owner, "")}
	approvals := &fakeApprovalStore{}
	svc := newDecisionServiceWith(items, approvals, &fakeEnqueuer{})

	// User khác owner: không leak sự tồn tại, trả về not found
	session := basemodels.SessionContext{UserID: primitive.NewObjectID()}
	_, err := svc.ProcessDecision(context.Background(), session, items.item.ID, true, "")

	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, 0, approvals.calls)
	assert.Empty(t, items.updateCalls)
}

func TestProcessDecision_ApprovalWriteFails_Aborts(t *testing.T) {
	owner := primitive.NewObjectID()
	items := &fakeItemStore{item: newTestItem(owner, "https://n8n.example.com/resume/abc")}
	approvals := &fakeApprovalStore{upsertErr: errors.New("mongo: write concern error")}
	enqueuer := &fakeEnqueuer{}
	svc := newDecisionServiceWith(items, approvals, enqueuer)

	session := basemodels.SessionContext{UserID: owner}
	_, err := svc.ProcessDecision(context.Background(), session, items.item.ID, true, "")

	require.Error(t, err)
	// Approval thất bại → không được đụng tới status, không enqueue
	assert.Empty(t, items.updateCalls)
	assert.Empty(t, enqueuer.payloads)
}

func TestProcessDecision_StatusWriteFails_PartialError(t *testing.T) {
	owner := primitive.NewObjectID()
	items := &fakeItemStore{
		item:      newTestItem(owner, "https://n8n.example.com/resume/abc"),
		updateErr: errors.New("mongo: connection reset"),
	}
	approvals := &fakeApprovalStore{}
	enqueuer := &fakeEnqueuer{}
	svc := newDecisionServiceWith(items, approvals, enqueuer)

	session := basemodels.SessionContext{UserID: owner}
	_, err := svc.ProcessDecision(context.Background(), session, items.item.ID, true, "")

	require.Error(t, err)
	// Approval đã ghi nhưng status chưa: lỗi partial riêng biệt để caller biết inconsistency
	assert.True(t, common.IsCode(err, common.ErrCodeBusinessPartial))
	assert.Equal(t, 1, approvals.calls)
	assert.Empty(t, enqueuer.payloads)
}

func TestProcessDecision_EnqueueFails_DecisionStillSucceeds(t *testing.T) {
	owner := primitive.NewObjectID()
	items := &fakeItemStore{item: newTestItem(owner, "https://n8n.example.com/resume/abc")}
	enqueuer := &fakeEnqueuer{enqueueErr: errors.New("queue unavailable")}
	svc := newDecisionServiceWith(items, &fakeApprovalStore{}, enqueuer)

	session := basemodels.SessionContext{UserID: owner}
	result, err := svc.ProcessDecision(context.Background(), session, items.item.ID, true, "")

	// Webhook là best-effort: lỗi enqueue không ảnh hưởng kết quả quyết định
	require.NoError(t, err)
	assert.Equal(t, contentmodels.ContentStatusApproved, result.Content.Status)
}

func TestProcessDecision_SecondDecisionInFlight(t *testing.T) {
	owner := primitive.NewObjectID()
	items := &fakeItemStore{item: newTestItem(owner, "")}
	svc := newDecisionServiceWith(items, &fakeApprovalStore{}, &fakeEnqueuer{})

	contentID := items.item.ID
	entered := make(chan struct{})
	proceed := make(chan struct{})
	items.updateHook = func() {
		close(entered)
		<-proceed
	}

	session := basemodels.SessionContext{UserID: owner}

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.ProcessDecision(context.Background(), session, contentID, true, "")
		firstDone <- err
	}()

	// Chờ quyết định thứ nhất đi vào bước ghi status rồi bắn quyết định thứ hai
	<-entered
	_, err := svc.ProcessDecision(context.Background(), session, contentID, false, "")
	assert.ErrorIs(t, err, common.ErrDecisionInFlight)

	close(proceed)
	require.NoError(t, <-firstDone)

	// Guard đã release: quyết định mới trên cùng content được chấp nhận
	items.updateHook = nil
	_, err = svc.ProcessDecision(context.Background(), session, contentID, false, "")
	assert.NoError(t, err)
}

func TestProcessDecisionAndDelete_DeletesAfterWrites(t *testing.T) {
	owner := primitive.NewObjectID()
	items := &fakeItemStore{item: newTestItem(owner, "https://n8n.example.com/resume/abc")}
	approvals := &fakeApprovalStore{}
	enqueuer := &fakeEnqueuer{}
	svc := newDecisionServiceWith(items, approvals, enqueuer)

	session := basemodels.SessionContext{UserID: owner}
	result, err := svc.ProcessDecisionAndDelete(context.Background(), session, items.item.ID, false, "Không phù hợp")

	require.NoError(t, err)
	assert.Equal(t, contentmodels.ContentStatusDeclined, result.Content.Status)

	// Approval record được giữ lại làm audit trail, chỉ content bị xóa
	assert.Equal(t, 1, approvals.calls)
	require.Len(t, items.deleteCalls, 1)
	assert.Equal(t, items.item.ID, items.deleteCalls[0])

	// Webhook vẫn được enqueue với decision declined
	require.Len(t, enqueuer.payloads, 1)
	assert.Equal(t, resumemodels.ResumeDecisionDeclined, enqueuer.payloads[0].Decision)
}

func TestProcessDecisionAndDelete_DecisionFails_NoDelete(t *testing.T) {
	owner := primitive.NewObjectID()
	items := &fakeItemStore{
		item:      newTestItem(owner, ""),
		updateErr: errors.New("mongo: connection reset"),
	}
	svc := newDecisionServiceWith(items, &fakeApprovalStore{}, &fakeEnqueuer{})

	session := basemodels.SessionContext{UserID: owner}
	_, err := svc.ProcessDecisionAndDelete(context.Background(), session, items.item.ID, false, "")

	require.Error(t, err)
	// Delete chỉ chạy sau khi cả hai write thành công
	assert.Empty(t, items.deleteCalls)
}

func TestDeleteContent_PendingWithWebhook_SendsCancelled(t *testing.T) {
	owner := primitive.NewObjectID()
	items := &fakeItemStore{item: newTestItem(owner, "https://n8n.example.com/resume/abc")}
	enqueuer := &fakeEnqueuer{}
	svc := newDecisionServiceWith(items, &fakeApprovalStore{}, enqueuer)

	session := basemodels.SessionContext{UserID: owner}
	err := svc.DeleteContent(context.Background(), session, items.item.ID)

	require.NoError(t, err)
	require.Len(t, items.deleteCalls, 1)

	require.Len(t, enqueuer.payloads, 1)
	payload := enqueuer.payloads[0]
	assert.Equal(t, resumemodels.ResumeDecisionCancelled, payload.Decision)
	assert.False(t, payload.Approved)
	assert.Equal(t, owner.Hex(), payload.ApproverID)
}

func TestDeleteContent_NonPending_NoNotification(t *testing.T) {
	owner := primitive.NewObjectID()
	item := newTestItem(owner, "https://n8n.example.com/resume/abc")
	item.Status = contentmodels.ContentStatusPublished
	items := &fakeItemStore{item: item}
	enqueuer := &fakeEnqueuer{}
	svc := newDecisionServiceWith(items, &fakeApprovalStore{}, enqueuer)

	session := basemodels.SessionContext{UserID: owner}
	err := svc.DeleteContent(context.Background(), session, item.ID)

	require.NoError(t, err)
	require.Len(t, items.deleteCalls, 1)
	assert.Empty(t, enqueuer.payloads)
}

func TestDeleteContent_EnqueueFails_DeleteStillRuns(t *testing.T) {
	owner := primitive.NewObjectID()
	items := &fakeItemStore{item: newTestItem(owner, "https://n8n.example.com/resume/abc")}
	enqueuer := &fakeEnqueuer{enqueueErr: errors.New("queue unavailable")}
	svc := newDecisionServiceWith(items, &fakeApprovalStore{}, enqueuer)

	session := basemodels.SessionContext{UserID: owner}
	err := svc.DeleteContent(context.Background(), session, items.item.ID)

	// Thông báo cancelled là best-effort, không block thao tác xóa
	require.NoError(t, err)
	assert.Len(t, items.deleteCalls, 1)
}
