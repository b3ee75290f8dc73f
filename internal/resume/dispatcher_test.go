// Package resume - Test gửi HTTP của dispatcher và wire format của payload.
package resume

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	resumemodels "meta_content/internal/api/resume/models"
	webhookmodels "meta_content/internal/api/webhook/models"
	"meta_content/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeDispatchQueue implement dispatchQueue, ghi lại các lần đánh dấu item
type fakeDispatchQueue struct {
	completed []primitive.ObjectID
	failed    []primitive.ObjectID
}

func (q *fakeDispatchQueue) FindPending(ctx context.Context, limit int) ([]resumemodels.ResumeQueueItem, error) {
	return nil, nil
}

func (q *fakeDispatchQueue) MarkProcessing(ctx context.Context, ids []primitive.ObjectID) error {
	return nil
}

func (q *fakeDispatchQueue) MarkCompleted(ctx context.Context, id primitive.ObjectID) error {
	q.completed = append(q.completed, id)
	return nil
}

func (q *fakeDispatchQueue) MarkFailed(ctx context.Context, id primitive.ObjectID, lastError string) error {
	q.failed = append(q.failed, id)
	return nil
}

func (q *fakeDispatchQueue) CleanupCompleted(ctx context.Context, daysOld int) (int64, error) {
	return 0, nil
}

// fakeDeliveryLog implement deliveryLog, inject được lỗi khi reserve deliveryId
type fakeDeliveryLog struct {
	recordErr error
	records   []webhookmodels.WebhookLog
	updates   []interface{}
}

func (l *fakeDeliveryLog) RecordDelivery(ctx context.Context, log webhookmodels.WebhookLog) (webhookmodels.WebhookLog, error) {
	if l.recordErr != nil {
		return webhookmodels.WebhookLog{}, l.recordErr
	}
	log.ID = primitive.NewObjectID()
	l.records = append(l.records, log)
	return log, nil
}

func (l *fakeDeliveryLog) UpdateById(ctx context.Context, id primitive.ObjectID, data interface{}) (webhookmodels.WebhookLog, error) {
	l.updates = append(l.updates, data)
	return webhookmodels.WebhookLog{ID: id}, nil
}

func testQueueItem(url string) resumemodels.ResumeQueueItem {
	return resumemodels.ResumeQueueItem{
		ID:         primitive.NewObjectID(),
		WebhookURL: url,
		Payload: resumemodels.ResumePayload{
			DeliveryID: "550e8400-e29b-41d4-a716-446655440000",
			Decision:   resumemodels.ResumeDecisionApproved,
			Approved:   true,
			Feedback:   "Nội dung tốt",
			ContentID:  primitive.NewObjectID().Hex(),
			ApproverID: primitive.NewObjectID().Hex(),
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
		},
		Status: resumemodels.ResumeStatusProcessing,
	}
}

func TestSend_PostsJSONPayload(t *testing.T) {
	var received map[string]interface{}
	var contentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := &Dispatcher{client: server.Client()}
	item := testQueueItem(server.URL)

	statusCode, duration, err := d.send(context.Background(), item)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, statusCode)
	assert.GreaterOrEqual(t, duration, time.Duration(0))
	assert.Equal(t, "application/json", contentType)

	// Wire format mà workflow bên ngoài (n8n) parse
	assert.Equal(t, item.Payload.DeliveryID, received["deliveryId"])
	assert.Equal(t, "approved", received["decision"])
	assert.Equal(t, true, received["approved"])
	assert.Equal(t, "Nội dung tốt", received["feedback"])
	assert.Equal(t, item.Payload.ContentID, received["contentId"])
	assert.Equal(t, item.Payload.ApproverID, received["approverId"])
	assert.NotEmpty(t, received["timestamp"])
}

func TestSend_Non2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	d := &Dispatcher{client: server.Client()}

	statusCode, _, err := d.send(context.Background(), testQueueItem(server.URL))

	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, statusCode)
}

func TestSend_UnreachableTarget(t *testing.T) {
	d := &Dispatcher{client: &http.Client{Timeout: 200 * time.Millisecond}}
	item := testQueueItem("http://127.0.0.1:1/resume")

	statusCode, _, err := d.send(context.Background(), item)

	require.Error(t, err)
	assert.Equal(t, 0, statusCode)
}

func TestSend_DeclinedPayloadOmitsEmptyFeedback(t *testing.T) {
	var rawBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rawBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	d := &Dispatcher{client: server.Client()}
	item := testQueueItem(server.URL)
	item.Payload.Decision = resumemodels.ResumeDecisionDeclined
	item.Payload.Approved = false
	item.Payload.Feedback = ""

	statusCode, _, err := d.send(context.Background(), item)

	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, statusCode)
	assert.Equal(t, "declined", rawBody["decision"])
	assert.Equal(t, false, rawBody["approved"])
	// feedback rỗng không xuất hiện trong body (omitempty)
	assert.NotContains(t, rawBody, "feedback")
}

func TestDeliver_TransientLogErrorKeepsItemForRetry(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	queue := &fakeDispatchQueue{}
	d := &Dispatcher{
		queueService: queue,
		logService:   &fakeDeliveryLog{recordErr: common.ErrMongoWrite},
		client:       server.Client(),
	}

	d.deliver(context.Background(), testQueueItem(server.URL))

	// Lỗi Mongo transient khi ghi log: không được POST và không được đánh dấu
	// completed/failed — item còn nguyên trong queue để lần quét sau thử lại
	assert.Equal(t, 0, requests)
	assert.Empty(t, queue.completed)
	assert.Empty(t, queue.failed)
}

func TestDeliver_DuplicateDeliverySkipsSend(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	queue := &fakeDispatchQueue{}
	d := &Dispatcher{
		queueService: queue,
		logService:   &fakeDeliveryLog{recordErr: common.ErrMongoDuplicate},
		client:       server.Client(),
	}
	item := testQueueItem(server.URL)

	d.deliver(context.Background(), item)

	// deliveryId đã có log: dispatcher khác đã gửi, item hoàn tất không POST lại
	assert.Equal(t, 0, requests)
	assert.Equal(t, []primitive.ObjectID{item.ID}, queue.completed)
	assert.Empty(t, queue.failed)
}

func TestDeliver_SuccessRecordsLogAndMarksCompleted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	queue := &fakeDispatchQueue{}
	logStore := &fakeDeliveryLog{}
	d := &Dispatcher{
		queueService: queue,
		logService:   logStore,
		client:       server.Client(),
	}
	item := testQueueItem(server.URL)

	d.deliver(context.Background(), item)

	assert.Equal(t, []primitive.ObjectID{item.ID}, queue.completed)
	assert.Empty(t, queue.failed)

	require.Len(t, logStore.records, 1)
	assert.Equal(t, item.Payload.DeliveryID, logStore.records[0].DeliveryID)

	require.Len(t, logStore.updates, 1)
	update, ok := logStore.updates[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, update["success"])
	assert.Equal(t, http.StatusOK, update["statusCode"])
}

func TestDeliver_SendFailureMarksFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	queue := &fakeDispatchQueue{}
	logStore := &fakeDeliveryLog{}
	d := &Dispatcher{
		queueService: queue,
		logService:   logStore,
		client:       server.Client(),
	}
	item := testQueueItem(server.URL)

	d.deliver(context.Background(), item)

	assert.Empty(t, queue.completed)
	assert.Equal(t, []primitive.ObjectID{item.ID}, queue.failed)

	// Log vẫn được cập nhật với kết quả thất bại
	require.Len(t, logStore.updates, 1)
	update, ok := logStore.updates[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, update["success"])
	assert.Contains(t, update, "error")
}
