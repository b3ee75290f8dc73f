// Package resume chứa dispatcher gửi các resume webhook đã enqueue.
// Dispatcher quét resume_queue định kỳ, POST payload tới webhook đích đúng một
// lần (không retry), ghi webhook log cho mỗi lần gửi rồi đánh dấu item
// completed/failed. Kết quả gửi không bao giờ ảnh hưởng tới quyết định đã ghi.
package resume

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	resumemodels "meta_content/internal/api/resume/models"
	resumesvc "meta_content/internal/api/resume/service"
	webhookmodels "meta_content/internal/api/webhook/models"
	webhooksvc "meta_content/internal/api/webhook/service"
	"meta_content/internal/common"
	"meta_content/config"
	"meta_content/internal/logger"
	"meta_content/internal/utility"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// cleanupInterval chu kỳ dọn queue; cleanupRetentionDays số ngày giữ item đã xử lý
const (
	cleanupInterval      = time.Hour
	cleanupRetentionDays = 7
)

// dispatchQueue là surface tối thiểu của ResumeQueueService mà dispatcher cần.
// Tách interface để test inject được fault vào từng bước.
type dispatchQueue interface {
	FindPending(ctx context.Context, limit int) ([]resumemodels.ResumeQueueItem, error)
	MarkProcessing(ctx context.Context, ids []primitive.ObjectID) error
	MarkCompleted(ctx context.Context, id primitive.ObjectID) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, lastError string) error
	CleanupCompleted(ctx context.Context, daysOld int) (int64, error)
}

// deliveryLog là surface tối thiểu của WebhookLogService mà dispatcher cần
type deliveryLog interface {
	RecordDelivery(ctx context.Context, log webhookmodels.WebhookLog) (webhookmodels.WebhookLog, error)
	UpdateById(ctx context.Context, id primitive.ObjectID, data interface{}) (webhookmodels.WebhookLog, error)
}

// Dispatcher gửi resume webhook từ queue theo chu kỳ
type Dispatcher struct {
	queueService dispatchQueue
	logService   deliveryLog
	client       *http.Client
	interval     time.Duration
	batchSize    int

	lastCleanup time.Time
}

// NewDispatcher tạo mới Dispatcher với cấu hình từ env
func NewDispatcher(cfg *config.Configuration) (*Dispatcher, error) {
	queueService, err := resumesvc.NewResumeQueueService()
	if err != nil {
		return nil, fmt.Errorf("failed to create resume queue service: %w", err)
	}
	logService, err := webhooksvc.NewWebhookLogService()
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook log service: %w", err)
	}

	interval := time.Duration(cfg.ResumeDispatchInterval) * time.Second
	if interval < time.Second {
		interval = 5 * time.Second
	}
	batchSize := cfg.ResumeDispatchBatch
	if batchSize <= 0 {
		batchSize = 20
	}
	timeout := time.Duration(cfg.ResumeDispatchTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Dispatcher{
		queueService: queueService,
		logService:   logService,
		client:       &http.Client{Timeout: timeout},
		interval:     interval,
		batchSize:    batchSize,
	}, nil
}

// Start chạy dispatcher trong vòng lặp cho đến khi ctx bị cancel
func (d *Dispatcher) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	log.WithFields(logrus.Fields{
		"interval":  d.interval.String(),
		"batchSize": d.batchSize,
	}).Info("📤 [RESUME] Starting Resume Dispatcher...")

	for {
		select {
		case <-ctx.Done():
			log.Info("📤 [RESUME] Resume Dispatcher stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(logrus.Fields{
							"panic": r,
						}).Error("📤 [RESUME] Panic khi xử lý batch, sẽ tiếp tục ở lần chạy tiếp theo")
					}
				}()
				d.processBatch(ctx)
				d.maybeCleanup(ctx)
			}()
		}
	}
}

// maybeCleanup dọn các item completed/failed cũ, tối đa một lần mỗi cleanupInterval
func (d *Dispatcher) maybeCleanup(ctx context.Context) {
	if time.Since(d.lastCleanup) < cleanupInterval {
		return
	}
	d.lastCleanup = time.Now()

	deleted, err := d.queueService.CleanupCompleted(ctx, cleanupRetentionDays)
	if err != nil {
		logger.GetAppLogger().WithError(err).Warn("📤 [RESUME] Lỗi dọn resume queue")
		return
	}
	if deleted > 0 {
		logger.GetAppLogger().WithFields(logrus.Fields{
			"deleted": deleted,
		}).Info("📤 [RESUME] Đã dọn resume queue")
	}
}

// processBatch lấy một batch pending items và gửi tuần tự
func (d *Dispatcher) processBatch(ctx context.Context) {
	log := logger.GetAppLogger()

	items, err := d.queueService.FindPending(ctx, d.batchSize)
	if err != nil {
		log.WithError(err).Error("📤 [RESUME] Lỗi lấy danh sách pending items")
		return
	}
	if len(items) == 0 {
		return
	}

	ids := make([]primitive.ObjectID, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	if err := d.queueService.MarkProcessing(ctx, ids); err != nil {
		log.WithError(err).Error("📤 [RESUME] Lỗi đánh dấu items processing")
		return
	}

	for _, item := range items {
		d.deliver(ctx, item)
	}
}

// deliver gửi một item: reserve deliveryId trong webhook log (unique index chặn
// double-send giữa hai dispatcher), POST, cập nhật log với kết quả, đánh dấu item.
// Đúng một lần thử per item; thất bại chỉ ghi log và đánh dấu failed.
func (d *Dispatcher) deliver(ctx context.Context, item resumemodels.ResumeQueueItem) {
	log := logger.GetAppLogger()

	requestBody, _ := utility.ToMap(item.Payload)
	deliveryLog := webhookmodels.WebhookLog{
		DeliveryID:  item.Payload.DeliveryID,
		URL:         item.WebhookURL,
		ContentID:   item.Payload.ContentID,
		Decision:    item.Payload.Decision,
		RequestBody: requestBody,
		UserID:      item.UserID,
		SentAt:      time.Now().UnixMilli(),
	}
	reserved, err := d.logService.RecordDelivery(ctx, deliveryLog)
	if err != nil {
		// Chỉ lỗi duplicate key mới nghĩa là "đã gửi rồi"; các lỗi Mongo khác
		// (write/query/timeout) là transient và item phải được giữ lại để thử lại
		if errors.Is(err, common.ErrMongoDuplicate) || errors.Is(err, common.ErrDuplicate) {
			log.WithFields(logrus.Fields{
				"deliveryId": item.Payload.DeliveryID,
			}).Warn("📤 [RESUME] Delivery đã được gửi trước đó, bỏ qua")
			_ = d.queueService.MarkCompleted(ctx, item.ID)
			return
		}
		log.WithError(err).Error("📤 [RESUME] Lỗi ghi webhook log, item sẽ được thử lại")
		return
	}

	statusCode, duration, sendErr := d.send(ctx, item)

	logUpdate := map[string]interface{}{
		"statusCode": statusCode,
		"success":    sendErr == nil,
		"durationMs": duration.Milliseconds(),
	}
	if sendErr != nil {
		logUpdate["error"] = sendErr.Error()
	}
	if _, err := d.logService.UpdateById(ctx, reserved.ID, logUpdate); err != nil {
		log.WithError(err).Warn("📤 [RESUME] Lỗi cập nhật webhook log")
	}

	if sendErr != nil {
		log.WithError(sendErr).WithFields(logrus.Fields{
			"deliveryId": item.Payload.DeliveryID,
			"contentId":  item.Payload.ContentID,
			"url":        item.WebhookURL,
		}).Error("📤 [RESUME] Gửi resume webhook thất bại")
		if err := d.queueService.MarkFailed(ctx, item.ID, sendErr.Error()); err != nil {
			log.WithError(err).Warn("📤 [RESUME] Lỗi đánh dấu item failed")
		}
		return
	}

	log.WithFields(logrus.Fields{
		"deliveryId": item.Payload.DeliveryID,
		"contentId":  item.Payload.ContentID,
		"statusCode": statusCode,
		"durationMs": duration.Milliseconds(),
	}).Info("📤 [RESUME] Đã gửi resume webhook")
	if err := d.queueService.MarkCompleted(ctx, item.ID); err != nil {
		log.WithError(err).Warn("📤 [RESUME] Lỗi đánh dấu item completed")
	}
}

// send POST payload JSON tới webhook đích, trả về status code và thời gian gọi
func (d *Dispatcher) send(ctx context.Context, item resumemodels.ResumeQueueItem) (int, time.Duration, error) {
	body, err := json.Marshal(item.Payload)
	if err != nil {
		return 0, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, item.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := d.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		return 0, duration, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, duration, fmt.Errorf("webhook trả về status %d", resp.StatusCode)
	}
	return resp.StatusCode, duration, nil
}
