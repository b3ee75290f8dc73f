// Package database - Index cho các collection nội dung (compound, sparse) phục vụ các truy vấn chính.
package database

import (
	"context"
	"strings"

	"meta_content/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateContentIndexes tạo các index cho các collection của hệ thống nội dung.
// Gọi một lần khi khởi động server, sau khi đã đăng ký collections.
func CreateContentIndexes(ctx context.Context, db *mongo.Database) error {
	// content_items: (userId, createdAt desc) — danh sách nội dung của user theo thời gian
	contentItems := db.Collection(global.MongoDB_ColNames.ContentItems)
	if _, err := contentItems.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "createdAt", Value: -1},
		},
		Options: options.Index().SetName("content_item_user_created"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// content_items: (userId, status) — lọc theo trạng thái vòng đời
	if _, err := contentItems.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "status", Value: 1},
		},
		Options: options.Index().SetName("content_item_user_status"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// content_items: (userId, scheduledAt) sparse — cửa sổ lịch đăng bài
	if _, err := contentItems.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "scheduledAt", Value: 1},
		},
		Options: options.Index().SetName("content_item_user_scheduled").SetSparse(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// content_approvals: (userId, status, createdAt desc) — hộp chờ phê duyệt
	contentApprovals := db.Collection(global.MongoDB_ColNames.ContentApprovals)
	if _, err := contentApprovals.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "status", Value: 1},
			{Key: "createdAt", Value: -1},
		},
		Options: options.Index().SetName("content_approval_user_status_created"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// content_approvals: contentId unique — một record quyết định mới nhất per content (upsert)
	if _, err := contentApprovals.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "contentId", Value: 1},
		},
		Options: options.Index().SetName("content_approval_content").SetUnique(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// resume_queue: (status, createdAt) — dispatcher quét item chờ gửi, cũ nhất trước
	resumeQueue := db.Collection(global.MongoDB_ColNames.ResumeQueue)
	if _, err := resumeQueue.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "createdAt", Value: 1},
		},
		Options: options.Index().SetName("resume_queue_status_created"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// webhook_logs: (deliveryId) unique — idempotency key cho mỗi lần dispatch
	webhookLogs := db.Collection(global.MongoDB_ColNames.WebhookLogs)
	if _, err := webhookLogs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "deliveryId", Value: 1},
		},
		Options: options.Index().SetName("webhook_log_delivery").SetUnique(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "duplicate")
}
