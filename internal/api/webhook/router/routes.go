// Package router đăng ký các route thuộc domain Webhook (log, chỉ đọc).
// Log được ghi bởi resume dispatcher, client chỉ query để kiểm tra kết quả gửi.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	apirouter "meta_content/internal/api/router"
	webhookhdl "meta_content/internal/api/webhook/handler"
)

// Register đăng ký tất cả route webhook log lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	webhookLogHandler, err := webhookhdl.NewWebhookLogHandler()
	if err != nil {
		return fmt.Errorf("create webhook log handler: %w", err)
	}
	r.RegisterCRUDRoutes(v1, "/webhook-log", webhookLogHandler, apirouter.ReadOnlyConfig)

	return nil
}
