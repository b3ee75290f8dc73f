// Package webhookhdl chứa HTTP handler cho domain Webhook (log).
package webhookhdl

import (
	"fmt"

	basehdl "meta_content/internal/api/base/handler"
	webhookdto "meta_content/internal/api/webhook/dto"
	webhookmodels "meta_content/internal/api/webhook/models"
	webhooksvc "meta_content/internal/api/webhook/service"
)

// WebhookLogHandler xử lý các route đọc webhook log
type WebhookLogHandler struct {
	*basehdl.BaseHandler[webhookmodels.WebhookLog, webhookdto.WebhookLogCreateInput, webhookdto.WebhookLogUpdateInput]
}

// NewWebhookLogHandler tạo mới WebhookLogHandler
func NewWebhookLogHandler() (*WebhookLogHandler, error) {
	webhookLogService, err := webhooksvc.NewWebhookLogService()
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook log service: %w", err)
	}

	return &WebhookLogHandler{
		BaseHandler: basehdl.NewBaseHandler[webhookmodels.WebhookLog, webhookdto.WebhookLogCreateInput, webhookdto.WebhookLogUpdateInput](webhookLogService.BaseServiceMongoImpl),
	}, nil
}
