// Package contenthdl chứa các handler HTTP cho domain Content: CRUD content item,
// quyết định duyệt (approve/decline/decline-and-delete), lên lịch publish và calendar view.
package contenthdl

import (
	"fmt"
	"strconv"

	basehdl "meta_content/internal/api/base/handler"
	basemodels "meta_content/internal/api/base/models"
	contentdto "meta_content/internal/api/content/dto"
	contentmodels "meta_content/internal/api/content/models"
	contentsvc "meta_content/internal/api/content/service"
	resumesvc "meta_content/internal/api/resume/service"
	"meta_content/internal/common"
	"meta_content/internal/utility"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentItemHandler xử lý các request liên quan đến content item lifecycle
type ContentItemHandler struct {
	*basehdl.BaseHandler[contentmodels.ContentItem, contentdto.ContentItemCreateInput, contentdto.ContentItemUpdateInput]
	ContentItemService *contentsvc.ContentItemService
	ApprovalService    *contentsvc.ContentApprovalService
	DecisionService    *contentsvc.DecisionService
	ScheduleService    *contentsvc.ScheduleService
}

// NewContentItemHandler tạo mới ContentItemHandler với đầy đủ các service lifecycle
func NewContentItemHandler() (*ContentItemHandler, error) {
	itemService, err := contentsvc.NewContentItemService()
	if err != nil {
		return nil, fmt.Errorf("failed to create content item service: %v", err)
	}
	approvalService, err := contentsvc.NewContentApprovalService()
	if err != nil {
		return nil, fmt.Errorf("failed to create content approval service: %v", err)
	}
	resumeQueueService, err := resumesvc.NewResumeQueueService()
	if err != nil {
		return nil, fmt.Errorf("failed to create resume queue service: %v", err)
	}
	decisionService, err := contentsvc.NewDecisionService(resumeQueueService)
	if err != nil {
		return nil, fmt.Errorf("failed to create decision service: %v", err)
	}
	scheduleService, err := contentsvc.NewScheduleService()
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule service: %v", err)
	}

	hdl := &ContentItemHandler{
		ContentItemService: itemService,
		ApprovalService:    approvalService,
		DecisionService:    decisionService,
		ScheduleService:    scheduleService,
	}
	hdl.BaseHandler = basehdl.NewBaseHandler[contentmodels.ContentItem, contentdto.ContentItemCreateInput, contentdto.ContentItemUpdateInput](itemService)
	return hdl, nil
}

// sessionFromCtx dựng SessionContext từ Locals do auth middleware set
func (h *ContentItemHandler) sessionFromCtx(c fiber.Ctx) (basemodels.SessionContext, error) {
	userID := h.GetActiveUserID(c)
	if userID == nil {
		return basemodels.SessionContext{}, common.ErrTokenInvalid
	}
	canSchedule, _ := c.Locals("can_schedule").(bool)
	return basemodels.SessionContext{
		UserID:      *userID,
		CanSchedule: canSchedule,
	}, nil
}

// contentIDFromCtx lấy và validate content id từ URL param, kèm kiểm tra ownership
func (h *ContentItemHandler) contentIDFromCtx(c fiber.Ctx) (primitive.ObjectID, error) {
	idStr := h.GetIDFromContext(c)
	if idStr == "" {
		return primitive.NilObjectID, common.ErrRequiredField
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		return primitive.NilObjectID, common.ErrInvalidFormat
	}
	if err := h.ValidateUserAccess(c, idStr); err != nil {
		return primitive.NilObjectID, err
	}
	return id, nil
}

// List liệt kê content items của user hiện tại, lọc theo type (tùy chọn),
// giới hạn cứng theo config, mới nhất trước
// @Router /content/items/list [get]
func (h *ContentItemHandler) List(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		session, err := h.sessionFromCtx(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var limit int64
		if raw := c.Query("limit"); raw != "" {
			limit, err = strconv.ParseInt(raw, 10, 64)
			if err != nil {
				h.HandleResponse(c, nil, common.ErrInvalidFormat)
				return nil
			}
		}

		items, err := h.ContentItemService.ListForUser(c.Context(), session.UserID, c.Query("type"), limit)
		h.HandleResponse(c, items, err)
		return nil
	})
}

// UpdateStatus cập nhật status trực tiếp của content item
// @Router /content/items/:id/status [put]
func (h *ContentItemHandler) UpdateStatus(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.contentIDFromCtx(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input contentdto.ContentStatusUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.ContentItemService.UpdateStatus(c.Context(), id, input.Status)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// UpdateFavorite toggle isFavorite, độc lập hoàn toàn với lifecycle status
// @Router /content/items/:id/favorite [put]
func (h *ContentItemHandler) UpdateFavorite(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.contentIDFromCtx(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input contentdto.ContentFavoriteUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.ContentItemService.UpdateFavorite(c.Context(), id, *input.IsFavorite)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// processDecision dùng chung cho approve/decline/decline-and-delete
func (h *ContentItemHandler) processDecision(c fiber.Ctx, approved bool, deleteAfter bool) error {
	return h.SafeHandler(c, func() error {
		session, err := h.sessionFromCtx(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		idStr := h.GetIDFromContext(c)
		id, err := primitive.ObjectIDFromHex(idStr)
		if err != nil {
			h.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		var input contentdto.ContentDecisionInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var result *contentsvc.DecisionResult
		if deleteAfter {
			result, err = h.DecisionService.ProcessDecisionAndDelete(c.Context(), session, id, approved, input.Feedback)
		} else {
			result, err = h.DecisionService.ProcessDecision(c.Context(), session, id, approved, input.Feedback)
		}
		h.HandleResponse(c, result, err)
		return nil
	})
}

// Approve duyệt content item
// @Router /content/items/:id/approve [post]
func (h *ContentItemHandler) Approve(c fiber.Ctx) error {
	return h.processDecision(c, true, false)
}

// Decline từ chối content item, giữ lại record
// @Router /content/items/:id/decline [post]
func (h *ContentItemHandler) Decline(c fiber.Ctx) error {
	return h.processDecision(c, false, false)
}

// DeclineAndDelete từ chối rồi xóa content item (hành vi chuẩn của client);
// approval record được giữ lại làm audit trail
// @Router /content/items/:id/decline-and-delete [post]
func (h *ContentItemHandler) DeclineAndDelete(c fiber.Ctx) error {
	return h.processDecision(c, false, true)
}

// GetApproval lấy approval record mới nhất của content item
// @Router /content/items/:id/approval [get]
func (h *ContentItemHandler) GetApproval(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.contentIDFromCtx(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		approval, err := h.ApprovalService.FindByContentID(c.Context(), id)
		h.HandleResponse(c, approval, err)
		return nil
	})
}

// Schedule lên lịch publish cho content item.
// Entitlement canSchedule đã được kiểm tra ở middleware; service kiểm tra lại
// trước mọi truy cập database (defense theo contract của engine).
// @Router /content/items/:id/schedule [post]
func (h *ContentItemHandler) Schedule(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		session, err := h.sessionFromCtx(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		idStr := h.GetIDFromContext(c)
		id, err := primitive.ObjectIDFromHex(idStr)
		if err != nil {
			h.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		var input contentdto.ContentScheduleInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.ScheduleService.Schedule(c.Context(), session, id, input.ScheduledAt)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// Unschedule hủy lịch publish của content item đang scheduled
// @Router /content/items/:id/unschedule [post]
func (h *ContentItemHandler) Unschedule(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		session, err := h.sessionFromCtx(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		idStr := h.GetIDFromContext(c)
		id, err := primitive.ObjectIDFromHex(idStr)
		if err != nil {
			h.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		updated, err := h.ScheduleService.Unschedule(c.Context(), session, id)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// Calendar liệt kê các item đã lên lịch trong cửa sổ [from, to) ms (calendar view)
// @Router /content/items/calendar [get]
func (h *ContentItemHandler) Calendar(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		session, err := h.sessionFromCtx(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		from, err := strconv.ParseInt(c.Query("from"), 10, 64)
		if err != nil {
			h.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}
		to, err := strconv.ParseInt(c.Query("to"), 10, 64)
		if err != nil {
			h.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		items, err := h.ScheduleService.Calendar(c.Context(), session, from, to)
		h.HandleResponse(c, items, err)
		return nil
	})
}

// Preview decode metadata bag thành shape đã biết theo producer, kèm kind
// @Router /content/items/:id/preview [get]
func (h *ContentItemHandler) Preview(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		id, err := h.contentIDFromCtx(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		item, err := h.ContentItemService.FindOneById(c.Context(), id)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		kind, decoded := contentmodels.DecodeMetadata(item.Type, item.Metadata)
		h.HandleResponse(c, fiber.Map{
			"id":       utility.ObjectID2String(item.ID),
			"type":     item.Type,
			"kind":     kind,
			"metadata": decoded,
		}, nil)
		return nil
	})
}

// DeleteById xóa content item của owner; shadow bản generic để item pending có
// resumeWebhookUrl được thông báo cancelled best-effort trước khi xóa
// @Router /content/items/delete-by-id/:id [delete]
func (h *ContentItemHandler) DeleteById(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		session, err := h.sessionFromCtx(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		idStr := h.GetIDFromContext(c)
		id, err := primitive.ObjectIDFromHex(idStr)
		if err != nil {
			h.HandleResponse(c, nil, common.ErrInvalidFormat)
			return nil
		}

		if err := h.DecisionService.DeleteContent(c.Context(), session, id); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		h.HandleResponse(c, fiber.Map{"deleted": true, "id": idStr}, nil)
		return nil
	})
}
