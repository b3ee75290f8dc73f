// Package router đăng ký các route thuộc domain Content: items, lifecycle, scheduling.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	contenthdl "meta_content/internal/api/content/handler"
	"meta_content/internal/api/middleware"
	apirouter "meta_content/internal/api/router"
)

// Register đăng ký tất cả route content lifecycle lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	itemHandler, err := contenthdl.NewContentItemHandler()
	if err != nil {
		return fmt.Errorf("create content item handler: %w", err)
	}

	// CRUD chuẩn (DeleteById đã được shadow để notify webhook khi xóa item pending)
	r.RegisterCRUDRoutes(v1, "/content/items", itemHandler, apirouter.ReadWriteConfig)

	authMiddleware := middleware.AuthMiddleware()
	auth := []fiber.Handler{authMiddleware}

	// List theo user với type filter + hard cap
	apirouter.RegisterRouteWithMiddleware(v1, "/content/items", "GET", "/list", auth, itemHandler.List)

	// Lifecycle: status, favorite, approval history
	apirouter.RegisterRouteWithMiddleware(v1, "/content/items", "PUT", "/:id/status", auth, itemHandler.UpdateStatus)
	apirouter.RegisterRouteWithMiddleware(v1, "/content/items", "PUT", "/:id/favorite", auth, itemHandler.UpdateFavorite)
	apirouter.RegisterRouteWithMiddleware(v1, "/content/items", "GET", "/:id/approval", auth, itemHandler.GetApproval)
	apirouter.RegisterRouteWithMiddleware(v1, "/content/items", "GET", "/:id/preview", auth, itemHandler.Preview)

	// Quyết định duyệt
	apirouter.RegisterRouteWithMiddleware(v1, "/content/items", "POST", "/:id/approve", auth, itemHandler.Approve)
	apirouter.RegisterRouteWithMiddleware(v1, "/content/items", "POST", "/:id/decline", auth, itemHandler.Decline)
	apirouter.RegisterRouteWithMiddleware(v1, "/content/items", "POST", "/:id/decline-and-delete", auth, itemHandler.DeclineAndDelete)

	// Scheduling: yêu cầu entitlement canSchedule (middleware chặn trước handler)
	scheduleChain := []fiber.Handler{authMiddleware, middleware.ScheduleEntitlementMiddleware()}
	apirouter.RegisterRouteWithMiddleware(v1, "/content/items", "POST", "/:id/schedule", scheduleChain, itemHandler.Schedule)
	apirouter.RegisterRouteWithMiddleware(v1, "/content/items", "POST", "/:id/unschedule", auth, itemHandler.Unschedule)
	apirouter.RegisterRouteWithMiddleware(v1, "/content/items", "GET", "/calendar", auth, itemHandler.Calendar)

	return nil
}
