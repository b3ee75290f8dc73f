// Package router đăng ký route thuộc domain Realtime (push channel).
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"meta_content/internal/api/middleware"
	"meta_content/internal/api/realtime"
	apirouter "meta_content/internal/api/router"
)

// Register đăng ký route realtime lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	realtimeHandler, err := realtime.NewRealtimeHandler()
	if err != nil {
		return fmt.Errorf("create realtime handler: %w", err)
	}

	auth := []fiber.Handler{middleware.AuthMiddleware()}
	apirouter.RegisterRouteWithMiddleware(v1, "/realtime", "GET", "/stream", auth, realtimeHandler.Stream)

	return nil
}
