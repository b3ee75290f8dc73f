package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"meta_content/internal/common"
	"meta_content/internal/global"
	"meta_content/internal/logger"
)

// SessionClaims là payload của session token do identity provider cấp.
// Chỉ chứa những claim mà backend cần: định danh user và entitlement lên lịch.
type SessionClaims struct {
	CanSchedule bool `json:"canSchedule"`
	jwt.RegisteredClaims
}

// parseSessionToken xác thực chữ ký HMAC và trả về claims.
func parseSessionToken(tokenString string) (*SessionClaims, error) {
	claims := new(SessionClaims)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		// Chỉ chấp nhận HMAC, từ chối thuật toán khác (ví dụ none, RS256 giả mạo)
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrTokenInvalid
		}
		return []byte(global.ServerConfig.JwtSecret), nil
	})
	if err != nil {
		if strings.Contains(err.Error(), jwt.ErrTokenExpired.Error()) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrTokenInvalid
	}
	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrTokenInvalid
	}
	return claims, nil
}

// AuthMiddleware middleware xác thực cho Fiber.
// Sau khi xác thực thành công, user_id và can_schedule được lưu vào Locals
// để handler và BaseHandler dùng cho việc scope dữ liệu theo user.
func AuthMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Lấy token từ header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
			}).Warn("❌ [AUTH] Missing Authorization header")
			HandleErrorResponse(c, common.ErrTokenMissing)
			return nil
		}

		// Kiểm tra định dạng token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		claims, err := parseSessionToken(parts[1])
		if err != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":  c.Path(),
				"error": err.Error(),
			}).Warn("❌ [AUTH] Invalid session token")
			HandleErrorResponse(c, err)
			return nil
		}

		// Lưu thông tin user vào context
		c.Locals("user_id", claims.Subject)
		c.Locals("can_schedule", claims.CanSchedule)

		return c.Next()
	}
}

// ScheduleEntitlementMiddleware chặn các route lên lịch khi user không có
// entitlement canSchedule. Phải đứng SAU AuthMiddleware trong chain.
func ScheduleEntitlementMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		canSchedule, ok := c.Locals("can_schedule").(bool)
		if !ok || !canSchedule {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"user_id": c.Locals("user_id"),
				"path":    c.Path(),
			}).Warn("❌ [AUTH] Schedule entitlement missing")
			HandleErrorResponse(c, common.ErrUpgradeRequired)
			return nil
		}
		return c.Next()
	}
}
