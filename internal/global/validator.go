package global

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	// Khởi tạo validator
	Validate = validator.New()

	// Đăng ký các custom validator
	_ = Validate.RegisterValidation("no_xss", validateNoXSS)
	_ = Validate.RegisterValidation("future_unix_ms", validateFutureUnixMilli)
}

// validateNoXSS kiểm tra XSS
func validateNoXSS(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"onmouseover=",
		"eval(",
		"document.cookie",
		"document.write",
		"innerHTML",
		"fromCharCode",
		"window.location",
		"<iframe",
		"<object",
		"<embed",
	}

	value = strings.ToLower(value)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}

// validateFutureUnixMilli kiểm tra timestamp (unix milli) phải nằm trong tương lai.
// Dùng cho thời điểm lên lịch đăng bài — không cho phép đặt lịch trong quá khứ.
func validateFutureUnixMilli(fl validator.FieldLevel) bool {
	value := fl.Field()
	var ts int64
	switch value.Kind().String() {
	case "int", "int32", "int64":
		ts = value.Int()
	default:
		return false
	}
	if ts == 0 {
		return true // 0 = không đặt lịch, skip validation (nếu có omitempty)
	}
	return ts > time.Now().UnixMilli()
}
