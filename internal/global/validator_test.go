// Package global - Test các custom validator đăng ký khi khởi động.
package global

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type customTagInput struct {
	Title       string `validate:"omitempty,no_xss"`
	ScheduledAt int64  `validate:"omitempty,future_unix_ms"`
}

func TestValidateNoXSS(t *testing.T) {
	InitValidator()

	require.NoError(t, Validate.Struct(customTagInput{Title: "Bài đăng bình thường"}))

	for _, payload := range []string{
		"<script>alert(1)</script>",
		"javascript:void(0)",
		"<img onerror=alert(1)>",
	} {
		assert.Error(t, Validate.Struct(customTagInput{Title: payload}), payload)
	}
}

func TestValidateFutureUnixMilli(t *testing.T) {
	InitValidator()

	future := time.Now().Add(time.Hour).UnixMilli()
	require.NoError(t, Validate.Struct(customTagInput{ScheduledAt: future}))

	past := time.Now().Add(-time.Hour).UnixMilli()
	assert.Error(t, Validate.Struct(customTagInput{ScheduledAt: past}))
}
