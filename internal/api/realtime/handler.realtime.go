package realtime

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	basehdl "meta_content/internal/api/base/handler"
	"meta_content/internal/common"
	"meta_content/internal/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

// heartbeatInterval giữ kết nối SSE sống qua các proxy có idle timeout
const heartbeatInterval = 15 * time.Second

// RealtimeHandler xử lý endpoint push channel (SSE) cho content sync
type RealtimeHandler struct {
	hub *Hub
}

// NewRealtimeHandler tạo mới RealtimeHandler gắn với hub singleton
func NewRealtimeHandler() (*RealtimeHandler, error) {
	return &RealtimeHandler{hub: GetHub()}, nil
}

// Stream mở một SSE stream đẩy ContentUpdate của user hiện tại.
// Mỗi update là một frame `data: <json>\n\n`; heartbeat comment frame mỗi 15s.
// Đóng kết nối từ phía client sẽ unsubscribe session khỏi hub.
// @Router /realtime/stream [get]
func (h *RealtimeHandler) Stream(c fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		basehdl.HandleResponse(c, nil, common.ErrTokenInvalid)
		return nil
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	hub := h.hub
	c.RequestCtx().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ch, unsubscribe := hub.Subscribe(userID)
		defer unsubscribe()

		logger.GetAppLogger().WithFields(logrus.Fields{
			"user_id": userID,
		}).Info("🔌 [REALTIME] Session subscribed")

		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case update, open := <-ch:
				if !open {
					return
				}
				data, err := json.Marshal(update)
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					// Client đã ngắt kết nối
					return
				}
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}
