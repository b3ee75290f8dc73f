package logger

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// AsyncHook là một hook để ghi log bất đồng bộ, tránh blocking request handling
// Hook này buffer log entries và ghi chúng vào các writers trong một goroutine riêng
type AsyncHook struct {
	writers []io.Writer
	entries chan []byte
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

// NewAsyncHookWithWriters tạo một async hook mới với nhiều writers
// bufferSize: kích thước buffer cho log entries (mặc định 1000)
func NewAsyncHookWithWriters(writers []io.Writer, bufferSize int) *AsyncHook {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	hook := &AsyncHook{
		writers: writers,
		entries: make(chan []byte, bufferSize),
	}

	// Khởi động goroutine để xử lý log entries
	hook.wg.Add(1)
	go hook.processEntries()

	return hook
}

// Levels trả về các log levels mà hook này xử lý
func (h *AsyncHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire được gọi mỗi khi có log entry mới
// Hàm này không block — format entry rồi đưa vào channel; nếu buffer đầy thì drop
func (h *AsyncHook) Fire(entry *logrus.Entry) error {
	data, err := entry.Logger.Formatter.Format(entry)
	if err != nil {
		return err
	}

	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()

	if closed {
		// Hook đã đóng, ghi trực tiếp vào writers (fallback)
		for _, w := range h.writers {
			_, _ = w.Write(data)
		}
		return nil
	}

	select {
	case h.entries <- data:
	default:
		// Buffer đầy — drop entry thay vì block request goroutine
	}
	return nil
}

// processEntries xử lý các log entries từ channel
func (h *AsyncHook) processEntries() {
	defer h.wg.Done()
	for data := range h.entries {
		for _, w := range h.writers {
			_, _ = w.Write(data)
		}
	}
}

// Close đóng hook và flush các entries còn lại
func (h *AsyncHook) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.mu.Unlock()

	close(h.entries)
	h.wg.Wait()
}
