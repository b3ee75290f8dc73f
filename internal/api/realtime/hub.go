// Package realtime cung cấp hub đồng bộ thay đổi content theo user session.
// Hub nhận event từ bus data-change (phát bởi BaseServiceMongoImpl sau mỗi CRUD
// thành công), lọc theo owner và đẩy cho các subscriber của user đó qua channel.
// Transport (SSE) nằm ở handler; hub không biết gì về HTTP.
package realtime

import (
	"context"
	"sync"

	contentmodels "meta_content/internal/api/content/models"
	"meta_content/internal/api/events"
	"meta_content/internal/global"
	"meta_content/internal/utility"
)

// PublishedNotification thông báo một lần cho user khi content chuyển sang published,
// kèm tên module đã sinh ra content đó
type PublishedNotification struct {
	ContentID  string `json:"contentId"`
	ModuleSlug string `json:"moduleSlug"`
	Title      string `json:"title"`
}

// ContentUpdate là event đẩy cho client qua push channel.
// Client merge Fields theo contentId kiểu last-write-wins; thứ tự nhận = thứ tự áp dụng.
type ContentUpdate struct {
	ContentID    string                 `json:"contentId"`
	Operation    string                 `json:"operation"`              // insert, update, upsert, delete
	Fields       map[string]interface{} `json:"fields,omitempty"`       // snapshot sau thay đổi (nil khi delete)
	UpdatedAt    int64                  `json:"updatedAt,omitempty"`    // phục vụ merge LWW phía client
	Notification *PublishedNotification `json:"notification,omitempty"` // chỉ set đúng một lần khi chuyển sang published
}

// subscriber là một session đang lắng nghe của một user
type subscriber struct {
	ch   chan ContentUpdate
	once sync.Once // đảm bảo unsubscribe idempotent
}

// Hub quản lý subscription per-user và fan-out các ContentUpdate
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[uint64]*subscriber
	nextID uint64
}

// NewHub tạo hub mới chưa gắn vào event bus (dùng trong test)
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[uint64]*subscriber),
	}
}

var (
	defaultHub  *Hub
	defaultOnce sync.Once
)

// GetHub trả về hub singleton đã đăng ký với data-change event bus
func GetHub() *Hub {
	defaultOnce.Do(func() {
		defaultHub = NewHub()
		events.OnDataChanged(defaultHub.HandleDataChange)
	})
	return defaultHub
}

// Subscribe đăng ký một session lắng nghe thay đổi content của userID.
// Trả về channel nhận update và hàm unsubscribe: idempotent, an toàn khi gọi
// sau khi session đã kết thúc.
func (h *Hub) Subscribe(userID string) (<-chan ContentUpdate, func()) {
	sub := &subscriber{
		// Buffer đủ lớn cho burst CRUD; subscriber chậm bị drop update (client
		// tự reconcile bằng fetch lại, LWW nên không mất consistency)
		ch: make(chan ContentUpdate, 64),
	}

	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[uint64]*subscriber)
	}
	h.subs[userID][id] = sub
	h.mu.Unlock()

	unsubscribe := func() {
		sub.once.Do(func() {
			h.mu.Lock()
			if userSubs, ok := h.subs[userID]; ok {
				delete(userSubs, id)
				if len(userSubs) == 0 {
					delete(h.subs, userID)
				}
			}
			h.mu.Unlock()
			close(sub.ch)
		})
	}

	return sub.ch, unsubscribe
}

// SubscriberCount trả về số session đang lắng nghe của một user
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// HandleDataChange nhận event từ bus, lọc collection content_items và fan-out
// cho các subscriber của owner. Rule nghiệp vụ duy nhất: chuyển từ trạng thái
// khác sang published sinh đúng một notification; published→published thì không.
func (h *Hub) HandleDataChange(ctx context.Context, e events.DataChangeEvent) {
	if e.CollectionName != global.MongoDB_ColNames.ContentItems {
		return
	}

	update, userID, ok := h.buildUpdate(e)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs[userID] {
		select {
		case sub.ch <- update:
		default:
			// Subscriber đầy buffer: drop, client reconcile khi fetch lại
		}
	}
}

// buildUpdate dựng ContentUpdate từ DataChangeEvent; ok=false khi event không
// áp dụng được (thiếu document, không xác định được owner)
func (h *Hub) buildUpdate(e events.DataChangeEvent) (ContentUpdate, string, bool) {
	var item contentmodels.ContentItem
	doc := e.Document
	if e.Operation == events.OpDelete {
		doc = e.Previous
	}
	item, ok := asContentItem(doc)
	if !ok || item.UserID.IsZero() {
		return ContentUpdate{}, "", false
	}

	update := ContentUpdate{
		ContentID: item.ID.Hex(),
		Operation: e.Operation,
		UpdatedAt: item.UpdatedAt,
	}

	if e.Operation != events.OpDelete {
		if fields, err := utility.ToMap(item); err == nil {
			update.Fields = fields
		}

		// Insert không có Previous nên prevStatus rỗng: content tạo thẳng ở trạng
		// thái published (loại không cần duyệt) cũng sinh notification — đó chính
		// là thời điểm nó "trở thành published" đối với user
		prevStatus := events.GetStringField(e.Previous, "Status")
		if item.Status == contentmodels.ContentStatusPublished && prevStatus != contentmodels.ContentStatusPublished {
			update.Notification = &PublishedNotification{
				ContentID:  item.ID.Hex(),
				ModuleSlug: item.ModuleSlug,
				Title:      item.Title,
			}
		}
	}

	return update, item.UserID.Hex(), true
}

// asContentItem type-assert document về ContentItem (chấp nhận cả value lẫn pointer)
func asContentItem(doc interface{}) (contentmodels.ContentItem, bool) {
	switch v := doc.(type) {
	case contentmodels.ContentItem:
		return v, true
	case *contentmodels.ContentItem:
		if v != nil {
			return *v, true
		}
	}
	return contentmodels.ContentItem{}, false
}
