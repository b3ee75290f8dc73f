// Package realtime - Test hub fan-out và rule notification published.
package realtime

import (
	"context"
	"testing"
	"time"

	contentmodels "meta_content/internal/api/content/models"
	"meta_content/internal/api/events"
	"meta_content/internal/global"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	// Hub lọc event theo tên collection; test chạy không qua cmd/server init
	global.MongoDB_ColNames.ContentItems = "content_items"
}

func hubTestItem(owner primitive.ObjectID, status string) contentmodels.ContentItem {
	return contentmodels.ContentItem{
		ID:         primitive.NewObjectID(),
		Title:      "Bài đăng test",
		Type:       contentmodels.ContentTypeSocialPost,
		ModuleSlug: "social-media-posts",
		Status:     status,
		UserID:     owner,
		UpdatedAt:  time.Now().UnixMilli(),
	}
}

func receiveUpdate(t *testing.T, ch <-chan ContentUpdate) ContentUpdate {
	t.Helper()
	select {
	case update := <-ch:
		return update
	case <-time.After(time.Second):
		t.Fatal("không nhận được update trong 1s")
		return ContentUpdate{}
	}
}

func assertNoUpdate(t *testing.T, ch <-chan ContentUpdate) {
	t.Helper()
	select {
	case update := <-ch:
		t.Fatalf("không mong đợi update nhưng nhận được: %+v", update)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_FanOutToOwnerSubscribers(t *testing.T) {
	hub := NewHub()
	owner := primitive.NewObjectID()
	item := hubTestItem(owner, contentmodels.ContentStatusPending)

	ch1, unsub1 := hub.Subscribe(owner.Hex())
	ch2, unsub2 := hub.Subscribe(owner.Hex())
	defer unsub1()
	defer unsub2()

	chOther, unsubOther := hub.Subscribe(primitive.NewObjectID().Hex())
	defer unsubOther()

	hub.HandleDataChange(context.Background(), events.DataChangeEvent{
		CollectionName: global.MongoDB_ColNames.ContentItems,
		Operation:      events.OpInsert,
		Document:       item,
	})

	// Cả hai session của owner đều nhận, user khác thì không
	for _, ch := range []<-chan ContentUpdate{ch1, ch2} {
		update := receiveUpdate(t, ch)
		assert.Equal(t, item.ID.Hex(), update.ContentID)
		assert.Equal(t, events.OpInsert, update.Operation)
		assert.NotEmpty(t, update.Fields)
		assert.Nil(t, update.Notification)
	}
	assertNoUpdate(t, chOther)
}

func TestHub_IgnoresOtherCollections(t *testing.T) {
	hub := NewHub()
	owner := primitive.NewObjectID()

	ch, unsub := hub.Subscribe(owner.Hex())
	defer unsub()

	hub.HandleDataChange(context.Background(), events.DataChangeEvent{
		CollectionName: "webhook_logs",
		Operation:      events.OpInsert,
		Document:       hubTestItem(owner, contentmodels.ContentStatusPending),
	})

	assertNoUpdate(t, ch)
}

func TestHub_PublishedNotificationExactlyOnce(t *testing.T) {
	hub := NewHub()
	owner := primitive.NewObjectID()

	ch, unsub := hub.Subscribe(owner.Hex())
	defer unsub()

	previous := hubTestItem(owner, contentmodels.ContentStatusPublishing)
	published := previous
	published.Status = contentmodels.ContentStatusPublished

	// Chuyển publishing → published: sinh đúng một notification
	hub.HandleDataChange(context.Background(), events.DataChangeEvent{
		CollectionName: global.MongoDB_ColNames.ContentItems,
		Operation:      events.OpUpdate,
		Document:       published,
		Previous:       previous,
	})

	update := receiveUpdate(t, ch)
	require.NotNil(t, update.Notification)
	assert.Equal(t, published.ID.Hex(), update.Notification.ContentID)
	assert.Equal(t, "social-media-posts", update.Notification.ModuleSlug)
	assert.Equal(t, published.Title, update.Notification.Title)

	// Update tiếp theo trên item đã published (ví dụ đổi favorite): không có notification
	hub.HandleDataChange(context.Background(), events.DataChangeEvent{
		CollectionName: global.MongoDB_ColNames.ContentItems,
		Operation:      events.OpUpdate,
		Document:       published,
		Previous:       published,
	})

	update = receiveUpdate(t, ch)
	assert.Nil(t, update.Notification)
}

func TestHub_InsertAsPublishedNotifiesOnce(t *testing.T) {
	hub := NewHub()
	owner := primitive.NewObjectID()

	ch, unsub := hub.Subscribe(owner.Hex())
	defer unsub()

	// Content loại không cần duyệt được tạo thẳng ở trạng thái published:
	// thời điểm insert chính là lần chuyển sang published duy nhất
	item := hubTestItem(owner, contentmodels.ContentStatusPublished)
	item.Type = "article"
	item.ModuleSlug = "blog-articles"

	hub.HandleDataChange(context.Background(), events.DataChangeEvent{
		CollectionName: global.MongoDB_ColNames.ContentItems,
		Operation:      events.OpInsert,
		Document:       item,
	})

	update := receiveUpdate(t, ch)
	require.NotNil(t, update.Notification)
	assert.Equal(t, "blog-articles", update.Notification.ModuleSlug)

	// Update sau đó không đổi status: không sinh notification lần hai
	hub.HandleDataChange(context.Background(), events.DataChangeEvent{
		CollectionName: global.MongoDB_ColNames.ContentItems,
		Operation:      events.OpUpdate,
		Document:       item,
		Previous:       item,
	})

	update = receiveUpdate(t, ch)
	assert.Nil(t, update.Notification)
}

func TestHub_DeleteUsesPreviousDocument(t *testing.T) {
	hub := NewHub()
	owner := primitive.NewObjectID()
	item := hubTestItem(owner, contentmodels.ContentStatusApproved)

	ch, unsub := hub.Subscribe(owner.Hex())
	defer unsub()

	hub.HandleDataChange(context.Background(), events.DataChangeEvent{
		CollectionName: global.MongoDB_ColNames.ContentItems,
		Operation:      events.OpDelete,
		Document:       nil,
		Previous:       item,
	})

	update := receiveUpdate(t, ch)
	assert.Equal(t, item.ID.Hex(), update.ContentID)
	assert.Equal(t, events.OpDelete, update.Operation)
	// Delete không mang snapshot fields và không bao giờ sinh notification
	assert.Nil(t, update.Fields)
	assert.Nil(t, update.Notification)
}

func TestHub_UnsubscribeIdempotent(t *testing.T) {
	hub := NewHub()
	owner := primitive.NewObjectID()

	_, unsub := hub.Subscribe(owner.Hex())
	assert.Equal(t, 1, hub.SubscriberCount(owner.Hex()))

	unsub()
	assert.Equal(t, 0, hub.SubscriberCount(owner.Hex()))

	// Gọi lại lần nữa sau khi session đã kết thúc: không panic, không đổi state
	assert.NotPanics(t, func() { unsub() })
	assert.Equal(t, 0, hub.SubscriberCount(owner.Hex()))
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub()
	owner := primitive.NewObjectID()
	item := hubTestItem(owner, contentmodels.ContentStatusPending)

	// Không đọc channel: buffer đầy thì update bị drop thay vì block fan-out
	_, unsub := hub.Subscribe(owner.Hex())
	defer unsub()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			hub.HandleDataChange(context.Background(), events.DataChangeEvent{
				CollectionName: global.MongoDB_ColNames.ContentItems,
				Operation:      events.OpUpdate,
				Document:       item,
			})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("fan-out bị block bởi subscriber chậm")
	}
}
