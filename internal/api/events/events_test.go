// Package events - Test fan-out của event bus và field reader.
package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type statusDoc struct {
	Status string
	Count  int
}

func TestGetStringField(t *testing.T) {
	doc := statusDoc{Status: "published"}

	assert.Equal(t, "published", GetStringField(doc, "Status"))
	assert.Equal(t, "published", GetStringField(&doc, "Status"))

	// Field không tồn tại hoặc không phải string → chuỗi rỗng
	assert.Equal(t, "", GetStringField(doc, "Missing"))
	assert.Equal(t, "", GetStringField(doc, "Count"))

	// Document nil hoặc pointer nil không panic
	assert.Equal(t, "", GetStringField(nil, "Status"))
	var nilDoc *statusDoc
	assert.Equal(t, "", GetStringField(nilDoc, "Status"))
}

func TestEmitDataChanged_FanOutToAllHandlers(t *testing.T) {
	ResetHandlers()
	defer ResetHandlers()

	var mu sync.Mutex
	var got []string
	done := make(chan struct{}, 2)

	for _, name := range []string{"a", "b"} {
		name := name
		OnDataChanged(func(ctx context.Context, e DataChangeEvent) {
			mu.Lock()
			got = append(got, name+":"+e.CollectionName)
			mu.Unlock()
			done <- struct{}{}
		})
	}

	EmitDataChanged(context.Background(), DataChangeEvent{
		CollectionName: "content_items",
		Operation:      OpUpdate,
	})

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("handler không được gọi")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"a:content_items", "b:content_items"}, got)
}

func TestEmitDataChanged_PanickingHandlerDoesNotAffectOthers(t *testing.T) {
	ResetHandlers()
	defer ResetHandlers()

	OnDataChanged(func(ctx context.Context, e DataChangeEvent) {
		panic("handler hỏng")
	})

	done := make(chan struct{}, 1)
	OnDataChanged(func(ctx context.Context, e DataChangeEvent) {
		done <- struct{}{}
	})

	EmitDataChanged(context.Background(), DataChangeEvent{
		CollectionName: "content_items",
		Operation:      OpDelete,
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler thứ hai không được gọi khi handler thứ nhất panic")
	}
}
