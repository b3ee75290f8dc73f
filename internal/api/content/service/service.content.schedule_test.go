// Package contentsvc - Test schedule engine: entitlement gate, validate thời gian
// và persist scheduledAt chính xác.
package contentsvc

import (
	"context"
	"testing"
	"time"

	basemodels "meta_content/internal/api/base/models"
	basesvc "meta_content/internal/api/base/service"
	contentmodels "meta_content/internal/api/content/models"
	"meta_content/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// fakeScheduleStore giả lập ContentItemService cho schedule engine
type fakeScheduleStore struct {
	item contentmodels.ContentItem

	findCalls   int
	updateCalls []interface{}
	findFilter  interface{}
	findResults []contentmodels.ContentItem
}

func (f *fakeScheduleStore) FindOneById(ctx context.Context, id primitive.ObjectID) (contentmodels.ContentItem, error) {
	f.findCalls++
	return f.item, nil
}

func (f *fakeScheduleStore) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts *options.UpdateOptions) (contentmodels.ContentItem, error) {
	f.updateCalls = append(f.updateCalls, update)
	updated := f.item
	if data, ok := update.(*basesvc.UpdateData); ok {
		if status, ok := data.Set["status"].(string); ok {
			updated.Status = status
		}
		if at, ok := data.Set["scheduledAt"].(int64); ok {
			updated.ScheduledAt = at
		}
	}
	return updated, nil
}

func (f *fakeScheduleStore) Find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]contentmodels.ContentItem, error) {
	f.findFilter = filter
	return f.findResults, nil
}

func scheduleTestItem(owner primitive.ObjectID, status string) contentmodels.ContentItem {
	return contentmodels.ContentItem{
		ID:         primitive.NewObjectID(),
		Title:      "Bài đăng test",
		Type:       contentmodels.ContentTypeSocialPost,
		ModuleSlug: "social-media-posts",
		Status:     status,
		IsFavorite: true,
		UserID:     owner,
	}
}

func TestSchedule_MissingEntitlement(t *testing.T) {
	owner := primitive.NewObjectID()
	store := &fakeScheduleStore{item: scheduleTestItem(owner, contentmodels.ContentStatusApproved)}
	svc := newScheduleServiceWith(store)

	session := basemodels.SessionContext{UserID: owner, CanSchedule: false}
	future := time.Now().Add(time.Hour).UnixMilli()
	_, err := svc.Schedule(context.Background(), session, store.item.ID, future)

	assert.ErrorIs(t, err, common.ErrUpgradeRequired)
	// Entitlement gate chặn trước mọi truy cập database
	assert.Equal(t, 0, store.findCalls)
	assert.Empty(t, store.updateCalls)
}

func TestSchedule_TimeInPast(t *testing.T) {
	owner := primitive.NewObjectID()
	store := &fakeScheduleStore{item: scheduleTestItem(owner, contentmodels.ContentStatusApproved)}
	svc := newScheduleServiceWith(store)

	session := basemodels.SessionContext{UserID: owner, CanSchedule: true}
	past := time.Now().Add(-time.Minute).UnixMilli()
	_, err := svc.Schedule(context.Background(), session, store.item.ID, past)

	assert.ErrorIs(t, err, common.ErrScheduleInPast)
	assert.Equal(t, 0, store.findCalls)
	assert.Empty(t, store.updateCalls)
}

func TestSchedule_TimeExactlyNow(t *testing.T) {
	owner := primitive.NewObjectID()
	store := &fakeScheduleStore{item: scheduleTestItem(owner, contentmodels.ContentStatusApproved)}
	svc := newScheduleServiceWith(store)

	// executionTime phải strictly lớn hơn now
	session := basemodels.SessionContext{UserID: owner, CanSchedule: true}
	_, err := svc.Schedule(context.Background(), session, store.item.ID, time.Now().UnixMilli())

	assert.ErrorIs(t, err, common.ErrScheduleInPast)
}

func TestSchedule_HappyPath(t *testing.T) {
	owner := primitive.NewObjectID()
	store := &fakeScheduleStore{item: scheduleTestItem(owner, contentmodels.ContentStatusApproved)}
	svc := newScheduleServiceWith(store)

	session := basemodels.SessionContext{UserID: owner, CanSchedule: true}
	future := time.Now().Add(48 * time.Hour).UnixMilli()
	updated, err := svc.Schedule(context.Background(), session, store.item.ID, future)

	require.NoError(t, err)
	assert.Equal(t, contentmodels.ContentStatusScheduled, updated.Status)
	// Persist đúng giá trị caller đưa vào, không làm tròn
	assert.Equal(t, future, updated.ScheduledAt)

	require.Len(t, store.updateCalls, 1)
	update, ok := store.updateCalls[0].(*basesvc.UpdateData)
	require.True(t, ok)
	assert.Equal(t, future, update.Set["scheduledAt"])
	// Schedule không được chạm vào isFavorite
	assert.NotContains(t, update.Set, "isFavorite")
}

func TestSchedule_OwnershipMismatch(t *testing.T) {
	owner := primitive.NewObjectID()
	store := &fakeScheduleStore{item: scheduleTestItem(owner, contentmodels.ContentStatusApproved)}
	svc := newScheduleServiceWith(store)

	session := basemodels.SessionContext{UserID: primitive.NewObjectID(), CanSchedule: true}
	future := time.Now().Add(time.Hour).UnixMilli()
	_, err := svc.Schedule(context.Background(), session, store.item.ID, future)

	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Empty(t, store.updateCalls)
}

func TestUnschedule_FromScheduled(t *testing.T) {
	owner := primitive.NewObjectID()
	item := scheduleTestItem(owner, contentmodels.ContentStatusScheduled)
	item.ScheduledAt = time.Now().Add(time.Hour).UnixMilli()
	store := &fakeScheduleStore{item: item}
	svc := newScheduleServiceWith(store)

	session := basemodels.SessionContext{UserID: owner}
	updated, err := svc.Unschedule(context.Background(), session, item.ID)

	require.NoError(t, err)
	assert.Equal(t, contentmodels.ContentStatusApproved, updated.Status)

	require.Len(t, store.updateCalls, 1)
	update, ok := store.updateCalls[0].(*basesvc.UpdateData)
	require.True(t, ok)
	// scheduledAt phải bị gỡ khỏi document, không chỉ set về 0
	assert.Contains(t, update.Unset, "scheduledAt")
}

func TestUnschedule_InvalidState(t *testing.T) {
	owner := primitive.NewObjectID()
	store := &fakeScheduleStore{item: scheduleTestItem(owner, contentmodels.ContentStatusPending)}
	svc := newScheduleServiceWith(store)

	session := basemodels.SessionContext{UserID: owner}
	_, err := svc.Unschedule(context.Background(), session, store.item.ID)

	assert.ErrorIs(t, err, common.ErrInvalidState)
	assert.Empty(t, store.updateCalls)
}

func TestCalendar_InvalidWindow(t *testing.T) {
	owner := primitive.NewObjectID()
	store := &fakeScheduleStore{}
	svc := newScheduleServiceWith(store)

	session := basemodels.SessionContext{UserID: owner}
	now := time.Now().UnixMilli()

	_, err := svc.Calendar(context.Background(), session, now, now)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = svc.Calendar(context.Background(), session, now+1000, now)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestCalendar_FilterScopedToUserAndWindow(t *testing.T) {
	owner := primitive.NewObjectID()
	store := &fakeScheduleStore{}
	svc := newScheduleServiceWith(store)

	session := basemodels.SessionContext{UserID: owner}
	from := time.Now().UnixMilli()
	to := from + 7*24*60*60*1000

	_, err := svc.Calendar(context.Background(), session, from, to)
	require.NoError(t, err)

	filter, ok := store.findFilter.(bson.M)
	require.True(t, ok)
	assert.Equal(t, owner, filter["userId"])
	assert.Equal(t, contentmodels.ContentStatusScheduled, filter["status"])

	window, ok := filter["scheduledAt"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, from, window["$gte"])
	assert.Equal(t, to, window["$lt"])
}
