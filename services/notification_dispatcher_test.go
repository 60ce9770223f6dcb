package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"zealAPI/internal/types/notification"
)

type fakeRecorder struct {
	mu     sync.Mutex
	sent   []uuid.UUID
	failed []uuid.UUID
}

func (r *fakeRecorder) MarkSent(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, id)
	return nil
}

func (r *fakeRecorder) MarkFailed(ctx context.Context, id uuid.UUID, reason error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, id)
	return nil
}

type failingPush struct{}

func (failingPush) SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error {
	return errors.New("fcm unavailable")
}

func newNotif() *notification.Notification {
	return &notification.Notification{ID: uuid.New(), UserID: uuid.New(), Title: "t", Body: "b"}
}

var phone = []notification.DeviceToken{{Token: "tok", Platform: "android"}}

func TestDispatcherMarksSent(t *testing.T) {
	rec := &fakeRecorder{}
	d := NewNotificationDispatcher(rec, 2, zap.NewNop())
	d.SetPushProvider(&MockPushProvider{})

	a, b := newNotif(), newNotif()
	require.True(t, d.DispatchNotification(a, phone))
	require.True(t, d.DispatchNotification(b, nil))
	d.Stop()

	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, rec.sent)
	assert.Empty(t, rec.failed)
}

func TestDispatcherMarksFailedPush(t *testing.T) {
	rec := &fakeRecorder{}
	d := NewNotificationDispatcher(rec, 1, nil)
	d.SetPushProvider(failingPush{})

	n := newNotif()
	d.DispatchNotification(n, phone)
	d.Stop()

	assert.Equal(t, []uuid.UUID{n.ID}, rec.failed)
	assert.Empty(t, rec.sent)
}

func TestDispatcherWithoutProviderStillMarksSent(t *testing.T) {
	rec := &fakeRecorder{}
	d := NewNotificationDispatcher(rec, 1, nil)

	n := newNotif()
	d.DispatchNotification(n, phone)
	d.Stop()

	assert.Equal(t, []uuid.UUID{n.ID}, rec.sent)
}

func TestDispatcherRejectsAfterStop(t *testing.T) {
	d := NewNotificationDispatcher(&fakeRecorder{}, 1, nil)
	d.Stop()
	d.Stop()

	assert.False(t, d.DispatchNotification(newNotif(), phone))
}
