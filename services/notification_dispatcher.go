package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"zealAPI/internal/types/notification"
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

// StatusRecorder persists the delivery outcome of a notification.
type StatusRecorder interface {
	MarkSent(ctx context.Context, notificationID uuid.UUID) error
	MarkFailed(ctx context.Context, notificationID uuid.UUID, reason error) error
}

// NotificationDispatcher pushes stored notifications from a fixed worker pool.
type NotificationDispatcher struct {
	recorder     StatusRecorder
	log          *zap.Logger
	workers      int
	jobQueue     chan *DispatchJob
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
	mu           sync.RWMutex
	pushProvider PushNotificationProvider
}

type DispatchJob struct {
	Notification *notification.Notification
	Tokens       []notification.DeviceToken
}

func NewNotificationDispatcher(recorder StatusRecorder, workers int, log *zap.Logger) *NotificationDispatcher {
	if workers <= 0 {
		workers = 5
	}
	if log == nil {
		log = zap.NewNop()
	}
	d := &NotificationDispatcher{
		recorder: recorder,
		log:      log,
		workers:  workers,
		jobQueue: make(chan *DispatchJob, 100),
		stopChan: make(chan struct{}),
	}

	d.startWorkers()
	return d
}

func (d *NotificationDispatcher) SetPushProvider(provider PushNotificationProvider) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pushProvider = provider
}

func (d *NotificationDispatcher) provider() PushNotificationProvider {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pushProvider
}

func (d *NotificationDispatcher) startWorkers() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

func (d *NotificationDispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.jobQueue:
			d.processJob(job)
		case <-d.stopChan:
			// drain what was queued before Stop
			for {
				select {
				case job := <-d.jobQueue:
					d.processJob(job)
				default:
					return
				}
			}
		}
	}
}

func (d *NotificationDispatcher) processJob(job *DispatchJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notif := job.Notification
	provider := d.provider()

	if len(job.Tokens) > 0 && provider != nil {
		if err := provider.SendPush(ctx, job.Tokens, notif.Title, notif.Body, notif.Data); err != nil {
			d.log.Warn("push failed",
				zap.String("notification_id", notif.ID.String()),
				zap.String("user_id", notif.UserID.String()),
				zap.Error(err),
			)
			notificationsDispatched.WithLabelValues("failed").Inc()
			if err := d.recorder.MarkFailed(ctx, notif.ID, err); err != nil {
				d.log.Error("failed to mark notification failed", zap.String("notification_id", notif.ID.String()), zap.Error(err))
			}
			return
		}
		notificationsDispatched.WithLabelValues("sent").Inc()
	} else {
		d.log.Debug("skipping push",
			zap.String("notification_id", notif.ID.String()),
			zap.Int("tokens", len(job.Tokens)),
			zap.Bool("provider_set", provider != nil),
		)
		notificationsDispatched.WithLabelValues("skipped").Inc()
	}

	if err := d.recorder.MarkSent(ctx, notif.ID); err != nil {
		d.log.Error("failed to mark notification sent", zap.String("notification_id", notif.ID.String()), zap.Error(err))
	}
}

// DispatchNotification queues a job. It gives up after five seconds if the queue stays full.
func (d *NotificationDispatcher) DispatchNotification(notif *notification.Notification, tokens []notification.DeviceToken) bool {
	job := &DispatchJob{Notification: notif, Tokens: tokens}

	select {
	case <-d.stopChan:
		d.log.Warn("dispatcher stopped, dropping notification", zap.String("notification_id", notif.ID.String()))
		return false
	default:
	}

	select {
	case d.jobQueue <- job:
		return true
	case <-time.After(5 * time.Second):
		d.log.Warn("notification queue full", zap.String("notification_id", notif.ID.String()))
		return false
	}
}

// Stop drains the queue and waits for the workers.
func (d *NotificationDispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.log.Info("stopping notification dispatcher")
		close(d.stopChan)
	})
	d.wg.Wait()
}

// MockPushProvider logs instead of pushing. Used when FCM credentials are absent.
type MockPushProvider struct {
	Log *zap.Logger
}

func (m *MockPushProvider) SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error {
	if m.Log != nil {
		m.Log.Info("mock push", zap.Int("devices", len(tokens)), zap.String("title", title), zap.String("body", body))
	}
	return nil
}
