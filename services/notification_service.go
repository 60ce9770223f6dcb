package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"zealAPI/internal/types/notification"
)

// NotificationService stores notifications and hands them to the dispatcher.
// Sending is fire-and-forget: failures are logged, never returned to callers.
type NotificationService struct {
	db         *pgxpool.Pool
	dispatcher *NotificationDispatcher
	log        *zap.Logger
}

func NewNotificationService(db *pgxpool.Pool, workers int, log *zap.Logger) *NotificationService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &NotificationService{db: db, log: log}
	s.dispatcher = NewNotificationDispatcher(s, workers, log)
	return s
}

func (s *NotificationService) SetPushProvider(provider PushNotificationProvider) {
	s.dispatcher.SetPushProvider(provider)
}

func (s *NotificationService) Stop() {
	s.dispatcher.Stop()
}

func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, kind notification.NotificationType, title, body string, data map[string]any) {
	notif, err := s.create(ctx, userID, kind, title, body, data)
	if err != nil {
		s.log.Error("failed to store notification",
			zap.String("user_id", userID.String()),
			zap.String("type", string(kind)),
			zap.Error(err),
		)
		return
	}

	tokens, err := s.deviceTokens(ctx, userID)
	if err != nil {
		s.log.Warn("failed to load device tokens", zap.String("user_id", userID.String()), zap.Error(err))
	}

	s.dispatcher.DispatchNotification(notif, tokens)
}

// Broadcast notifies every user except the one given (usually the actor).
func (s *NotificationService) Broadcast(ctx context.Context, except uuid.UUID, kind notification.NotificationType, title, body string, data map[string]any) {
	rows, err := s.db.Query(ctx, `SELECT id FROM users WHERE id <> $1`, except)
	if err != nil {
		s.log.Error("failed to list broadcast recipients", zap.Error(err))
		return
	}

	var recipients []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			s.log.Warn("failed to scan broadcast recipient", zap.Error(err))
			continue
		}
		recipients = append(recipients, id)
	}
	rows.Close()

	for _, id := range recipients {
		s.Notify(ctx, id, kind, title, body, data)
	}
	s.log.Info("broadcast queued", zap.String("type", string(kind)), zap.Int("recipients", len(recipients)))
}

func (s *NotificationService) create(ctx context.Context, userID uuid.UUID, kind notification.NotificationType, title, body string, data map[string]any) (*notification.Notification, error) {
	if data == nil {
		data = map[string]any{}
	}
	notif := &notification.Notification{
		ID:     uuid.New(),
		UserID: userID,
		Type:   kind,
		Status: notification.StatusPending,
		Title:  title,
		Body:   body,
		Data:   data,
	}

	query := `
		INSERT INTO notifications (id, user_id, type, status, title, body, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := s.db.QueryRow(ctx, query,
		notif.ID, notif.UserID, notif.Type, notif.Status, notif.Title, notif.Body, notif.Data,
	).Scan(&notif.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert notification: %w", err)
	}
	return notif, nil
}

func (s *NotificationService) deviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `SELECT token, platform FROM device_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (s *NotificationService) RegisterDevice(ctx context.Context, clerkID string, req *notification.RegisterDeviceRequest) error {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO device_tokens (user_id, token, platform, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, token) DO UPDATE SET platform = EXCLUDED.platform, updated_at = NOW()
	`
	if _, err := s.db.Exec(ctx, query, userID, req.Token, req.Platform); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *NotificationService) MarkSent(ctx context.Context, notificationID uuid.UUID) error {
	_, err := s.db.Exec(ctx, `UPDATE notifications SET status = 'sent', sent_at = NOW() WHERE id = $1`, notificationID)
	return err
}

func (s *NotificationService) MarkFailed(ctx context.Context, notificationID uuid.UUID, reason error) error {
	query := `
		UPDATE notifications
		SET status = 'failed', failed_at = NOW(), failure_reason = $2
		WHERE id = $1
	`
	_, err := s.db.Exec(ctx, query, notificationID, reason.Error())
	return err
}
