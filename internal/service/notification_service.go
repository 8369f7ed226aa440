package service

import (
	"context"
	"log/slog"

	"github.com/pulse-camp/portal-api/internal/data"
	"github.com/pulse-camp/portal-api/internal/domain/model"
)

// NotificationPusher delivers realtime events to a user's open connections.
// Delivery is best-effort; missed events are caught up from the list.
type NotificationPusher interface {
	Publish(userID, eventType string, payload any)
}

// Realtime event names pushed alongside notification writes.
const (
	pushEventNotification = "notification"
	pushEventUnreadCount  = "unread_count"
)

// NotificationServiceOptions groups dependencies for NotificationService.
type NotificationServiceOptions struct {
	Repo   *data.NotificationRepo
	Pusher NotificationPusher
	Logger *slog.Logger
}

// NotificationService writes notifications and pushes them to connected
// browsers.
type NotificationService struct {
	repo   *data.NotificationRepo
	pusher NotificationPusher
	logger *slog.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(opts NotificationServiceOptions) *NotificationService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{
		repo:   opts.Repo,
		pusher: opts.Pusher,
		logger: logger.With("component", "notification_service"),
	}
}

// Create stores a notification and pushes it plus the new unread total.
func (s *NotificationService) Create(ctx context.Context, req *model.CreateNotificationRequest) (model.Notification, error) {
	n, err := s.repo.Create(ctx, req)
	if err != nil {
		return model.Notification{}, err
	}
	s.push(ctx, n)
	return n, nil
}

// NotifyMany fans a notification out to several recipients. Failures are
// logged per recipient and never fail the caller; notifications are advisory.
func (s *NotificationService) NotifyMany(ctx context.Context, userIDs []string, title, kind string) {
	for _, userID := range userIDs {
		_, err := s.Create(ctx, &model.CreateNotificationRequest{
			UserID: userID,
			Title:  title,
			Kind:   kind,
		})
		if err != nil {
			s.logger.Warn("notification write failed", "user_id", userID, "error", err)
		}
	}
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	return s.repo.List(ctx, userID, limit)
}

// UnreadCount returns the user's unread total.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// MarkRead marks one notification read and pushes the new unread total.
func (s *NotificationService) MarkRead(ctx context.Context, id int64, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		return err
	}
	s.pushUnread(ctx, userID)
	return nil
}

// MarkAllRead marks everything read and pushes the zeroed unread total.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return err
	}
	s.pushUnread(ctx, userID)
	return nil
}

func (s *NotificationService) push(ctx context.Context, n model.Notification) {
	if s.pusher == nil {
		return
	}
	s.pusher.Publish(n.UserID, pushEventNotification, n)
	s.pushUnread(ctx, n.UserID)
}

func (s *NotificationService) pushUnread(ctx context.Context, userID string) {
	if s.pusher == nil {
		return
	}
	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		s.logger.Warn("unread count failed", "user_id", userID, "error", err)
		return
	}
	s.pusher.Publish(userID, pushEventUnreadCount, count)
}
