package data

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-camp/portal-api/internal/domain/model"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
)

// NotificationRepo provides database operations for user notifications.
type NotificationRepo struct {
	Pool *pgxpool.Pool
}

// NewNotificationRepo creates a new NotificationRepo.
func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{Pool: pool}
}

const notificationColumns = `id, user_id, title, body, kind, read, created_at`

// Create inserts a notification for a user.
func (r *NotificationRepo) Create(ctx context.Context, req *model.CreateNotificationRequest) (model.Notification, error) {
	if err := req.Validate(); err != nil {
		return model.Notification{}, apperrors.Validation(err.Error())
	}
	kind := req.Kind
	if kind == "" {
		kind = "info"
	}
	rows, err := r.Pool.Query(ctx, `
		INSERT INTO notifications (user_id, title, body, kind)
		VALUES ($1, $2, $3, $4)
		RETURNING `+notificationColumns,
		req.UserID, req.Title, req.Body, kind)
	if err != nil {
		return model.Notification{}, apperrors.MapDBError(err)
	}
	n, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[model.Notification])
	if err != nil {
		return model.Notification{}, apperrors.MapDBError(err)
	}
	return n, nil
}

// List returns the user's notifications, newest first.
func (r *NotificationRepo) List(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.Pool.Query(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[model.Notification])
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// UnreadCount returns how many notifications the user has not read yet.
func (r *NotificationRepo) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read`, userID).Scan(&count)
	if err != nil {
		return 0, apperrors.MapDBError(err)
	}
	return count, nil
}

// MarkRead marks one of the user's notifications as read.
func (r *NotificationRepo) MarkRead(ctx context.Context, id int64, userID string) error {
	tag, err := r.Pool.Exec(ctx,
		`UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return apperrors.MapDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("notification not found")
	}
	return nil
}

// MarkAllRead marks every unread notification for the user as read.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.Pool.Exec(ctx,
		`UPDATE notifications SET read = true WHERE user_id = $1 AND NOT read`, userID)
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}
