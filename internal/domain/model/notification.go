//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
)

// Notification is one entry in a user's notification bell.
type Notification struct {
	ID        int64     `json:"id"         db:"id"`
	UserID    string    `json:"user_id"    db:"user_id"`
	Title     string    `json:"title"      db:"title"`
	Body      string    `json:"body"       db:"body"`
	Kind      string    `json:"kind"       db:"kind"`
	Read      bool      `json:"read"       db:"read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateNotificationRequest represents parameters to create a Notification.
type CreateNotificationRequest struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Kind   string `json:"kind"`
}

// Validate validates CreateNotificationRequest.
func (r *CreateNotificationRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required and cannot be empty")
	}
	return nil
}
