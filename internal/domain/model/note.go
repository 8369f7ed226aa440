//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
)

// Note is a private, server-persisted user note.
type Note struct {
	ID        int64     `json:"id"         db:"id"`
	UserID    string    `json:"user_id"    db:"user_id"`
	Title     string    `json:"title"      db:"title"`
	Body      string    `json:"body"       db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateNoteRequest represents parameters to create a Note.
type CreateNoteRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Validate validates CreateNoteRequest.
func (r *CreateNoteRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" && strings.TrimSpace(r.Body) == "" {
		return errors.New("a note needs a title or a body")
	}
	return nil
}

// UpdateNoteRequest represents parameters to update a Note.
type UpdateNoteRequest struct {
	Title *string `json:"title,omitempty"`
	Body  *string `json:"body,omitempty"`
}

// HasUpdates reports whether any field is set in UpdateNoteRequest.
func (r *UpdateNoteRequest) HasUpdates() bool {
	return r.Title != nil || r.Body != nil
}

// Validate validates UpdateNoteRequest.
func (r *UpdateNoteRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	return nil
}
