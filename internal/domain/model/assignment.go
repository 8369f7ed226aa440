//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
)

// AssignmentStatus tracks a recipient's progress on an assignment.
type AssignmentStatus string

const (
	AssignmentStatusPending   AssignmentStatus = "pending"
	AssignmentStatusSubmitted AssignmentStatus = "submitted"
	AssignmentStatusGraded    AssignmentStatus = "graded"
)

// Valid reports whether the assignment status is supported.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentStatusPending, AssignmentStatusSubmitted, AssignmentStatusGraded:
		return true
	default:
		return false
	}
}

// Assignment represents coursework handed out to students.
type Assignment struct {
	ID          int64      `json:"id"                 db:"id"`
	Title       string     `json:"title"              db:"title"`
	Description string     `json:"description"        db:"description"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	CourseID    int64      `json:"course_id"          db:"course_id"`
	CreatedBy   string     `json:"created_by"         db:"created_by"`
	FileURL     *string    `json:"file_url,omitempty" db:"file_url"`
	CreatedAt   time.Time  `json:"created_at"         db:"created_at"`
}

// AssignmentRecipient is one student's copy of an assignment.
type AssignmentRecipient struct {
	AssignmentID int64            `json:"assignment_id" db:"assignment_id"`
	StudentID    string           `json:"student_id"    db:"student_id"`
	Status       AssignmentStatus `json:"status"        db:"status"`
	UpdatedAt    time.Time        `json:"updated_at"    db:"updated_at"`
}

// AssignmentWithStatus is an assignment joined with the viewing student's
// recipient row.
type AssignmentWithStatus struct {
	Assignment
	Status AssignmentStatus `json:"status" db:"status"`
}

// CreateAssignmentRequest represents parameters to create an Assignment and
// fan it out to recipients.
type CreateAssignmentRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CourseID    int64      `json:"course_id"`
	FileURL     *string    `json:"file_url,omitempty"`
	StudentIDs  []string   `json:"student_ids"`
}

// Validate validates CreateAssignmentRequest.
func (r *CreateAssignmentRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required and cannot be empty")
	}
	if r.CourseID <= 0 {
		return errors.New("course_id is required")
	}
	if len(r.StudentIDs) == 0 {
		return errors.New("at least one recipient is required")
	}
	for _, id := range r.StudentIDs {
		if strings.TrimSpace(id) == "" {
			return errors.New("student ids cannot be empty")
		}
	}
	return nil
}
