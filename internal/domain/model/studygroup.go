//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
)

// StudyGroup represents a student-run study group.
type StudyGroup struct {
	ID          int64     `json:"id"          db:"id"`
	Name        string    `json:"name"        db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedBy   string    `json:"created_by"  db:"created_by"`
	InviteCode  string    `json:"invite_code" db:"invite_code"`
	CreatedAt   time.Time `json:"created_at"  db:"created_at"`
	// MemberCount is populated by list queries.
	MemberCount int `json:"member_count" db:"member_count"`
}

// StudyGroupMember is one membership row.
type StudyGroupMember struct {
	GroupID  int64     `json:"group_id"  db:"group_id"`
	UserID   string    `json:"user_id"   db:"user_id"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}

// CreateStudyGroupRequest represents parameters to create a StudyGroup.
// The creator automatically becomes the first member.
type CreateStudyGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate validates CreateStudyGroupRequest.
func (r *CreateStudyGroupRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required and cannot be empty")
	}
	return nil
}
