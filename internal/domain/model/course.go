//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxCourseNameLen = 255

// Course represents a taught course.
type Course struct {
	ID           int64     `json:"id"            db:"id"`
	Name         string    `json:"name"          db:"name"`
	Description  string    `json:"description"   db:"description"`
	Public       bool      `json:"public"        db:"public"`
	CreatedBy    string    `json:"created_by"    db:"created_by"`
	InstructorID string    `json:"instructor_id" db:"instructor_id"`
	CreatedAt    time.Time `json:"created_at"    db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"    db:"updated_at"`
}

// CreateCourseRequest represents parameters to create a Course.
type CreateCourseRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      *bool  `json:"public,omitempty"`
}

// Validate validates CreateCourseRequest.
func (r *CreateCourseRequest) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return errors.New("name is required and cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxCourseNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	return nil
}

// UpdateCourseRequest represents parameters to update a Course.
type UpdateCourseRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Public      *bool   `json:"public,omitempty"`
}

// HasUpdates reports whether any field is set in UpdateCourseRequest.
func (r *UpdateCourseRequest) HasUpdates() bool {
	return r.Name != nil || r.Description != nil || r.Public != nil
}

// Validate validates UpdateCourseRequest.
func (r *UpdateCourseRequest) Validate() error {
	if !r.HasUpdates() {
		return errors.New("at least one field must be updated")
	}
	if r.Name != nil {
		n := strings.TrimSpace(*r.Name)
		if n == "" {
			return errors.New("name cannot be empty")
		}
		if utf8.RuneCountInString(n) > maxCourseNameLen {
			return errors.New("name cannot exceed 255 characters")
		}
	}
	return nil
}

// MaterialType enumerates the supported course material kinds.
type MaterialType string

const (
	MaterialTypeNote MaterialType = "note"
	MaterialTypeFile MaterialType = "file"
	MaterialTypeLink MaterialType = "link"
)

// Valid reports whether the material type is supported.
func (t MaterialType) Valid() bool {
	switch t {
	case MaterialTypeNote, MaterialTypeFile, MaterialTypeLink:
		return true
	default:
		return false
	}
}

// CourseMaterial represents one teaching material attached to a course.
type CourseMaterial struct {
	ID        int64        `json:"id"                 db:"id"`
	CourseID  int64        `json:"course_id"          db:"course_id"`
	Name      string       `json:"name"               db:"name"`
	Type      MaterialType `json:"type"               db:"type"`
	Content   *string      `json:"content,omitempty"  db:"content"`
	FileURL   *string      `json:"file_url,omitempty" db:"file_url"`
	UserID    string       `json:"user_id"            db:"user_id"`
	CreatedAt time.Time    `json:"created_at"         db:"created_at"`
}

// CreateMaterialRequest represents parameters to create a CourseMaterial.
// For note materials Content carries the body; for file materials FileURL is
// filled in after the object-store upload.
type CreateMaterialRequest struct {
	CourseID int64        `json:"course_id"`
	Name     string       `json:"name"`
	Type     MaterialType `json:"type"`
	Content  *string      `json:"content,omitempty"`
	FileURL  *string      `json:"file_url,omitempty"`
}

// Validate validates CreateMaterialRequest.
func (r *CreateMaterialRequest) Validate() error {
	if r.CourseID <= 0 {
		return errors.New("course_id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required and cannot be empty")
	}
	if !r.Type.Valid() {
		return errors.New("invalid material type")
	}
	if r.Type == MaterialTypeNote && (r.Content == nil || strings.TrimSpace(*r.Content) == "") {
		return errors.New("content is required for note materials")
	}
	return nil
}
