//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
)

// ScheduleBlock is one recurring block in the weekly schedule grid.
// Weekday follows time.Weekday (Sunday = 0). Start and end are minutes from
// midnight, end exclusive.
type ScheduleBlock struct {
	ID           int64     `json:"id"            db:"id"`
	UserID       string    `json:"user_id"       db:"user_id"`
	Title        string    `json:"title"         db:"title"`
	Weekday      int       `json:"weekday"       db:"weekday"`
	StartMinutes int       `json:"start_minutes" db:"start_minutes"`
	EndMinutes   int       `json:"end_minutes"   db:"end_minutes"`
	Color        string    `json:"color"         db:"color"`
	CreatedAt    time.Time `json:"created_at"    db:"created_at"`
}

// Overlaps reports whether two blocks collide on the same weekday.
func (b ScheduleBlock) Overlaps(other ScheduleBlock) bool {
	if b.Weekday != other.Weekday {
		return false
	}
	return b.StartMinutes < other.EndMinutes && other.StartMinutes < b.EndMinutes
}

// CreateScheduleBlockRequest represents parameters to create a ScheduleBlock.
type CreateScheduleBlockRequest struct {
	Title        string `json:"title"`
	Weekday      int    `json:"weekday"`
	StartMinutes int    `json:"start_minutes"`
	EndMinutes   int    `json:"end_minutes"`
	Color        string `json:"color"`
}

// Validate validates CreateScheduleBlockRequest.
func (r *CreateScheduleBlockRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required and cannot be empty")
	}
	if r.Weekday < 0 || r.Weekday > 6 {
		return errors.New("weekday must be between 0 (Sunday) and 6 (Saturday)")
	}
	if r.StartMinutes < 0 || r.StartMinutes >= 24*60 {
		return errors.New("start_minutes must be within the day")
	}
	if r.EndMinutes <= r.StartMinutes || r.EndMinutes > 24*60 {
		return errors.New("end_minutes must be after start_minutes and within the day")
	}
	return nil
}

// Block converts the request into a ScheduleBlock for overlap checks.
func (r *CreateScheduleBlockRequest) Block() ScheduleBlock {
	return ScheduleBlock{
		Title:        strings.TrimSpace(r.Title),
		Weekday:      r.Weekday,
		StartMinutes: r.StartMinutes,
		EndMinutes:   r.EndMinutes,
		Color:        r.Color,
	}
}
