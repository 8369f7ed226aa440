//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"time"
)

// StudySessionKind distinguishes focus intervals from breaks.
type StudySessionKind string

const (
	StudySessionKindStudy StudySessionKind = "study"
	StudySessionKindBreak StudySessionKind = "break"
)

// Valid reports whether the study session kind is supported.
func (k StudySessionKind) Valid() bool {
	return k == StudySessionKindStudy || k == StudySessionKindBreak
}

// StudySession is one completed pomodoro interval.
type StudySession struct {
	ID              int64            `json:"id"               db:"id"`
	UserID          string           `json:"user_id"          db:"user_id"`
	Kind            StudySessionKind `json:"kind"             db:"kind"`
	StartedAt       time.Time        `json:"started_at"       db:"started_at"`
	EndedAt         *time.Time       `json:"ended_at"         db:"ended_at"`
	PlannedMinutes  int              `json:"planned_minutes"  db:"planned_minutes"`
	ElapsedMinutes  int              `json:"elapsed_minutes"  db:"elapsed_minutes"`
}

// StartStudySessionRequest represents parameters to start a StudySession.
type StartStudySessionRequest struct {
	Kind           StudySessionKind `json:"kind"`
	PlannedMinutes int              `json:"planned_minutes"`
}

// Validate validates StartStudySessionRequest.
func (r *StartStudySessionRequest) Validate() error {
	if r.Kind == "" {
		r.Kind = StudySessionKindStudy
	}
	if !r.Kind.Valid() {
		return errors.New("invalid session kind")
	}
	if r.PlannedMinutes <= 0 || r.PlannedMinutes > 12*60 {
		return errors.New("planned_minutes must be between 1 and 720")
	}
	return nil
}

// StudyDayTotal aggregates completed study minutes for one calendar day.
type StudyDayTotal struct {
	Day     time.Time `json:"day"     db:"day"`
	Minutes int       `json:"minutes" db:"minutes"`
}

// StudyStreak counts consecutive days ending today (or yesterday, when today
// has no finished session yet) with at least one completed study session.
// Totals must be sorted by day ascending; break sessions are excluded by the
// query that produces them.
func StudyStreak(totals []StudyDayTotal, today time.Time) int {
	days := make(map[string]bool, len(totals))
	for _, t := range totals {
		if t.Minutes > 0 {
			days[t.Day.Format("2006-01-02")] = true
		}
	}

	day := today
	if !days[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for days[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
