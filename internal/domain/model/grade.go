//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
)

// gradePoints maps letter grades onto the 4.0 scale.
var gradePoints = map[string]float64{
	"A":  4.0,
	"A-": 3.7,
	"B+": 3.3,
	"B":  3.0,
	"B-": 2.7,
	"C+": 2.3,
	"C":  2.0,
	"C-": 1.7,
	"D+": 1.3,
	"D":  1.0,
	"F":  0.0,
}

// GradePoints returns the 4.0-scale points for a letter grade.
func GradePoints(grade string) (float64, bool) {
	pts, ok := gradePoints[strings.ToUpper(strings.TrimSpace(grade))]
	return pts, ok
}

// GradeEntry is one course result in a student's GPA tracker.
type GradeEntry struct {
	ID          int64     `json:"id"           db:"id"`
	UserID      string    `json:"user_id"      db:"user_id"`
	CourseName  string    `json:"course_name"  db:"course_name"`
	Credits     int       `json:"credits"      db:"credits"`
	Grade       string    `json:"grade"        db:"grade"`
	GradePoints float64   `json:"grade_points" db:"grade_points"`
	CreatedAt   time.Time `json:"created_at"   db:"created_at"`
}

// CreateGradeEntryRequest represents parameters to create a GradeEntry.
// GradePoints is derived from Grade; clients never supply it.
type CreateGradeEntryRequest struct {
	CourseName string `json:"course_name"`
	Credits    int    `json:"credits"`
	Grade      string `json:"grade"`
}

// Validate validates CreateGradeEntryRequest.
func (r *CreateGradeEntryRequest) Validate() error {
	if strings.TrimSpace(r.CourseName) == "" {
		return errors.New("course_name is required and cannot be empty")
	}
	if r.Credits <= 0 {
		return errors.New("credits must be > 0")
	}
	if _, ok := GradePoints(r.Grade); !ok {
		return errors.New("invalid letter grade")
	}
	return nil
}

// ComputeGPA returns the credit-hour weighted GPA of the entries, 0 when
// there are none.
func ComputeGPA(entries []GradeEntry) float64 {
	var totalCredits, totalPoints float64
	for _, e := range entries {
		totalCredits += float64(e.Credits)
		totalPoints += float64(e.Credits) * e.GradePoints
	}
	if totalCredits == 0 {
		return 0
	}
	return totalPoints / totalCredits
}
