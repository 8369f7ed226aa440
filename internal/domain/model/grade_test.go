package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeGPA(t *testing.T) {
	t.Run("credit weighted", func(t *testing.T) {
		entries := []GradeEntry{
			{CourseName: "Mathematics 101", Credits: 3, Grade: "A", GradePoints: 4.0},
			{CourseName: "Computer Science", Credits: 4, Grade: "B+", GradePoints: 3.3},
			{CourseName: "Physics", Credits: 3, Grade: "A-", GradePoints: 3.7},
		}
		// (3*4.0 + 4*3.3 + 3*3.7) / 10
		assert.InDelta(t, 3.63, ComputeGPA(entries), 0.001)
	})

	t.Run("no entries", func(t *testing.T) {
		assert.Zero(t, ComputeGPA(nil))
	})
}

func TestGradePoints(t *testing.T) {
	pts, ok := GradePoints("a-")
	require.True(t, ok, "letter grades are case-insensitive")
	assert.Equal(t, 3.7, pts)

	_, ok = GradePoints("E")
	assert.False(t, ok)
}

func TestCreateGradeEntryRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateGradeEntryRequest
		wantErr bool
	}{
		{"valid", CreateGradeEntryRequest{CourseName: "Calc", Credits: 3, Grade: "B"}, false},
		{"missing course", CreateGradeEntryRequest{Credits: 3, Grade: "B"}, true},
		{"zero credits", CreateGradeEntryRequest{CourseName: "Calc", Grade: "B"}, true},
		{"bogus grade", CreateGradeEntryRequest{CourseName: "Calc", Credits: 3, Grade: "Z"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
