package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduleBlockOverlaps(t *testing.T) {
	base := ScheduleBlock{Weekday: 1, StartMinutes: 9 * 60, EndMinutes: 10 * 60}

	tests := []struct {
		name  string
		other ScheduleBlock
		want  bool
	}{
		{"same slot", ScheduleBlock{Weekday: 1, StartMinutes: 9 * 60, EndMinutes: 10 * 60}, true},
		{"partial overlap", ScheduleBlock{Weekday: 1, StartMinutes: 9*60 + 30, EndMinutes: 11 * 60}, true},
		{"contained", ScheduleBlock{Weekday: 1, StartMinutes: 9*60 + 15, EndMinutes: 9*60 + 45}, true},
		{"back to back", ScheduleBlock{Weekday: 1, StartMinutes: 10 * 60, EndMinutes: 11 * 60}, false},
		{"different day", ScheduleBlock{Weekday: 2, StartMinutes: 9 * 60, EndMinutes: 10 * 60}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base))
		})
	}
}

func TestCreateScheduleBlockRequestValidate(t *testing.T) {
	valid := CreateScheduleBlockRequest{Title: "Algorithms", Weekday: 1, StartMinutes: 540, EndMinutes: 600}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name string
		mut  func(*CreateScheduleBlockRequest)
	}{
		{"empty title", func(r *CreateScheduleBlockRequest) { r.Title = "  " }},
		{"bad weekday", func(r *CreateScheduleBlockRequest) { r.Weekday = 7 }},
		{"negative start", func(r *CreateScheduleBlockRequest) { r.StartMinutes = -1 }},
		{"end before start", func(r *CreateScheduleBlockRequest) { r.EndMinutes = r.StartMinutes }},
		{"end past midnight", func(r *CreateScheduleBlockRequest) { r.EndMinutes = 24*60 + 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mut(&req)
			assert.Error(t, req.Validate())
		})
	}
}
