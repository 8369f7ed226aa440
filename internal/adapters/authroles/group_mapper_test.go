package authroles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
)

func TestGroupMapper(t *testing.T) {
	m := GroupMapper{AdminGroup: "portal-admins", TeacherGroup: "faculty"}

	tests := []struct {
		name   string
		groups []string
		want   domainauth.Role
	}{
		{"admin group wins", []string{"faculty", "portal-admins"}, domainauth.RoleAdmin},
		{"teacher group", []string{"faculty", "chess-club"}, domainauth.RoleTeacher},
		{"no mapped groups", []string{"chess-club"}, domainauth.RoleStudent},
		{"empty groups", nil, domainauth.RoleStudent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Map(tt.groups))
		})
	}

	t.Run("unconfigured mapper defaults to student", func(t *testing.T) {
		assert.Equal(t, domainauth.RoleStudent, GroupMapper{}.Map([]string{"anything"}))
	})
}
