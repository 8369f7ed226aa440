package authroles

import (
	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
)

// GroupMapper maps institutional directory groups onto portal roles by simple
// string membership. Anyone outside the configured groups is a student.
type GroupMapper struct {
	AdminGroup   string
	TeacherGroup string
}

func (m GroupMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	for _, g := range groups {
		if m.TeacherGroup != "" && g == m.TeacherGroup {
			return domainauth.RoleTeacher
		}
	}
	return domainauth.RoleStudent
}
