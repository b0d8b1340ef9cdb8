package models

import (
	"errors"
	"testing"
)

func TestRoleOrdering(t *testing.T) {
	if !(RoleStudent.Order() < RoleTeacher.Order() && RoleTeacher.Order() < RoleAdmin.Order()) {
		t.Fatalf("role ordering broken: student=%d teacher=%d admin=%d",
			RoleStudent.Order(), RoleTeacher.Order(), RoleAdmin.Order())
	}
	if Role("moderator").Order() != -1 {
		t.Errorf("unknown role should order below student, got %d", Role("moderator").Order())
	}
	if Role("").Order() != -1 {
		t.Errorf("empty role should order below student, got %d", Role("").Order())
	}
}

func TestRoleAtLeast(t *testing.T) {
	cases := []struct {
		role Role
		min  Role
		want bool
	}{
		{RoleStudent, RoleStudent, true},
		{RoleStudent, RoleTeacher, false},
		{RoleTeacher, RoleTeacher, true},
		{RoleTeacher, RoleAdmin, false},
		{RoleAdmin, RoleTeacher, true},
		{RoleAdmin, RoleAdmin, true},
		{Role(""), RoleStudent, false},
		{Role("owner"), RoleStudent, false},
	}
	for _, c := range cases {
		if got := c.role.AtLeast(c.min); got != c.want {
			t.Errorf("%q.AtLeast(%q) = %v, want %v", c.role, c.min, got, c.want)
		}
	}
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"student", "teacher", "admin"} {
		r, err := ParseRole(valid)
		if err != nil {
			t.Errorf("ParseRole(%q) err: %v", valid, err)
		}
		if r.String() != valid {
			t.Errorf("ParseRole(%q) = %q", valid, r)
		}
	}
	for _, invalid := range []string{"", "Admin", "owner", "TEACHER", "superuser"} {
		if _, err := ParseRole(invalid); !errors.Is(err, ErrInvalidRole) {
			t.Errorf("ParseRole(%q) expected ErrInvalidRole, got %v", invalid, err)
		}
	}
}

func TestMembershipTableName(t *testing.T) {
	if got := (Membership{}).TableName(); got != "lib_membership" {
		t.Errorf("TableName() = %s, want lib_membership", got)
	}
}
