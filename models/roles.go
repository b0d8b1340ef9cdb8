package models

import (
	"errors"
	"fmt"
)

// Role is the community/site role enum. The ordering is total:
// student(0) < teacher(1) < admin(2). Anything else is invalid and sorts
// below student, so unknown values never pass a gate.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

var ErrInvalidRole = errors.New("invalid role")

var roleOrder = map[Role]int{
	RoleStudent: 0,
	RoleTeacher: 1,
	RoleAdmin:   2,
}

// ParseRole validates a free-form role string from a request.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleOrder[r]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Order returns the role's position in the ordering, -1 for unknown values
// (and therefore for missing memberships).
func (r Role) Order() int {
	if o, ok := roleOrder[r]; ok {
		return o
	}
	return -1
}

// AtLeast reports whether r grants the privileges of min.
func (r Role) AtLeast(min Role) bool {
	return r.Order() >= 0 && r.Order() >= min.Order()
}

func (r Role) String() string {
	return string(r)
}
