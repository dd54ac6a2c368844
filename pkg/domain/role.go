package domain

import (
	dErrors "registrar/pkg/domain-errors"
)

// Role is the closed set of caller roles. The zero value is not a valid role.
type Role uint8

const (
	RoleStudent Role = iota + 1
	RoleStaff
)

const (
	roleStudentName = "student"
	roleStaffName   = "staff"
)

// ParseRole maps the wire name of a role onto the closed variant.
func ParseRole(s string) (Role, error) {
	switch s {
	case roleStudentName:
		return RoleStudent, nil
	case roleStaffName:
		return RoleStaff, nil
	default:
		return 0, dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
}

func (r Role) String() string {
	switch r {
	case RoleStudent:
		return roleStudentName
	case RoleStaff:
		return roleStaffName
	default:
		return "unknown"
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleStaff:
		return true
	default:
		return false
	}
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
