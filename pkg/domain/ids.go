// Package domain holds the identity types shared by every module. Typed IDs
// keep a student identity from being passed where an account or course
// identity is expected.
package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	dErrors "registrar/pkg/domain-errors"
)

// UserID identifies an account (student or staff) and is the subject of access tokens.
type UserID uuid.UUID

// StudentID identifies a Student aggregate. A student's account shares the same UUID.
type StudentID uuid.UUID

// CourseID is the institution course code, e.g. "CS101". Stored upper-cased.
type CourseID string

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id StudentID) String() string { return uuid.UUID(id).String() }
func (id StudentID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id CourseID) String() string  { return string(id) }

// StudentOf converts an account identity into the identity of its Student aggregate.
func StudentOf(id UserID) StudentID { return StudentID(id) }

func NewUserID() UserID { return UserID(uuid.New()) }

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

func ParseStudentID(s string) (StudentID, error) {
	u, err := parseUUID(s, "student id")
	return StudentID(u), err
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}

var courseCodePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_-]{1,31}$`)

// ParseCourseID normalizes a course code (trim, upper-case) and validates it.
func ParseCourseID(s string) (CourseID, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if code == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "course id is required")
	}
	if !courseCodePattern.MatchString(code) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid course id")
	}
	return CourseID(code), nil
}

// MarshalText encodes the canonical UUID string so typed IDs render as
// strings in JSON instead of byte arrays.
func (id UserID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(b); err != nil {
		return err
	}
	*id = UserID(u)
	return nil
}

func (id StudentID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *StudentID) UnmarshalText(b []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(b); err != nil {
		return err
	}
	*id = StudentID(u)
	return nil
}
