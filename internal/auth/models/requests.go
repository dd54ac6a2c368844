package models

import (
	"regexp"
	"strings"

	dErrors "registrar/pkg/domain-errors"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

const maxFieldLength = 200

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// StudentSignupRequest creates a student account and its enrollment record.
type StudentSignupRequest struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Address   string `json:"address"`
	StudyYear int    `json:"studyYear"`
}

func (r *StudentSignupRequest) Normalize() {
	if r == nil {
		return
	}
	r.StudentID = strings.TrimSpace(r.StudentID)
	r.Name = strings.TrimSpace(r.Name)
	r.Email = normalizeEmail(r.Email)
	r.Address = strings.TrimSpace(r.Address)
}

// Follows validation order: Size -> Required -> Syntax -> Semantic.
func (r *StudentSignupRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := checkSizes(r.StudentID, r.Name, r.Email, r.Address); err != nil {
		return err
	}
	if r.StudentID == "" || r.Name == "" || r.Email == "" || r.Password == "" || r.Address == "" || r.StudyYear == 0 {
		return dErrors.New(dErrors.CodeValidation, "all fields are required")
	}
	if !emailPattern.MatchString(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "invalid email format")
	}
	if r.StudyYear < 1 {
		return dErrors.New(dErrors.CodeValidation, "study year must be at least 1")
	}
	return checkPassword(r.Password)
}

// StaffSignupRequest creates a staff account.
type StaffSignupRequest struct {
	StaffID  string `json:"staffId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
}

func (r *StaffSignupRequest) Normalize() {
	if r == nil {
		return
	}
	r.StaffID = strings.TrimSpace(r.StaffID)
	r.Name = strings.TrimSpace(r.Name)
	r.Email = normalizeEmail(r.Email)
	r.Address = strings.TrimSpace(r.Address)
}

func (r *StaffSignupRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := checkSizes(r.StaffID, r.Name, r.Email, r.Address); err != nil {
		return err
	}
	if r.StaffID == "" || r.Name == "" || r.Email == "" || r.Password == "" || r.Address == "" {
		return dErrors.New(dErrors.CodeValidation, "all fields are required")
	}
	if !emailPattern.MatchString(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "invalid email format")
	}
	return checkPassword(r.Password)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	if r == nil {
		return
	}
	r.Email = normalizeEmail(r.Email)
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if len(r.Email) > maxFieldLength || len(r.Password) > 72 {
		return dErrors.New(dErrors.CodeValidation, "email or password too long")
	}
	if r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "email and password are required")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkSizes(fields ...string) error {
	for _, f := range fields {
		if len(f) > maxFieldLength {
			return dErrors.New(dErrors.CodeValidation, "fields must be 200 characters or less")
		}
	}
	return nil
}

// checkPassword enforces the length bounds. bcrypt ignores bytes past 72.
func checkPassword(password string) error {
	if len(password) < MinPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 6 characters")
	}
	if len(password) > 72 {
		return dErrors.New(dErrors.CodeValidation, "password must be 72 bytes or less")
	}
	return nil
}
