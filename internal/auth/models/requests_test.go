package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "registrar/pkg/domain-errors"
)

func validStudentSignup() *StudentSignupRequest {
	return &StudentSignupRequest{
		StudentID: "S1001",
		Name:      "Ada Lovelace",
		Email:     "Ada@Example.EDU ",
		Password:  "analytical",
		Address:   "12 St James's Square",
		StudyYear: 2,
	}
}

func TestStudentSignupRequest(t *testing.T) {
	t.Run("normalizes email", func(t *testing.T) {
		req := validStudentSignup()
		req.Normalize()
		require.NoError(t, req.Validate())
		assert.Equal(t, "ada@example.edu", req.Email)
	})

	cases := []struct {
		name    string
		mutate  func(*StudentSignupRequest)
		message string
	}{
		{"missing field", func(r *StudentSignupRequest) { r.Address = "" }, "all fields are required"},
		{"missing study year", func(r *StudentSignupRequest) { r.StudyYear = 0 }, "all fields are required"},
		{"bad email", func(r *StudentSignupRequest) { r.Email = "ada.example.edu" }, "invalid email format"},
		{"negative study year", func(r *StudentSignupRequest) { r.StudyYear = -1 }, "study year must be at least 1"},
		{"short password", func(r *StudentSignupRequest) { r.Password = "abc" }, "password must be at least 6 characters"},
		{"oversized name", func(r *StudentSignupRequest) { r.Name = strings.Repeat("a", 201) }, "fields must be 200 characters or less"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validStudentSignup()
			tc.mutate(req)
			req.Normalize()
			err := req.Validate()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Equal(t, tc.message, dErrors.Message(err))
		})
	}
}

func TestStaffSignupRequest(t *testing.T) {
	req := &StaffSignupRequest{StaffID: "T01", Name: "Grace", Email: "grace@navy.mil", Password: "cobol!", Address: "Arlington"}
	req.Normalize()
	require.NoError(t, req.Validate())

	req.StaffID = ""
	assert.True(t, dErrors.HasCode(req.Validate(), dErrors.CodeValidation))
}

func TestLoginRequest(t *testing.T) {
	req := &LoginRequest{Email: "  GRACE@navy.mil", Password: "cobol!"}
	req.Normalize()
	require.NoError(t, req.Validate())
	assert.Equal(t, "grace@navy.mil", req.Email)

	req.Password = ""
	assert.True(t, dErrors.HasCode(req.Validate(), dErrors.CodeValidation))
}
