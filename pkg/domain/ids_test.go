package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "registrar/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseStudentID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseUserID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(validUUID), id)
		assert.Equal(t, StudentID(validUUID), StudentOf(id))
	})
}

func TestParseID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE students;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Empty string", "", true},
		{"Nil UUID", uuid.Nil.String(), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStudentID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestParseCourseID(t *testing.T) {
	t.Run("normalizes case and whitespace", func(t *testing.T) {
		id, err := ParseCourseID("  cs101 ")
		require.NoError(t, err)
		assert.Equal(t, CourseID("CS101"), id)
	})

	t.Run("accepts dashes and underscores", func(t *testing.T) {
		_, err := ParseCourseID("MATH-2_01")
		require.NoError(t, err)
	})

	for _, input := range []string{"", "   ", "C", "CS 101", "../etc", strings.Repeat("A", 40), "-CS101"} {
		t.Run("rejects "+input, func(t *testing.T) {
			_, err := ParseCourseID(input)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func TestRole(t *testing.T) {
	t.Run("round trips through its wire name", func(t *testing.T) {
		for _, r := range []Role{RoleStudent, RoleStaff} {
			text, err := r.MarshalText()
			require.NoError(t, err)
			var parsed Role
			require.NoError(t, parsed.UnmarshalText(text))
			assert.Equal(t, r, parsed)
		}
	})

	t.Run("zero value is not a role", func(t *testing.T) {
		var r Role
		assert.False(t, r.Valid())
		_, err := r.MarshalText()
		require.Error(t, err)
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		_, err := ParseRole("admin")
		require.Error(t, err)
		_, err = ParseRole("Student")
		require.Error(t, err)
	})
}

func TestStudentIDJSON(t *testing.T) {
	sid := StudentOf(NewUserID())
	b, err := json.Marshal(struct {
		ID StudentID `json:"id"`
	}{ID: sid})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"`+sid.String()+`"}`, string(b))

	var decoded struct {
		ID StudentID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, sid, decoded.ID)
}
