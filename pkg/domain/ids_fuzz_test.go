package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseStudentID checks that parsing never panics and that accepted IDs
// round-trip.
func FuzzParseStudentID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add("'; DROP TABLE students;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseStudentID(input)
		if err == nil {
			roundTrip, err2 := ParseStudentID(id.String())
			if err2 != nil {
				t.Errorf("valid ID failed round-trip: %v", err2)
			}
			if roundTrip != id {
				t.Error("round-trip changed ID value")
			}
		}
		if !utf8.ValidString(input) && err == nil {
			t.Error("non-UTF8 input was accepted")
		}
	})
}

// FuzzParseCourseID checks that accepted course codes are already normalized.
func FuzzParseCourseID(f *testing.F) {
	f.Add("cs101")
	f.Add(" MATH-201 ")
	f.Add("")
	f.Add("\x00")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseCourseID(input)
		if err != nil {
			return
		}
		again, err := ParseCourseID(id.String())
		if err != nil || again != id {
			t.Errorf("normalized course id %q did not round-trip", id)
		}
	})
}
