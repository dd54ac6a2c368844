package models

import (
	"slices"
	"time"

	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
)

// MaxCreditsPerStudent is the credit-hour cap across all enrolled courses.
const MaxCreditsPerStudent = 20

// Student is the aggregate that owns one side of every enrollment.
//
// Invariants:
//   - EnrolledCourses holds no duplicates and preserves registration order
//   - TotalCredits equals the sum of credits over EnrolledCourses
//   - 0 <= TotalCredits <= MaxCreditsPerStudent
//   - Version increases by one on every successful save
type Student struct {
	ID              id.StudentID  `json:"id"`
	Number          string        `json:"studentNumber"`
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	StudyYear       int           `json:"studyYear"`
	EnrolledCourses []id.CourseID `json:"enrolledCourses"`
	TotalCredits    int           `json:"totalCredits"`
	Version         int64         `json:"-"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// NewStudent builds a student with no enrollments.
func NewStudent(studentID id.StudentID, number, name, email string, studyYear int, now time.Time) (*Student, error) {
	if studentID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "student id cannot be nil")
	}
	if number == "" || name == "" || email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "student number, name and email are required")
	}
	if studyYear < 1 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "study year must be at least 1")
	}
	return &Student{
		ID:              studentID,
		Number:          number,
		Name:            name,
		Email:           email,
		StudyYear:       studyYear,
		EnrolledCourses: []id.CourseID{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (s *Student) IsEnrolledIn(courseID id.CourseID) bool {
	return slices.Contains(s.EnrolledCourses, courseID)
}

// CanTake reports whether adding credits keeps the student within the cap.
func (s *Student) CanTake(credits int) bool {
	return s.TotalCredits+credits <= MaxCreditsPerStudent
}

// Clone returns a deep copy so transitions never alias the stored slice.
func (s *Student) Clone() *Student {
	if s == nil {
		return nil
	}
	c := *s
	c.EnrolledCourses = slices.Clone(s.EnrolledCourses)
	if c.EnrolledCourses == nil {
		c.EnrolledCourses = []id.CourseID{}
	}
	return &c
}

// CheckInvariants validates the parts of the aggregate checkable without
// loading the enrolled courses.
func (s *Student) CheckInvariants() error {
	if s.TotalCredits < 0 || s.TotalCredits > MaxCreditsPerStudent {
		return dErrors.New(dErrors.CodeInvariantViolation, "total credits out of range")
	}
	seen := make(map[id.CourseID]struct{}, len(s.EnrolledCourses))
	for _, c := range s.EnrolledCourses {
		if _, dup := seen[c]; dup {
			return dErrors.New(dErrors.CodeInvariantViolation, "duplicate course in enrollment list")
		}
		seen[c] = struct{}{}
	}
	return nil
}
