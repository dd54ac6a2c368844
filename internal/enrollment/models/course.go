package models

import (
	"slices"
	"time"

	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
)

const (
	MinCourseCredits = 3
	MaxCourseCredits = 5
)

// Course is the aggregate that owns the other side of every enrollment.
//
// Invariants:
//   - Credits is between MinCourseCredits and MaxCourseCredits
//   - EnrollmentCount == len(EnrolledStudents) <= MaxStudents
//   - EnrolledStudents holds no duplicates
//   - Credits cannot change while any student is enrolled, since every
//     enrolled student's TotalCredits was computed from the old value
type Course struct {
	ID               id.CourseID    `json:"courseId"`
	Name             string         `json:"name"`
	Lecturer         string         `json:"lecturer"`
	Credits          int            `json:"credits"`
	MaxStudents      int            `json:"maxStudents"`
	EnrolledStudents []id.StudentID `json:"enrolledStudents"`
	EnrollmentCount  int            `json:"enrollmentCount"`
	Version          int64          `json:"-"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// NewCourse builds an empty course after checking its static constraints.
func NewCourse(courseID id.CourseID, name, lecturer string, credits, maxStudents int, now time.Time) (*Course, error) {
	if courseID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "course id cannot be empty")
	}
	if name == "" || lecturer == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "course name and lecturer are required")
	}
	if err := validateCredits(credits); err != nil {
		return nil, err
	}
	if err := validateMaxStudents(maxStudents); err != nil {
		return nil, err
	}
	return &Course{
		ID:               courseID,
		Name:             name,
		Lecturer:         lecturer,
		Credits:          credits,
		MaxStudents:      maxStudents,
		EnrolledStudents: []id.StudentID{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

func validateCredits(credits int) error {
	if credits < MinCourseCredits || credits > MaxCourseCredits {
		return dErrors.New(dErrors.CodeValidation, "credits must be between 3 and 5")
	}
	return nil
}

func validateMaxStudents(maxStudents int) error {
	if maxStudents < 1 {
		return dErrors.New(dErrors.CodeValidation, "max students must be at least 1")
	}
	return nil
}

func (c *Course) IsFull() bool {
	return c.EnrollmentCount >= c.MaxStudents
}

func (c *Course) SeatsRemaining() int {
	return max(c.MaxStudents-c.EnrollmentCount, 0)
}

func (c *Course) HasStudent(studentID id.StudentID) bool {
	return slices.Contains(c.EnrolledStudents, studentID)
}

// Clone returns a deep copy so transitions never alias the stored slice.
func (c *Course) Clone() *Course {
	if c == nil {
		return nil
	}
	cp := *c
	cp.EnrolledStudents = slices.Clone(c.EnrolledStudents)
	if cp.EnrolledStudents == nil {
		cp.EnrolledStudents = []id.StudentID{}
	}
	return &cp
}

func (c *Course) CheckInvariants() error {
	if c.EnrollmentCount != len(c.EnrolledStudents) {
		return dErrors.New(dErrors.CodeInvariantViolation, "enrollment count does not match enrolled students")
	}
	if c.EnrollmentCount > c.MaxStudents {
		return dErrors.New(dErrors.CodeInvariantViolation, "enrollment count exceeds capacity")
	}
	seen := make(map[id.StudentID]struct{}, len(c.EnrolledStudents))
	for _, s := range c.EnrolledStudents {
		if _, dup := seen[s]; dup {
			return dErrors.New(dErrors.CodeInvariantViolation, "duplicate student in enrollment list")
		}
		seen[s] = struct{}{}
	}
	return nil
}

// CanDelete rejects deletion while students are enrolled.
func (c *Course) CanDelete() error {
	if c.EnrollmentCount > 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "cannot delete course with enrolled students")
	}
	return nil
}

// CourseChanges is a partial update; nil fields are left untouched.
type CourseChanges struct {
	Name        *string
	Lecturer    *string
	Credits     *int
	MaxStudents *int
}

func (ch CourseChanges) IsEmpty() bool {
	return ch.Name == nil && ch.Lecturer == nil && ch.Credits == nil && ch.MaxStudents == nil
}

// ApplyChanges returns the updated course or an error, leaving c untouched.
func (c *Course) ApplyChanges(ch CourseChanges, now time.Time) (*Course, error) {
	if ch.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeValidation, "no changes submitted")
	}
	next := c.Clone()
	if ch.Name != nil {
		next.Name = *ch.Name
	}
	if ch.Lecturer != nil {
		next.Lecturer = *ch.Lecturer
	}
	if ch.Credits != nil {
		if err := validateCredits(*ch.Credits); err != nil {
			return nil, err
		}
		if *ch.Credits != c.Credits && c.EnrollmentCount > 0 {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "cannot change credits while students are enrolled")
		}
		next.Credits = *ch.Credits
	}
	if ch.MaxStudents != nil {
		if err := validateMaxStudents(*ch.MaxStudents); err != nil {
			return nil, err
		}
		if *ch.MaxStudents < c.EnrollmentCount {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "max students cannot be less than enrollment count")
		}
		next.MaxStudents = *ch.MaxStudents
	}
	next.UpdatedAt = now
	return next, nil
}
