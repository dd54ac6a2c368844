package models

import id "registrar/pkg/domain"

// EnrollmentResult is returned by Register and Drop.
type EnrollmentResult struct {
	CourseID       id.CourseID `json:"courseId"`
	CurrentCredits int         `json:"currentCredits"`
}

// MyCourses is the student's enrolled courses in registration order.
type MyCourses struct {
	Courses      []*Course `json:"courses"`
	TotalCredits int       `json:"totalCredits"`
}

type StudentSummary struct {
	ID     id.StudentID `json:"id"`
	Number string       `json:"studentNumber"`
	Name   string       `json:"name"`
	Email  string       `json:"email"`
}

// CourseStatus is the staff view of a course's roster.
type CourseStatus struct {
	CourseID         id.CourseID      `json:"courseId"`
	Name             string           `json:"name"`
	EnrollmentCount  int              `json:"enrollmentCount"`
	MaxStudents      int              `json:"maxStudents"`
	EnrolledStudents []StudentSummary `json:"enrolledStudents"`
}

func SummaryOf(s *Student) StudentSummary {
	return StudentSummary{ID: s.ID, Number: s.Number, Name: s.Name, Email: s.Email}
}
