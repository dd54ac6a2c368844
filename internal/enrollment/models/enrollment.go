package models

import (
	"slices"
	"time"

	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
)

// Enroll computes the states of both aggregates after the student registers
// for the course. Inputs are never modified; on error no state is returned.
//
// Checks run in a fixed order: capacity, duplicate registration, credit cap.
func Enroll(student *Student, course *Course, now time.Time) (*Student, *Course, error) {
	if course.IsFull() {
		return nil, nil, dErrors.New(dErrors.CodeCourseFull, "course is full")
	}
	if course.HasStudent(student.ID) || student.IsEnrolledIn(course.ID) {
		return nil, nil, dErrors.New(dErrors.CodeAlreadyEnrolled, "already registered for this course")
	}
	if !student.CanTake(course.Credits) {
		return nil, nil, dErrors.New(dErrors.CodeCreditLimitExceeded,
			"cannot register: would exceed max credit limit of 20, please drop a course first")
	}

	nextCourse := course.Clone()
	nextCourse.EnrolledStudents = append(nextCourse.EnrolledStudents, student.ID)
	nextCourse.EnrollmentCount++
	nextCourse.UpdatedAt = now

	nextStudent := student.Clone()
	nextStudent.EnrolledCourses = append(nextStudent.EnrolledCourses, course.ID)
	nextStudent.TotalCredits += course.Credits
	nextStudent.UpdatedAt = now

	return nextStudent, nextCourse, nil
}

// Withdraw is the inverse of Enroll. The course's enrollment list is
// authoritative: a student it does not list is not enrolled. A course that
// lists the student while the student does not list the course is a broken
// invariant and reported as internal.
func Withdraw(student *Student, course *Course, now time.Time) (*Student, *Course, error) {
	if !course.HasStudent(student.ID) {
		return nil, nil, dErrors.New(dErrors.CodeNotEnrolled, "not registered for this course")
	}
	if !student.IsEnrolledIn(course.ID) {
		return nil, nil, dErrors.New(dErrors.CodeInternal, "enrollment relationship is inconsistent")
	}
	if student.TotalCredits < course.Credits {
		return nil, nil, dErrors.New(dErrors.CodeInternal, "student credits below course credits")
	}

	nextCourse := course.Clone()
	nextCourse.EnrolledStudents = slices.DeleteFunc(nextCourse.EnrolledStudents, func(s id.StudentID) bool {
		return s == student.ID
	})
	nextCourse.EnrollmentCount--
	nextCourse.UpdatedAt = now

	nextStudent := student.Clone()
	nextStudent.EnrolledCourses = slices.DeleteFunc(nextStudent.EnrolledCourses, func(c id.CourseID) bool {
		return c == course.ID
	})
	nextStudent.TotalCredits -= course.Credits
	nextStudent.UpdatedAt = now

	return nextStudent, nextCourse, nil
}
