package service

import (
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
)

func (s *EnrollmentSuite) TestListAvailable() {
	s.Run("empty catalogue yields an empty list", func() {
		available, err := s.service.ListAvailable(s.ctx)
		s.Require().NoError(err)
		s.NotNil(available)
		s.Empty(available)
	})

	s.Run("full courses are excluded", func() {
		s.seedCourse("AV101", 3, 1)
		s.seedCourse("AV102", 3, 2)
		studentID := s.seedStudent("AV001")
		_, err := s.service.Register(s.ctx, studentID, "AV101")
		s.Require().NoError(err)

		available, err := s.service.ListAvailable(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(available, 1)
		s.Equal(id.CourseID("AV102"), available[0].ID)

		all, err := s.service.ListCourses(s.ctx)
		s.Require().NoError(err)
		s.Len(all, 2)
	})
}

func (s *EnrollmentSuite) TestListMyCourses() {
	s.Run("returns courses in registration order with total credits", func() {
		studentID := s.seedStudent("MY001")
		order := []id.CourseID{"MY103", "MY101", "MY102"}
		for i, code := range order {
			s.seedCourse(code.String(), 3+i, 10)
			_, err := s.service.Register(s.ctx, studentID, code)
			s.Require().NoError(err)
		}

		mine, err := s.service.ListMyCourses(s.ctx, studentID)
		s.Require().NoError(err)
		s.Equal(12, mine.TotalCredits)
		s.Require().Len(mine.Courses, 3)
		for i, c := range mine.Courses {
			s.Equal(order[i], c.ID)
		}
	})

	s.Run("student with no courses gets an empty list", func() {
		studentID := s.seedStudent("MY002")
		mine, err := s.service.ListMyCourses(s.ctx, studentID)
		s.Require().NoError(err)
		s.Empty(mine.Courses)
		s.Equal(0, mine.TotalCredits)
	})

	s.Run("courses that no longer exist are skipped", func() {
		studentID := s.seedStudent("MY003")
		s.seedCourse("MY104", 3, 10)
		st := s.loadStudent(studentID)
		st.EnrolledCourses = []id.CourseID{"GONE1", "MY104"}
		st.TotalCredits = 6
		s.Require().NoError(s.students.Update(s.ctx, st))

		mine, err := s.service.ListMyCourses(s.ctx, studentID)
		s.Require().NoError(err)
		s.Require().Len(mine.Courses, 1)
		s.Equal(id.CourseID("MY104"), mine.Courses[0].ID)
	})

	s.Run("unknown student is not found", func() {
		_, err := s.service.ListMyCourses(s.ctx, id.StudentOf(id.NewUserID()))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *EnrollmentSuite) TestCourseStatus() {
	s.Run("lists enrolled students in registration order", func() {
		s.seedCourse("ST101", 3, 5)
		first := s.seedStudent("ST001")
		second := s.seedStudent("ST002")
		for _, sid := range []id.StudentID{second, first} {
			_, err := s.service.Register(s.ctx, sid, "ST101")
			s.Require().NoError(err)
		}

		status, err := s.service.CourseStatus(s.ctx, "ST101")
		s.Require().NoError(err)
		s.Equal(2, status.EnrollmentCount)
		s.Equal(5, status.MaxStudents)
		s.Require().Len(status.EnrolledStudents, 2)
		s.Equal(second, status.EnrolledStudents[0].ID)
		s.Equal("ST002", status.EnrolledStudents[0].Number)
		s.Equal(first, status.EnrolledStudents[1].ID)
	})

	s.Run("unknown course is not found", func() {
		_, err := s.service.CourseStatus(s.ctx, "NOPE2")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
