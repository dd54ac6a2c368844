package service

import (
	"registrar/internal/enrollment/models"
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
)

func ptr[T any](v T) *T { return &v }

func (s *EnrollmentSuite) TestCreateCourse() {
	staff := id.NewUserID()

	s.Run("creates an empty course", func() {
		req := &models.CreateCourseRequest{CourseID: "NEW01", Name: "Databases", Lecturer: "Dr. Codd", Credits: 4, MaxStudents: 30}
		created, err := s.service.CreateCourse(s.ctx, staff, req)
		s.Require().NoError(err)
		s.Equal(id.CourseID("NEW01"), created.ID)
		s.Equal(0, created.EnrollmentCount)
		s.Empty(created.EnrolledStudents)

		stored := s.loadCourse("NEW01")
		s.Equal("Databases", stored.Name)
	})

	s.Run("duplicate id is a conflict", func() {
		req := &models.CreateCourseRequest{CourseID: "NEW01", Name: "Other", Lecturer: "Dr. X", Credits: 3, MaxStudents: 5}
		_, err := s.service.CreateCourse(s.ctx, staff, req)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("credits outside the allowed range are rejected", func() {
		req := &models.CreateCourseRequest{CourseID: "NEW02", Name: "Seminar", Lecturer: "Dr. Y", Credits: 6, MaxStudents: 5}
		_, err := s.service.CreateCourse(s.ctx, staff, req)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *EnrollmentSuite) TestUpdateCourse() {
	staff := id.NewUserID()

	s.Run("renames a course with enrollments", func() {
		s.seedCourse("UP101", 4, 2)
		_, err := s.service.Register(s.ctx, s.seedStudent("UP001"), "UP101")
		s.Require().NoError(err)

		updated, err := s.service.UpdateCourse(s.ctx, staff, "UP101", models.CourseChanges{Name: ptr("Advanced Topics")})
		s.Require().NoError(err)
		s.Equal("Advanced Topics", updated.Name)
		s.Equal(1, updated.EnrollmentCount)
		s.Equal("Advanced Topics", s.loadCourse("UP101").Name)
	})

	s.Run("capacity cannot drop below enrollment count", func() {
		_, err := s.service.Register(s.ctx, s.seedStudent("UP002"), "UP101")
		s.Require().NoError(err)

		_, err = s.service.UpdateCourse(s.ctx, staff, "UP101", models.CourseChanges{MaxStudents: ptr(1)})
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		s.Equal(2, s.loadCourse("UP101").MaxStudents)
	})

	s.Run("credits are frozen while students are enrolled", func() {
		_, err := s.service.UpdateCourse(s.ctx, staff, "UP101", models.CourseChanges{Credits: ptr(3)})
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("raising capacity reopens a full course", func() {
		updated, err := s.service.UpdateCourse(s.ctx, staff, "UP101", models.CourseChanges{MaxStudents: ptr(3)})
		s.Require().NoError(err)
		s.False(updated.IsFull())

		_, err = s.service.Register(s.ctx, s.seedStudent("UP003"), "UP101")
		s.NoError(err)
	})

	s.Run("unknown course is not found", func() {
		_, err := s.service.UpdateCourse(s.ctx, staff, "NOPE3", models.CourseChanges{Name: ptr("x")})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *EnrollmentSuite) TestDeleteCourse() {
	staff := id.NewUserID()

	s.Run("course with enrollments cannot be deleted", func() {
		s.seedCourse("DL101", 3, 5)
		studentID := s.seedStudent("DL001")
		_, err := s.service.Register(s.ctx, studentID, "DL101")
		s.Require().NoError(err)

		err = s.service.DeleteCourse(s.ctx, staff, "DL101")
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		_, err = s.service.Drop(s.ctx, studentID, "DL101")
		s.Require().NoError(err)
		s.NoError(s.service.DeleteCourse(s.ctx, staff, "DL101"))

		_, err = s.courses.FindByID(s.ctx, "DL101")
		s.Error(err)
	})

	s.Run("unknown course is not found", func() {
		err := s.service.DeleteCourse(s.ctx, staff, "NOPE4")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
