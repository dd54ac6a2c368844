package student

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"registrar/internal/enrollment/models"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

type StudentStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestStudentStoreSuite(t *testing.T) {
	suite.Run(t, new(StudentStoreSuite))
}

func (s *StudentStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *StudentStoreSuite) newStudent(number string) *models.Student {
	st, err := models.NewStudent(id.StudentOf(id.NewUserID()), number, "Student "+number, number+"@example.edu", 1, time.Now())
	s.Require().NoError(err)
	return st
}

func (s *StudentStoreSuite) TestCreationAndLookups() {
	st := s.newStudent("S1001")
	s.Require().NoError(s.store.Create(s.ctx, st))

	s.Run("finds by id", func() {
		found, err := s.store.FindByID(s.ctx, st.ID)
		s.Require().NoError(err)
		s.Equal("S1001", found.Number)
	})

	s.Run("rejects duplicate student number", func() {
		s.ErrorIs(s.store.Create(s.ctx, s.newStudent("S1001")), sentinel.ErrAlreadyUsed)
	})

	s.Run("returns ErrNotFound for unknown id", func() {
		_, err := s.store.FindByID(s.ctx, id.StudentOf(id.NewUserID()))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("FindByIDs keeps request order and skips unknown ids", func() {
		other := s.newStudent("S1002")
		s.Require().NoError(s.store.Create(s.ctx, other))

		found, err := s.store.FindByIDs(s.ctx, []id.StudentID{other.ID, id.StudentOf(id.NewUserID()), st.ID})
		s.Require().NoError(err)
		s.Require().Len(found, 2)
		s.Equal(other.ID, found[0].ID)
		s.Equal(st.ID, found[1].ID)
	})
}

func (s *StudentStoreSuite) TestConditionalUpdate() {
	st := s.newStudent("S1001")
	s.Require().NoError(s.store.Create(s.ctx, st))

	stale, err := s.store.FindByID(s.ctx, st.ID)
	s.Require().NoError(err)

	st.TotalCredits = 3
	st.EnrolledCourses = []id.CourseID{"CS101"}
	s.Require().NoError(s.store.Update(s.ctx, st))
	s.Equal(int64(2), st.Version)

	stale.TotalCredits = 5
	s.ErrorIs(s.store.Update(s.ctx, stale), sentinel.ErrConflict)

	missing := s.newStudent("S9999")
	s.ErrorIs(s.store.Update(s.ctx, missing), sentinel.ErrNotFound)
}
