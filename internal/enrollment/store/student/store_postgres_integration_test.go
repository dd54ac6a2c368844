//go:build integration

package student_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"registrar/internal/enrollment/models"
	"registrar/internal/enrollment/store/student"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/platform/tx"
	"registrar/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *student.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = student.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "students", "accounts"))
}

// createStudent inserts the owning account row and the student in one transaction.
func (s *PostgresStoreSuite) createStudent(number string) *models.Student {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	st, err := models.NewStudent(id.StudentOf(id.NewUserID()), number, "Student "+number, number+"@example.edu", 1, now)
	s.Require().NoError(err)

	err = tx.Run(ctx, s.postgres.DB, func(ctx context.Context) error {
		exec := tx.ExecutorFor(ctx, s.postgres.DB)
		if _, err := exec.ExecContext(ctx, `
			INSERT INTO accounts (id, email, password_hash, role, external_id, name, address, created_at)
			VALUES ($1, $2, 'x', 'student', $3, $4, 'addr', $5)`,
			st.ID.String(), st.Email, st.Number, st.Name, now); err != nil {
			return err
		}
		return s.store.Create(ctx, st)
	})
	s.Require().NoError(err)
	return st
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	st := s.createStudent("S1001")

	st.EnrolledCourses = []id.CourseID{"CS101", "MA201"}
	st.TotalCredits = 8
	s.Require().NoError(s.store.Update(ctx, st))

	found, err := s.store.FindByID(ctx, st.ID)
	s.Require().NoError(err)
	s.Equal([]id.CourseID{"CS101", "MA201"}, found.EnrolledCourses)
	s.Equal(8, found.TotalCredits)
	s.Equal(int64(2), found.Version)
}

func (s *PostgresStoreSuite) TestFindByIDsPreservesOrder() {
	ctx := context.Background()
	a := s.createStudent("S1001")
	b := s.createStudent("S1002")

	found, err := s.store.FindByIDs(ctx, []id.StudentID{b.ID, id.StudentOf(id.NewUserID()), a.ID})
	s.Require().NoError(err)
	s.Require().Len(found, 2)
	s.Equal(b.ID, found[0].ID)
	s.Equal(a.ID, found[1].ID)
}

func (s *PostgresStoreSuite) TestConditionalUpdate() {
	ctx := context.Background()
	st := s.createStudent("S1001")
	stale, err := s.store.FindByID(ctx, st.ID)
	s.Require().NoError(err)

	st.TotalCredits = 3
	st.EnrolledCourses = []id.CourseID{"CS101"}
	s.Require().NoError(s.store.Update(ctx, st))
	s.ErrorIs(s.store.Update(ctx, stale), sentinel.ErrConflict)
}
