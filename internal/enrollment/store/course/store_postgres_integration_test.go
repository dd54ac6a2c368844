//go:build integration

package course_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"registrar/internal/enrollment/models"
	"registrar/internal/enrollment/store/course"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *course.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = course.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "courses"))
}

func newTestCourse(s *PostgresStoreSuite, code string, maxStudents int) *models.Course {
	c, err := models.NewCourse(id.CourseID(code), "Course "+code, "Dr. Hopper", 4, maxStudents, time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(err)
	return c
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	c := newTestCourse(s, "CS101", 3)
	s.Require().NoError(s.store.Create(ctx, c))
	s.ErrorIs(s.store.Create(ctx, newTestCourse(s, "CS101", 3)), sentinel.ErrAlreadyUsed)

	sid := id.StudentOf(id.NewUserID())
	c.EnrolledStudents = append(c.EnrolledStudents, sid)
	c.EnrollmentCount = 1
	s.Require().NoError(s.store.Update(ctx, c))
	s.Equal(int64(2), c.Version)

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal([]id.StudentID{sid}, found.EnrolledStudents)
	s.Equal(1, found.EnrollmentCount)
	s.Equal(int64(2), found.Version)

	list, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *PostgresStoreSuite) TestConditionalUpdateAndDelete() {
	ctx := context.Background()
	c := newTestCourse(s, "CS101", 3)
	s.Require().NoError(s.store.Create(ctx, c))

	stale, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)

	c.Name = "renamed"
	s.Require().NoError(s.store.Update(ctx, c))
	s.ErrorIs(s.store.Update(ctx, stale), sentinel.ErrConflict)
	s.ErrorIs(s.store.Delete(ctx, c.ID, stale.Version), sentinel.ErrConflict)

	s.Require().NoError(s.store.Delete(ctx, c.ID, c.Version))
	_, err = s.store.FindByID(ctx, c.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Update(ctx, c), sentinel.ErrNotFound)
}

// TestConcurrentVersionedWrites verifies that writers racing on the same
// version produce exactly one success.
func (s *PostgresStoreSuite) TestConcurrentVersionedWrites() {
	ctx := context.Background()
	c := newTestCourse(s, "CS101", 50)
	s.Require().NoError(s.store.Create(ctx, c))

	const goroutines = 20
	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mine := c.Clone()
			mine.EnrolledStudents = append(mine.EnrolledStudents, id.StudentOf(id.NewUserID()))
			mine.EnrollmentCount++
			err := s.store.Update(ctx, mine)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load())
	s.Equal(int32(goroutines-1), conflictCount.Load())

	found, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(1, found.EnrollmentCount)
}
