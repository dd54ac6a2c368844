package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"registrar/internal/audit"
	"registrar/internal/enrollment/models"
	"registrar/internal/enrollment/service/mocks"
	"registrar/internal/platform/metrics"
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/sentinel"
)

// PersistSuite covers the write protocol with mocked stores: compensation,
// conflict retries and the transactional path.
type PersistSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	courses   *mocks.MockCourseStore
	students  *mocks.MockStudentStore
	auditor   *mocks.MockAuditPublisher
	metrics   *metrics.Metrics
	service   *Service
	studentID id.StudentID
}

func TestPersistSuite(t *testing.T) {
	suite.Run(t, new(PersistSuite))
}

func (s *PersistSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.courses = mocks.NewMockCourseStore(s.ctrl)
	s.students = mocks.NewMockStudentStore(s.ctrl)
	s.auditor = mocks.NewMockAuditPublisher(s.ctrl)
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.service = New(s.courses, s.students,
		WithLogger(discardLogger()),
		WithMetrics(s.metrics),
		WithAuditPublisher(s.auditor),
	)
	s.studentID = id.StudentOf(id.NewUserID())
}

func (s *PersistSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *PersistSuite) course() *models.Course {
	c, err := models.NewCourse("CS301", "Compilers", "Dr. Aho", 4, 10, testNow)
	s.Require().NoError(err)
	c.Version = 1
	return c
}

func (s *PersistSuite) student() *models.Student {
	st, err := models.NewStudent(s.studentID, "S3001", "Grace Hopper", "grace@example.edu", 3, testNow)
	s.Require().NoError(err)
	st.Version = 1
	return st
}

// bumpCourse and bumpStudent mimic a successful conditional save.
func bumpCourse(_ context.Context, c *models.Course) error {
	c.Version++
	return nil
}

func bumpStudent(_ context.Context, st *models.Student) error {
	st.Version++
	return nil
}

func (s *PersistSuite) expectLoads(times int) {
	s.courses.EXPECT().FindByID(gomock.Any(), id.CourseID("CS301")).
		DoAndReturn(func(context.Context, id.CourseID) (*models.Course, error) { return s.course(), nil }).
		Times(times)
	s.students.EXPECT().FindByID(gomock.Any(), s.studentID).
		DoAndReturn(func(context.Context, id.StudentID) (*models.Student, error) { return s.student(), nil }).
		Times(times)
}

func (s *PersistSuite) TestSuccessfulRegisterEmitsAuditEvent() {
	s.expectLoads(1)
	gomock.InOrder(
		s.courses.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(bumpCourse),
		s.students.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(bumpStudent),
	)

	var emitted audit.Event
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Do(func(_ context.Context, e audit.Event) { emitted = e })

	result, err := s.service.Register(context.Background(), s.studentID, "CS301")
	s.Require().NoError(err)
	s.Equal(4, result.CurrentCredits)
	s.Equal(audit.ActionEnrollmentRegistered, emitted.Action)
	s.Equal(s.studentID.String(), emitted.StudentID)
	s.Equal("CS301", emitted.CourseID)
	s.Equal(4, emitted.Credits)
}

func (s *PersistSuite) TestCompensation() {
	s.Run("failed student write restores the course", func() {
		s.expectLoads(1)
		var restored *models.Course
		gomock.InOrder(
			s.courses.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(bumpCourse),
			s.students.EXPECT().Update(gomock.Any(), gomock.Any()).Return(errors.New("connection reset")),
			s.courses.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, c *models.Course) error {
				restored = c.Clone()
				return bumpCourse(ctx, c)
			}),
		)

		_, err := s.service.Register(context.Background(), s.studentID, "CS301")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))

		s.Require().NotNil(restored)
		s.Equal(int64(2), restored.Version, "restore must target the version just written")
		s.Equal(0, restored.EnrollmentCount)
		s.Empty(restored.EnrolledStudents)
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.Compensations.WithLabelValues("applied")))
	})

	s.Run("failed compensation is internal and not retried", func() {
		s.expectLoads(1)
		gomock.InOrder(
			s.courses.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(bumpCourse),
			s.students.EXPECT().Update(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict),
			s.courses.EXPECT().Update(gomock.Any(), gomock.Any()).Return(errors.New("primary unavailable")),
		)

		_, err := s.service.Register(context.Background(), s.studentID, "CS301")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.False(errors.Is(err, sentinel.ErrConflict))
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.Compensations.WithLabelValues("failed")))
	})

	s.Run("student conflict after compensation is retried", func() {
		s.expectLoads(2)
		gomock.InOrder(
			s.courses.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(bumpCourse),
			s.students.EXPECT().Update(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict),
			s.courses.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(bumpCourse),
			s.courses.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(bumpCourse),
			s.students.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(bumpStudent),
		)
		s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any())

		_, err := s.service.Register(context.Background(), s.studentID, "CS301")
		s.Require().NoError(err)
	})
}

func (s *PersistSuite) TestConflictRetry() {
	s.Run("one conflict is retried with fresh state", func() {
		s.expectLoads(2)
		gomock.InOrder(
			s.courses.EXPECT().Update(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict),
			s.courses.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(bumpCourse),
			s.students.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(bumpStudent),
		)
		s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any())

		_, err := s.service.Register(context.Background(), s.studentID, "CS301")
		s.Require().NoError(err)
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.PersistenceConflicts.WithLabelValues(opRegister)))
	})

	s.Run("a second conflict gives up as internal", func() {
		s.expectLoads(2)
		s.courses.EXPECT().Update(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict).Times(2)

		_, err := s.service.Register(context.Background(), s.studentID, "CS301")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Equal(float64(3), testutil.ToFloat64(s.metrics.PersistenceConflicts.WithLabelValues(opRegister)))
	})

	s.Run("other store errors are not retried", func() {
		s.expectLoads(1)
		s.courses.EXPECT().Update(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		_, err := s.service.Register(context.Background(), s.studentID, "CS301")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("load failures other than not found are internal", func() {
		s.courses.EXPECT().FindByID(gomock.Any(), id.CourseID("CS301")).Return(nil, errors.New("timeout"))

		_, err := s.service.Register(context.Background(), s.studentID, "CS301")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *PersistSuite) TestTransactionalPath() {
	tx := mocks.NewMockTxRunner(s.ctrl)
	s.service = New(s.courses, s.students,
		WithLogger(discardLogger()),
		WithMetrics(s.metrics),
		WithAuditPublisher(s.auditor),
		WithTxRunner(tx),
	)
	runInline := func(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) }

	s.Run("both writes run inside one transaction without compensation", func() {
		s.expectLoads(1)
		tx.EXPECT().RunInTx(gomock.Any(), gomock.Any()).DoAndReturn(runInline)
		gomock.InOrder(
			s.courses.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(bumpCourse),
			s.students.EXPECT().Update(gomock.Any(), gomock.Any()).Return(errors.New("constraint violated")),
		)

		_, err := s.service.Register(context.Background(), s.studentID, "CS301")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Equal(float64(0), testutil.ToFloat64(s.metrics.Compensations.WithLabelValues("applied")))
	})

	s.Run("a conflicting transaction is retried", func() {
		s.expectLoads(2)
		gomock.InOrder(
			tx.EXPECT().RunInTx(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict),
			tx.EXPECT().RunInTx(gomock.Any(), gomock.Any()).DoAndReturn(runInline),
		)
		s.courses.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(bumpCourse)
		s.students.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(bumpStudent)
		s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any())

		result, err := s.service.Register(context.Background(), s.studentID, "CS301")
		s.Require().NoError(err)
		s.Equal(4, result.CurrentCredits)
	})
}

func (s *PersistSuite) TestListMyCoursesStoreFailure() {
	st := s.student()
	st.EnrolledCourses = []id.CourseID{"CS301", "CS302"}
	st.TotalCredits = 8
	s.students.EXPECT().FindByID(gomock.Any(), s.studentID).Return(st, nil)
	s.courses.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(nil, errors.New("pool exhausted")).MinTimes(1).MaxTimes(2)

	_, err := s.service.ListMyCourses(context.Background(), s.studentID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
