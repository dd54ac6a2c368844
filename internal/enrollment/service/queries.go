package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"registrar/internal/enrollment/models"
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

// courseFetchConcurrency caps parallel course loads for one student.
const courseFetchConcurrency = 8

// ListCourses returns every course.
func (s *Service) ListCourses(ctx context.Context) (courses []*models.Course, err error) {
	ctx, span := s.startSpan(ctx, "list_courses")
	defer func() { endSpan(span, err) }()

	courses, err = s.courses.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list courses")
	}
	return courses, nil
}

// ListAvailable returns the courses with at least one free seat. The capacity
// comparison is done here per loaded course, never pushed into a query.
func (s *Service) ListAvailable(ctx context.Context) (available []*models.Course, err error) {
	ctx, span := s.startSpan(ctx, "list_available")
	defer func() { endSpan(span, err) }()

	all, err := s.courses.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list courses")
	}
	available = make([]*models.Course, 0, len(all))
	for _, c := range all {
		if !c.IsFull() {
			available = append(available, c)
		}
	}
	return available, nil
}

// ListMyCourses resolves the student's enrolled courses concurrently and
// returns them in registration order. Courses that no longer exist are
// skipped and logged.
func (s *Service) ListMyCourses(ctx context.Context, studentID id.StudentID) (result *models.MyCourses, err error) {
	ctx, span := s.startSpan(ctx, "list_my_courses", attribute.String("student_id", studentID.String()))
	defer func() { endSpan(span, err) }()

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, loadError(err, "student")
	}

	resolved := make([]*models.Course, len(student.EnrolledCourses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(courseFetchConcurrency)
	for i, courseID := range student.EnrolledCourses {
		g.Go(func() error {
			course, err := s.courses.FindByID(gctx, courseID)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					s.logger.WarnContext(ctx, "enrolled course no longer exists",
						"student_id", studentID.String(),
						"course_id", courseID.String(),
						"request_id", requestcontext.RequestID(ctx),
					)
					return nil
				}
				return err
			}
			resolved[i] = course
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load enrolled courses")
	}

	courses := make([]*models.Course, 0, len(resolved))
	for _, c := range resolved {
		if c != nil {
			courses = append(courses, c)
		}
	}
	return &models.MyCourses{Courses: courses, TotalCredits: student.TotalCredits}, nil
}

// CourseStatus is the staff roster view of one course.
func (s *Service) CourseStatus(ctx context.Context, courseID id.CourseID) (status *models.CourseStatus, err error) {
	ctx, span := s.startSpan(ctx, "course_status", attribute.String("course_id", courseID.String()))
	defer func() { endSpan(span, err) }()

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, loadError(err, "course")
	}
	students, err := s.students.FindByIDs(ctx, course.EnrolledStudents)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load enrolled students")
	}

	summaries := make([]models.StudentSummary, 0, len(students))
	for _, st := range students {
		summaries = append(summaries, models.SummaryOf(st))
	}
	if len(summaries) != len(course.EnrolledStudents) {
		s.logger.WarnContext(ctx, "course lists students that could not be resolved",
			"course_id", courseID.String(),
			"listed", len(course.EnrolledStudents),
			"resolved", len(summaries),
		)
	}
	return &models.CourseStatus{
		CourseID:         course.ID,
		Name:             course.Name,
		EnrollmentCount:  course.EnrollmentCount,
		MaxStudents:      course.MaxStudents,
		EnrolledStudents: summaries,
	}, nil
}
