package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"registrar/internal/audit"
	"registrar/internal/enrollment/models"
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

// transition computes the next states of both aggregates without side effects.
type transition func(student *models.Student, course *models.Course, now time.Time) (*models.Student, *models.Course, error)

// Register enrolls the student in the course.
//
// Failure kinds: not_found, course_full, already_enrolled,
// credit_limit_exceeded, timeout (gave up waiting for a lock) and
// internal_error. On any failure neither aggregate has changed.
func (s *Service) Register(ctx context.Context, studentID id.StudentID, courseID id.CourseID) (*models.EnrollmentResult, error) {
	return s.changeEnrollment(ctx, opRegister, studentID, courseID, models.Enroll, audit.ActionEnrollmentRegistered)
}

// Drop withdraws the student from the course. Dropping a course the student
// is not registered for fails with not_enrolled.
func (s *Service) Drop(ctx context.Context, studentID id.StudentID, courseID id.CourseID) (*models.EnrollmentResult, error) {
	return s.changeEnrollment(ctx, opDrop, studentID, courseID, models.Withdraw, audit.ActionEnrollmentDropped)
}

func (s *Service) changeEnrollment(
	ctx context.Context,
	op string,
	studentID id.StudentID,
	courseID id.CourseID,
	apply transition,
	action audit.Action,
) (result *models.EnrollmentResult, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, op,
		attribute.String("student_id", studentID.String()),
		attribute.String("course_id", courseID.String()),
	)
	defer func() {
		s.observe(op, err, start)
		endSpan(span, err)
	}()

	student, course, err := s.lockedChange(ctx, op, studentID, courseID, apply)
	if err != nil {
		s.logFailure(ctx, op, studentID, courseID, err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "enrollment changed",
		"operation", op,
		"student_id", studentID.String(),
		"course_id", courseID.String(),
		"total_credits", student.TotalCredits,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{
		Action:    action,
		ActorID:   studentID.String(),
		StudentID: studentID.String(),
		CourseID:  courseID.String(),
		Credits:   course.Credits,
	})
	return &models.EnrollmentResult{CourseID: courseID, CurrentCredits: student.TotalCredits}, nil
}

// lockedChange runs the load/validate/persist sequence while holding the
// course lock and then the student lock. Locks are always taken in that
// order. A version conflict restarts the whole sequence once.
func (s *Service) lockedChange(
	ctx context.Context,
	op string,
	studentID id.StudentID,
	courseID id.CourseID,
	apply transition,
) (*models.Student, *models.Course, error) {
	releaseCourse, err := s.courseLocks.Lock(ctx, courseID.String())
	if err != nil {
		return nil, nil, err
	}
	defer releaseCourse()

	releaseStudent, err := s.studentLocks.Lock(ctx, studentID.String())
	if err != nil {
		return nil, nil, err
	}
	defer releaseStudent()

	opCtx, cancel := s.detach(ctx)
	defer cancel()

	for attempt := 1; ; attempt++ {
		student, course, err := s.persistChange(opCtx, studentID, courseID, apply)
		if err == nil {
			return student, course, nil
		}
		if !errors.Is(err, sentinel.ErrConflict) {
			return nil, nil, err
		}
		s.countConflict(op)
		if attempt >= maxAttempts {
			return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "enrollment changed concurrently, please retry")
		}
		s.logger.WarnContext(ctx, "version conflict, retrying enrollment change",
			"operation", op,
			"student_id", studentID.String(),
			"course_id", courseID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

// persistChange is one attempt: load both aggregates, compute the transition,
// write the course, then write the student. With a transaction runner both
// writes commit together; without one a failed student write is compensated
// by restoring the course. Returns a bare sentinel.ErrConflict when the
// attempt may be retried.
func (s *Service) persistChange(
	ctx context.Context,
	studentID id.StudentID,
	courseID id.CourseID,
	apply transition,
) (*models.Student, *models.Course, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, nil, loadError(err, "course")
	}
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, nil, loadError(err, "student")
	}

	now := requestcontext.Now(ctx)
	nextStudent, nextCourse, err := apply(student, course, now)
	if err != nil {
		return nil, nil, err
	}

	if s.txRunner != nil {
		err := s.txRunner.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.courses.Update(txCtx, nextCourse); err != nil {
				return err
			}
			return s.students.Update(txCtx, nextStudent)
		})
		if err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return nil, nil, sentinel.ErrConflict
			}
			return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save enrollment")
		}
		return nextStudent, nextCourse, nil
	}

	if err := s.courses.Update(ctx, nextCourse); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, nil, sentinel.ErrConflict
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save course")
	}

	if err := s.students.Update(ctx, nextStudent); err != nil {
		if cerr := s.compensate(ctx, course, nextCourse.Version, now, err); cerr != nil {
			// Not retryable: the course already carries the change.
			return nil, nil, dErrors.Wrap(cerr, dErrors.CodeInternal, "failed to save enrollment")
		}
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, nil, sentinel.ErrConflict
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save student")
	}

	return nextStudent, nextCourse, nil
}

// compensate writes the pre-change course back over the version persisted
// moments ago. It runs on its own detached context so an expired operation
// deadline cannot prevent the rollback.
func (s *Service) compensate(ctx context.Context, original *models.Course, writtenVersion int64, now time.Time, cause error) error {
	restore := original.Clone()
	restore.Version = writtenVersion
	restore.UpdatedAt = now

	cctx, cancel := s.detach(ctx)
	defer cancel()

	if err := s.courses.Update(cctx, restore); err != nil {
		s.logger.ErrorContext(ctx, "compensation failed, course and student enrollment lists disagree",
			"course_id", original.ID.String(),
			"error", err,
			"cause", cause,
			"request_id", requestcontext.RequestID(ctx),
		)
		if s.metrics != nil {
			s.metrics.IncrementCompensation("failed")
		}
		return err
	}

	s.logger.WarnContext(ctx, "student write failed, course restored",
		"course_id", original.ID.String(),
		"cause", cause,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.IncrementCompensation("applied")
	}
	return nil
}

func (s *Service) logFailure(ctx context.Context, op string, studentID id.StudentID, courseID id.CourseID, err error) {
	attrs := []any{
		"operation", op,
		"student_id", studentID.String(),
		"course_id", courseID.String(),
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	}
	switch dErrors.GetCode(err) {
	case dErrors.CodeInternal:
		s.logger.ErrorContext(ctx, "enrollment change failed", attrs...)
	case dErrors.CodeTimeout:
		s.logger.WarnContext(ctx, "enrollment change timed out", attrs...)
	default:
		s.logger.InfoContext(ctx, "enrollment change rejected", attrs...)
	}
}
