package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"registrar/internal/audit"
	"registrar/internal/enrollment/models"
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

// CreateCourse adds a course with no enrollments. The request must already
// be normalized and validated.
func (s *Service) CreateCourse(ctx context.Context, actor id.UserID, req *models.CreateCourseRequest) (course *models.Course, err error) {
	ctx, span := s.startSpan(ctx, "create_course", attribute.String("course_id", req.CourseID))
	defer func() { endSpan(span, err) }()

	courseID, err := id.ParseCourseID(req.CourseID)
	if err != nil {
		return nil, err
	}
	course, err = models.NewCourse(courseID, req.Name, req.Lecturer, req.Credits, req.MaxStudents, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.courses.Create(ctx, course); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "course already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create course")
	}

	s.countCourseChange("create")
	s.logger.InfoContext(ctx, "course created",
		"course_id", course.ID.String(),
		"actor_id", actor.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{Action: audit.ActionCourseCreated, ActorID: actor.String(), CourseID: course.ID.String(), Credits: course.Credits})
	return course, nil
}

// UpdateCourse applies a partial update inside the course's critical section,
// so capacity and credit guards see the same enrollment count that
// Register and Drop see.
func (s *Service) UpdateCourse(ctx context.Context, actor id.UserID, courseID id.CourseID, changes models.CourseChanges) (course *models.Course, err error) {
	ctx, span := s.startSpan(ctx, "update_course", attribute.String("course_id", courseID.String()))
	defer func() { endSpan(span, err) }()

	err = s.withCourseLock(ctx, "update_course", courseID, func(opCtx context.Context) error {
		current, err := s.courses.FindByID(opCtx, courseID)
		if err != nil {
			return loadError(err, "course")
		}
		next, err := current.ApplyChanges(changes, requestcontext.Now(ctx))
		if err != nil {
			return err
		}
		if err := s.courses.Update(opCtx, next); err != nil {
			return storeWriteError(err, "failed to update course")
		}
		course = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.countCourseChange("update")
	s.logger.InfoContext(ctx, "course updated",
		"course_id", courseID.String(),
		"actor_id", actor.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{Action: audit.ActionCourseUpdated, ActorID: actor.String(), CourseID: courseID.String(), Credits: course.Credits})
	return course, nil
}

// DeleteCourse removes a course that has no enrolled students.
func (s *Service) DeleteCourse(ctx context.Context, actor id.UserID, courseID id.CourseID) (err error) {
	ctx, span := s.startSpan(ctx, "delete_course", attribute.String("course_id", courseID.String()))
	defer func() { endSpan(span, err) }()

	err = s.withCourseLock(ctx, "delete_course", courseID, func(opCtx context.Context) error {
		current, err := s.courses.FindByID(opCtx, courseID)
		if err != nil {
			return loadError(err, "course")
		}
		if err := current.CanDelete(); err != nil {
			return err
		}
		if err := s.courses.Delete(opCtx, courseID, current.Version); err != nil {
			return storeWriteError(err, "failed to delete course")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.countCourseChange("delete")
	s.logger.InfoContext(ctx, "course deleted",
		"course_id", courseID.String(),
		"actor_id", actor.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{Action: audit.ActionCourseDeleted, ActorID: actor.String(), CourseID: courseID.String()})
	return nil
}

// withCourseLock runs fn under the course lock on a detached context and
// retries once on a version conflict.
func (s *Service) withCourseLock(ctx context.Context, op string, courseID id.CourseID, fn func(opCtx context.Context) error) error {
	release, err := s.courseLocks.Lock(ctx, courseID.String())
	if err != nil {
		return err
	}
	defer release()

	opCtx, cancel := s.detach(ctx)
	defer cancel()

	for attempt := 1; ; attempt++ {
		err := fn(opCtx)
		if !errors.Is(err, sentinel.ErrConflict) {
			return err
		}
		s.countConflict(op)
		if attempt >= maxAttempts {
			return dErrors.Wrap(err, dErrors.CodeInternal, "course changed concurrently, please retry")
		}
	}
}

// storeWriteError keeps ErrConflict bare so callers can retry, and maps the
// rest onto domain codes.
func storeWriteError(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		return sentinel.ErrConflict
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "course not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
