package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"registrar/internal/enrollment/models"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/platform/tx"
)

const uniqueViolation = "23505"

const courseColumns = `id, name, lecturer, credits, max_students, enrolled_students, enrollment_count, version, created_at, updated_at`

// PostgresStore persists courses in PostgreSQL. Enrolled student ids are a
// text[] column so one row write carries the whole aggregate.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed course store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, course *models.Course) error {
	if course == nil {
		return fmt.Errorf("course is required")
	}
	_, err := tx.ExecutorFor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO courses (`+courseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 1, $8, $9)`,
		string(course.ID), course.Name, course.Lecturer, course.Credits, course.MaxStudents,
		pq.Array(studentIDStrings(course.EnrolledStudents)), course.EnrollmentCount,
		course.CreatedAt, course.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("course %s: %w", course.ID, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create course: %w", err)
	}
	course.Version = 1
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, courseID id.CourseID) (*models.Course, error) {
	row := tx.ExecutorFor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = $1`, string(courseID))
	course, err := scanCourse(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("course %s: %w", courseID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return course, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Course, error) {
	rows, err := tx.ExecutorFor(ctx, s.db).QueryContext(ctx,
		`SELECT `+courseColumns+` FROM courses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var out []*models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		out = append(out, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return out, nil
}

// Update writes the course only if the stored version matches course.Version.
func (s *PostgresStore) Update(ctx context.Context, course *models.Course) error {
	if course == nil {
		return fmt.Errorf("course is required")
	}
	exec := tx.ExecutorFor(ctx, s.db)
	res, err := exec.ExecContext(ctx, `
		UPDATE courses
		SET name = $2, lecturer = $3, credits = $4, max_students = $5,
		    enrolled_students = $6, enrollment_count = $7, updated_at = $8,
		    version = version + 1
		WHERE id = $1 AND version = $9`,
		string(course.ID), course.Name, course.Lecturer, course.Credits, course.MaxStudents,
		pq.Array(studentIDStrings(course.EnrolledStudents)), course.EnrollmentCount,
		course.UpdatedAt, course.Version,
	)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	if err := s.checkWritten(ctx, exec, res, course.ID); err != nil {
		return err
	}
	course.Version++
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, courseID id.CourseID, version int64) error {
	exec := tx.ExecutorFor(ctx, s.db)
	res, err := exec.ExecContext(ctx,
		`DELETE FROM courses WHERE id = $1 AND version = $2`, string(courseID), version)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return s.checkWritten(ctx, exec, res, courseID)
}

// checkWritten tells a missing row apart from a stale version when a
// conditional statement touched nothing.
func (s *PostgresStore) checkWritten(ctx context.Context, exec tx.Executor, res sql.Result, courseID id.CourseID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}
	var exists bool
	if err := exec.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM courses WHERE id = $1)`, string(courseID)).Scan(&exists); err != nil {
		return fmt.Errorf("check course: %w", err)
	}
	if !exists {
		return fmt.Errorf("course %s: %w", courseID, sentinel.ErrNotFound)
	}
	return fmt.Errorf("course %s: %w", courseID, sentinel.ErrConflict)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner) (*models.Course, error) {
	var (
		c        models.Course
		code     string
		students []string
	)
	if err := row.Scan(&code, &c.Name, &c.Lecturer, &c.Credits, &c.MaxStudents,
		pq.Array(&students), &c.EnrollmentCount, &c.Version, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.ID = id.CourseID(code)
	c.EnrolledStudents = make([]id.StudentID, 0, len(students))
	for _, raw := range students {
		sid, err := id.ParseStudentID(raw)
		if err != nil {
			return nil, fmt.Errorf("course %s holds invalid student id %q: %w", code, raw, err)
		}
		c.EnrolledStudents = append(c.EnrolledStudents, sid)
	}
	return &c, nil
}

func studentIDStrings(ids []id.StudentID) []string {
	out := make([]string, len(ids))
	for i, sid := range ids {
		out[i] = sid.String()
	}
	return out
}
