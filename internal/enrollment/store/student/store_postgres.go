package student

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

const studentColumns = `id, student_number, name, email, study_year, enrolled_courses, total_credits, version, created_at, updated_at`

// PostgresStore persists students in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed student store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts the student. It joins a transaction carried in ctx so
// sign-up can create the account and the student atomically.
func (s *PostgresStore) Create(ctx context.Context, student *models.Student) error {
	if student == nil {
		return fmt.Errorf("student is required")
	}
	_, err := tx.ExecutorFor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO students (`+studentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 1, $8, $9)`,
		student.ID.String(), student.Number, student.Name, student.Email, student.StudyYear,
		pq.Array(courseIDStrings(student.EnrolledCourses)), student.TotalCredits,
		student.CreatedAt, student.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("student %s: %w", student.Number, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("create student: %w", err)
	}
	student.Version = 1
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, studentID id.StudentID) (*models.Student, error) {
	row := tx.ExecutorFor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1`, studentID.String())
	student, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("student %s: %w", studentID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return student, nil
}

// FindByIDs returns the students that exist, in the order requested.
func (s *PostgresStore) FindByIDs(ctx context.Context, ids []id.StudentID) ([]*models.Student, error) {
	if len(ids) == 0 {
		return []*models.Student{}, nil
	}
	raw := make([]string, len(ids))
	for i, sid := range ids {
		raw[i] = sid.String()
	}
	rows, err := tx.ExecutorFor(ctx, s.db).QueryContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id::text = ANY($1)`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("find students: %w", err)
	}
	defer rows.Close()

	byID := make(map[id.StudentID]*models.Student, len(ids))
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		byID[student.ID] = student
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find students: %w", err)
	}

	out := make([]*models.Student, 0, len(byID))
	for _, sid := range ids {
		if student, ok := byID[sid]; ok {
			out = append(out, student)
		}
	}
	return out, nil
}

// Update writes the student only if the stored version matches student.Version.
func (s *PostgresStore) Update(ctx context.Context, student *models.Student) error {
	if student == nil {
		return fmt.Errorf("student is required")
	}
	exec := tx.ExecutorFor(ctx, s.db)
	res, err := exec.ExecContext(ctx, `
		UPDATE students
		SET name = $2, email = $3, study_year = $4, enrolled_courses = $5,
		    total_credits = $6, updated_at = $7, version = version + 1
		WHERE id = $1 AND version = $8`,
		student.ID.String(), student.Name, student.Email, student.StudyYear,
		pq.Array(courseIDStrings(student.EnrolledCourses)), student.TotalCredits,
		student.UpdatedAt, student.Version,
	)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		var exists bool
		if err := exec.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM students WHERE id = $1)`, student.ID.String()).Scan(&exists); err != nil {
			return fmt.Errorf("check student: %w", err)
		}
		if !exists {
			return fmt.Errorf("student %s: %w", student.ID, sentinel.ErrNotFound)
		}
		return fmt.Errorf("student %s: %w", student.ID, sentinel.ErrConflict)
	}
	student.Version++
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (*models.Student, error) {
	var (
		st      models.Student
		rawID   string
		courses []string
	)
	if err := row.Scan(&rawID, &st.Number, &st.Name, &st.Email, &st.StudyYear,
		pq.Array(&courses), &st.TotalCredits, &st.Version, &st.CreatedAt, &st.UpdatedAt); err != nil {
		return nil, err
	}
	sid, err := id.ParseStudentID(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid student id %q: %w", rawID, err)
	}
	st.ID = sid
	st.EnrolledCourses = make([]id.CourseID, len(courses))
	for i, c := range courses {
		st.EnrolledCourses[i] = id.CourseID(c)
	}
	return &st, nil
}

func courseIDStrings(ids []id.CourseID) []string {
	out := make([]string, len(ids))
	for i, c := range ids {
		out[i] = string(c)
	}
	return out
}
