package student

import (
	"context"
	"fmt"
	"sync"

	"registrar/internal/enrollment/models"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

// Error Contract:
// - ErrNotFound when the student does not exist
// - ErrAlreadyUsed when the id or student number is taken
// - ErrConflict when a conditional write carries a stale Version

// InMemory stores students in memory for tests/dev.
type InMemory struct {
	mu       sync.RWMutex
	students map[id.StudentID]*models.Student
	numbers  map[string]id.StudentID
}

func NewInMemory() *InMemory {
	return &InMemory{
		students: make(map[id.StudentID]*models.Student),
		numbers:  make(map[string]id.StudentID),
	}
}

func (s *InMemory) Create(_ context.Context, student *models.Student) error {
	if student == nil {
		return fmt.Errorf("student is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.students[student.ID]; ok {
		return fmt.Errorf("student %s: %w", student.ID, sentinel.ErrAlreadyUsed)
	}
	if _, ok := s.numbers[student.Number]; ok {
		return fmt.Errorf("student number %s: %w", student.Number, sentinel.ErrAlreadyUsed)
	}
	student.Version = 1
	s.students[student.ID] = student.Clone()
	s.numbers[student.Number] = student.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, studentID id.StudentID) (*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	student, ok := s.students[studentID]
	if !ok {
		return nil, fmt.Errorf("student %s: %w", studentID, sentinel.ErrNotFound)
	}
	return student.Clone(), nil
}

// FindByIDs returns the students that exist, in the order requested.
// Unknown ids are skipped.
func (s *InMemory) FindByIDs(_ context.Context, ids []id.StudentID) ([]*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Student, 0, len(ids))
	for _, sid := range ids {
		if student, ok := s.students[sid]; ok {
			out = append(out, student.Clone())
		}
	}
	return out, nil
}

// Update replaces the stored student only if its version still equals
// student.Version, then advances student.Version.
func (s *InMemory) Update(_ context.Context, student *models.Student) error {
	if student == nil {
		return fmt.Errorf("student is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.students[student.ID]
	if !ok {
		return fmt.Errorf("student %s: %w", student.ID, sentinel.ErrNotFound)
	}
	if stored.Version != student.Version {
		return fmt.Errorf("student %s at version %d, have %d: %w", student.ID, stored.Version, student.Version, sentinel.ErrConflict)
	}
	next := student.Clone()
	next.Version = stored.Version + 1
	s.students[student.ID] = next
	student.Version = next.Version
	return nil
}
