package course

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"registrar/internal/enrollment/models"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

// Error Contract:
// - ErrNotFound when the course does not exist
// - ErrAlreadyUsed when creating a course whose code is taken
// - ErrConflict when a conditional write carries a stale Version
//
// Stored values are copied on the way in and out so callers never share
// slices with the store.

// InMemory stores courses in memory for tests/dev.
type InMemory struct {
	mu      sync.RWMutex
	courses map[id.CourseID]*models.Course
}

func NewInMemory() *InMemory {
	return &InMemory{courses: make(map[id.CourseID]*models.Course)}
}

// Create stores a new course at version 1.
func (s *InMemory) Create(_ context.Context, course *models.Course) error {
	if course == nil {
		return fmt.Errorf("course is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.courses[course.ID]; ok {
		return fmt.Errorf("course %s: %w", course.ID, sentinel.ErrAlreadyUsed)
	}
	course.Version = 1
	s.courses[course.ID] = course.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, courseID id.CourseID) (*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	course, ok := s.courses[courseID]
	if !ok {
		return nil, fmt.Errorf("course %s: %w", courseID, sentinel.ErrNotFound)
	}
	return course.Clone(), nil
}

// List returns every course ordered by course code.
func (s *InMemory) List(_ context.Context) ([]*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Course, 0, len(s.courses))
	for _, c := range s.courses {
		out = append(out, c.Clone())
	}
	slices.SortFunc(out, func(a, b *models.Course) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return out, nil
}

// Update replaces the stored course only if its version still equals
// course.Version, then advances course.Version.
func (s *InMemory) Update(_ context.Context, course *models.Course) error {
	if course == nil {
		return fmt.Errorf("course is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.courses[course.ID]
	if !ok {
		return fmt.Errorf("course %s: %w", course.ID, sentinel.ErrNotFound)
	}
	if stored.Version != course.Version {
		return fmt.Errorf("course %s at version %d, have %d: %w", course.ID, stored.Version, course.Version, sentinel.ErrConflict)
	}
	next := course.Clone()
	next.Version = stored.Version + 1
	s.courses[course.ID] = next
	course.Version = next.Version
	return nil
}

// Delete removes the course if it is still at version.
func (s *InMemory) Delete(_ context.Context, courseID id.CourseID, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.courses[courseID]
	if !ok {
		return fmt.Errorf("course %s: %w", courseID, sentinel.ErrNotFound)
	}
	if stored.Version != version {
		return fmt.Errorf("course %s: %w", courseID, sentinel.ErrConflict)
	}
	delete(s.courses, courseID)
	return nil
}
