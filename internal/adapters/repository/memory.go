// Package repository defines the graded-copy pool and roster catalog.
package repository

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/okian/gradeswap/internal/domain/model"
	"github.com/okian/gradeswap/pkg/metrics"
)

// uniqueKey identifies the single copy allowed per student, subject and model.
type uniqueKey struct {
	studentID   string
	subjectID   string
	examModelID string
}

// contextKey groups copies that can be exchanged with each other.
type contextKey struct {
	subjectID   string
	examModelID string
}

// MemoryStore is an in-memory Pool and Catalog.
//
// Copies are indexed by id, by (student, subject, model) for the uniqueness
// invariant and by (subject, model) for candidate listings. All writes take
// the store lock, so Exchange is atomic with respect to every other write.
type MemoryStore struct {
	mu sync.RWMutex

	copies    map[string]*model.GradedCopy
	unique    map[uniqueKey]string
	byContext map[contextKey][]string

	students map[string]model.Student
	subjects map[string]model.Subject
	models   map[string]model.ExamModel
}

// NewMemoryStore creates an empty store seeded by the given options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		copies:    make(map[string]*model.GradedCopy),
		unique:    make(map[uniqueKey]string),
		byContext: make(map[contextKey][]string),
		students:  make(map[string]model.Student),
		subjects:  make(map[string]model.Subject),
		models:    make(map[string]model.ExamModel),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add inserts copies, enforcing one copy per (student, subject, model),
// unique copy ids and finite grades. Nothing is inserted when any copy is
// rejected.
func (s *MemoryStore) Add(_ context.Context, copies ...model.GradedCopy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seenIDs := make(map[string]struct{}, len(copies))
	seenKeys := make(map[uniqueKey]struct{}, len(copies))
	for _, c := range copies {
		if c.ID == "" {
			return fmt.Errorf("%w: copy for student %q has no id", ErrInvalidDataset, c.StudentID)
		}
		if math.IsNaN(c.Grade) || math.IsInf(c.Grade, 0) {
			return fmt.Errorf("%w: %w: copy %q holds %v", ErrInvalidDataset, ErrInvalidGrade, c.ID, c.Grade)
		}
		k := uniqueKey{c.StudentID, c.SubjectID, c.ExamModelID}
		if _, ok := s.copies[c.ID]; ok {
			return fmt.Errorf("%w: id %q", ErrDuplicateCopy, c.ID)
		}
		if _, ok := seenIDs[c.ID]; ok {
			return fmt.Errorf("%w: id %q", ErrDuplicateCopy, c.ID)
		}
		if _, ok := s.unique[k]; ok {
			return fmt.Errorf("%w: %s/%s/%s", ErrDuplicateCopy, c.StudentID, c.SubjectID, c.ExamModelID)
		}
		if _, ok := seenKeys[k]; ok {
			return fmt.Errorf("%w: %s/%s/%s", ErrDuplicateCopy, c.StudentID, c.SubjectID, c.ExamModelID)
		}
		seenIDs[c.ID] = struct{}{}
		seenKeys[k] = struct{}{}
	}

	for _, c := range copies {
		s.copies[c.ID] = &c
		s.unique[uniqueKey{c.StudentID, c.SubjectID, c.ExamModelID}] = c.ID
		ck := contextKey{c.SubjectID, c.ExamModelID}
		s.byContext[ck] = append(s.byContext[ck], c.ID)
	}
	metrics.UpdatePoolSize(len(s.copies))
	return nil
}

// Copies lists copies matching f ordered by copy id.
func (s *MemoryStore) Copies(ctx context.Context, f Filter) ([]model.GradedCopy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	if f.SubjectID != "" && f.ExamModelID != "" {
		ids = s.byContext[contextKey{f.SubjectID, f.ExamModelID}]
	} else {
		ids = make([]string, 0, len(s.copies))
		for id := range s.copies {
			ids = append(ids, id)
		}
	}

	out := make([]model.GradedCopy, 0, len(ids))
	for _, id := range ids {
		c := s.copies[id]
		if f.matches(c) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Copy returns the copy with the given id.
func (s *MemoryStore) Copy(_ context.Context, id string) (model.GradedCopy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.copies[id]
	if !ok {
		return model.GradedCopy{}, fmt.Errorf("%w: %q", ErrCopyNotFound, id)
	}
	return *c, nil
}

// Exchange swaps two copies' grades when both hold their expected values.
func (s *MemoryStore) Exchange(ctx context.Context, x Exchange) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	first, ok := s.copies[x.FirstCopyID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrCopyNotFound, x.FirstCopyID)
	}
	second, ok := s.copies[x.SecondCopyID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrCopyNotFound, x.SecondCopyID)
	}
	if first.SubjectID != second.SubjectID || first.ExamModelID != second.ExamModelID {
		return fmt.Errorf("%w: %q and %q", ErrCopyMismatch, first.ID, second.ID)
	}
	if first.Grade != x.FirstExpected || second.Grade != x.SecondExpected {
		return fmt.Errorf("%w: %q holds %v (expected %v), %q holds %v (expected %v)",
			ErrStaleGrade, first.ID, first.Grade, x.FirstExpected, second.ID, second.Grade, x.SecondExpected)
	}
	first.Grade, second.Grade = second.Grade, first.Grade
	return nil
}

// SetGrade overwrites a copy's grade. The grade must be finite.
func (s *MemoryStore) SetGrade(_ context.Context, id string, grade float64) (model.GradedCopy, error) {
	if math.IsNaN(grade) || math.IsInf(grade, 0) {
		return model.GradedCopy{}, fmt.Errorf("%w: %v", ErrInvalidGrade, grade)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.copies[id]
	if !ok {
		return model.GradedCopy{}, fmt.Errorf("%w: %q", ErrCopyNotFound, id)
	}
	c.Grade = grade
	return *c, nil
}

// Count returns the number of copies.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.copies)
}

// Students returns the roster ordered by id.
func (s *MemoryStore) Students(_ context.Context) ([]model.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Student, 0, len(s.students))
	for _, st := range s.students {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Student returns one roster entry.
func (s *MemoryStore) Student(_ context.Context, id string) (model.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.students[id]
	if !ok {
		return model.Student{}, fmt.Errorf("%w: %q", ErrStudentNotFound, id)
	}
	return st, nil
}

// Subjects returns the subject list ordered by id.
func (s *MemoryStore) Subjects(_ context.Context) ([]model.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Subject, 0, len(s.subjects))
	for _, sub := range s.subjects {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ExamModels returns the exam configuration ordered by id.
func (s *MemoryStore) ExamModels(_ context.Context) ([]model.ExamModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ExamModel, 0, len(s.models))
	for _, m := range s.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ExamModel returns one exam model.
func (s *MemoryStore) ExamModel(_ context.Context, id string) (model.ExamModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.models[id]
	if !ok {
		return model.ExamModel{}, fmt.Errorf("%w: %q", ErrExamModelNotFound, id)
	}
	return m, nil
}
