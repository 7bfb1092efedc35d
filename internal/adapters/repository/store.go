// Package repository defines the graded-copy pool and roster catalog.
package repository

import (
	"context"

	"github.com/okian/gradeswap/internal/domain/model"
)

// Filter narrows a copy listing. Empty fields match everything.
type Filter struct {
	StudentID   string
	SubjectID   string
	ExamModelID string
}

func (f Filter) matches(c *model.GradedCopy) bool {
	switch {
	case f.StudentID != "" && c.StudentID != f.StudentID:
		return false
	case f.SubjectID != "" && c.SubjectID != f.SubjectID:
		return false
	case f.ExamModelID != "" && c.ExamModelID != f.ExamModelID:
		return false
	}
	return true
}

// Exchange describes an atomic swap of two copies' grades guarded by the
// grades each copy is expected to hold.
type Exchange struct {
	FirstCopyID    string
	FirstExpected  float64
	SecondCopyID   string
	SecondExpected float64
}

// Pool provides read/write access to graded copies.
type Pool interface {
	// Copies lists copies matching the filter, ordered by copy id.
	Copies(ctx context.Context, f Filter) ([]model.GradedCopy, error)

	// Copy returns one copy. Returns ErrCopyNotFound if unknown.
	Copy(ctx context.Context, id string) (model.GradedCopy, error)

	// Exchange swaps the grades of two copies if both still hold their
	// expected grades. Returns ErrStaleGrade otherwise, leaving both untouched.
	Exchange(ctx context.Context, x Exchange) error

	// SetGrade records an ordinary grading write.
	SetGrade(ctx context.Context, id string, grade float64) (model.GradedCopy, error)

	// Count returns the number of copies in the pool.
	Count(ctx context.Context) int
}

// Catalog exposes the roster and exam configuration.
type Catalog interface {
	Students(ctx context.Context) ([]model.Student, error)
	Student(ctx context.Context, id string) (model.Student, error)
	Subjects(ctx context.Context) ([]model.Subject, error)
	ExamModels(ctx context.Context) ([]model.ExamModel, error)
	ExamModel(ctx context.Context, id string) (model.ExamModel, error)
}
