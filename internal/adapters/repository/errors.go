package repository

import "errors"

// Sentinel kinds for pool and catalog errors.
var (
	ErrCopyNotFound      = errors.New("copy not found")
	ErrStudentNotFound   = errors.New("student not found")
	ErrExamModelNotFound = errors.New("exam model not found")
	ErrDuplicateCopy     = errors.New("copy already exists for student, subject and exam model")
	ErrStaleGrade        = errors.New("copy grade changed since it was read")
	ErrCopyMismatch      = errors.New("copies do not share subject and exam model")
	ErrInvalidDataset    = errors.New("invalid dataset")
	ErrInvalidGrade      = errors.New("grade must be a finite number")
)
