// Package repository defines the graded-copy pool and roster catalog.
package repository

import "github.com/okian/gradeswap/internal/domain/model"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithStudents seeds the roster.
func WithStudents(students ...model.Student) Option {
	return func(s *MemoryStore) {
		for _, st := range students {
			s.students[st.ID] = st
		}
	}
}

// WithSubjects seeds the subject list.
func WithSubjects(subjects ...model.Subject) Option {
	return func(s *MemoryStore) {
		for _, sub := range subjects {
			s.subjects[sub.ID] = sub
		}
	}
}

// WithExamModels seeds the exam configuration.
func WithExamModels(models ...model.ExamModel) Option {
	return func(s *MemoryStore) {
		for _, m := range models {
			s.models[m.ID] = m
		}
	}
}
