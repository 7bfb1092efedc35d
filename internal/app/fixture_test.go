package service_test

import (
	"context"

	"github.com/okian/gradeswap/internal/adapters/repository"
	"github.com/okian/gradeswap/internal/domain/model"
)

// newFixture builds two exam models over three students.
//
// In t1 (global 1, A×2 B×1) s averages 10, d 14 and e 12. In t2 (global 2,
// A×1) s and e hold 13 and d holds 9, so s starts at a global 12.
func newFixture() *repository.MemoryStore {
	store := repository.NewMemoryStore(
		repository.WithStudents(
			model.Student{ID: "s", Name: "Sara"},
			model.Student{ID: "d", Name: "Dan"},
			model.Student{ID: "e", Name: "Eli"},
		),
		repository.WithSubjects(
			model.Subject{ID: "A", Name: "Algebra"},
			model.Subject{ID: "B", Name: "Biology"},
		),
		repository.WithExamModels(
			model.ExamModel{ID: "t1", GlobalCoefficient: 1, SubjectCoefficients: map[string]float64{"A": 2, "B": 1}},
			model.ExamModel{ID: "t2", GlobalCoefficient: 2, SubjectCoefficients: map[string]float64{"A": 1}},
		),
	)
	err := store.Add(context.Background(),
		model.GradedCopy{ID: "t1-s-A", StudentID: "s", SubjectID: "A", ExamModelID: "t1", Grade: 8},
		model.GradedCopy{ID: "t1-s-B", StudentID: "s", SubjectID: "B", ExamModelID: "t1", Grade: 14},
		model.GradedCopy{ID: "t1-d-A", StudentID: "d", SubjectID: "A", ExamModelID: "t1", Grade: 16},
		model.GradedCopy{ID: "t1-d-B", StudentID: "d", SubjectID: "B", ExamModelID: "t1", Grade: 10},
		model.GradedCopy{ID: "t1-e-A", StudentID: "e", SubjectID: "A", ExamModelID: "t1", Grade: 12},
		model.GradedCopy{ID: "t1-e-B", StudentID: "e", SubjectID: "B", ExamModelID: "t1", Grade: 12},
		model.GradedCopy{ID: "t2-s-A", StudentID: "s", SubjectID: "A", ExamModelID: "t2", Grade: 13},
		model.GradedCopy{ID: "t2-d-A", StudentID: "d", SubjectID: "A", ExamModelID: "t2", Grade: 9},
		model.GradedCopy{ID: "t2-e-A", StudentID: "e", SubjectID: "A", ExamModelID: "t2", Grade: 13},
	)
	if err != nil {
		panic(err)
	}
	return store
}
