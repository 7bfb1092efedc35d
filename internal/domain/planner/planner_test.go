package planner_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/gradeswap/internal/domain/model"
	"github.com/okian/gradeswap/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var errUnknownModel = errors.New("unknown exam model")

// fakeSource serves a fixed exam configuration.
type fakeSource struct {
	models []model.ExamModel
	copies []model.GradedCopy
	err    error
}

func (f *fakeSource) ExamModels(context.Context) ([]model.ExamModel, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.models, nil
}

func (f *fakeSource) ExamModel(_ context.Context, id string) (model.ExamModel, error) {
	for _, m := range f.models {
		if m.ID == id {
			return m, nil
		}
	}
	return model.ExamModel{}, fmt.Errorf("%w: %q", errUnknownModel, id)
}

func (f *fakeSource) ExamCopies(_ context.Context, examModelID string) ([]model.GradedCopy, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.GradedCopy
	for _, c := range f.copies {
		if c.ExamModelID == examModelID {
			out = append(out, c)
		}
	}
	return out, nil
}

// grade builds a copy with a readable id: model-student-subject.
func grade(examModelID, studentID, subjectID string, g float64) model.GradedCopy {
	return model.GradedCopy{
		ID:          examModelID + "-" + studentID + "-" + subjectID,
		StudentID:   studentID,
		SubjectID:   subjectID,
		ExamModelID: examModelID,
		Grade:       g,
	}
}
