package repository

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/okian/gradeswap/internal/domain/model"
)

// Dataset is the YAML shape used to seed a MemoryStore.
type Dataset struct {
	Students   []model.Student    `yaml:"students" validate:"dive"`
	Subjects   []model.Subject    `yaml:"subjects" validate:"dive"`
	ExamModels []model.ExamModel  `yaml:"exam_models" validate:"dive"`
	Copies     []model.GradedCopy `yaml:"copies" validate:"dive"`
}

// LoadDatasetFile reads and validates a dataset from path.
func LoadDatasetFile(ctx context.Context, path string) (*MemoryStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadDataset(ctx, f)
}

// LoadDataset decodes a YAML dataset, validates it and builds a store.
// Copies without an id receive a generated one.
func LoadDataset(ctx context.Context, r io.Reader) (*MemoryStore, error) {
	var ds Dataset
	if err := yaml.NewDecoder(r).Decode(&ds); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	for i := range ds.Copies {
		if ds.Copies[i].ID == "" {
			ds.Copies[i].ID = uuid.NewString()
		}
	}

	store := NewMemoryStore(
		WithStudents(ds.Students...),
		WithSubjects(ds.Subjects...),
		WithExamModels(ds.ExamModels...),
	)
	if err := store.Add(ctx, ds.Copies...); err != nil {
		return nil, err
	}
	return store, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that every copy references a known
// student, subject and exam model.
func (ds Dataset) Validate() error {
	if err := validate.Struct(ds); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}

	students := make(map[string]struct{}, len(ds.Students))
	for _, s := range ds.Students {
		students[s.ID] = struct{}{}
	}
	subjects := make(map[string]struct{}, len(ds.Subjects))
	for _, s := range ds.Subjects {
		subjects[s.ID] = struct{}{}
	}
	models := make(map[string]struct{}, len(ds.ExamModels))
	for _, m := range ds.ExamModels {
		models[m.ID] = struct{}{}
		for subjectID := range m.SubjectCoefficients {
			if _, ok := subjects[subjectID]; !ok {
				return fmt.Errorf("%w: exam model %q weights unknown subject %q", ErrInvalidDataset, m.ID, subjectID)
			}
		}
	}

	for _, c := range ds.Copies {
		if _, ok := students[c.StudentID]; !ok {
			return fmt.Errorf("%w: copy %q references unknown student %q", ErrInvalidDataset, c.ID, c.StudentID)
		}
		if _, ok := subjects[c.SubjectID]; !ok {
			return fmt.Errorf("%w: copy %q references unknown subject %q", ErrInvalidDataset, c.ID, c.SubjectID)
		}
		if _, ok := models[c.ExamModelID]; !ok {
			return fmt.Errorf("%w: copy %q references unknown exam model %q", ErrInvalidDataset, c.ID, c.ExamModelID)
		}
	}
	return nil
}
