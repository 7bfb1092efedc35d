package repository_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/okian/gradeswap/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

const validDataset = `
students:
  - {id: s1, name: Ana, subgroup: G1}
  - {id: s2, name: Ben}
subjects:
  - {id: A, name: Algebra}
exam_models:
  - id: t1
    name: Term 1
    global_coefficient: 1
    subject_coefficients:
      A: 2
copies:
  - {id: fixed, student_id: s1, subject_id: A, exam_model_id: t1, grade: 12}
  - {student_id: s2, subject_id: A, exam_model_id: t1, grade: 14, owner_operator_id: op-1}
`

func TestLoadDataset(t *testing.T) {
	Convey("Given a valid YAML dataset", t, func() {
		ctx := context.Background()
		store, err := repository.LoadDataset(ctx, strings.NewReader(validDataset))

		Convey("Then the store holds it and missing ids are generated", func() {
			So(err, ShouldBeNil)
			So(store.Count(ctx), ShouldEqual, 2)

			fixed, err := store.Copy(ctx, "fixed")
			So(err, ShouldBeNil)
			So(fixed.Grade, ShouldEqual, 12)

			copies, _ := store.Copies(ctx, repository.Filter{StudentID: "s2"})
			So(copies, ShouldHaveLength, 1)
			So(copies[0].ID, ShouldHaveLength, 36)
			So(copies[0].OwnerOperatorID, ShouldEqual, "op-1")

			m, err := store.ExamModel(ctx, "t1")
			So(err, ShouldBeNil)
			So(m.SubjectCoefficients["A"], ShouldEqual, 2)
		})
	})

	Convey("Given an empty document", t, func() {
		store, err := repository.LoadDataset(context.Background(), strings.NewReader(""))

		Convey("Then an empty store is returned", func() {
			So(err, ShouldBeNil)
			So(store.Count(context.Background()), ShouldEqual, 0)
		})
	})

	Convey("Given invalid datasets", t, func() {
		cases := map[string]string{
			"malformed yaml":       "students: [",
			"student without id":   "students:\n  - {name: Ana}\n",
			"negative coefficient": "subjects: [{id: A}]\nexam_models:\n  - {id: t1, subject_coefficients: {A: -1}}\n",
			"unknown subject":      "exam_models:\n  - {id: t1, subject_coefficients: {Z: 1}}\n",
			"unknown student":      "subjects: [{id: A}]\nexam_models: [{id: t1, subject_coefficients: {A: 1}}]\ncopies:\n  - {student_id: s9, subject_id: A, exam_model_id: t1}\n",
			"copy without subject": "students: [{id: s1}]\ncopies:\n  - {student_id: s1, exam_model_id: t1}\n",
		}
		for name, doc := range cases {
			Convey("Then "+name+" is rejected", func() {
				_, err := repository.LoadDataset(context.Background(), strings.NewReader(doc))
				So(errors.Is(err, repository.ErrInvalidDataset), ShouldBeTrue)
			})
		}
	})

	Convey("Given two copies for the same triple", t, func() {
		doc := "students: [{id: s1}]\nsubjects: [{id: A}]\nexam_models: [{id: t1, subject_coefficients: {A: 1}}]\ncopies:\n" +
			"  - {student_id: s1, subject_id: A, exam_model_id: t1, grade: 1}\n" +
			"  - {student_id: s1, subject_id: A, exam_model_id: t1, grade: 2}\n"
		_, err := repository.LoadDataset(context.Background(), strings.NewReader(doc))

		Convey("Then the duplicate copy rejects the dataset", func() {
			So(errors.Is(err, repository.ErrDuplicateCopy), ShouldBeTrue)
		})
	})

	Convey("Given grades that are not finite", t, func() {
		header := "students: [{id: s1}]\nsubjects: [{id: A}]\nexam_models: [{id: t1, subject_coefficients: {A: 1}}]\ncopies:\n"
		cases := map[string]string{
			"nan":               ".nan",
			"positive infinity": ".inf",
			"negative infinity": "-.inf",
		}
		for name, g := range cases {
			Convey("Then a "+name+" grade is rejected", func() {
				doc := header + "  - {student_id: s1, subject_id: A, exam_model_id: t1, grade: " + g + "}\n"
				_, err := repository.LoadDataset(context.Background(), strings.NewReader(doc))
				So(errors.Is(err, repository.ErrInvalidDataset), ShouldBeTrue)
				So(errors.Is(err, repository.ErrInvalidGrade), ShouldBeTrue)
			})
		}
	})

	Convey("Given a missing file", t, func() {
		_, err := repository.LoadDatasetFile(context.Background(), "/non/existent/dataset.yaml")
		So(err, ShouldNotBeNil)
	})
}
