// Package model contains domain models passed between layers.
package model

import "github.com/okian/gradeswap/internal/domain/average"

// Student is a roster entry. Immutable for the planning engine.
type Student struct {
	ID       string `json:"id" yaml:"id" validate:"required"`
	Name     string `json:"name" yaml:"name"`
	Subgroup string `json:"subgroup" yaml:"subgroup"`
}

// Subject is a graded discipline.
type Subject struct {
	ID   string `json:"id" yaml:"id" validate:"required"`
	Name string `json:"name" yaml:"name"`
}

// ExamModel is one weighted evaluation component, e.g. one term's exam.
type ExamModel struct {
	ID                  string             `json:"id" yaml:"id" validate:"required"`
	Name                string             `json:"name" yaml:"name"`
	GlobalCoefficient   float64            `json:"global_coefficient" yaml:"global_coefficient" validate:"gte=0"`
	SubjectCoefficients map[string]float64 `json:"subject_coefficients" yaml:"subject_coefficients" validate:"dive,gte=0"`
}

// TotalCoefficients returns the sum of the model's subject coefficients.
func (m ExamModel) TotalCoefficients() float64 {
	var total float64
	for _, c := range m.SubjectCoefficients {
		total += c
	}
	return total
}

// Coefficient returns the subject's coefficient and whether the subject is
// weighted in this model at all.
func (m ExamModel) Coefficient(subjectID string) (float64, bool) {
	c, ok := m.SubjectCoefficients[subjectID]
	return c, ok
}

// GradedCopy is one anonymized answer sheet's grade for a single subject
// within a single exam model.
type GradedCopy struct {
	ID              string  `json:"id" yaml:"id"`
	StudentID       string  `json:"student_id" yaml:"student_id" validate:"required"`
	SubjectID       string  `json:"subject_id" yaml:"subject_id" validate:"required"`
	ExamModelID     string  `json:"exam_model_id" yaml:"exam_model_id" validate:"required"`
	Grade           float64 `json:"grade" yaml:"grade"`
	OwnerOperatorID string  `json:"owner_operator_id,omitempty" yaml:"owner_operator_id"`
}

// Outcome captures one party's standing before and after a simulated swap.
// A zero rank means the student is unclassified in that state.
type Outcome struct {
	AverageBefore average.Average `json:"average_before"`
	AverageAfter  average.Average `json:"average_after"`
	RankBefore    int             `json:"rank_before,omitempty"`
	RankAfter     int             `json:"rank_after,omitempty"`
}

// SwapProposal is a candidate exchange of grades between a donor copy and the
// target's copy in the same subject and exam model.
type SwapProposal struct {
	SubjectID       string `json:"subject_id" validate:"required"`
	ExamModelID     string `json:"exam_model_id" validate:"required"`
	DonorStudentID  string `json:"donor_student_id"`
	TargetStudentID string `json:"target_student_id"`
	DonorCopyID     string `json:"donor_copy_id" validate:"required"`
	TargetCopyID    string `json:"target_copy_id" validate:"required"`

	DonorGradeBefore  float64 `json:"donor_grade_before"`
	DonorGradeAfter   float64 `json:"donor_grade_after"`
	TargetGradeBefore float64 `json:"target_grade_before"`
	TargetGradeAfter  float64 `json:"target_grade_after"`

	// Gain is the target's raw grade increase in the subject.
	Gain float64 `json:"gain"`
	// Impact is the projected increase of the average being optimized: the
	// local average for suggestions, the global average for plans.
	Impact float64 `json:"impact"`

	Target Outcome `json:"target"`
	Donor  Outcome `json:"donor"`

	ReachesGoal          bool            `json:"reaches_goal"`
	RunningGlobalAverage average.Average `json:"running_global_average"`
}

// Differential is the absolute grade distance between the two copies.
func (p SwapProposal) Differential() float64 {
	return p.DonorGradeBefore - p.TargetGradeBefore
}
