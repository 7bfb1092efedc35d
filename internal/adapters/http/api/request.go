package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/okian/gradeswap/internal/domain/model"
	"github.com/okian/gradeswap/internal/domain/planner"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// goalRequest carries exactly one of average or rank; exclusivity is
// checked by the planner.
type goalRequest struct {
	Average *float64 `json:"average"`
	Rank    *int     `json:"rank" validate:"omitempty,min=1"`
}

type suggestionRequest struct {
	TargetStudentID string      `json:"target_student_id" validate:"required"`
	SubjectIDs      []string    `json:"subject_ids" validate:"omitempty,dive,required"`
	ExamModelID     string      `json:"exam_model_id"`
	Goal            goalRequest `json:"goal"`
	Limit           int         `json:"limit" validate:"gte=0"`
}

func (r suggestionRequest) toDomain() planner.SuggestionRequest {
	return planner.SuggestionRequest{
		TargetStudentID: r.TargetStudentID,
		SubjectIDs:      r.SubjectIDs,
		Goal:            planner.Goal{Average: r.Goal.Average, Rank: r.Goal.Rank},
		ExamModelID:     r.ExamModelID,
		Limit:           r.Limit,
	}
}

type planRequest struct {
	TargetStudentID string   `json:"target_student_id" validate:"required"`
	DesiredAverage  *float64 `json:"desired_average" validate:"required"`
}

type executeRequest struct {
	PlanID    string               `json:"plan_id"`
	Proposals []model.SwapProposal `json:"proposals" validate:"required,dive"`
}

type gradeRequest struct {
	Grade *float64 `json:"grade" validate:"required"`
}

// decode reads a JSON body into v and validates it. Every failure is of
// kind ErrBadRequest.
func decode(r *http.Request, v any) error {
	const op = "api.decode"
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return NewKind(op, ErrBadRequest, "empty body")
		}
		return WrapKind(op, ErrBadRequest, fmt.Errorf("invalid json: %w", err))
	}
	if err := validate.Struct(v); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}
