package planner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/okian/gradeswap/internal/domain/average"
	"github.com/okian/gradeswap/internal/domain/model"
	"github.com/okian/gradeswap/internal/domain/ranking"
	"github.com/okian/gradeswap/pkg/logger"
)

// Goal is either a desired average or a desired rank, never both.
type Goal struct {
	Average *float64 `json:"average,omitempty"`
	Rank    *int     `json:"rank,omitempty"`
}

// AverageGoal builds an average goal.
func AverageGoal(v float64) Goal { return Goal{Average: &v} }

// RankGoal builds a rank goal.
func RankGoal(r int) Goal { return Goal{Rank: &r} }

func (g Goal) validate() error {
	switch {
	case g.Average == nil && g.Rank == nil:
		return fmt.Errorf("%w: one of average or rank is required", ErrInvalidGoal)
	case g.Average != nil && g.Rank != nil:
		return fmt.Errorf("%w: average and rank are mutually exclusive", ErrInvalidGoal)
	case g.Average != nil && (math.IsNaN(*g.Average) || math.IsInf(*g.Average, 0)):
		return fmt.Errorf("%w: average must be finite", ErrInvalidGoal)
	case g.Rank != nil && *g.Rank < 1:
		return fmt.Errorf("%w: %w", ErrInvalidGoal, ranking.ErrInvalidRank)
	}
	return nil
}

// SuggestionRequest asks for swaps within one exam model.
type SuggestionRequest struct {
	TargetStudentID string
	// SubjectIDs is the allow-list of subjects to search. Empty means every
	// subject weighted in the exam model.
	SubjectIDs []string
	Goal       Goal
	// ExamModelID selects the context. Empty falls back to the planner's
	// default exam model.
	ExamModelID string
	// Limit caps the returned proposals; zero uses the planner default.
	Limit int
}

// Status summarizes whether a goal can be met.
type Status string

// Request statuses.
const (
	StatusAlreadyMet   Status = "already-met"
	StatusReachable    Status = "reachable"
	StatusReached      Status = "reached"
	StatusUnreached    Status = "unreached"
	StatusNoCandidates Status = "no-candidates"
)

// SubjectStatus is the per-subject outcome of a search.
type SubjectStatus string

// Subject outcomes.
const (
	SubjectOK            SubjectStatus = "ok"
	SubjectNoCandidates  SubjectStatus = "no-candidates"
	SubjectInvalidTarget SubjectStatus = "invalid-target"
	SubjectExcluded      SubjectStatus = "excluded"
)

// SubjectOutcome reports what the search found for one subject.
type SubjectOutcome struct {
	SubjectID  string        `json:"subject_id"`
	Status     SubjectStatus `json:"status"`
	Candidates int           `json:"candidates"`
	Reason     string        `json:"reason,omitempty"`
}

// Suggestions is the ranked result of a single-context search.
type Suggestions struct {
	TargetStudentID string          `json:"target_student_id"`
	ExamModelID     string          `json:"exam_model_id"`
	Goal            Goal            `json:"goal"`
	Threshold       average.Average `json:"threshold"`
	CurrentAverage  average.Average `json:"current_average"`
	CurrentRank     int             `json:"current_rank,omitempty"`
	Status          Status          `json:"status"`

	Proposals []model.SwapProposal `json:"proposals"`
	Subjects  []SubjectOutcome     `json:"subjects"`
}

// Suggest searches the allowed subjects of one exam model for swaps that
// raise the target's average, ranked by resulting average then by smallest
// grade differential.
func (pl *Planner) Suggest(ctx context.Context, req SuggestionRequest) (Suggestions, error) {
	if err := req.Goal.validate(); err != nil {
		return Suggestions{}, err
	}
	examModelID := req.ExamModelID
	if examModelID == "" {
		examModelID = pl.defaultExamModel
	}
	if examModelID == "" {
		return Suggestions{}, &ConfigurationError{Reason: "no exam model selected and no default configured"}
	}

	m, err := pl.source.ExamModel(ctx, examModelID)
	if err != nil {
		return Suggestions{}, err
	}
	if err := validateModel(m); err != nil {
		return Suggestions{}, err
	}
	b, err := pl.board(ctx, m)
	if err != nil {
		return Suggestions{}, err
	}

	threshold, err := resolveThreshold(b, req.TargetStudentID, req.Goal)
	if err != nil {
		return Suggestions{}, err
	}

	res := Suggestions{
		TargetStudentID: req.TargetStudentID,
		ExamModelID:     m.ID,
		Goal:            req.Goal,
		CurrentAverage:  b.Average(req.TargetStudentID),
		CurrentRank:     b.Rank(req.TargetStudentID),
		Proposals:       make([]model.SwapProposal, 0),
	}
	if !math.IsInf(threshold, -1) {
		res.Threshold = average.Of(threshold)
	}

	var pooled []model.SwapProposal
	res.Subjects, pooled = pl.explore(b, req.TargetStudentID, subjectsOf(m, req.SubjectIDs))
	for i := range pooled {
		pooled[i].ReachesGoal = average.AtLeast(pooled[i].Target.AverageAfter, threshold)
	}
	sortByResultingAverage(pooled)

	limit := req.Limit
	if limit <= 0 {
		limit = pl.maxSuggestions
	}
	if limit > 0 && len(pooled) > limit {
		pooled = pooled[:limit]
	}
	res.Proposals = append(res.Proposals, pooled...)

	switch {
	case average.AtLeast(res.CurrentAverage, threshold):
		res.Status = StatusAlreadyMet
	case len(res.Proposals) == 0:
		res.Status = StatusNoCandidates
	case res.Proposals[0].ReachesGoal:
		res.Status = StatusReachable
	default:
		res.Status = StatusUnreached
	}

	pl.logger.Debug(ctx, "suggestions computed",
		logger.StudentID(req.TargetStudentID),
		logger.ExamModelID(m.ID),
		logger.Status(string(res.Status)),
		logger.Int("proposals", len(res.Proposals)),
	)
	return res, nil
}

// resolveThreshold converts the goal into the minimum average the target
// must reach. Rank goals are measured against the other classified students.
func resolveThreshold(b *Board, targetID string, g Goal) (float64, error) {
	if g.Average != nil {
		return *g.Average, nil
	}
	return ranking.Threshold(b.Others(targetID), *g.Rank)
}

// explore runs the candidate search for each subject and keeps positive
// gains only.
func (pl *Planner) explore(b *Board, targetID string, subjectIDs []string) ([]SubjectOutcome, []model.SwapProposal) {
	outcomes := make([]SubjectOutcome, 0, len(subjectIDs))
	var pooled []model.SwapProposal
	for _, subjectID := range subjectIDs {
		candidates, err := b.Candidates(targetID, subjectID, pl.policy)
		switch {
		case errors.Is(err, ErrInvalidTarget):
			outcomes = append(outcomes, SubjectOutcome{SubjectID: subjectID, Status: SubjectInvalidTarget, Reason: err.Error()})
			continue
		case errors.Is(err, ErrSubjectExcluded):
			outcomes = append(outcomes, SubjectOutcome{SubjectID: subjectID, Status: SubjectExcluded, Reason: err.Error()})
			continue
		}

		kept := 0
		for _, c := range candidates {
			if c.Gain > 0 {
				pooled = append(pooled, c)
				kept++
			}
		}
		status := SubjectOK
		if kept == 0 {
			status = SubjectNoCandidates
		}
		outcomes = append(outcomes, SubjectOutcome{SubjectID: subjectID, Status: status, Candidates: kept})
	}
	return outcomes, pooled
}

// subjectsOf returns the requested subjects without duplicates, or every
// weighted subject of m in id order when none were requested.
func subjectsOf(m model.ExamModel, requested []string) []string {
	if len(requested) == 0 {
		out := make([]string, 0, len(m.SubjectCoefficients))
		for id := range m.SubjectCoefficients {
			out = append(out, id)
		}
		sort.Strings(out)
		return out
	}
	seen := make(map[string]struct{}, len(requested))
	out := make([]string, 0, len(requested))
	for _, id := range requested {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// sortByResultingAverage orders proposals by the target's average after the
// swap, then by smallest grade differential. Subject and donor copy ids make
// the order total.
func sortByResultingAverage(ps []model.SwapProposal) {
	sort.SliceStable(ps, func(i, j int) bool {
		a, b := ps[i], ps[j]
		if !average.Equal(a.Target.AverageAfter, b.Target.AverageAfter) {
			return average.Greater(a.Target.AverageAfter, b.Target.AverageAfter)
		}
		if a.Differential() != b.Differential() {
			return a.Differential() < b.Differential()
		}
		if a.SubjectID != b.SubjectID {
			return a.SubjectID < b.SubjectID
		}
		return a.DonorCopyID < b.DonorCopyID
	})
}
