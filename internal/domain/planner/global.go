package planner

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/okian/gradeswap/internal/domain/average"
	"github.com/okian/gradeswap/internal/domain/claims"
	"github.com/okian/gradeswap/internal/domain/model"
	"github.com/okian/gradeswap/pkg/logger"
)

// ModelBreakdown reports one exam model's share of a global plan.
type ModelBreakdown struct {
	ExamModelID       string               `json:"exam_model_id"`
	Name              string               `json:"name"`
	GlobalCoefficient float64              `json:"global_coefficient"`
	AverageBefore     average.Average      `json:"average_before"`
	AverageAfter      average.Average      `json:"average_after"`
	Gain              float64              `json:"gain"`
	Proposals         []model.SwapProposal `json:"proposals"`
	Subjects          []SubjectOutcome     `json:"subjects"`
}

// GlobalPlan is the greedy cross-context plan for one target.
type GlobalPlan struct {
	// ID is assigned by the caller to correlate a plan with its execution.
	ID              string           `json:"plan_id,omitempty"`
	TargetStudentID string           `json:"target_student_id"`
	DesiredAverage  float64          `json:"desired_average"`
	InitialAverage  average.Average  `json:"initial_average"`
	FinalAverage    average.Average  `json:"final_average"`
	Status          Status           `json:"status"`
	PerModel        []ModelBreakdown `json:"per_model_breakdown"`
	// FlatPlan lists accepted swaps in acceptance order. Each carries the
	// running global average after it is applied.
	FlatPlan []model.SwapProposal `json:"flat_plan"`
}

// explored is one exam model's snapshot and its positive-gain candidates.
type explored struct {
	board      *Board
	outcomes   []SubjectOutcome
	candidates []model.SwapProposal
}

// ranked is a pooled candidate tagged with the index of its exam model.
type ranked struct {
	idx int
	model.SwapProposal
}

// GlobalPlan combines every exam model's local average, weighted by global
// coefficient, and greedily accepts the swaps with the highest projected
// global impact until desired is reached or candidates run out. A goal that
// cannot be met yields the best attainable plan with StatusUnreached.
func (pl *Planner) GlobalPlan(ctx context.Context, targetID string, desired float64) (GlobalPlan, error) {
	if math.IsNaN(desired) || math.IsInf(desired, 0) {
		return GlobalPlan{}, fmt.Errorf("%w: desired global average must be finite", ErrInvalidGoal)
	}
	models, err := pl.source.ExamModels(ctx)
	if err != nil {
		return GlobalPlan{}, fmt.Errorf("load exam models: %w", err)
	}
	totalGlobal, err := validateModels(models)
	if err != nil {
		return GlobalPlan{}, err
	}

	results, err := pl.exploreAll(ctx, models, targetID)
	if err != nil {
		return GlobalPlan{}, err
	}

	// Simulated state per model: the target's grades and local average, and
	// the averages of donors already accepted.
	grades := make([]map[string]float64, len(models))
	locals := make([]average.Local, len(models))
	donors := make([]map[string]average.Average, len(models))
	for i, r := range results {
		grades[i] = r.board.Grades(targetID)
		locals[i] = average.Local{Average: r.board.Average(targetID), GlobalCoefficient: models[i].GlobalCoefficient}
		donors[i] = make(map[string]average.Average)
	}

	plan := GlobalPlan{
		TargetStudentID: targetID,
		DesiredAverage:  desired,
		InitialAverage:  average.Global(locals),
		FlatPlan:        make([]model.SwapProposal, 0),
	}
	running := plan.InitialAverage

	if average.AtLeast(running, desired) {
		plan.Status = StatusAlreadyMet
	} else {
		pool := poolByImpact(models, results, totalGlobal)
		used := claims.New(claims.WithCapacity(2 * len(pool)))
		for _, c := range pool {
			if pl.maxPlanSwaps > 0 && len(plan.FlatPlan) >= pl.maxPlanSwaps {
				break
			}
			pair := claims.PairKey(c.SubjectID, c.ExamModelID)
			donor := claims.CopyKey(c.DonorCopyID)
			if used.Claimed(pair) || used.Claimed(donor) {
				continue
			}
			used.SeenAndClaim(pair)
			used.SeenAndClaim(donor)

			i := c.idx
			b := results[i].board
			before := locals[i].Average
			grades[i][c.SubjectID] = c.TargetGradeAfter
			after := average.Weighted(grades[i], models[i].SubjectCoefficients)
			locals[i].Average = after
			running = average.Global(locals)

			p := c.SwapProposal
			p.Target.AverageBefore = before
			p.Target.AverageAfter = after
			p.Target.RankBefore = b.rankWith(targetID, before, donors[i])
			donors[i][p.DonorStudentID] = p.Donor.AverageAfter
			p.Target.RankAfter = b.rankWith(targetID, after, donors[i])
			p.RunningGlobalAverage = running
			p.ReachesGoal = average.AtLeast(running, desired)
			plan.FlatPlan = append(plan.FlatPlan, p)

			if p.ReachesGoal {
				break
			}
		}
		plan.Status = StatusUnreached
		if average.AtLeast(running, desired) {
			plan.Status = StatusReached
		}
	}
	plan.FinalAverage = running
	plan.PerModel = breakdown(models, results, locals, plan.FlatPlan, targetID)

	pl.logger.Debug(ctx, "global plan computed",
		logger.StudentID(targetID),
		logger.Status(string(plan.Status)),
		logger.Int("swaps", len(plan.FlatPlan)),
		logger.Float64("desired", desired),
	)
	return plan, nil
}

// validateModels checks every model and returns the sum of global
// coefficients.
func validateModels(models []model.ExamModel) (float64, error) {
	if len(models) == 0 {
		return 0, &ConfigurationError{Reason: "no exam models configured"}
	}
	var total float64
	for _, m := range models {
		if err := validateModel(m); err != nil {
			return 0, err
		}
		if m.GlobalCoefficient < 0 {
			return 0, &ConfigurationError{ExamModelID: m.ID, Reason: "negative global coefficient"}
		}
		total += m.GlobalCoefficient
	}
	if total <= 0 {
		return 0, &ConfigurationError{Reason: "global coefficients sum to zero"}
	}
	return total, nil
}

// exploreAll snapshots every exam model and enumerates its positive-gain
// candidates with no local goal. Models are explored concurrently; the
// snapshots are independent reads.
func (pl *Planner) exploreAll(ctx context.Context, models []model.ExamModel, targetID string) ([]explored, error) {
	results := make([]explored, len(models))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pl.concurrency)
	for i, m := range models {
		g.Go(func() error {
			b, err := pl.board(gctx, m)
			if err != nil {
				return err
			}
			outcomes, candidates := pl.explore(b, targetID, subjectsOf(m, nil))
			results[i] = explored{board: b, outcomes: outcomes, candidates: candidates}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// poolByImpact computes each candidate's projected global impact,
// ((gain × coeff ÷ model total) × global coeff) ÷ global total, and returns
// all candidates with positive impact in descending impact order.
func poolByImpact(models []model.ExamModel, results []explored, totalGlobal float64) []ranked {
	var pool []ranked
	for i, r := range results {
		m := models[i]
		total := m.TotalCoefficients()
		for _, c := range r.candidates {
			coeff, _ := m.Coefficient(c.SubjectID)
			c.Impact = ((c.Gain * coeff / total) * m.GlobalCoefficient) / totalGlobal
			if c.Impact <= 0 {
				continue
			}
			pool = append(pool, ranked{idx: i, SwapProposal: c})
		}
	}
	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if a.Impact != b.Impact {
			return a.Impact > b.Impact
		}
		if a.Gain != b.Gain {
			return a.Gain < b.Gain
		}
		if a.ExamModelID != b.ExamModelID {
			return a.ExamModelID < b.ExamModelID
		}
		if a.SubjectID != b.SubjectID {
			return a.SubjectID < b.SubjectID
		}
		return a.DonorCopyID < b.DonorCopyID
	})
	return pool
}

// breakdown groups accepted swaps by exam model.
func breakdown(models []model.ExamModel, results []explored, locals []average.Local, flat []model.SwapProposal, targetID string) []ModelBreakdown {
	out := make([]ModelBreakdown, len(models))
	index := make(map[string]int, len(models))
	for i, m := range models {
		before := results[i].board.Average(targetID)
		out[i] = ModelBreakdown{
			ExamModelID:       m.ID,
			Name:              m.Name,
			GlobalCoefficient: m.GlobalCoefficient,
			AverageBefore:     before,
			AverageAfter:      locals[i].Average,
			Gain:              average.Delta(before, locals[i].Average),
			Proposals:         make([]model.SwapProposal, 0),
			Subjects:          results[i].outcomes,
		}
		index[m.ID] = i
	}
	for _, p := range flat {
		i := index[p.ExamModelID]
		out[i].Proposals = append(out[i].Proposals, p)
	}
	return out
}
