// Package executor applies accepted swap proposals to the graded-copy pool.
package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/gradeswap/internal/domain/claims"
	"github.com/okian/gradeswap/internal/domain/model"
	"github.com/okian/gradeswap/pkg/logger"
)

// Reason is the machine-readable cause of a failed swap.
type Reason string

// Failure reasons.
const (
	ReasonStale     Reason = "stale"
	ReasonCopyReuse Reason = "copy-reused"
	ReasonMalformed Reason = "malformed"
	ReasonNotFound  Reason = "not-found"
	ReasonMismatch  Reason = "mismatch"
	ReasonCanceled  Reason = "canceled"
	ReasonInternal  Reason = "internal"
)

// Exchanger atomically swaps the grades of two copies when both still hold
// the expected values.
type Exchanger interface {
	Exchange(ctx context.Context, firstID string, firstExpected float64, secondID string, secondExpected float64) error
}

// Failure is a proposal that was not applied.
type Failure struct {
	Proposal model.SwapProposal `json:"proposal"`
	Reason   Reason             `json:"reason"`
	Message  string             `json:"message"`
	Err      error              `json:"-"`
}

// Result splits a batch into applied and failed proposals.
type Result struct {
	Applied []model.SwapProposal `json:"applied"`
	Failed  []Failure            `json:"failed"`
}

// Executor applies proposals one by one. There is no transaction across
// proposals: each succeeds or fails on its own.
type Executor struct {
	exchanger Exchanger
	logger    logger.Logger
}

// Option applies a configuration option to the Executor.
type Option func(*Executor)

// WithLogger sets a custom logger for the executor.
func WithLogger(l logger.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Executor writing through exchanger.
func New(exchanger Exchanger, opts ...Option) *Executor {
	e := &Executor{exchanger: exchanger}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Get().Named("executor")
	}
	return e
}

// Execute applies proposals in order. A proposal is applied only if both
// copies still hold the grades recorded in it; otherwise it fails as stale.
// A copy referenced by an earlier proposal of the same batch is rejected
// whether or not that earlier proposal succeeded.
func (e *Executor) Execute(ctx context.Context, proposals []model.SwapProposal) Result {
	res := Result{
		Applied: make([]model.SwapProposal, 0, len(proposals)),
		Failed:  make([]Failure, 0),
	}
	used := claims.New(claims.WithCapacity(2 * len(proposals)))

	for _, p := range proposals {
		if err := e.apply(ctx, used, p); err != nil {
			f := Failure{Proposal: p, Reason: reasonOf(err), Message: err.Error(), Err: err}
			res.Failed = append(res.Failed, f)
			e.logger.Warn(ctx, "swap rejected",
				logger.String("donor_copy_id", p.DonorCopyID),
				logger.String("target_copy_id", p.TargetCopyID),
				logger.String("reason", string(f.Reason)),
				logger.Error(err),
			)
			continue
		}
		res.Applied = append(res.Applied, p)
		e.logger.Info(ctx, "swap applied",
			logger.ExamModelID(p.ExamModelID),
			logger.String("subject_id", p.SubjectID),
			logger.String("donor_copy_id", p.DonorCopyID),
			logger.String("target_copy_id", p.TargetCopyID),
		)
	}
	e.logger.Debug(ctx, "batch finished",
		logger.Int("applied", len(res.Applied)),
		logger.Int("failed", len(res.Failed)),
		logger.Int("copies_claimed", int(used.Size())),
	)
	return res
}

func (e *Executor) apply(ctx context.Context, used claims.Claimer, p model.SwapProposal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch {
	case p.DonorCopyID == "" || p.TargetCopyID == "":
		return fmt.Errorf("%w: both copy ids are required", ErrMalformed)
	case p.DonorCopyID == p.TargetCopyID:
		return fmt.Errorf("%w: donor and target are the same copy %q", ErrMalformed, p.DonorCopyID)
	}

	donorSeen := used.SeenAndClaim(claims.CopyKey(p.DonorCopyID))
	targetSeen := used.SeenAndClaim(claims.CopyKey(p.TargetCopyID))
	switch {
	case donorSeen:
		return fmt.Errorf("%w: %q", ErrCopyReused, p.DonorCopyID)
	case targetSeen:
		return fmt.Errorf("%w: %q", ErrCopyReused, p.TargetCopyID)
	}

	return e.exchanger.Exchange(ctx, p.DonorCopyID, p.DonorGradeBefore, p.TargetCopyID, p.TargetGradeBefore)
}

func reasonOf(err error) Reason {
	switch {
	case errors.Is(err, ErrStaleSwap):
		return ReasonStale
	case errors.Is(err, ErrCopyReused):
		return ReasonCopyReuse
	case errors.Is(err, ErrMalformed):
		return ReasonMalformed
	case errors.Is(err, ErrCopyNotFound):
		return ReasonNotFound
	case errors.Is(err, ErrCopyMismatch):
		return ReasonMismatch
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCanceled
	default:
		return ReasonInternal
	}
}
