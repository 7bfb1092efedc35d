package executor_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/okian/gradeswap/internal/domain/executor"
	"github.com/okian/gradeswap/internal/domain/model"
	"github.com/okian/gradeswap/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakeExchanger swaps grades in a map with compare-and-swap semantics.
type fakeExchanger struct {
	grades map[string]float64
	err    error
	calls  int
}

func (f *fakeExchanger) Exchange(_ context.Context, firstID string, firstExpected float64, secondID string, secondExpected float64) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	first, ok := f.grades[firstID]
	if !ok {
		return fmt.Errorf("%w: %q", executor.ErrCopyNotFound, firstID)
	}
	second, ok := f.grades[secondID]
	if !ok {
		return fmt.Errorf("%w: %q", executor.ErrCopyNotFound, secondID)
	}
	if first != firstExpected || second != secondExpected {
		return executor.ErrStaleSwap
	}
	f.grades[firstID], f.grades[secondID] = second, first
	return nil
}

func proposal(donor string, donorGrade float64, target string, targetGrade float64) model.SwapProposal {
	return model.SwapProposal{
		SubjectID:         "A",
		ExamModelID:       "t1",
		DonorCopyID:       donor,
		TargetCopyID:      target,
		DonorGradeBefore:  donorGrade,
		TargetGradeBefore: targetGrade,
	}
}

func TestExecutor_Execute(t *testing.T) {
	Convey("Given an executor over four copies", t, func() {
		ctx := context.Background()
		ex := &fakeExchanger{grades: map[string]float64{"d": 16, "s": 8, "e": 12, "f": 4}}
		exec := executor.New(ex)

		Convey("When a valid proposal is applied twice", func() {
			p := proposal("d", 16, "s", 8)
			first := exec.Execute(ctx, []model.SwapProposal{p})
			second := exec.Execute(ctx, []model.SwapProposal{p})

			Convey("Then the grades are exchanged once", func() {
				So(first.Applied, ShouldHaveLength, 1)
				So(first.Failed, ShouldBeEmpty)
				So(ex.grades["s"], ShouldEqual, 16)
				So(ex.grades["d"], ShouldEqual, 8)
			})

			Convey("Then the replay is stale", func() {
				So(second.Applied, ShouldBeEmpty)
				So(second.Failed, ShouldHaveLength, 1)
				So(second.Failed[0].Reason, ShouldEqual, executor.ReasonStale)
				So(errors.Is(second.Failed[0].Err, executor.ErrStaleSwap), ShouldBeTrue)
			})
		})

		Convey("When two proposals share a copy", func() {
			res := exec.Execute(ctx, []model.SwapProposal{
				proposal("d", 99, "s", 8),
				proposal("e", 12, "s", 8),
			})

			Convey("Then the second is rejected even though the first failed", func() {
				So(res.Applied, ShouldBeEmpty)
				So(res.Failed, ShouldHaveLength, 2)
				So(res.Failed[0].Reason, ShouldEqual, executor.ReasonStale)
				So(res.Failed[1].Reason, ShouldEqual, executor.ReasonCopyReuse)
				So(ex.calls, ShouldEqual, 1)
				So(ex.grades["s"], ShouldEqual, 8)
			})
		})

		Convey("When a batch mixes good and bad proposals", func() {
			res := exec.Execute(ctx, []model.SwapProposal{
				proposal("d", 16, "s", 8),
				proposal("", 0, "f", 4),
				proposal("e", 12, "e", 12),
				proposal("e", 12, "f", 4),
				proposal("ghost", 1, "x", 0),
			})

			Convey("Then each proposal succeeds or fails on its own", func() {
				So(res.Applied, ShouldHaveLength, 2)
				So(res.Applied[0].DonorCopyID, ShouldEqual, "d")
				So(res.Applied[1].DonorCopyID, ShouldEqual, "e")
				So(res.Failed, ShouldHaveLength, 3)
				So(res.Failed[0].Reason, ShouldEqual, executor.ReasonMalformed)
				So(res.Failed[1].Reason, ShouldEqual, executor.ReasonMalformed)
				So(res.Failed[2].Reason, ShouldEqual, executor.ReasonNotFound)
				So(res.Failed[2].Message, ShouldContainSubstring, "ghost")
				So(ex.grades["f"], ShouldEqual, 12)
			})
		})

		Convey("When the exchanger reports a subject mismatch", func() {
			ex.err = fmt.Errorf("%w: A vs B", executor.ErrCopyMismatch)
			res := exec.Execute(ctx, []model.SwapProposal{proposal("d", 16, "s", 8)})

			Convey("Then the failure is a mismatch", func() {
				So(res.Failed[0].Reason, ShouldEqual, executor.ReasonMismatch)
			})
		})

		Convey("When the exchanger fails unexpectedly", func() {
			ex.err = errors.New("disk on fire")
			res := exec.Execute(ctx, []model.SwapProposal{proposal("d", 16, "s", 8)})

			Convey("Then the failure is internal", func() {
				So(res.Failed[0].Reason, ShouldEqual, executor.ReasonInternal)
			})
		})

		Convey("When the context is canceled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			res := exec.Execute(cctx, []model.SwapProposal{proposal("d", 16, "s", 8)})

			Convey("Then nothing is exchanged", func() {
				So(res.Applied, ShouldBeEmpty)
				So(res.Failed[0].Reason, ShouldEqual, executor.ReasonCanceled)
				So(ex.calls, ShouldEqual, 0)
			})
		})

		Convey("When the batch is empty", func() {
			res := exec.Execute(ctx, nil)

			Convey("Then both lists are empty but not nil", func() {
				So(res.Applied, ShouldNotBeNil)
				So(res.Failed, ShouldNotBeNil)
				So(res.Applied, ShouldBeEmpty)
			})
		})
	})
}
