package planner_test

import (
	"errors"
	"testing"

	"github.com/okian/gradeswap/internal/domain/model"
	"github.com/okian/gradeswap/internal/domain/planner"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBoard_Candidates(t *testing.T) {
	Convey("Given a board of four students", t, func() {
		m := model.ExamModel{ID: "t1", GlobalCoefficient: 1, SubjectCoefficients: map[string]float64{"A": 2, "B": 1}}
		b := planner.NewBoard(m, []model.GradedCopy{
			grade("t1", "s", "A", 8), grade("t1", "s", "B", 14),
			grade("t1", "d", "A", 16), grade("t1", "d", "B", 10),
			grade("t1", "e", "A", 8), grade("t1", "e", "B", 12),
			grade("t1", "f", "A", 3),
			grade("t2", "x", "A", 20),
		})

		Convey("Then current averages and ranks are resolved", func() {
			So(b.Average("s").Value, ShouldAlmostEqual, 10, 1e-9)
			So(b.Rank("d"), ShouldEqual, 1)
			So(b.Rank("x"), ShouldEqual, 0)
			So(b.Others("s"), ShouldHaveLength, 3)
		})

		Convey("When the target searches A", func() {
			cs, err := b.Candidates("s", "A", planner.Policy{})

			Convey("Then only strictly better donor grades are offered", func() {
				So(err, ShouldBeNil)
				So(cs, ShouldHaveLength, 1)
				for _, c := range cs {
					So(c.DonorGradeBefore, ShouldBeGreaterThan, c.TargetGradeBefore)
				}
			})

			Convey("Then the proposal simulates both parties", func() {
				c := cs[0]
				So(c.DonorCopyID, ShouldEqual, "t1-d-A")
				So(c.TargetCopyID, ShouldEqual, "t1-s-A")
				So(c.Gain, ShouldEqual, 8)
				So(c.TargetGradeAfter, ShouldEqual, 16)
				So(c.DonorGradeAfter, ShouldEqual, 8)
				So(c.Target.AverageAfter.Value, ShouldAlmostEqual, 46.0/3, 1e-9)
				So(c.Impact, ShouldAlmostEqual, 46.0/3-10, 1e-9)
				So(c.Target.RankBefore, ShouldEqual, 2)
				So(c.Target.RankAfter, ShouldEqual, 1)
				So(c.Donor.AverageBefore.Value, ShouldAlmostEqual, 14, 1e-9)
				So(c.Donor.AverageAfter.Value, ShouldAlmostEqual, 26.0/3, 1e-9)
				So(c.Donor.RankBefore, ShouldEqual, 1)
				So(c.Donor.RankAfter, ShouldEqual, 3)
			})
		})

		Convey("When the target searches B where it is already best", func() {
			cs, err := b.Candidates("s", "B", planner.Policy{})
			So(err, ShouldBeNil)
			So(cs, ShouldBeEmpty)
		})

		Convey("When the target has no copy for the subject", func() {
			_, err := b.Candidates("f", "B", planner.Policy{})
			So(errors.Is(err, planner.ErrInvalidTarget), ShouldBeTrue)
		})

		Convey("When the subject is not weighted", func() {
			_, err := b.Candidates("s", "Z", planner.Policy{})
			So(errors.Is(err, planner.ErrSubjectExcluded), ShouldBeTrue)
		})

		Convey("When donors may lose at most one rank", func() {
			cs, err := b.Candidates("s", "A", planner.Policy{MaxDonorRankDrop: 1})

			Convey("Then the donor falling two ranks is filtered out", func() {
				So(err, ShouldBeNil)
				So(cs, ShouldBeEmpty)
			})
		})

		Convey("When donors may lose at most six points of average", func() {
			cs, err := b.Candidates("s", "A", planner.Policy{MaxDonorAverageDrop: 6})

			Convey("Then the 5.33 point loss is allowed", func() {
				So(err, ShouldBeNil)
				So(cs, ShouldHaveLength, 1)
			})
		})
	})
}
