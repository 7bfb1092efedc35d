package planner

import (
	"github.com/okian/gradeswap/internal/domain/average"
	"github.com/okian/gradeswap/internal/domain/model"
)

// Policy guards donors against excessive degradation. The zero value
// allows every swap.
type Policy struct {
	// MaxDonorRankDrop rejects swaps that push the donor down by more than
	// this many ranks. Zero disables the check.
	MaxDonorRankDrop int
	// MaxDonorAverageDrop rejects swaps that lower the donor's average by
	// more than this amount. Zero disables the check.
	MaxDonorAverageDrop float64
}

// Allows reports whether the proposal passes the donor guard.
func (p Policy) Allows(sp model.SwapProposal) bool {
	if p.MaxDonorRankDrop > 0 && sp.Donor.RankBefore > 0 && sp.Donor.RankAfter > 0 {
		if sp.Donor.RankAfter-sp.Donor.RankBefore > p.MaxDonorRankDrop {
			return false
		}
	}
	if p.MaxDonorAverageDrop > 0 {
		if -average.Delta(sp.Donor.AverageBefore, sp.Donor.AverageAfter) > p.MaxDonorAverageDrop {
			return false
		}
	}
	return true
}
