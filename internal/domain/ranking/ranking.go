// Package ranking resolves competition ranks from per-student averages.
package ranking

import (
	"errors"
	"math"
	"sort"

	"github.com/okian/gradeswap/internal/domain/average"
)

// ErrInvalidRank is returned for ranks below 1.
var ErrInvalidRank = errors.New("rank must be at least 1")

// Entry is one classified student in a standing.
type Entry struct {
	Rank      int             `json:"rank"`
	StudentID string          `json:"student_id"`
	Average   average.Average `json:"average"`
}

// Standing is the resolved ranking of one context.
type Standing struct {
	Ranked       []Entry  `json:"ranked"`
	Unclassified []string `json:"unclassified"`

	ranks map[string]int
}

// Resolve sorts classified students by average descending and assigns each
// rank = 1 + number of strictly greater averages. Students without an average
// are listed as unclassified and do not take part in ranking. Ordering among
// equal averages is by student id only to keep output deterministic.
func Resolve(averages map[string]average.Average) Standing {
	s := Standing{
		Ranked:       make([]Entry, 0, len(averages)),
		Unclassified: make([]string, 0),
		ranks:        make(map[string]int, len(averages)),
	}
	for id, avg := range averages {
		if !avg.Valid {
			s.Unclassified = append(s.Unclassified, id)
			continue
		}
		s.Ranked = append(s.Ranked, Entry{StudentID: id, Average: avg})
	}
	sort.Strings(s.Unclassified)
	sort.Slice(s.Ranked, func(i, j int) bool {
		a, b := s.Ranked[i], s.Ranked[j]
		if !average.Equal(a.Average, b.Average) {
			return a.Average.Value > b.Average.Value
		}
		return a.StudentID < b.StudentID
	})

	for i := range s.Ranked {
		if i > 0 && average.Equal(s.Ranked[i].Average, s.Ranked[i-1].Average) {
			s.Ranked[i].Rank = s.Ranked[i-1].Rank
		} else {
			s.Ranked[i].Rank = i + 1
		}
		s.ranks[s.Ranked[i].StudentID] = s.Ranked[i].Rank
	}
	return s
}

// RankOf returns the student's rank, or zero when unclassified or unknown.
func (s Standing) RankOf(studentID string) int {
	return s.ranks[studentID]
}

// Averages returns the classified averages in rank order.
func (s Standing) Averages() []average.Average {
	out := make([]average.Average, len(s.Ranked))
	for i, e := range s.Ranked {
		out[i] = e.Average
	}
	return out
}

// RankFor returns the rank a value would hold among others. It returns zero
// for an undefined value.
func RankFor(value average.Average, others []average.Average) int {
	if !value.Valid {
		return 0
	}
	rank := 1
	for _, o := range others {
		if average.Greater(o, value) {
			rank++
		}
	}
	return rank
}

// Threshold converts a desired rank into the minimum average that secures it
// against the given other students: the rank-th highest classified average.
// With fewer classified others than rank, every average qualifies and the
// result is negative infinity.
func Threshold(others []average.Average, rank int) (float64, error) {
	if rank < 1 {
		return 0, ErrInvalidRank
	}
	values := make([]float64, 0, len(others))
	for _, o := range others {
		if o.Valid {
			values = append(values, o.Value)
		}
	}
	if len(values) < rank {
		return math.Inf(-1), nil
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))
	return values[rank-1], nil
}
