package planner

import (
	"sort"

	"github.com/okian/gradeswap/internal/domain/average"
	"github.com/okian/gradeswap/internal/domain/model"
	"github.com/okian/gradeswap/internal/domain/ranking"
)

// Board is a read-only snapshot of one exam model: every copy graded in it,
// keyed by student and subject, and the averages derived from them. A Board
// is built per request and never mutated after construction.
type Board struct {
	Model model.ExamModel

	copies   map[string]map[string]model.GradedCopy
	averages map[string]average.Average
	students []string
	standing ranking.Standing
}

// NewBoard indexes copies belonging to m. Copies of other exam models are
// ignored.
func NewBoard(m model.ExamModel, copies []model.GradedCopy) *Board {
	b := &Board{
		Model:    m,
		copies:   make(map[string]map[string]model.GradedCopy),
		averages: make(map[string]average.Average),
	}
	for _, c := range copies {
		if c.ExamModelID != m.ID {
			continue
		}
		bySubject, ok := b.copies[c.StudentID]
		if !ok {
			bySubject = make(map[string]model.GradedCopy)
			b.copies[c.StudentID] = bySubject
			b.students = append(b.students, c.StudentID)
		}
		bySubject[c.SubjectID] = c
	}
	sort.Strings(b.students)
	for _, id := range b.students {
		b.averages[id] = average.Weighted(b.Grades(id), m.SubjectCoefficients)
	}
	b.standing = ranking.Resolve(b.averages)
	return b
}

// Grades returns a fresh map of the student's grades by subject.
func (b *Board) Grades(studentID string) map[string]float64 {
	bySubject := b.copies[studentID]
	out := make(map[string]float64, len(bySubject))
	for subject, c := range bySubject {
		out[subject] = c.Grade
	}
	return out
}

// Copy returns the student's copy for a subject.
func (b *Board) Copy(studentID, subjectID string) (model.GradedCopy, bool) {
	c, ok := b.copies[studentID][subjectID]
	return c, ok
}

// Average returns the student's current average, None when unclassified.
func (b *Board) Average(studentID string) average.Average {
	return b.averages[studentID]
}

// Standing returns the current ranking of the board.
func (b *Board) Standing() ranking.Standing {
	return b.standing
}

// Rank returns the student's current rank, zero when unclassified.
func (b *Board) Rank(studentID string) int {
	return b.standing.RankOf(studentID)
}

// Others returns every classified average except the student's own.
func (b *Board) Others(studentID string) []average.Average {
	out := make([]average.Average, 0, len(b.students))
	for _, id := range b.students {
		if id == studentID {
			continue
		}
		if avg := b.averages[id]; avg.Valid {
			out = append(out, avg)
		}
	}
	return out
}

// rankWith returns the rank studentID would hold with value as its average
// while the students in overrides hold the overridden averages.
func (b *Board) rankWith(studentID string, value average.Average, overrides map[string]average.Average) int {
	if !value.Valid {
		return 0
	}
	rank := 1
	for _, id := range b.students {
		if id == studentID {
			continue
		}
		other, ok := overrides[id]
		if !ok {
			other = b.averages[id]
		}
		if average.Greater(other, value) {
			rank++
		}
	}
	return rank
}

// Candidates returns every other student's copy in the subject whose grade
// is strictly greater than the target's, with both parties' simulated
// average and rank after the swap. Proposals rejected by the policy are
// dropped; an empty result is not an error.
func (b *Board) Candidates(targetID, subjectID string, policy Policy) ([]model.SwapProposal, error) {
	if _, ok := b.Model.Coefficient(subjectID); !ok {
		return nil, ErrSubjectExcluded
	}
	targetCopy, ok := b.Copy(targetID, subjectID)
	if !ok {
		return nil, ErrInvalidTarget
	}

	targetGrades := b.Grades(targetID)
	targetBefore := b.Average(targetID)
	targetRank := b.Rank(targetID)

	var out []model.SwapProposal
	for _, donorID := range b.students {
		if donorID == targetID {
			continue
		}
		donorCopy, ok := b.Copy(donorID, subjectID)
		if !ok || donorCopy.Grade <= targetCopy.Grade {
			continue
		}

		targetGrades[subjectID] = donorCopy.Grade
		targetAfter := average.Weighted(targetGrades, b.Model.SubjectCoefficients)

		donorGrades := b.Grades(donorID)
		donorGrades[subjectID] = targetCopy.Grade
		donorBefore := b.Average(donorID)
		donorAfter := average.Weighted(donorGrades, b.Model.SubjectCoefficients)

		p := model.SwapProposal{
			SubjectID:         subjectID,
			ExamModelID:       b.Model.ID,
			DonorStudentID:    donorID,
			TargetStudentID:   targetID,
			DonorCopyID:       donorCopy.ID,
			TargetCopyID:      targetCopy.ID,
			DonorGradeBefore:  donorCopy.Grade,
			DonorGradeAfter:   targetCopy.Grade,
			TargetGradeBefore: targetCopy.Grade,
			TargetGradeAfter:  donorCopy.Grade,
			Gain:              donorCopy.Grade - targetCopy.Grade,
			Impact:            average.Delta(targetBefore, targetAfter),
			Target: model.Outcome{
				AverageBefore: targetBefore,
				AverageAfter:  targetAfter,
				RankBefore:    targetRank,
				RankAfter:     b.rankWith(targetID, targetAfter, map[string]average.Average{donorID: donorAfter}),
			},
			Donor: model.Outcome{
				AverageBefore: donorBefore,
				AverageAfter:  donorAfter,
				RankBefore:    b.Rank(donorID),
				RankAfter:     b.rankWith(donorID, donorAfter, map[string]average.Average{targetID: targetAfter}),
			},
		}
		if policy.Allows(p) {
			out = append(out, p)
		}
	}
	return out, nil
}
