// Package planner searches the graded-copy pool for grade exchanges that move
// a target student toward a desired average or rank, within one exam model or
// across all of them.
//
// Every computation is a pure read over a per-request snapshot; nothing is
// cached between calls and the pool is never written here.
package planner

import (
	"context"
	"fmt"
	"runtime"

	"github.com/okian/gradeswap/internal/domain/model"
	"github.com/okian/gradeswap/internal/domain/ranking"
	"github.com/okian/gradeswap/pkg/logger"
)

// Source provides the exam configuration and the copies graded in it.
type Source interface {
	ExamModels(ctx context.Context) ([]model.ExamModel, error)
	ExamModel(ctx context.Context, id string) (model.ExamModel, error)
	// ExamCopies returns every copy graded in the exam model.
	ExamCopies(ctx context.Context, examModelID string) ([]model.GradedCopy, error)
}

// Planner builds single-context suggestions and cross-context plans.
type Planner struct {
	source Source
	policy Policy

	defaultExamModel string
	maxSuggestions   int
	maxPlanSwaps     int
	concurrency      int

	logger logger.Logger
}

// Option applies a configuration option to the Planner.
type Option func(*Planner)

// WithPolicy sets the donor guard.
func WithPolicy(p Policy) Option {
	return func(pl *Planner) {
		pl.policy = p
	}
}

// WithDefaultExamModel sets the exam model used when a suggestion request
// names none.
func WithDefaultExamModel(id string) Option {
	return func(pl *Planner) {
		pl.defaultExamModel = id
	}
}

// WithMaxSuggestions caps the number of proposals returned per request.
// Zero or negative means no cap.
func WithMaxSuggestions(n int) Option {
	return func(pl *Planner) {
		pl.maxSuggestions = n
	}
}

// WithMaxPlanSwaps caps the number of swaps a global plan may accept.
// Zero or negative means no cap.
func WithMaxPlanSwaps(n int) Option {
	return func(pl *Planner) {
		pl.maxPlanSwaps = n
	}
}

// WithConcurrency bounds how many exam models are explored at once.
func WithConcurrency(n int) Option {
	return func(pl *Planner) {
		if n > 0 {
			pl.concurrency = n
		}
	}
}

// WithLogger sets a custom logger for the planner.
func WithLogger(l logger.Logger) Option {
	return func(pl *Planner) {
		if l != nil {
			pl.logger = l
		}
	}
}

// New creates a Planner reading from source.
func New(source Source, opts ...Option) *Planner {
	pl := &Planner{
		source:      source,
		concurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(pl)
	}
	if pl.logger == nil {
		pl.logger = logger.Get().Named("planner")
	}
	return pl
}

// board loads a snapshot of one exam model.
func (pl *Planner) board(ctx context.Context, m model.ExamModel) (*Board, error) {
	copies, err := pl.source.ExamCopies(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("load copies of exam model %q: %w", m.ID, err)
	}
	return NewBoard(m, copies), nil
}

// Standing resolves the current ranking of one exam model.
func (pl *Planner) Standing(ctx context.Context, examModelID string) (ranking.Standing, error) {
	m, err := pl.source.ExamModel(ctx, examModelID)
	if err != nil {
		return ranking.Standing{}, err
	}
	if err := validateModel(m); err != nil {
		return ranking.Standing{}, err
	}
	b, err := pl.board(ctx, m)
	if err != nil {
		return ranking.Standing{}, err
	}
	return b.Standing(), nil
}

// validateModel rejects exam models whose local average would be undefined.
func validateModel(m model.ExamModel) error {
	for subject, c := range m.SubjectCoefficients {
		if c < 0 {
			return &ConfigurationError{ExamModelID: m.ID, Reason: fmt.Sprintf("negative coefficient for subject %q", subject)}
		}
	}
	if m.TotalCoefficients() <= 0 {
		return &ConfigurationError{ExamModelID: m.ID, Reason: "subject coefficients sum to zero"}
	}
	return nil
}
