// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/gradeswap/internal/adapters/repository"
	"github.com/okian/gradeswap/internal/domain/executor"
	"github.com/okian/gradeswap/internal/domain/model"
	"github.com/okian/gradeswap/internal/domain/planner"
	"github.com/okian/gradeswap/internal/domain/ranking"
	"github.com/okian/gradeswap/pkg/logger"
	"github.com/okian/gradeswap/pkg/metrics"
)

// sourceAdapter adapts the repository to planner.Source.
type sourceAdapter struct {
	pool    repository.Pool
	catalog repository.Catalog
}

func (a *sourceAdapter) ExamModels(ctx context.Context) ([]model.ExamModel, error) {
	return a.catalog.ExamModels(ctx)
}

func (a *sourceAdapter) ExamModel(ctx context.Context, id string) (model.ExamModel, error) {
	return a.catalog.ExamModel(ctx, id)
}

func (a *sourceAdapter) ExamCopies(ctx context.Context, examModelID string) ([]model.GradedCopy, error) {
	return a.pool.Copies(ctx, repository.Filter{ExamModelID: examModelID})
}

// exchangeAdapter adapts repository.Pool to executor.Exchanger, translating
// pool errors into executor failure kinds.
type exchangeAdapter struct {
	pool repository.Pool
}

func (a *exchangeAdapter) Exchange(ctx context.Context, firstID string, firstExpected float64, secondID string, secondExpected float64) error {
	err := a.pool.Exchange(ctx, repository.Exchange{
		FirstCopyID:    firstID,
		FirstExpected:  firstExpected,
		SecondCopyID:   secondID,
		SecondExpected: secondExpected,
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrStaleGrade):
		return fmt.Errorf("%w: %w", executor.ErrStaleSwap, err)
	case errors.Is(err, repository.ErrCopyNotFound):
		return fmt.Errorf("%w: %w", executor.ErrCopyNotFound, err)
	case errors.Is(err, repository.ErrCopyMismatch):
		return fmt.Errorf("%w: %w", executor.ErrCopyMismatch, err)
	default:
		return err
	}
}

// Service is the facade the HTTP API depends on.
type Service struct {
	pool     repository.Pool
	catalog  repository.Catalog
	planner  *planner.Planner
	executor *executor.Executor

	plannerOpts []planner.Option
	startedAt   time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaultExamModel sets the exam model used by suggestion requests that
// name none.
func WithDefaultExamModel(id string) Option {
	return func(s *Service) {
		s.plannerOpts = append(s.plannerOpts, planner.WithDefaultExamModel(id))
	}
}

// WithMaxSuggestions caps proposals per suggestion response.
func WithMaxSuggestions(n int) Option {
	return func(s *Service) {
		s.plannerOpts = append(s.plannerOpts, planner.WithMaxSuggestions(n))
	}
}

// WithMaxPlanSwaps caps accepted swaps per global plan.
func WithMaxPlanSwaps(n int) Option {
	return func(s *Service) {
		s.plannerOpts = append(s.plannerOpts, planner.WithMaxPlanSwaps(n))
	}
}

// WithExploreConcurrency bounds concurrent exam model exploration.
func WithExploreConcurrency(n int) Option {
	return func(s *Service) {
		s.plannerOpts = append(s.plannerOpts, planner.WithConcurrency(n))
	}
}

// WithDonorPolicy sets the donor guard applied to every candidate.
func WithDonorPolicy(maxRankDrop int, maxAverageDrop float64) Option {
	return func(s *Service) {
		s.plannerOpts = append(s.plannerOpts, planner.WithPolicy(planner.Policy{
			MaxDonorRankDrop:    maxRankDrop,
			MaxDonorAverageDrop: maxAverageDrop,
		}))
	}
}

// New constructs a Service over the given pool and catalog.
func New(pool repository.Pool, catalog repository.Catalog, opts ...Option) *Service {
	s := &Service{
		pool:      pool,
		catalog:   catalog,
		startedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.planner = planner.New(&sourceAdapter{pool: pool, catalog: catalog},
		append(s.plannerOpts, planner.WithLogger(s.logger.Named("planner")))...)
	s.executor = executor.New(&exchangeAdapter{pool: pool},
		executor.WithLogger(s.logger.Named("executor")))
	return s
}

// Suggestions searches one exam model for swaps that move the target toward
// the requested goal.
func (s *Service) Suggestions(ctx context.Context, req planner.SuggestionRequest) (planner.Suggestions, error) {
	start := time.Now()
	defer func() { metrics.RecordPlanningLatency("suggest", msSince(start)) }()

	if _, err := s.catalog.Student(ctx, req.TargetStudentID); err != nil {
		return planner.Suggestions{}, err
	}
	res, err := s.planner.Suggest(ctx, req)
	if err != nil {
		s.recordFailure(ctx, "suggest", err)
		return planner.Suggestions{}, err
	}

	metrics.RecordSuggestion(string(res.Status))
	s.logger.Info(ctx, "suggestions served",
		logger.StudentID(res.TargetStudentID),
		logger.ExamModelID(res.ExamModelID),
		logger.Status(string(res.Status)),
		logger.Int("proposals", len(res.Proposals)),
	)
	return res, nil
}

// GlobalPlan builds the cross-context plan toward desired.
func (s *Service) GlobalPlan(ctx context.Context, targetID string, desired float64) (planner.GlobalPlan, error) {
	start := time.Now()
	defer func() { metrics.RecordPlanningLatency("plan", msSince(start)) }()

	if _, err := s.catalog.Student(ctx, targetID); err != nil {
		return planner.GlobalPlan{}, err
	}
	plan, err := s.planner.GlobalPlan(ctx, targetID, desired)
	if err != nil {
		s.recordFailure(ctx, "plan", err)
		return planner.GlobalPlan{}, err
	}
	plan.ID = uuid.NewString()

	metrics.RecordPlan(string(plan.Status), len(plan.FlatPlan))
	s.logger.Info(ctx, "global plan served",
		logger.String("plan_id", plan.ID),
		logger.StudentID(targetID),
		logger.Status(string(plan.Status)),
		logger.Int("swaps", len(plan.FlatPlan)),
	)
	return plan, nil
}

// Execute applies proposals to the pool one by one.
func (s *Service) Execute(ctx context.Context, proposals []model.SwapProposal) executor.Result {
	res := s.executor.Execute(ctx, proposals)
	for range res.Applied {
		metrics.RecordSwapApplied()
	}
	for _, f := range res.Failed {
		metrics.RecordSwapFailed(string(f.Reason))
	}
	s.logger.Info(ctx, "execution finished",
		logger.Int("applied", len(res.Applied)),
		logger.Int("failed", len(res.Failed)),
	)
	return res
}

// Ranking returns the current standing of one exam model.
func (s *Service) Ranking(ctx context.Context, examModelID string) (ranking.Standing, error) {
	st, err := s.planner.Standing(ctx, examModelID)
	if err != nil {
		s.recordFailure(ctx, "ranking", err)
		return ranking.Standing{}, err
	}
	return st, nil
}

// SetGrade records an ordinary grading write.
func (s *Service) SetGrade(ctx context.Context, copyID string, grade float64) (model.GradedCopy, error) {
	c, err := s.pool.SetGrade(ctx, copyID, grade)
	if err != nil {
		return model.GradedCopy{}, err
	}
	metrics.RecordGradeWrite()
	s.logger.Info(ctx, "grade recorded",
		logger.CopyID(c.ID),
		logger.StudentID(c.StudentID),
		logger.Float64("grade", c.Grade),
	)
	return c, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	copies := s.pool.Count(ctx)
	metrics.UpdatePoolSize(copies)
	stats := map[string]interface{}{
		"copies":        copies,
		"uptimeSeconds": int64(time.Since(s.startedAt).Seconds()),
	}
	if students, err := s.catalog.Students(ctx); err == nil {
		stats["students"] = len(students)
	}
	if subjects, err := s.catalog.Subjects(ctx); err == nil {
		stats["subjects"] = len(subjects)
	}
	if models, err := s.catalog.ExamModels(ctx); err == nil {
		stats["examModels"] = len(models)
	}
	return stats
}

func (s *Service) recordFailure(ctx context.Context, op string, err error) {
	if errors.Is(err, planner.ErrConfiguration) {
		metrics.RecordConfigurationError()
	}
	s.logger.Warn(ctx, "request rejected", logger.String("operation", op), logger.Error(err))
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
