// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/gradeswap/internal/adapters/repository"
	"github.com/okian/gradeswap/internal/domain/executor"
	"github.com/okian/gradeswap/internal/domain/model"
	"github.com/okian/gradeswap/internal/domain/planner"
	"github.com/okian/gradeswap/internal/domain/ranking"
	"github.com/okian/gradeswap/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Suggestions(ctx context.Context, req planner.SuggestionRequest) (planner.Suggestions, error)
	GlobalPlan(ctx context.Context, targetID string, desired float64) (planner.GlobalPlan, error)
	Execute(ctx context.Context, proposals []model.SwapProposal) executor.Result
	Ranking(ctx context.Context, examModelID string) (ranking.Standing, error)
	SetGrade(ctx context.Context, copyID string, grade float64) (model.GradedCopy, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	suggestionHandler *SuggestionHandler
	planHandler       *PlanHandler
	rankingHandler    *RankingHandler
	copyHandler       *CopyHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	log := logger.Get().Named("api")
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		suggestionHandler: NewSuggestionHandler(deps, log),
		planHandler:       NewPlanHandler(deps, log),
		rankingHandler:    NewRankingHandler(deps, log),
		copyHandler:       NewCopyHandler(deps, log),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /suggestions", MetricsMiddleware(s.suggestionHandler.HandleSuggestions, "suggestions"))
	mux.HandleFunc("POST /plan", MetricsMiddleware(s.planHandler.HandlePlan, "plan"))
	mux.HandleFunc("POST /execute", MetricsMiddleware(s.planHandler.HandleExecute, "execute"))
	mux.HandleFunc("GET /ranking/{exam_model_id}", MetricsMiddleware(s.rankingHandler.HandleGetRanking, "ranking"))
	mux.HandleFunc("PUT /copies/{copy_id}", MetricsMiddleware(s.copyHandler.HandlePutGrade, "copies"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v before writing the header so an unencodable value
// turns into a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Get().Named("api").Error(context.Background(), "encode response", logger.Error(err))
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Code: "internal_error", Message: "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err to a status and code and logs server-side failures.
func writeFailure(ctx context.Context, w http.ResponseWriter, log logger.Logger, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error(ctx, "request failed", logger.Error(err))
	}
	writeError(w, status, code, err)
}

// classify translates domain and repository errors to HTTP status codes.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, planner.ErrConfiguration):
		return http.StatusUnprocessableEntity, "configuration_error"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, planner.ErrInvalidGoal),
		errors.Is(err, repository.ErrInvalidGrade):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrStudentNotFound),
		errors.Is(err, repository.ErrExamModelNotFound),
		errors.Is(err, repository.ErrCopyNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
