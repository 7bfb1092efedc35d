package api

import (
	"net/http"

	"github.com/okian/gradeswap/pkg/logger"
)

// PlanHandler handles global planning and plan execution.
type PlanHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewPlanHandler creates a new plan handler.
func NewPlanHandler(deps Dependencies, log logger.Logger) *PlanHandler {
	return &PlanHandler{deps: deps, logger: log}
}

// HandlePlan handles POST /plan requests.
func (h *PlanHandler) HandlePlan(w http.ResponseWriter, r *http.Request) {
	const op = "api.plan"
	var req planRequest
	if err := decode(r, &req); err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	plan, err := h.deps.GlobalPlan(r.Context(), req.TargetStudentID, *req.DesiredAverage)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

type executeResponse struct {
	PlanID  string `json:"plan_id,omitempty"`
	Applied int    `json:"applied_count"`
	Failed  int    `json:"failed_count"`
	Result  any    `json:"result"`
}

// HandleExecute handles POST /execute requests. Partial success is a 200:
// each proposal reports its own outcome.
func (h *PlanHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	const op = "api.execute"
	var req executeRequest
	if err := decode(r, &req); err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	res := h.deps.Execute(r.Context(), req.Proposals)
	h.logger.Info(r.Context(), "plan executed",
		logger.String("plan_id", req.PlanID),
		logger.Int("applied", len(res.Applied)),
		logger.Int("failed", len(res.Failed)),
	)
	writeJSON(w, http.StatusOK, executeResponse{
		PlanID:  req.PlanID,
		Applied: len(res.Applied),
		Failed:  len(res.Failed),
		Result:  res,
	})
}
