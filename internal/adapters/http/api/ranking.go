package api

import (
	"net/http"
	"strings"

	"github.com/okian/gradeswap/pkg/logger"
)

// RankingHandler handles ranking requests.
type RankingHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewRankingHandler creates a new ranking handler.
func NewRankingHandler(deps Dependencies, log logger.Logger) *RankingHandler {
	return &RankingHandler{deps: deps, logger: log}
}

// HandleGetRanking handles GET /ranking/{exam_model_id} requests.
func (h *RankingHandler) HandleGetRanking(w http.ResponseWriter, r *http.Request) {
	const op = "api.ranking"
	id := strings.TrimSpace(r.PathValue("exam_model_id"))
	if id == "" {
		writeFailure(r.Context(), w, h.logger, NewKind(op, ErrBadRequest, "missing exam_model_id"))
		return
	}
	st, err := h.deps.Ranking(r.Context(), id)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, st)
}
