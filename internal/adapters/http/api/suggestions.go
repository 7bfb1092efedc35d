package api

import (
	"net/http"

	"github.com/okian/gradeswap/pkg/logger"
)

// SuggestionHandler handles single-context suggestion requests.
type SuggestionHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewSuggestionHandler creates a new suggestion handler.
func NewSuggestionHandler(deps Dependencies, log logger.Logger) *SuggestionHandler {
	return &SuggestionHandler{deps: deps, logger: log}
}

// HandleSuggestions handles POST /suggestions requests.
func (h *SuggestionHandler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	const op = "api.suggestions"
	var req suggestionRequest
	if err := decode(r, &req); err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	res, err := h.deps.Suggestions(r.Context(), req.toDomain())
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
