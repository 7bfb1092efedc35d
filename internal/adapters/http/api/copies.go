package api

import (
	"net/http"
	"strings"

	"github.com/okian/gradeswap/pkg/logger"
)

// CopyHandler handles ordinary grading writes.
type CopyHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewCopyHandler creates a new copy handler.
func NewCopyHandler(deps Dependencies, log logger.Logger) *CopyHandler {
	return &CopyHandler{deps: deps, logger: log}
}

// HandlePutGrade handles PUT /copies/{copy_id} requests.
func (h *CopyHandler) HandlePutGrade(w http.ResponseWriter, r *http.Request) {
	const op = "api.copies"
	id := strings.TrimSpace(r.PathValue("copy_id"))
	if id == "" {
		writeFailure(r.Context(), w, h.logger, NewKind(op, ErrBadRequest, "missing copy_id"))
		return
	}
	var req gradeRequest
	if err := decode(r, &req); err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	c, err := h.deps.SetGrade(r.Context(), id, *req.Grade)
	if err != nil {
		writeFailure(r.Context(), w, h.logger, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, c)
}
