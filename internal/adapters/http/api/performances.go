package api

import (
	"net/http"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/model"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/session"
	"github.com/Allen-Young-Org/gybscript-sub001/pkg/logger"
)

// PerformanceHandler handles the performance listing and mutations.
type PerformanceHandler struct {
	deps PerformanceDependencies
	log  logger.Logger
}

// NewPerformanceHandler creates a new performance handler.
func NewPerformanceHandler(deps PerformanceDependencies, log logger.Logger) *PerformanceHandler {
	return &PerformanceHandler{deps: deps, log: log}
}

// HandleList handles GET /performances?status=. The status defaults to
// active.
func (h *PerformanceHandler) HandleList(w http.ResponseWriter, r *http.Request, sess session.Session) {
	const op = "api.list_performances"
	status, err := model.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, h.log, op, WrapKind(op, ErrBadRequest, err))
		return
	}
	views, err := h.deps.ListPerformances(r.Context(), sess, status)
	if err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, list(views))
}

// HandleCreate handles POST /performances.
func (h *PerformanceHandler) HandleCreate(w http.ResponseWriter, r *http.Request, sess session.Session) {
	const op = "api.post_performance"
	var in model.PerformanceInput
	if err := decodeBody(w, r, op, &in); err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	p, err := h.deps.CreatePerformance(r.Context(), sess, in)
	if err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleDelete handles DELETE /performances/{performanceID}, a soft delete.
func (h *PerformanceHandler) HandleDelete(w http.ResponseWriter, r *http.Request, sess session.Session) {
	const op = "api.delete_performance"
	res, err := h.deps.SoftDeletePerformance(r.Context(), sess, r.PathValue("performanceID"))
	if err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
