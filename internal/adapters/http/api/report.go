package api

import (
	"context"
	"net/http"

	"github.com/okian/xcheck/internal/domain/model"
)

// ReportDependencies defines the interface for participant reports.
type ReportDependencies interface {
	Report(ctx context.Context, mode model.Mode, call string) (ParticipantReport, error)
}

// ReportHandler handles participant report requests.
type ReportHandler struct {
	deps ReportDependencies
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps ReportDependencies) *ReportHandler {
	return &ReportHandler{deps: deps}
}

// HandleGetReport handles GET /report/{mode}/{call} requests. Checklog
// participants have a report but no rank.
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	mode, call, err := modeAndCall(r.URL.Path, "/report/")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	rep, err := h.deps.Report(r.Context(), mode, call)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
