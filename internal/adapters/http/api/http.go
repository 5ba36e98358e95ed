// Package api declares the read-only results API and its route registration.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/xcheck/internal/adapters/repository"
	"github.com/okian/xcheck/internal/domain/cabrillo"
	"github.com/okian/xcheck/internal/domain/model"
)

// Entry mirrors the read shape returned by standings queries.
type Entry = repository.Entry

// ContactReport is the checked outcome of one contact.
type ContactReport struct {
	Seq     int       `json:"seq"`
	Line    int       `json:"line"`
	Time    time.Time `json:"time"`
	Band    string    `json:"band"`
	FreqKHz int       `json:"freq_khz"`
	Worked  string    `json:"worked"`
	Status  string    `json:"status"`
	Reason  string    `json:"reason"`
	Detail  string    `json:"detail,omitempty"`
	Points  int       `json:"points"`
	Mult    bool      `json:"mult"`
}

// BandReport holds claimed and final totals of one band.
type BandReport struct {
	Band          string `json:"band"`
	ClaimedQSO    int    `json:"claimed_qso"`
	QSO           int    `json:"qso"`
	ClaimedPoints int    `json:"claimed_points"`
	Points        int    `json:"points"`
	ClaimedMult   int    `json:"claimed_mult"`
	Mult          int    `json:"mult"`
}

// ParticipantReport is the full check result of one participant.
type ParticipantReport struct {
	Call         string          `json:"call"`
	Mode         string          `json:"mode"`
	Power        string          `json:"power"`
	County       string          `json:"county"`
	Checklog     bool            `json:"checklog"`
	ClaimedScore int             `json:"claimed_score"`
	Score        int             `json:"score"`
	Bands        []BandReport    `json:"bands"`
	Contacts     []ContactReport `json:"contacts"`
	Rejected     int             `json:"rejected_lines"`
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StandingsDependencies
	RankDependencies
	ReportDependencies
}

// Server wires HTTP routes for the results API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	standingsHandler *StandingsHandler
	rankHandler      *RankHandler
	reportHandler    *ReportHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		standingsHandler: NewStandingsHandler(deps, maxLimit),
		rankHandler:      NewRankHandler(deps),
		reportHandler:    NewReportHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/standings", MetricsMiddleware(s.standingsHandler.HandleGetStandings, "standings"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/report/", MetricsMiddleware(s.reportHandler.HandleGetReport, "report"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeLookupError maps upstream lookup errors onto status codes.
func writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrUnknownMode):
		writeError(w, http.StatusBadRequest, "unknown_mode", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// parseMode accepts a mode path or query value.
func parseMode(s string) (model.Mode, error) {
	m, ok := model.ParseMode(s)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return m, nil
}

// modeAndCall splits "/<prefix>/<mode>/<call>". The call keeps any further
// slashes, so "OH0/LY2EN" and "LY2EN/P" are accepted and normalized.
func modeAndCall(path, prefix string) (model.Mode, string, error) {
	rest := strings.TrimPrefix(path, prefix)
	mode, raw, ok := strings.Cut(rest, "/")
	if !ok || mode == "" {
		return "", "", ErrBadRequest
	}
	call := strings.Trim(cabrillo.NormalizeCall(raw), "/")
	if call == "" {
		return "", "", ErrBadRequest
	}
	m, err := parseMode(mode)
	if err != nil {
		return "", "", err
	}
	return m, call, nil
}
