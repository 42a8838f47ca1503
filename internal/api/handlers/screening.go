package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/wonny/precinho/internal/contracts"
	"github.com/wonny/precinho/internal/pipeline"
	"github.com/wonny/precinho/internal/screening"
	"github.com/wonny/precinho/pkg/logger"
)

// Screener is the part of screening.Service the API needs
type Screener interface {
	Run(ctx context.Context, opts screening.RunOptions) (*screening.RunResult, error)
	Latest() (*contracts.RunReport, error)
	Ranking(query contracts.Query) ([]contracts.EnrichedRecord, error)
	DefaultQuery() contracts.Query
	Running() bool
}

// ScreeningHandler handles screening API endpoints
// ⭐ SSOT: 스크리닝 API 핸들러는 이 구조체에서만
type ScreeningHandler struct {
	service Screener
	logger  *logger.Logger
}

// NewScreeningHandler creates a new screening handler
func NewScreeningHandler(service Screener, log *logger.Logger) *ScreeningHandler {
	return &ScreeningHandler{
		service: service,
		logger:  log,
	}
}

// RankingResponse is the body of GET /api/ranking
type RankingResponse struct {
	RunID       string                     `json:"run_id"`
	GeneratedAt time.Time                  `json:"generated_at"`
	Mode        contracts.Mode             `json:"mode"`
	Query       contracts.Query            `json:"query"`
	Count       int                        `json:"count"`
	Records     []contracts.EnrichedRecord `json:"records"`
}

// RunResponse is the body of GET/POST /api/run
type RunResponse struct {
	RunID            string                            `json:"run_id"`
	GeneratedAt      time.Time                         `json:"generated_at"`
	ConfigHash       string                            `json:"config_hash,omitempty"`
	Mode             contracts.Mode                    `json:"mode"`
	TotalReceived    int                               `json:"total_received"`
	TotalExcluded    int                               `json:"total_excluded"`
	ExcludedByReason map[contracts.ExclusionReason]int `json:"excluded_by_reason"`
	Exclusions       []contracts.Exclusion             `json:"exclusions"`
	Candidates       int                               `json:"candidates"`
	Ranked           int                               `json:"ranked"`
	Summary          contracts.Summary                 `json:"summary"`
	Running          bool                              `json:"running"`
	Empty            bool                              `json:"empty"`
	Duration         string                            `json:"duration,omitempty"`
	Archived         bool                              `json:"archived,omitempty"`
}

// RunRequest is the optional body of POST /api/run
type RunRequest struct {
	QueryParams
	NoReport bool `json:"no_report,omitempty"`
}

// GetRanking re-selects over the latest candidates
// GET /api/ranking?sort=discount&sector=Financeiro&tier=large&min_score=50&min_discount=10&limit=10
func (h *ScreeningHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	params, err := ParseQueryParams(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	query, err := params.Apply(h.service.DefaultQuery())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	latest, err := h.service.Latest()
	if err != nil {
		h.respondNoRun(w, err)
		return
	}

	records, err := h.service.Ranking(query)
	if err != nil {
		h.respondNoRun(w, err)
		return
	}

	h.respond(w, RankingResponse{
		RunID:       latest.RunID,
		GeneratedAt: latest.GeneratedAt,
		Mode:        latest.Mode,
		Query:       query,
		Count:       len(records),
		Records:     records,
	})
}

// GetRun returns metadata and exclusions of the latest run
// GET /api/run
func (h *ScreeningHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	latest, err := h.service.Latest()
	if err != nil {
		h.respondNoRun(w, err)
		return
	}

	resp := newRunResponse(latest)
	resp.Running = h.service.Running()
	h.respond(w, resp)
}

// TriggerRun runs a fresh screening synchronously
// POST /api/run
func (h *ScreeningHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	query, err := req.QueryParams.Apply(h.service.DefaultQuery())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.WithField("query", query).Info("Screening run triggered")

	result, err := h.service.Run(r.Context(), screening.RunOptions{
		Query:    &query,
		NoReport: req.NoReport,
	})
	switch {
	case errors.Is(err, screening.ErrRunInProgress):
		respondError(w, http.StatusConflict, err.Error())
		return
	case err != nil && !errors.Is(err, pipeline.ErrEmptyResult):
		h.logger.WithError(err).Error("Screening run failed")
		respondError(w, http.StatusInternalServerError, "Screening run failed")
		return
	}

	resp := newRunResponse(result.Report)
	resp.Duration = result.Duration.String()
	resp.Archived = result.Archived
	h.respond(w, resp)
}

func (h *ScreeningHandler) respond(w http.ResponseWriter, data interface{}) {
	if err := respondJSON(w, http.StatusOK, data); err != nil {
		h.logger.WithError(err).Error("Failed to write response")
	}
}

func (h *ScreeningHandler) respondNoRun(w http.ResponseWriter, err error) {
	if errors.Is(err, screening.ErrNoRun) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	h.logger.WithError(err).Error("Failed to read latest run")
	respondError(w, http.StatusInternalServerError, "Failed to read latest run")
}

func newRunResponse(rep *contracts.RunReport) RunResponse {
	exclusions := rep.Exclusions
	if exclusions == nil {
		exclusions = []contracts.Exclusion{}
	}
	return RunResponse{
		RunID:            rep.RunID,
		GeneratedAt:      rep.GeneratedAt,
		ConfigHash:       rep.ConfigHash,
		Mode:             rep.Mode,
		TotalReceived:    rep.TotalReceived,
		TotalExcluded:    rep.TotalExcluded,
		ExcludedByReason: rep.ExcludedCount(),
		Exclusions:       exclusions,
		Candidates:       len(rep.Candidates),
		Ranked:           len(rep.Ranked),
		Summary:          rep.Summary,
		Empty:            rep.IsEmpty(),
	}
}
