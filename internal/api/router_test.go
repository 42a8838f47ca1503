package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/precinho/internal/api/handlers"
	"github.com/wonny/precinho/internal/contracts"
	"github.com/wonny/precinho/internal/pipeline"
	"github.com/wonny/precinho/internal/screening"
	"github.com/wonny/precinho/pkg/logger"
)

type staticUniverse []string

func (u staticUniverse) Name() string { return "static" }

func (u staticUniverse) Tickers(ctx context.Context) ([]string, error) { return u, nil }

type mapSource map[string]contracts.RawRecord

func (m mapSource) Fetch(ctx context.Context, tickers []string) ([]contracts.RawRecord, error) {
	out := make([]contracts.RawRecord, 0, len(tickers))
	for _, t := range tickers {
		rec, ok := m[t]
		if !ok {
			rec = contracts.RawRecord{Ticker: t, FetchError: "not found"}
		}
		out = append(out, rec)
	}
	return out, nil
}

func record(ticker, sector string, pe, price, mcap float64) contracts.RawRecord {
	return contracts.RawRecord{
		Ticker:         ticker,
		Sector:         contracts.String(sector),
		PriceEarnings:  contracts.Float(pe),
		PriceToBook:    contracts.Float(1.2),
		ReturnOnEquity: contracts.Float(0.18),
		DividendYield:  contracts.Float(0.06),
		DebtToEquity:   contracts.Float(60),
		MarketCap:      contracts.Float(mcap),
		CurrentPrice:   contracts.Float(price),
	}
}

func newTestRouter(t *testing.T, reportDir string) (http.Handler, *screening.Service) {
	t.Helper()

	cfg := pipeline.DefaultConfig()
	cfg.Mode = contracts.ModeFairValue
	orchestrator, err := pipeline.New(cfg, logger.Nop())
	require.NoError(t, err)

	svc, err := screening.NewService(screening.Deps{
		Universe: staticUniverse{"PETR4", "ITUB4", "MGLU3", "AZUL4"},
		Source: mapSource{
			"PETR4": record("PETR4", "Energy", 4, 38, 4e11),
			"ITUB4": record("ITUB4", "Financial Services", 8, 30, 3e11),
			"MGLU3": record("MGLU3", "Consumer Cyclical", 12, 2, 5e9),
		},
		Orchestrator: orchestrator,
	}, logger.Nop())
	require.NoError(t, err)

	h := handlers.NewScreeningHandler(svc, logger.Nop())
	return NewRouter(h, reportDir, logger.Nop()), svc
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rec := do(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestRanking_BeforeFirstRun(t *testing.T) {
	router, _ := newTestRouter(t, "")

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/ranking", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/run", "").Code)
}

func TestTriggerRunThenRanking(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rec := do(t, router, http.MethodPost, "/api/run", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var run handlers.RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, contracts.ModeFairValue, run.Mode)
	assert.Equal(t, 4, run.TotalReceived)
	assert.Equal(t, 1, run.TotalExcluded)
	assert.Equal(t, 1, run.ExcludedByReason[contracts.ReasonFetchFailed])
	assert.Equal(t, 3, run.Candidates)

	rec = do(t, router, http.MethodGet, "/api/ranking", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var ranking handlers.RankingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ranking))
	assert.Equal(t, run.RunID, ranking.RunID)
	assert.Equal(t, contracts.SortByDiscount, ranking.Query.SortKey)
	require.Len(t, ranking.Records, 3)
	// PETR4: 38*15/4 = 142.5 → 73.33%, ITUB4: 30*15/8 = 56.25 → 46.67%, MGLU3: 2.5 → 20%
	assert.Equal(t, "PETR4", ranking.Records[0].Ticker)
	assert.Equal(t, "ITUB4", ranking.Records[1].Ticker)
	assert.Equal(t, "MGLU3", ranking.Records[2].Ticker)
	assert.Equal(t, 1, ranking.Records[0].Rank)
}

func TestRanking_QueryParams(t *testing.T) {
	router, _ := newTestRouter(t, "")
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/run", "").Code)

	tests := []struct {
		name    string
		target  string
		tickers []string
	}{
		{"sector case-insensitive", "/api/ranking?sector=financial%20services", []string{"ITUB4"}},
		{"tier", "/api/ranking?tier=small", []string{"MGLU3"}},
		{"min_discount", "/api/ranking?min_discount=40", []string{"PETR4", "ITUB4"}},
		{"limit", "/api/ranking?limit=1", []string{"PETR4"}},
		{"score sort tie-break by ticker", "/api/ranking?sort=score&tier=large", []string{"ITUB4", "PETR4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, tt.target, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var ranking handlers.RankingResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ranking))

			got := make([]string, 0, len(ranking.Records))
			for _, r := range ranking.Records {
				got = append(got, r.Ticker)
			}
			assert.Equal(t, tt.tickers, got)
		})
	}
}

func TestRanking_BadParams(t *testing.T) {
	router, _ := newTestRouter(t, "")
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/run", "").Code)

	for _, target := range []string{
		"/api/ranking?sort=volume",
		"/api/ranking?tier=huge",
		"/api/ranking?min_score=abc",
		"/api/ranking?min_score=101",
		"/api/ranking?limit=-1",
		"/api/ranking?min_discount=x",
		"/api/ranking?min_discount=NaN",
		"/api/ranking?min_discount=-Inf",
		"/api/ranking?min_discount=%2BInf",
	} {
		rec := do(t, router, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), `"error"`, target)
	}
}

func TestTriggerRun_WithBody(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rec := do(t, router, http.MethodPost, "/api/run", `{"min_score": 101}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/run", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/run", `{"tier": "large", "limit": 1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var run handlers.RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, 1, run.Ranked)
	assert.False(t, run.Empty)
}

func TestTriggerRun_EmptyResult(t *testing.T) {
	router, _ := newTestRouter(t, "")

	rec := do(t, router, http.MethodPost, "/api/run", `{"min_discount": 99}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var run handlers.RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.True(t, run.Empty)
	assert.Equal(t, 0, run.Ranked)
}

func TestGetRun(t *testing.T) {
	router, _ := newTestRouter(t, "")
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/run", "").Code)

	rec := do(t, router, http.MethodGet, "/api/run", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var run handlers.RunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	require.Len(t, run.Exclusions, 1)
	assert.Equal(t, "AZUL4", run.Exclusions[0].Ticker)
	assert.False(t, run.Running)
}

func TestStaticReportDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Tá no Precinho?</h1>"), 0o644))

	router, _ := newTestRouter(t, dir)

	rec := do(t, router, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Precinho")
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
