package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/precinho/internal/contracts"
	"github.com/wonny/precinho/pkg/logger"
)

func sampleReport() *contracts.RunReport {
	ranked := []contracts.EnrichedRecord{
		{
			Ticker: "PETR4", Sector: "Petróleo", Rank: 1,
			PriceEarnings: 8, PriceToBook: 1, ReturnOnEquity: 0.2, DividendYield: 0.06,
			MarketCap: 12e9, CurrentPrice: 20, Score: 100,
			Valuation: contracts.Valuation{FairPrice: 37.5, DiscountPercent: 46.67, Defined: true},
			CapTier:   contracts.CapTierMid, CapLabel: "Mid Cap",
		},
		{
			Ticker: "MGLU3", Sector: "Varejo", Rank: 2,
			PriceEarnings: -3, MarketCap: 8e9, CurrentPrice: 10, Score: 0,
			Valuation: contracts.UndefinedValuation,
			CapTier:   contracts.CapTierSmall, CapLabel: "Small Cap",
		},
	}
	return &contracts.RunReport{
		RunID:         "run-1",
		GeneratedAt:   time.Date(2026, 2, 26, 13, 18, 0, 0, time.UTC),
		Mode:          contracts.ModeScore,
		TotalReceived: 3,
		TotalExcluded: 1,
		Exclusions: []contracts.Exclusion{
			{Ticker: "HAPV3", Reason: contracts.ReasonMissingRequiredField, Field: "market_cap"},
		},
		Candidates: ranked,
		Ranked:     ranked,
		Summary:    contracts.Summary{MeanScore: 50, MedianScore: 50, DefinedValuations: 1, MeanDiscount: 46.67},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleReport().Ranked))

	var rows []*CSVRow
	require.NoError(t, gocsv.UnmarshalString(buf.String(), &rows))
	require.Len(t, rows, 2)

	assert.Equal(t, "PETR4", rows[0].Ticker)
	assert.Equal(t, 100, rows[0].Score)
	assert.Equal(t, "37.50", rows[0].FairPrice)
	assert.Equal(t, "46.67", rows[0].DiscountPercent)
	assert.Equal(t, "12000000000", rows[0].MarketCap)

	// undefined valuation → empty cells, never 0
	assert.Equal(t, "", rows[1].FairPrice)
	assert.Equal(t, "", rows[1].DiscountPercent)

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Equal(t, "rank,ticker,sector,pe,pb,roe,dividend_yield,debt_to_equity,market_cap,current_price,score,fair_price,discount_percent,cap_tier", header)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sampleReport().Ranked))

	out := buf.String()
	assert.Contains(t, out, "PETR4")
	assert.Contains(t, out, "46.67%")
	assert.Contains(t, out, "20.00%") // ROE
	assert.Contains(t, out, "MGLU3")
}

func TestWriteExclusions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExclusions(&buf, sampleReport().Exclusions))
	assert.Contains(t, buf.String(), "HAPV3")
	assert.Contains(t, buf.String(), "missing_required_field")
}

func TestWriteJSON_UndefinedIsNull(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport()))

	var decoded struct {
		Ranked []struct {
			Ticker    string `json:"ticker"`
			Valuation struct {
				FairPrice       *float64 `json:"fair_price"`
				DiscountPercent *float64 `json:"discount_percent"`
			} `json:"valuation"`
		} `json:"ranked"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Ranked, 2)
	require.NotNil(t, decoded.Ranked[0].Valuation.DiscountPercent)
	assert.Equal(t, 46.67, *decoded.Ranked[0].Valuation.DiscountPercent)
	assert.Nil(t, decoded.Ranked[1].Valuation.FairPrice)
	assert.Nil(t, decoded.Ranked[1].Valuation.DiscountPercent)
}

func TestWriteHTML(t *testing.T) {
	page := NewPageData(sampleReport(), 15, "ranking_2026-02-26.csv", "ranking_2026-02-26.json")
	assert.Equal(t, "26/02/2026", page.Date)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, "undervalued", page.Rows[0].DiscountClass)
	assert.Equal(t, "-", page.Rows[1].Discount)

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, page))

	html := buf.String()
	assert.Contains(t, html, "Tá no Precinho?")
	assert.Contains(t, html, "26/02/2026")
	assert.Contains(t, html, "ranking_2026-02-26.csv")
	assert.Contains(t, html, "não constitui recomendação de investimento")
	assert.Contains(t, html, `style="width: 100%"`)
}

func TestWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	w := NewWriter(dir, 15, logger.Nop())

	files, err := w.Write(sampleReport())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "ranking_2026-02-26.csv"), files.CSV)
	assert.Equal(t, filepath.Join(dir, "ranking_2026-02-26.json"), files.JSON)
	assert.Equal(t, filepath.Join(dir, "index.html"), files.HTML)

	for _, p := range []string{files.CSV, files.JSON, files.HTML} {
		info, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.Greater(t, info.Size(), int64(0))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "no temp files left behind")
}
