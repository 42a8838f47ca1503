package report

import (
	"io"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/wonny/precinho/internal/contracts"
)

// CSVRow is one line of ranking_<date>.csv.
// Undefined valuations are written as empty cells, never as 0.
type CSVRow struct {
	Rank            int    `csv:"rank"`
	Ticker          string `csv:"ticker"`
	Sector          string `csv:"sector"`
	PriceEarnings   string `csv:"pe"`
	PriceToBook     string `csv:"pb"`
	ReturnOnEquity  string `csv:"roe"`
	DividendYield   string `csv:"dividend_yield"`
	DebtToEquity    string `csv:"debt_to_equity"`
	MarketCap       string `csv:"market_cap"`
	CurrentPrice    string `csv:"current_price"`
	Score           int    `csv:"score"`
	FairPrice       string `csv:"fair_price"`
	DiscountPercent string `csv:"discount_percent"`
	CapTier         string `csv:"cap_tier"`
}

// CSVRows converts ranked records into CSV rows
func CSVRows(records []contracts.EnrichedRecord) []*CSVRow {
	rows := make([]*CSVRow, 0, len(records))
	for _, r := range records {
		row := &CSVRow{
			Rank:           r.Rank,
			Ticker:         r.Ticker,
			Sector:         r.Sector,
			PriceEarnings:  formatFloat(r.PriceEarnings, 2),
			PriceToBook:    formatFloat(r.PriceToBook, 2),
			ReturnOnEquity: formatFloat(r.ReturnOnEquity, 4),
			DividendYield:  formatFloat(r.DividendYield, 4),
			DebtToEquity:   formatFloat(r.DebtToEquity, 2),
			MarketCap:      strconv.FormatFloat(r.MarketCap, 'f', 0, 64),
			CurrentPrice:   formatFloat(r.CurrentPrice, 2),
			Score:          r.Score,
			CapTier:        r.CapLabel,
		}
		if r.Valuation.Defined {
			row.FairPrice = formatFloat(r.Valuation.FairPrice, 2)
			row.DiscountPercent = formatFloat(r.Valuation.DiscountPercent, 2)
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteCSV writes the ranked records as CSV
func WriteCSV(w io.Writer, records []contracts.EnrichedRecord) error {
	return gocsv.Marshal(CSVRows(records), w)
}

func formatFloat(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64)
}
