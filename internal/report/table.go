package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/wonny/precinho/internal/contracts"
)

// WriteTable prints the ranked records as a console table
func WriteTable(w io.Writer, records []contracts.EnrichedRecord) error {
	table := tablewriter.NewWriter(w)

	table.Header([]string{"Rank", "Ticker", "Sector", "P/L", "P/VP", "ROE", "DY", "Score", "Fair", "Discount", "Tier"})

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, r := range records {
		fair, discount := "-", "-"
		if r.Valuation.Defined {
			fair = formatFloat(r.Valuation.FairPrice, 2)
			discount = formatFloat(r.Valuation.DiscountPercent, 2) + "%"
		}
		data = append(data, []string{
			strconv.Itoa(r.Rank),
			r.Ticker,
			r.Sector,
			formatFloat(r.PriceEarnings, 2),
			formatFloat(r.PriceToBook, 2),
			percent(r.ReturnOnEquity),
			percent(r.DividendYield),
			strconv.Itoa(r.Score),
			fair,
			discount,
			r.CapLabel,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// WriteExclusions prints the exclusion list as a console table
func WriteExclusions(w io.Writer, exclusions []contracts.Exclusion) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Ticker", "Reason", "Field", "Detail"})

	var data [][]string
	for _, e := range exclusions {
		data = append(data, []string{e.Ticker, string(e.Reason), e.Field, e.Detail})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// percent renders a fraction (0.153) as "15.30%"
func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}
