package report

import (
	"embed"
	"html/template"
	"io"
	"strconv"

	"github.com/wonny/precinho/internal/contracts"
)

//go:embed templates/index.html.tmpl
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html.tmpl"))

// SiteTitle is the heading of the static page
const SiteTitle = "Tá no Precinho?"

// PageData feeds index.html
type PageData struct {
	Title          string
	Date           string // dd/mm/yyyy
	Mode           contracts.Mode
	Received       int
	Excluded       int
	MeanScore      float64
	TargetMultiple float64
	CSVFile        string
	JSONFile       string
	Rows           []PageRow
}

// PageRow is one pre-formatted table line
type PageRow struct {
	Rank          int
	Ticker        string
	Sector        string
	PE            string
	PB            string
	ROE           string
	DY            string
	Score         int
	FairPrice     string
	Discount      string
	DiscountClass string
	Tier          string
	BarWidth      int // 0 ~ 100, CSS percentage
}

// NewPageData formats a run report for the HTML page
func NewPageData(report *contracts.RunReport, targetMultiple float64, csvFile, jsonFile string) PageData {
	data := PageData{
		Title:          SiteTitle,
		Date:           report.GeneratedAt.Format("02/01/2006"),
		Mode:           report.Mode,
		Received:       report.TotalReceived,
		Excluded:       report.TotalExcluded,
		MeanScore:      report.Summary.MeanScore,
		TargetMultiple: targetMultiple,
		CSVFile:        csvFile,
		JSONFile:       jsonFile,
		Rows:           make([]PageRow, 0, len(report.Ranked)),
	}

	for _, r := range report.Ranked {
		row := PageRow{
			Rank:      r.Rank,
			Ticker:    r.Ticker,
			Sector:    r.Sector,
			PE:        formatFloat(r.PriceEarnings, 2),
			PB:        formatFloat(r.PriceToBook, 2),
			ROE:       percent(r.ReturnOnEquity),
			DY:        percent(r.DividendYield),
			Score:     r.Score,
			FairPrice: "-",
			Discount:  "-",
			Tier:      r.CapLabel,
			BarWidth:  clamp(r.Score, 0, 100),
		}
		if r.Valuation.Defined {
			row.FairPrice = "R$ " + formatFloat(r.Valuation.FairPrice, 2)
			row.Discount = strconv.FormatFloat(r.Valuation.DiscountPercent, 'f', 2, 64) + "%"
			switch {
			case r.Valuation.DiscountPercent > 0:
				row.DiscountClass = "undervalued"
			case r.Valuation.DiscountPercent < 0:
				row.DiscountClass = "overvalued"
			}
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

// WriteHTML renders index.html
func WriteHTML(w io.Writer, data PageData) error {
	return indexTemplate.Execute(w, data)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
